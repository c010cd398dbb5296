package service

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/andy/billkeep/internal/domain"
	"github.com/andy/billkeep/internal/repository"
)

// FilterCriteria narrows an invoice listing. Every field is optional and
// the set criteria combine with AND.
type FilterCriteria struct {
	// Statuses matches invoices whose status is in the set
	Statuses []domain.InvoiceStatus
	// DateFrom and DateTo bound CreatedAt inclusively. They are compared
	// as YYYY-MM-DD strings, so both sides must use that form.
	DateFrom string
	DateTo   string
	// Search matches case-insensitively as a substring against the invoice
	// number, client name, seller name, and notes; any one field qualifies.
	Search string
}

// Summary aggregates the whole portfolio in a single pass
type Summary struct {
	Count            int
	TotalBilled      float64
	TotalPaid        float64
	TotalOutstanding float64
	// ByStatus carries every known status, zero-valued when absent
	ByStatus map[domain.InvoiceStatus]int
}

// AgingBucket groups unpaid invoices by how long they are overdue
type AgingBucket string

const (
	AgingCurrent AgingBucket = "current"
	Aging1To30   AgingBucket = "1-30"
	Aging31To60  AgingBucket = "31-60"
	Aging61To90  AgingBucket = "61-90"
	AgingOver90  AgingBucket = "90+"
)

// AgingEntry is one unpaid invoice in the aging report
type AgingEntry struct {
	Invoice     *domain.Invoice
	DaysOverdue int
	Bucket      AgingBucket
}

// AgingReport lists invoices with an open balance, most overdue first
type AgingReport struct {
	Entries          []AgingEntry
	OutstandingTotal float64
}

// ReportService provides filtering and portfolio aggregations
type ReportService interface {
	// Filter returns matching invoices sorted by CreatedAt descending
	Filter(ctx context.Context, criteria FilterCriteria) ([]*domain.Invoice, error)

	// Summary aggregates count, billed/paid/outstanding sums, and
	// per-status counts across all invoices
	Summary(ctx context.Context) (*Summary, error)

	// Aging buckets invoices with a positive balance by days overdue
	// relative to asOf
	Aging(ctx context.Context, asOf time.Time) (*AgingReport, error)
}

type reportService struct {
	repo repository.InvoiceRepository
}

// NewReportService creates a new report service
func NewReportService(repo repository.InvoiceRepository) ReportService {
	return &reportService{repo: repo}
}

const dateLayout = "2006-01-02"

func (s *reportService) Filter(ctx context.Context, criteria FilterCriteria) ([]*domain.Invoice, error) {
	invoices, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]*domain.Invoice, 0, len(invoices))
	for _, invoice := range invoices {
		if matchesCriteria(invoice, criteria) {
			matched = append(matched, invoice)
		}
	}

	// Newest first; ties keep store order
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	return matched, nil
}

func matchesCriteria(invoice *domain.Invoice, criteria FilterCriteria) bool {
	if len(criteria.Statuses) > 0 {
		found := false
		for _, status := range criteria.Statuses {
			if invoice.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if criteria.DateFrom != "" || criteria.DateTo != "" {
		created := invoice.CreatedAt.Format(dateLayout)
		if criteria.DateFrom != "" && created < criteria.DateFrom {
			return false
		}
		if criteria.DateTo != "" && created > criteria.DateTo {
			return false
		}
	}

	if criteria.Search != "" {
		q := strings.ToLower(criteria.Search)
		if !strings.Contains(strings.ToLower(invoice.Number), q) &&
			!strings.Contains(strings.ToLower(invoice.Client.Name), q) &&
			!strings.Contains(strings.ToLower(invoice.Seller.Name), q) &&
			!strings.Contains(strings.ToLower(invoice.Notes), q) {
			return false
		}
	}

	return true
}

func (s *reportService) Summary(ctx context.Context) (*Summary, error) {
	invoices, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		ByStatus: make(map[domain.InvoiceStatus]int, len(domain.AllStatuses)),
	}

	// Seed every status so absent ones report 0, not a missing key
	for _, status := range domain.AllStatuses {
		summary.ByStatus[status] = 0
	}

	for _, invoice := range invoices {
		summary.Count++
		summary.TotalBilled += invoice.Totals.GrandTotal
		summary.TotalPaid += invoice.Totals.AmountPaid
		summary.TotalOutstanding += invoice.Totals.BalanceDue
		summary.ByStatus[invoice.Status]++
	}

	return summary, nil
}

func (s *reportService) Aging(ctx context.Context, asOf time.Time) (*AgingReport, error) {
	invoices, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	report := &AgingReport{Entries: make([]AgingEntry, 0)}

	for _, invoice := range invoices {
		if invoice.Totals.BalanceDue <= 0 {
			continue
		}

		days := daysOverdue(invoice.DueDate, asOf)
		report.Entries = append(report.Entries, AgingEntry{
			Invoice:     invoice,
			DaysOverdue: days,
			Bucket:      bucketFor(days),
		})
		report.OutstandingTotal += invoice.Totals.BalanceDue
	}

	sort.SliceStable(report.Entries, func(i, j int) bool {
		return report.Entries[i].DaysOverdue > report.Entries[j].DaysOverdue
	})

	return report, nil
}

// daysOverdue is floor((asOf - dueDate) / 1 day); negative when not yet due
func daysOverdue(dueDate, asOf time.Time) int {
	return int(math.Floor(asOf.Sub(dueDate).Hours() / 24))
}

func bucketFor(days int) AgingBucket {
	switch {
	case days <= 0:
		return AgingCurrent
	case days <= 30:
		return Aging1To30
	case days <= 60:
		return Aging31To60
	case days <= 90:
		return Aging61To90
	default:
		return AgingOver90
	}
}
