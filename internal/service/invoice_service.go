package service

import (
	"context"
	"time"

	"github.com/andy/billkeep/internal/domain"
	"github.com/andy/billkeep/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// InvoiceService manages the invoice lifecycle: creation, explicit saves
// with synchronous totals recomputation, duplication, and deletion
type InvoiceService interface {
	// CreateDraft creates and persists a blank draft invoice with a
	// sequence-derived number and zero totals
	CreateDraft(ctx context.Context, prefix string, dueDays int) (*domain.Invoice, error)

	// Save recomputes totals, applies payment-driven status transitions,
	// and persists. Writes are explicit; nothing is saved per keystroke.
	Save(ctx context.Context, invoice *domain.Invoice) error

	// Duplicate copies an invoice under a new identity and number, with
	// status reset to draft and payments cleared
	Duplicate(ctx context.Context, id string) (*domain.Invoice, error)

	// Delete hard-removes an invoice; irreversible
	Delete(ctx context.Context, id string) error

	// NextSequence returns count+1. Advisory only: nothing is reserved, so
	// two unsaved creations can observe the same value.
	NextSequence(ctx context.Context) (int, error)

	// MarkOverdue flips sent invoices past their due date with an open
	// balance to overdue
	MarkOverdue(ctx context.Context, asOf time.Time) (int, error)

	GetInvoice(ctx context.Context, id string) (*domain.Invoice, error)
	ListInvoices(ctx context.Context) ([]*domain.Invoice, error)
}

type invoiceService struct {
	repo repository.InvoiceRepository
	log  zerolog.Logger
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(repo repository.InvoiceRepository, log zerolog.Logger) InvoiceService {
	return &invoiceService{
		repo: repo,
		log:  log.With().Str("component", "invoice_service").Logger(),
	}
}

func (s *invoiceService) CreateDraft(ctx context.Context, prefix string, dueDays int) (*domain.Invoice, error) {
	seq, err := s.NextSequence(ctx)
	if err != nil {
		return nil, err
	}

	invoice := domain.NewInvoice(domain.FormatNumber(prefix, seq), dueDays)
	invoice.Totals = domain.ComputeTotals(invoice)

	if err := s.repo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	s.log.Info().Str("id", invoice.ID).Str("number", invoice.Number).Msg("created draft invoice")
	return invoice, nil
}

func (s *invoiceService) Save(ctx context.Context, invoice *domain.Invoice) error {
	// Totals are recomputed on every persisted write so a stale Totals
	// value supplied by the caller is never stored as authoritative.
	invoice.Totals = domain.ComputeTotals(invoice)
	invoice.Status = domain.DeriveStatus(invoice.Status, invoice.Totals)

	return s.repo.Save(ctx, invoice)
}

func (s *invoiceService) Duplicate(ctx context.Context, id string) (*domain.Invoice, error) {
	original, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	seq, err := s.NextSequence(ctx)
	if err != nil {
		return nil, err
	}

	prefix := numberPrefix(original.Number)
	now := time.Now()

	dup := *original
	dup.ID = uuid.NewString()
	dup.Number = domain.FormatNumber(prefix, seq)
	dup.Status = domain.InvoiceStatusDraft
	dup.CreatedAt = now
	dup.UpdatedAt = now
	dup.Payments = make([]domain.Payment, 0)

	// Items are copied so edits to the duplicate never touch the original
	dup.Items = make([]domain.InvoiceItem, len(original.Items))
	copy(dup.Items, original.Items)

	// Totals carry over verbatim except for the payment-derived fields.
	// They are not recomputed from items: a stale source is inherited.
	dup.Totals = original.Totals
	dup.Totals.AmountPaid = 0
	dup.Totals.BalanceDue = original.Totals.GrandTotal

	if err := s.repo.Save(ctx, &dup); err != nil {
		return nil, err
	}

	s.log.Info().Str("source", original.Number).Str("number", dup.Number).Msg("duplicated invoice")
	return &dup, nil
}

func (s *invoiceService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("id", id).Msg("deleted invoice")
	return nil
}

func (s *invoiceService) NextSequence(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	return count + 1, nil
}

func (s *invoiceService) MarkOverdue(ctx context.Context, asOf time.Time) (int, error) {
	invoices, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}

	flipped := 0
	for _, invoice := range invoices {
		if invoice.Status != domain.InvoiceStatusSent {
			continue
		}
		if invoice.Totals.BalanceDue <= 0 || !asOf.After(invoice.DueDate) {
			continue
		}
		invoice.Status = domain.InvoiceStatusOverdue
		if err := s.repo.Save(ctx, invoice); err != nil {
			return flipped, err
		}
		flipped++
	}

	if flipped > 0 {
		s.log.Info().Int("count", flipped).Msg("marked invoices overdue")
	}
	return flipped, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *invoiceService) ListInvoices(ctx context.Context) ([]*domain.Invoice, error) {
	return s.repo.List(ctx)
}

// numberPrefix recovers the prefix part of "PREFIX-NNNN"
func numberPrefix(number string) string {
	for i := len(number) - 1; i >= 0; i-- {
		if number[i] == '-' {
			return number[:i]
		}
	}
	return ""
}
