package tui

import (
	"context"
	"fmt"

	"github.com/andy/billkeep/internal/app"
	"github.com/andy/billkeep/internal/domain"
	"github.com/andy/billkeep/internal/service"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DashboardModel represents the dashboard home screen
type DashboardModel struct {
	app *app.App

	// Data
	summary *service.Summary
	recent  []*domain.Invoice
	overdue int

	loading bool
	err     error
}

type dashboardDataMsg struct {
	summary *service.Summary
	recent  []*domain.Invoice
	overdue int
	err     error
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(a *app.App) tea.Model {
	return &DashboardModel{
		app:     a,
		loading: true,
	}
}

func (m *DashboardModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *DashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		msg := dashboardDataMsg{}

		summary, err := m.app.ReportService.Summary(ctx)
		if err != nil {
			msg.err = fmt.Errorf("summary: %w", err)
			return msg
		}
		msg.summary = summary
		msg.overdue = summary.ByStatus[domain.InvoiceStatusOverdue]

		// Recent invoices, newest first
		recent, err := m.app.ReportService.Filter(ctx, service.FilterCriteria{})
		if err == nil {
			if len(recent) > 8 {
				recent = recent[:8]
			}
			msg.recent = recent
		}

		return msg
	}
}

func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		m.summary = msg.summary
		m.recent = msg.recent
		m.overdue = msg.overdue
		return m, nil

	case RefreshDataMsg:
		m.loading = true
		return m, m.loadData()
	}

	return m, nil
}

func (m *DashboardModel) View() string {
	if m.loading {
		return "Loading dashboard..."
	}

	if m.err != nil {
		return lipgloss.NewStyle().Foreground(errorColor).
			Render(fmt.Sprintf("Error: %v", m.err))
	}

	var s string

	s += fmt.Sprintf(
		"  Invoices:  %-6d  Billed:       %s\n  Overdue:   %-6d  Outstanding:  %s\n",
		m.summary.Count,
		formatMoney(m.summary.TotalBilled),
		m.overdue,
		formatMoney(m.summary.TotalOutstanding),
	)

	s += "\n" + m.renderRecentInvoices()
	return s
}

func (m *DashboardModel) renderRecentInvoices() string {
	header := "  Recent Invoices\n"
	if len(m.recent) == 0 {
		return header + subtitleStyle.Render("  No invoices yet - press [i] then [n] to create one") + "\n"
	}

	s := header
	for _, invoice := range m.recent {
		line := fmt.Sprintf("  %-12s %-20s %-11s %10s  %s\n",
			invoice.Number,
			truncateStr(invoice.Client.Name, 20),
			invoice.CreatedAt.Format("Jan 2 2006"),
			formatMoney(invoice.Totals.GrandTotal),
			statusBadge(invoice.Status),
		)
		s += line
	}

	return s
}

// statusBadge renders a status with its color
func statusBadge(status domain.InvoiceStatus) string {
	switch status {
	case domain.InvoiceStatusPaid:
		return paidStyle.Render(string(status))
	case domain.InvoiceStatusOverdue:
		return overdueStyle.Render(string(status))
	default:
		return subtitleStyle.Render(string(status))
	}
}
