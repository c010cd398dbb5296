package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/andy/billkeep/internal/app"
	"github.com/andy/billkeep/internal/domain"
	"github.com/andy/billkeep/internal/service"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ReportsModel shows the portfolio summary and the aging report
type ReportsModel struct {
	app *app.App

	summary *service.Summary
	aging   *service.AgingReport

	loading bool
	err     error
}

type reportsDataMsg struct {
	summary *service.Summary
	aging   *service.AgingReport
	err     error
}

// NewReportsModel creates a new reports screen model
func NewReportsModel(a *app.App) tea.Model {
	return &ReportsModel{
		app:     a,
		loading: true,
	}
}

func (m *ReportsModel) Init() tea.Cmd {
	return m.loadData()
}

func (m *ReportsModel) loadData() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		msg := reportsDataMsg{}

		summary, err := m.app.ReportService.Summary(ctx)
		if err != nil {
			msg.err = fmt.Errorf("summary: %w", err)
			return msg
		}
		msg.summary = summary

		aging, err := m.app.ReportService.Aging(ctx, time.Now())
		if err != nil {
			msg.err = fmt.Errorf("aging: %w", err)
			return msg
		}
		msg.aging = aging

		return msg
	}
}

func (m *ReportsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		m.loading = false
		m.err = msg.err
		m.summary = msg.summary
		m.aging = msg.aging
		return m, nil

	case RefreshDataMsg:
		m.loading = true
		return m, m.loadData()
	}

	return m, nil
}

func (m *ReportsModel) View() string {
	if m.loading {
		return "Loading reports..."
	}

	if m.err != nil {
		return lipgloss.NewStyle().Foreground(errorColor).
			Render(fmt.Sprintf("Error: %v", m.err))
	}

	var s string

	s += titleStyle.Render("  Portfolio") + "\n"
	s += fmt.Sprintf("  Invoices: %d   Billed: %s   Paid: %s   Outstanding: %s\n",
		m.summary.Count,
		formatMoney(m.summary.TotalBilled),
		formatMoney(m.summary.TotalPaid),
		formatMoney(m.summary.TotalOutstanding),
	)

	s += "\n  "
	for _, status := range domain.AllStatuses {
		s += fmt.Sprintf("%s: %d   ", status, m.summary.ByStatus[status])
	}
	s += "\n"

	s += "\n" + titleStyle.Render("  Aging") + "\n"
	if len(m.aging.Entries) == 0 {
		s += subtitleStyle.Render("  Nothing outstanding") + "\n"
		return s
	}

	s += fmt.Sprintf("  %-12s %-20s %12s %9s  %s\n", "Number", "Client", "Balance", "Overdue", "Bucket")
	for _, entry := range m.aging.Entries {
		days := fmt.Sprintf("%dd", entry.DaysOverdue)
		if entry.DaysOverdue <= 0 {
			days = "-"
		}
		s += fmt.Sprintf("  %-12s %-20s %12s %9s  %s\n",
			entry.Invoice.Number,
			truncateStr(entry.Invoice.Client.Name, 20),
			formatMoney(entry.Invoice.Totals.BalanceDue),
			days,
			string(entry.Bucket),
		)
	}
	s += fmt.Sprintf("\n  Outstanding: %s\n", balanceStyle.Render(formatMoney(m.aging.OutstandingTotal)))

	return s
}
