package tui

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/andy/billkeep/internal/app"
	"github.com/andy/billkeep/internal/domain"
	"github.com/andy/billkeep/internal/service"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// invoicesMode is the sub-state of the invoices screen
type invoicesMode int

const (
	invoicesModeList invoicesMode = iota
	invoicesModeDetail
	invoicesModeSearch
	invoicesModePay
	invoicesModeConfirmDelete
)

// statusFilters cycles through with left/right; empty means all
var statusFilters = []string{"", "draft", "sent", "paid", "overdue", "archived"}

// InvoicesModel lists invoices and drives their lifecycle actions
type InvoicesModel struct {
	app *app.App

	invoices    []*domain.Invoice
	cursor      int
	mode        invoicesMode
	statusIdx   int
	searchQuery string

	searchInput textinput.Model
	payInput    textinput.Model

	status  string // transient action feedback
	loading bool
	err     error
}

type invoicesDataMsg struct {
	invoices []*domain.Invoice
	err      error
}

type invoiceActionMsg struct {
	status string
	err    error
}

// NewInvoicesModel creates a new invoices screen model
func NewInvoicesModel(a *app.App) tea.Model {
	search := textinput.New()
	search.Placeholder = "number, client, notes..."
	search.CharLimit = 60

	pay := textinput.New()
	pay.Placeholder = "amount"
	pay.CharLimit = 12

	return &InvoicesModel{
		app:         a,
		loading:     true,
		searchInput: search,
		payInput:    pay,
	}
}

func (m *InvoicesModel) Init() tea.Cmd {
	return m.loadData()
}

// IsCapturingInput implements InputCapturer
func (m *InvoicesModel) IsCapturingInput() bool {
	return m.mode == invoicesModeSearch || m.mode == invoicesModePay || m.mode == invoicesModeConfirmDelete
}

func (m *InvoicesModel) criteria() service.FilterCriteria {
	criteria := service.FilterCriteria{Search: m.searchQuery}
	if status := statusFilters[m.statusIdx]; status != "" {
		criteria.Statuses = []domain.InvoiceStatus{domain.InvoiceStatus(status)}
	}
	return criteria
}

func (m *InvoicesModel) loadData() tea.Cmd {
	criteria := m.criteria()
	return func() tea.Msg {
		invoices, err := m.app.ReportService.Filter(context.Background(), criteria)
		return invoicesDataMsg{invoices: invoices, err: err}
	}
}

func (m *InvoicesModel) selected() *domain.Invoice {
	if m.cursor < 0 || m.cursor >= len(m.invoices) {
		return nil
	}
	return m.invoices[m.cursor]
}

func (m *InvoicesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case invoicesDataMsg:
		m.loading = false
		m.err = msg.err
		m.invoices = msg.invoices
		if m.cursor >= len(m.invoices) {
			m.cursor = len(m.invoices) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, nil

	case invoiceActionMsg:
		m.status = msg.status
		m.err = msg.err
		return m, m.loadData()

	case RefreshDataMsg:
		m.loading = true
		return m, m.loadData()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *InvoicesModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case invoicesModeSearch:
		switch msg.String() {
		case "enter":
			m.searchQuery = m.searchInput.Value()
			m.mode = invoicesModeList
			m.searchInput.Blur()
			return m, m.loadData()
		case "esc":
			m.mode = invoicesModeList
			m.searchInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd

	case invoicesModePay:
		switch msg.String() {
		case "enter":
			amount, err := strconv.ParseFloat(m.payInput.Value(), 64)
			m.mode = invoicesModeList
			m.payInput.Blur()
			if err != nil {
				m.err = fmt.Errorf("invalid amount: %w", err)
				return m, nil
			}
			return m, m.recordPayment(amount)
		case "esc":
			m.mode = invoicesModeList
			m.payInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.payInput, cmd = m.payInput.Update(msg)
		return m, cmd

	case invoicesModeConfirmDelete:
		switch msg.String() {
		case "y", "Y":
			m.mode = invoicesModeList
			return m, m.deleteSelected()
		default:
			m.mode = invoicesModeList
			m.status = "Delete cancelled"
			return m, nil
		}

	case invoicesModeDetail:
		if key.Matches(msg, DefaultKeyMap.Back) {
			m.mode = invoicesModeList
		}
		return m, nil
	}

	// List mode
	switch {
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, DefaultKeyMap.Down):
		if m.cursor < len(m.invoices)-1 {
			m.cursor++
		}
	case key.Matches(msg, DefaultKeyMap.Left):
		m.statusIdx = (m.statusIdx + len(statusFilters) - 1) % len(statusFilters)
		return m, m.loadData()
	case key.Matches(msg, DefaultKeyMap.Right):
		m.statusIdx = (m.statusIdx + 1) % len(statusFilters)
		return m, m.loadData()
	case key.Matches(msg, DefaultKeyMap.Filter):
		m.mode = invoicesModeSearch
		m.searchInput.SetValue(m.searchQuery)
		m.searchInput.Focus()
		return m, textinput.Blink
	case key.Matches(msg, DefaultKeyMap.Select):
		if m.selected() != nil {
			m.mode = invoicesModeDetail
		}
	case key.Matches(msg, DefaultKeyMap.New):
		return m, m.createDraft()
	case key.Matches(msg, DefaultKeyMap.Duplicate):
		if m.selected() != nil {
			return m, m.duplicateSelected()
		}
	case key.Matches(msg, DefaultKeyMap.Pay):
		if m.selected() != nil {
			m.mode = invoicesModePay
			m.payInput.SetValue("")
			m.payInput.Focus()
			return m, textinput.Blink
		}
	case key.Matches(msg, DefaultKeyMap.Delete):
		if m.selected() != nil {
			m.mode = invoicesModeConfirmDelete
		}
	}

	return m, nil
}

func (m *InvoicesModel) createDraft() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		cfg := m.app.Config.Invoice

		invoice, err := m.app.InvoiceService.CreateDraft(ctx, cfg.NumberPrefix, cfg.DefaultDueDays)
		if err != nil {
			return invoiceActionMsg{err: err}
		}

		invoice.Currency = cfg.Currency
		invoice.Seller = m.app.SellerParty()
		if err := m.app.InvoiceService.Save(ctx, invoice); err != nil {
			return invoiceActionMsg{err: err}
		}

		_ = m.app.SettingsRepo.Set(ctx, "lastInvoiceID", invoice.ID)
		return invoiceActionMsg{status: fmt.Sprintf("Created %s", invoice.Number)}
	}
}

func (m *InvoicesModel) duplicateSelected() tea.Cmd {
	invoice := m.selected()
	return func() tea.Msg {
		dup, err := m.app.InvoiceService.Duplicate(context.Background(), invoice.ID)
		if err != nil {
			return invoiceActionMsg{err: err}
		}
		return invoiceActionMsg{status: fmt.Sprintf("Duplicated %s as %s", invoice.Number, dup.Number)}
	}
}

func (m *InvoicesModel) deleteSelected() tea.Cmd {
	invoice := m.selected()
	return func() tea.Msg {
		if err := m.app.InvoiceService.Delete(context.Background(), invoice.ID); err != nil {
			return invoiceActionMsg{err: err}
		}
		return invoiceActionMsg{status: fmt.Sprintf("Deleted %s", invoice.Number)}
	}
}

func (m *InvoicesModel) recordPayment(amount float64) tea.Cmd {
	invoice := m.selected()
	return func() tea.Msg {
		invoice.Payments = append(invoice.Payments, domain.NewPayment(time.Now(), amount, ""))
		if err := m.app.InvoiceService.Save(context.Background(), invoice); err != nil {
			return invoiceActionMsg{err: err}
		}
		return invoiceActionMsg{status: fmt.Sprintf("Recorded %s on %s", formatMoney(amount), invoice.Number)}
	}
}

func (m *InvoicesModel) View() string {
	if m.loading {
		return "Loading invoices..."
	}

	if m.mode == invoicesModeDetail {
		return m.renderDetail()
	}

	var s string

	filterLabel := statusFilters[m.statusIdx]
	if filterLabel == "" {
		filterLabel = "all"
	}
	s += fmt.Sprintf("  Status: %s", selectedStyle.Render(" "+filterLabel+" "))
	if m.searchQuery != "" {
		s += fmt.Sprintf("   Search: %q", m.searchQuery)
	}
	s += "\n\n"

	switch m.mode {
	case invoicesModeSearch:
		s += "  Search: " + m.searchInput.View() + "\n\n"
	case invoicesModePay:
		if invoice := m.selected(); invoice != nil {
			s += fmt.Sprintf("  Payment on %s: %s\n\n", invoice.Number, m.payInput.View())
		}
	case invoicesModeConfirmDelete:
		if invoice := m.selected(); invoice != nil {
			s += lipgloss.NewStyle().Foreground(warningColor).
				Render(fmt.Sprintf("  Delete %s permanently? [y/N]", invoice.Number)) + "\n\n"
		}
	}

	if len(m.invoices) == 0 {
		s += subtitleStyle.Render("  No invoices - press [n] to create one") + "\n"
	} else {
		s += fmt.Sprintf("    %-12s %-20s %-11s %12s %12s  %s\n",
			"Number", "Client", "Created", "Total", "Balance", "Status")
		for i, invoice := range m.invoices {
			marker := "  "
			if i == m.cursor {
				marker = titleStyle.Render("> ")
			}
			s += fmt.Sprintf("  %s%-12s %-20s %-11s %12s %12s  %s\n",
				marker,
				invoice.Number,
				truncateStr(invoice.Client.Name, 20),
				invoice.CreatedAt.Format("2006-01-02"),
				formatMoney(invoice.Totals.GrandTotal),
				formatMoney(invoice.Totals.BalanceDue),
				statusBadge(invoice.Status),
			)
		}
	}

	if m.status != "" {
		s += "\n" + helpStyle.Render("  "+m.status)
	}

	s += "\n" + helpStyle.Render("  [n]ew  [enter] detail  [c]opy  [p]ay  [d]elete  [/] search  [←/→] status")
	return s
}

func (m *InvoicesModel) renderDetail() string {
	invoice := m.selected()
	if invoice == nil {
		return "No invoice selected"
	}

	var s string
	s += fmt.Sprintf("  %s  %s\n", titleStyle.Render(invoice.Number), statusBadge(invoice.Status))
	if invoice.Client.Name != "" {
		s += fmt.Sprintf("  Client: %s\n", invoice.Client.Name)
	}
	s += fmt.Sprintf("  Issued: %s   Due: %s\n\n",
		invoice.IssueDate.Format("2006-01-02"),
		invoice.DueDate.Format("2006-01-02"),
	)

	if len(invoice.Items) == 0 {
		s += subtitleStyle.Render("  No line items") + "\n"
	} else {
		s += fmt.Sprintf("  %-28s %8s %10s %7s %7s\n", "Description", "Qty", "Price", "Disc%", "Tax%")
		for _, item := range invoice.Items {
			s += fmt.Sprintf("  %-28s %8.2f %10.2f %7.2f %7.2f\n",
				truncateStr(item.Description, 28),
				item.Quantity,
				item.UnitPrice,
				item.DiscountPct,
				item.TaxRatePct,
			)
		}
	}

	if len(invoice.Payments) > 0 {
		s += "\n"
		for _, p := range invoice.Payments {
			s += fmt.Sprintf("  Payment %s  %s  %s\n",
				p.Date.Format("2006-01-02"), formatMoney(p.Amount), p.Note)
		}
	}

	t := invoice.Totals
	s += "\n"
	s += fmt.Sprintf("  Subtotal: %12s\n", formatMoney(t.Subtotal))
	s += fmt.Sprintf("  Discount: %12s\n", formatMoney(t.Discount))
	s += fmt.Sprintf("  Tax:      %12s\n", formatMoney(t.Tax))
	s += fmt.Sprintf("  Total:    %12s\n", formatMoney(t.GrandTotal))
	s += fmt.Sprintf("  Paid:     %12s\n", formatMoney(t.AmountPaid))
	s += fmt.Sprintf("  Balance:  %s\n", balanceStyle.Render(formatMoney(t.BalanceDue)))

	s += "\n" + helpStyle.Render("  [esc] back to list")
	return s
}
