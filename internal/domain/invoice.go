package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft    InvoiceStatus = "draft"
	InvoiceStatusSent     InvoiceStatus = "sent"
	InvoiceStatusPaid     InvoiceStatus = "paid"
	InvoiceStatusOverdue  InvoiceStatus = "overdue"
	InvoiceStatusArchived InvoiceStatus = "archived"
)

// AllStatuses lists every invoice status. Aggregations key on this so
// absent statuses report zero rather than a missing entry.
var AllStatuses = []InvoiceStatus{
	InvoiceStatusDraft,
	InvoiceStatusSent,
	InvoiceStatusPaid,
	InvoiceStatusOverdue,
	InvoiceStatusArchived,
}

// Party identifies one side of an invoice (seller or client)
type Party struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// InvoiceItem is a billable line on an invoice. The ID is stable across
// edits and only correlates UI rows; it is never referenced across invoices.
type InvoiceItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	DiscountPct float64 `json:"discountPct,omitempty"`
	TaxRatePct  float64 `json:"taxRatePct,omitempty"`
}

// Payment records money received against an invoice
type Payment struct {
	ID     string    `json:"id"`
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
	Note   string    `json:"note,omitempty"`
}

// Adjustments are invoice-level modifiers applied after item-level figures
type Adjustments struct {
	Shipping          float64 `json:"shipping,omitempty"`
	GlobalDiscountPct float64 `json:"globalDiscountPct,omitempty"`
	GlobalTaxPct      float64 `json:"globalTaxPct,omitempty"`
}

// Totals holds the derived monetary figures. Never hand-edited; always
// produced by ComputeTotals and persisted alongside the invoice.
type Totals struct {
	Subtotal   float64 `json:"subtotal"`
	Tax        float64 `json:"tax"`
	Discount   float64 `json:"discount"`
	GrandTotal float64 `json:"grandTotal"`
	AmountPaid float64 `json:"amountPaid"`
	BalanceDue float64 `json:"balanceDue"`
}

type Invoice struct {
	ID        string        `json:"id"`
	Number    string        `json:"number"`
	Status    InvoiceStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	IssueDate time.Time     `json:"issueDate"`
	DueDate   time.Time     `json:"dueDate"`
	Currency  string        `json:"currency"`

	Seller      Party         `json:"seller"`
	Client      Party         `json:"client"`
	Items       []InvoiceItem `json:"items"`
	Adjustments Adjustments   `json:"adjustments"`
	Payments    []Payment     `json:"payments"`
	Totals      Totals        `json:"totals"`

	Notes string `json:"notes,omitempty"`
	Terms string `json:"terms,omitempty"`
}

// NewInvoice creates a blank draft invoice with the given number and zero totals
func NewInvoice(number string, dueDays int) *Invoice {
	now := time.Now()
	return &Invoice{
		ID:        uuid.NewString(),
		Number:    number,
		Status:    InvoiceStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
		IssueDate: now,
		DueDate:   now.AddDate(0, 0, dueDays),
		Currency:  "USD",
		Items:     make([]InvoiceItem, 0),
		Payments:  make([]Payment, 0),
	}
}

// NewItem creates a line item with a fresh identity
func NewItem(description string, quantity, unitPrice float64) InvoiceItem {
	return InvoiceItem{
		ID:          uuid.NewString(),
		Description: strings.TrimSpace(description),
		Quantity:    quantity,
		UnitPrice:   unitPrice,
	}
}

// NewPayment creates a payment record with a fresh identity
func NewPayment(date time.Time, amount float64, note string) Payment {
	return Payment{
		ID:     uuid.NewString(),
		Date:   date,
		Amount: amount,
		Note:   note,
	}
}

// FormatNumber derives the human-facing invoice number from a sequence value
func FormatNumber(prefix string, seq int) string {
	if prefix == "" {
		prefix = "INV"
	}
	return fmt.Sprintf("%s-%04d", prefix, seq)
}

// CanEdit returns true if the invoice can still be modified
func (i *Invoice) CanEdit() bool {
	return i.Status != InvoiceStatusArchived
}

// IsSettled returns true once nothing is owed on a billed invoice
func (i *Invoice) IsSettled() bool {
	return i.Totals.GrandTotal > 0 && i.Totals.BalanceDue <= 0
}

// Validate checks structural identity only. Numeric ranges (percentages,
// quantities) are deliberately not enforced here; callers constrain input.
func (i *Invoice) Validate() error {
	if i.ID == "" {
		return errors.New("invoice ID is required")
	}
	if i.Number == "" {
		return errors.New("invoice number is required")
	}
	return nil
}
