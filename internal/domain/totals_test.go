package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotals_ZeroItems(t *testing.T) {
	inv := NewInvoice("INV-0001", 30)

	totals := ComputeTotals(inv)

	assert.Equal(t, Totals{}, totals)
}

func TestComputeTotals_ItemDiscountBeforeItemTax(t *testing.T) {
	// 2 x 100 with 10% discount and 20% tax: tax applies to the
	// discounted 180, not the raw 200
	inv := NewInvoice("INV-0001", 30)
	inv.Items = []InvoiceItem{
		{ID: "a", Description: "consulting", Quantity: 2, UnitPrice: 100, DiscountPct: 10, TaxRatePct: 20},
	}

	totals := ComputeTotals(inv)

	assert.Equal(t, 200.0, totals.Subtotal)
	assert.Equal(t, 20.0, totals.Discount)
	assert.Equal(t, 36.0, totals.Tax)
	assert.Equal(t, 216.0, totals.GrandTotal)
	assert.Equal(t, 216.0, totals.BalanceDue)
}

func TestComputeTotals_GlobalTaxOnShippingInclusiveAmount(t *testing.T) {
	// subtotal 100, 10% global discount, 5 shipping, 10% global tax:
	// tax applies to 95 (discounted plus shipping), giving 104.5
	inv := NewInvoice("INV-0001", 30)
	inv.Items = []InvoiceItem{
		{ID: "a", Description: "widget", Quantity: 1, UnitPrice: 100},
	}
	inv.Adjustments = Adjustments{
		GlobalDiscountPct: 10,
		Shipping:          5,
		GlobalTaxPct:      10,
	}

	totals := ComputeTotals(inv)

	assert.Equal(t, 100.0, totals.Subtotal)
	assert.Equal(t, 10.0, totals.Discount)
	assert.Equal(t, 9.5, totals.Tax)
	assert.Equal(t, 104.5, totals.GrandTotal)
}

func TestComputeTotals_ItemAndGlobalFiguresCombine(t *testing.T) {
	inv := NewInvoice("INV-0001", 30)
	inv.Items = []InvoiceItem{
		{ID: "a", Description: "design", Quantity: 2, UnitPrice: 100, DiscountPct: 10, TaxRatePct: 20},
		{ID: "b", Description: "hosting", Quantity: 1, UnitPrice: 50},
	}
	inv.Adjustments = Adjustments{GlobalDiscountPct: 10, Shipping: 10, GlobalTaxPct: 5}

	totals := ComputeTotals(inv)

	// subtotal 250, item discount 20, global discount 23 (10% of 230)
	assert.Equal(t, 250.0, totals.Subtotal)
	assert.Equal(t, 43.0, totals.Discount)
	// item tax 36 on the item-discounted 180; global tax 5% of (207+10)
	assert.InDelta(t, 36.0+10.85, totals.Tax, 1e-12)
	assert.InDelta(t, 217.0+46.85, totals.GrandTotal, 1e-12)
}

func TestComputeTotals_BalanceIdentity(t *testing.T) {
	inv := NewInvoice("INV-0001", 30)
	inv.Items = []InvoiceItem{
		{ID: "a", Description: "work", Quantity: 3, UnitPrice: 33.33},
	}
	inv.Payments = []Payment{
		{ID: "p1", Date: time.Now(), Amount: 40},
		{ID: "p2", Date: time.Now(), Amount: 70.55},
	}

	totals := ComputeTotals(inv)

	assert.Equal(t, totals.GrandTotal-totals.AmountPaid, totals.BalanceDue)
}

func TestComputeTotals_OverpaymentYieldsNegativeBalance(t *testing.T) {
	inv := NewInvoice("INV-0001", 30)
	inv.Items = []InvoiceItem{
		{ID: "a", Description: "work", Quantity: 1, UnitPrice: 100},
	}
	inv.Payments = []Payment{
		{ID: "p1", Date: time.Now(), Amount: 150},
	}

	totals := ComputeTotals(inv)

	assert.Equal(t, 100.0, totals.GrandTotal)
	assert.Equal(t, 150.0, totals.AmountPaid)
	assert.Equal(t, -50.0, totals.BalanceDue)
}

func TestComputeTotals_Idempotent(t *testing.T) {
	inv := NewInvoice("INV-0001", 30)
	inv.Items = []InvoiceItem{
		{ID: "a", Description: "odd amounts", Quantity: 7, UnitPrice: 14.31, DiscountPct: 3.5, TaxRatePct: 8.25},
	}
	inv.Adjustments = Adjustments{GlobalDiscountPct: 2.5, Shipping: 12.34, GlobalTaxPct: 6.125}
	inv.Payments = []Payment{{ID: "p1", Date: time.Now(), Amount: 19.99}}

	first := ComputeTotals(inv)
	second := ComputeTotals(inv)

	// Bit-identical, not merely close
	assert.Equal(t, first, second)
}

func TestComputeTotals_DoesNotMutateInput(t *testing.T) {
	inv := NewInvoice("INV-0001", 30)
	inv.Items = []InvoiceItem{
		{ID: "a", Description: "work", Quantity: 2, UnitPrice: 50, DiscountPct: 10},
	}
	before := *inv
	beforeItems := append([]InvoiceItem(nil), inv.Items...)

	ComputeTotals(inv)

	assert.Equal(t, before.Totals, inv.Totals)
	assert.Equal(t, beforeItems, inv.Items)
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name   string
		prev   InvoiceStatus
		totals Totals
		want   InvoiceStatus
	}{
		{"settled sent invoice becomes paid", InvoiceStatusSent, Totals{GrandTotal: 100, BalanceDue: 0}, InvoiceStatusPaid},
		{"overpaid invoice becomes paid", InvoiceStatusSent, Totals{GrandTotal: 100, BalanceDue: -20}, InvoiceStatusPaid},
		{"paid invoice reverts to sent when balance reopens", InvoiceStatusPaid, Totals{GrandTotal: 150, BalanceDue: 50}, InvoiceStatusSent},
		{"open sent invoice stays sent", InvoiceStatusSent, Totals{GrandTotal: 100, BalanceDue: 100}, InvoiceStatusSent},
		{"empty draft stays draft", InvoiceStatusDraft, Totals{}, InvoiceStatusDraft},
		{"archived never transitions", InvoiceStatusArchived, Totals{GrandTotal: 100, BalanceDue: 0}, InvoiceStatusArchived},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.prev, tt.totals))
		})
	}
}

func TestNewInvoice(t *testing.T) {
	inv := NewInvoice("INV-0042", 14)

	require.NoError(t, inv.Validate())
	assert.NotEmpty(t, inv.ID)
	assert.Equal(t, "INV-0042", inv.Number)
	assert.Equal(t, InvoiceStatusDraft, inv.Status)
	assert.Equal(t, Totals{}, inv.Totals)
	assert.Equal(t, inv.IssueDate.AddDate(0, 0, 14), inv.DueDate)
	assert.Empty(t, inv.Items)
	assert.Empty(t, inv.Payments)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "INV-0001", FormatNumber("INV", 1))
	assert.Equal(t, "ACME-0123", FormatNumber("ACME", 123))
	assert.Equal(t, "INV-12345", FormatNumber("", 12345))
}
