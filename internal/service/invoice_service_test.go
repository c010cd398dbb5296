package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy/billkeep/internal/domain"
)

func TestCreateDraft(t *testing.T) {
	store := newMemStore()
	svc := NewInvoiceService(store, zerolog.Nop())

	invoice, err := svc.CreateDraft(context.Background(), "INV", 30)
	require.NoError(t, err)

	assert.Equal(t, "INV-0001", invoice.Number)
	assert.Equal(t, domain.InvoiceStatusDraft, invoice.Status)
	assert.Equal(t, domain.Totals{}, invoice.Totals)

	stored, err := store.GetByID(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.Number, stored.Number)
}

func TestNextSequence(t *testing.T) {
	store := newMemStore()
	storedInvoice(store, "a", "INV-0001", domain.InvoiceStatusSent)
	storedInvoice(store, "b", "INV-0002", domain.InvoiceStatusDraft)
	svc := NewInvoiceService(store, zerolog.Nop())

	seq, err := svc.NextSequence(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, seq)
}

func TestSave_RecomputesTotals(t *testing.T) {
	store := newMemStore()
	svc := NewInvoiceService(store, zerolog.Nop())

	invoice := domain.NewInvoice("INV-0001", 30)
	invoice.Items = []domain.InvoiceItem{
		{ID: "a", Description: "work", Quantity: 1, UnitPrice: 100},
	}
	// Stale figures supplied by the caller must be overwritten on save
	invoice.Totals = domain.Totals{GrandTotal: 9999}

	require.NoError(t, svc.Save(context.Background(), invoice))

	assert.Equal(t, 100.0, invoice.Totals.GrandTotal)
	assert.Equal(t, 100.0, invoice.Totals.BalanceDue)

	stored, err := store.GetByID(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, stored.Totals.GrandTotal)
}

func TestSave_SettledInvoiceBecomesPaid(t *testing.T) {
	store := newMemStore()
	svc := NewInvoiceService(store, zerolog.Nop())

	invoice := domain.NewInvoice("INV-0001", 30)
	invoice.Status = domain.InvoiceStatusSent
	invoice.Items = []domain.InvoiceItem{
		{ID: "a", Description: "work", Quantity: 1, UnitPrice: 100},
	}
	invoice.Payments = []domain.Payment{
		{ID: "p1", Date: time.Now(), Amount: 100},
	}

	require.NoError(t, svc.Save(context.Background(), invoice))

	assert.Equal(t, domain.InvoiceStatusPaid, invoice.Status)
}

func TestSave_ReopenedBalanceRevertsToSent(t *testing.T) {
	store := newMemStore()
	svc := NewInvoiceService(store, zerolog.Nop())

	invoice := domain.NewInvoice("INV-0001", 30)
	invoice.Status = domain.InvoiceStatusPaid
	invoice.Items = []domain.InvoiceItem{
		{ID: "a", Description: "work", Quantity: 1, UnitPrice: 100},
	}
	invoice.Payments = []domain.Payment{
		{ID: "p1", Date: time.Now(), Amount: 40},
	}

	require.NoError(t, svc.Save(context.Background(), invoice))

	assert.Equal(t, domain.InvoiceStatusSent, invoice.Status)
}

func TestDuplicate(t *testing.T) {
	store := newMemStore()
	svc := NewInvoiceService(store, zerolog.Nop())

	original := domain.NewInvoice("INV-0007", 30)
	original.ID = "orig"
	original.Status = domain.InvoiceStatusPaid
	original.Items = []domain.InvoiceItem{
		{ID: "a", Description: "design", Quantity: 5, UnitPrice: 100},
	}
	original.Payments = []domain.Payment{
		{ID: "p1", Date: time.Now(), Amount: 200},
	}
	// Deliberately stale vis-a-vis the items: carried over verbatim
	original.Totals = domain.Totals{
		Subtotal:   450,
		GrandTotal: 500,
		AmountPaid: 200,
		BalanceDue: 300,
	}
	store.invoices["orig"] = original

	dup, err := svc.Duplicate(context.Background(), "orig")
	require.NoError(t, err)

	assert.NotEqual(t, original.ID, dup.ID)
	assert.Equal(t, "INV-0002", dup.Number)
	assert.Equal(t, domain.InvoiceStatusDraft, dup.Status)
	assert.Empty(t, dup.Payments)

	// Totals are inherited, not recomputed; only the payment-derived
	// fields reset
	assert.Equal(t, 450.0, dup.Totals.Subtotal)
	assert.Equal(t, 500.0, dup.Totals.GrandTotal)
	assert.Equal(t, 0.0, dup.Totals.AmountPaid)
	assert.Equal(t, 500.0, dup.Totals.BalanceDue)

	// Items are an independent copy
	require.Len(t, dup.Items, 1)
	dup.Items[0].Description = "changed"
	assert.Equal(t, "design", original.Items[0].Description)

	_, err = store.GetByID(context.Background(), dup.ID)
	assert.NoError(t, err)
}

func TestDuplicate_NotFound(t *testing.T) {
	store := newMemStore()
	svc := NewInvoiceService(store, zerolog.Nop())

	_, err := svc.Duplicate(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete(t *testing.T) {
	store := newMemStore()
	storedInvoice(store, "a", "INV-0001", domain.InvoiceStatusDraft)
	svc := NewInvoiceService(store, zerolog.Nop())

	require.NoError(t, svc.Delete(context.Background(), "a"))

	_, err := store.GetByID(context.Background(), "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMarkOverdue(t *testing.T) {
	store := newMemStore()
	asOf := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	pastDue := storedInvoice(store, "past", "INV-0001", domain.InvoiceStatusSent)
	pastDue.DueDate = asOf.AddDate(0, 0, -10)
	pastDue.Totals.BalanceDue = 100

	settled := storedInvoice(store, "settled", "INV-0002", domain.InvoiceStatusSent)
	settled.DueDate = asOf.AddDate(0, 0, -10)
	settled.Totals.BalanceDue = 0

	future := storedInvoice(store, "future", "INV-0003", domain.InvoiceStatusSent)
	future.DueDate = asOf.AddDate(0, 0, 10)
	future.Totals.BalanceDue = 100

	draft := storedInvoice(store, "draft", "INV-0004", domain.InvoiceStatusDraft)
	draft.DueDate = asOf.AddDate(0, 0, -10)
	draft.Totals.BalanceDue = 100

	svc := NewInvoiceService(store, zerolog.Nop())

	flipped, err := svc.MarkOverdue(context.Background(), asOf)
	require.NoError(t, err)
	assert.Equal(t, 1, flipped)

	got, err := store.GetByID(context.Background(), "past")
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusOverdue, got.Status)

	for _, id := range []string{"settled", "future", "draft"} {
		got, err := store.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.NotEqual(t, domain.InvoiceStatusOverdue, got.Status, id)
	}
}
