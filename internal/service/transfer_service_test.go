package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy/billkeep/internal/domain"
	"github.com/andy/billkeep/internal/repository"
)

func newTransferService(store *memStore) TransferService {
	return NewTransferService(store, store, store, zerolog.Nop())
}

func TestExport_ProducesVersionedSnapshot(t *testing.T) {
	store := newMemStore()
	storedInvoice(store, "a", "INV-0001", domain.InvoiceStatusSent)
	store.settings["invoicePrefix"] = "INV"

	svc := newTransferService(store)

	data, err := svc.Export(context.Background())
	require.NoError(t, err)

	var snapshot Snapshot
	require.NoError(t, json.Unmarshal(data, &snapshot))
	assert.Equal(t, SnapshotFormatVersion, snapshot.FormatVersion)
	assert.NotEmpty(t, snapshot.ExportedAt)
	require.Len(t, snapshot.Invoices, 1)
	assert.Equal(t, "INV-0001", snapshot.Invoices[0].Number)
	assert.Equal(t, []repository.Setting{{Key: "invoicePrefix", Value: "INV"}}, snapshot.Settings)
}

func TestExportImport_RoundTrip(t *testing.T) {
	source := newMemStore()
	invoice := storedInvoice(source, "a", "INV-0001", domain.InvoiceStatusSent)
	invoice.Client.Name = "Acme Corp"
	invoice.Items = []domain.InvoiceItem{
		{ID: "i1", Description: "design", Quantity: 2, UnitPrice: 150},
	}
	invoice.Totals = domain.Totals{Subtotal: 300, GrandTotal: 300, BalanceDue: 300}
	source.settings["invoicePrefix"] = "INV"

	data, err := newTransferService(source).Export(context.Background())
	require.NoError(t, err)

	dest := newMemStore()
	count, err := newTransferService(dest).Import(context.Background(), data, false)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	restored, err := dest.GetByID(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", restored.Client.Name)
	assert.Equal(t, invoice.Items, restored.Items)
	assert.Equal(t, invoice.Totals, restored.Totals)

	prefix, err := dest.Get(context.Background(), "invoicePrefix")
	require.NoError(t, err)
	assert.Equal(t, "INV", prefix)
}

func TestImport_ReplaceClearsExisting(t *testing.T) {
	store := newMemStore()
	storedInvoice(store, "existing", "INV-0001", domain.InvoiceStatusPaid)
	store.settings["stale"] = "value"

	incoming := domain.NewInvoice("INV-0009", 30)
	incoming.ID = "incoming"
	snapshot := Snapshot{
		FormatVersion: SnapshotFormatVersion,
		Invoices:      []*domain.Invoice{incoming},
	}
	data, err := json.Marshal(snapshot)
	require.NoError(t, err)

	count, err := newTransferService(store).Import(context.Background(), data, false)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = store.GetByID(context.Background(), "existing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.Get(context.Background(), "stale")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = store.GetByID(context.Background(), "incoming")
	assert.NoError(t, err)
}

func TestImport_MergeUpserts(t *testing.T) {
	store := newMemStore()
	kept := storedInvoice(store, "kept", "INV-0001", domain.InvoiceStatusPaid)
	existing := storedInvoice(store, "shared", "INV-0002", domain.InvoiceStatusDraft)
	existing.Notes = "before"

	updated := domain.NewInvoice("INV-0002", 30)
	updated.ID = "shared"
	updated.Notes = "after"
	fresh := domain.NewInvoice("INV-0003", 30)
	fresh.ID = "fresh"

	snapshot := Snapshot{
		FormatVersion: SnapshotFormatVersion,
		Invoices:      []*domain.Invoice{updated, fresh},
		Settings:      []repository.Setting{{Key: "invoicePrefix", Value: "ACME"}},
	}
	data, err := json.Marshal(snapshot)
	require.NoError(t, err)

	count, err := newTransferService(store).Import(context.Background(), data, true)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got, err := store.GetByID(context.Background(), "kept")
	require.NoError(t, err)
	assert.Equal(t, kept.Number, got.Number)

	got, err = store.GetByID(context.Background(), "shared")
	require.NoError(t, err)
	assert.Equal(t, "after", got.Notes)

	_, err = store.GetByID(context.Background(), "fresh")
	assert.NoError(t, err)

	prefix, err := store.Get(context.Background(), "invoicePrefix")
	require.NoError(t, err)
	assert.Equal(t, "ACME", prefix)
}

func TestImport_NullInvoiceEntryAborts(t *testing.T) {
	store := newMemStore()
	storedInvoice(store, "existing", "INV-0001", domain.InvoiceStatusSent)
	svc := newTransferService(store)

	// Parses fine as JSON but yields a nil pointer in the invoice slice
	_, err := svc.Import(context.Background(), []byte(`{"formatVersion":1,"invoices":[null]}`), false)
	assert.ErrorIs(t, err, domain.ErrMalformedImport)

	_, err = svc.Import(context.Background(), []byte(`{"formatVersion":1,"invoices":[{"id":"a","number":"INV-0002"},null]}`), true)
	assert.ErrorIs(t, err, domain.ErrMalformedImport)

	// The store is untouched in both modes
	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	_, err = store.GetByID(context.Background(), "existing")
	assert.NoError(t, err)
}

func TestImport_MalformedDocumentAborts(t *testing.T) {
	store := newMemStore()
	storedInvoice(store, "existing", "INV-0001", domain.InvoiceStatusSent)
	svc := newTransferService(store)

	_, err := svc.Import(context.Background(), []byte("{not json"), false)
	assert.ErrorIs(t, err, domain.ErrMalformedImport)

	// Missing formatVersion is rejected the same way
	_, err = svc.Import(context.Background(), []byte(`{"invoices":[]}`), false)
	assert.ErrorIs(t, err, domain.ErrMalformedImport)

	// Nothing was touched
	_, err = store.GetByID(context.Background(), "existing")
	assert.NoError(t, err)
	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
