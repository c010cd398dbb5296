package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy/billkeep/internal/db"
	"github.com/andy/billkeep/internal/domain"
)

func newTestDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"), "test-key")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations())
	t.Cleanup(func() { database.Close() })

	return database
}

func TestInvoiceRepo_SaveAndGet(t *testing.T) {
	repo := NewInvoiceRepo(newTestDB(t))
	ctx := context.Background()

	invoice := domain.NewInvoice("INV-0001", 30)
	invoice.Client.Name = "Acme Corp"
	invoice.Items = []domain.InvoiceItem{
		{ID: "i1", Description: "design", Quantity: 2, UnitPrice: 150},
	}
	invoice.Totals = domain.Totals{Subtotal: 300, GrandTotal: 300, BalanceDue: 300}
	before := invoice.UpdatedAt

	require.NoError(t, repo.Save(ctx, invoice))
	assert.False(t, invoice.UpdatedAt.Before(before))

	got, err := repo.GetByID(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.Number, got.Number)
	assert.Equal(t, "Acme Corp", got.Client.Name)
	assert.Equal(t, invoice.Items, got.Items)
	assert.Equal(t, invoice.Totals, got.Totals)
	assert.WithinDuration(t, invoice.UpdatedAt, got.UpdatedAt, time.Millisecond)
}

func TestInvoiceRepo_GetByIDNotFound(t *testing.T) {
	repo := NewInvoiceRepo(newTestDB(t))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInvoiceRepo_FailedSaveLeavesInvoiceUntouched(t *testing.T) {
	database := newTestDB(t)
	repo := NewInvoiceRepo(database)

	invoice := domain.NewInvoice("INV-0001", 30)
	before := invoice.UpdatedAt

	require.NoError(t, database.Close())

	err := repo.Save(context.Background(), invoice)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)

	// The caller's timestamp must not claim a write that never happened
	assert.Equal(t, before, invoice.UpdatedAt)
}
