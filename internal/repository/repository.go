package repository

import (
	"context"

	"github.com/andy/billkeep/internal/domain"
)

// Setting is one opaque key/value pair from the settings collection
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// InvoiceRepository manages invoice persistence
type InvoiceRepository interface {
	// Save upserts by ID and refreshes UpdatedAt. Totals are persisted
	// exactly as supplied; the store never recomputes them.
	Save(ctx context.Context, invoice *domain.Invoice) error
	// GetByID returns domain.ErrNotFound for a missing ID
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
	GetByNumber(ctx context.Context, number string) (*domain.Invoice, error)
	// List returns every stored invoice with no ordering guarantee
	List(ctx context.Context) ([]*domain.Invoice, error)
	// Delete hard-removes; deleting a nonexistent ID is a no-op
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// SettingsRepository manages the opaque key-value settings collection
type SettingsRepository interface {
	Set(ctx context.Context, key, value string) error
	// Get returns domain.ErrNotFound for a missing key
	Get(ctx context.Context, key string) (string, error)
	All(ctx context.Context) ([]Setting, error)
}

// TransferRepository applies an imported snapshot to the store. Both modes
// run inside a single transaction so readers never observe a partially
// applied import.
type TransferRepository interface {
	// ReplaceAll clears both collections, then writes the given records
	ReplaceAll(ctx context.Context, invoices []*domain.Invoice, settings []Setting) error
	// MergeAll upserts invoices by ID and settings by key
	MergeAll(ctx context.Context, invoices []*domain.Invoice, settings []Setting) error
}
