package repository

import (
	"context"
	"fmt"

	"github.com/andy/billkeep/internal/db"
	"github.com/andy/billkeep/internal/domain"
)

// TransferRepo applies imported snapshots to the SQLite store. Each mode
// runs in one transaction: a mid-import failure rolls back completely and
// readers never see a partially cleared or partially written state.
type TransferRepo struct {
	db *db.DB
}

// NewTransferRepo creates a new TransferRepo
func NewTransferRepo(database *db.DB) *TransferRepo {
	return &TransferRepo{db: database}
}

// ReplaceAll clears both collections and writes the imported records
func (r *TransferRepo) ReplaceAll(ctx context.Context, invoices []*domain.Invoice, settings []Setting) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapStorage("failed to begin import transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM invoices"); err != nil {
		return wrapStorage("failed to clear invoices", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM settings"); err != nil {
		return wrapStorage("failed to clear settings", err)
	}

	if err := writeAll(ctx, tx, invoices, settings); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return wrapStorage("failed to commit import", err)
	}
	return nil
}

// MergeAll upserts imported invoices by ID and settings by key. Matching
// records are silently overwritten; there is no field-level merge.
func (r *TransferRepo) MergeAll(ctx context.Context, invoices []*domain.Invoice, settings []Setting) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapStorage("failed to begin import transaction", err)
	}
	defer tx.Rollback()

	if err := writeAll(ctx, tx, invoices, settings); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return wrapStorage("failed to commit import", err)
	}
	return nil
}

// writeAll upserts the snapshot contents through the transaction. Invoice
// records are written as-is, even when fields are missing; import does not
// validate them.
func writeAll(ctx context.Context, tx execer, invoices []*domain.Invoice, settings []Setting) error {
	for _, invoice := range invoices {
		if err := upsertInvoice(ctx, tx, invoice); err != nil {
			return fmt.Errorf("failed to import invoice %s: %w", invoice.ID, err)
		}
	}
	for _, s := range settings {
		if _, err := tx.ExecContext(ctx, upsertSettingSQL, s.Key, s.Value); err != nil {
			return wrapStorage("failed to import setting", err)
		}
	}
	return nil
}
