package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andy/billkeep/internal/db"
	"github.com/andy/billkeep/internal/domain"
)

// InvoiceRepo is a SQLite implementation of InvoiceRepository
type InvoiceRepo struct {
	db *db.DB
}

// NewInvoiceRepo creates a new InvoiceRepo
func NewInvoiceRepo(database *db.DB) *InvoiceRepo {
	return &InvoiceRepo{db: database}
}

const invoiceColumns = `id, invoice_number, status, created_at, updated_at,
       issue_date, due_date, currency, seller, client,
       items, adjustments, payments, totals, notes, terms`

const upsertInvoiceSQL = `
	INSERT INTO invoices (
		id, invoice_number, status, created_at, updated_at,
		issue_date, due_date, currency, seller, client,
		items, adjustments, payments, totals, notes, terms
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		invoice_number = excluded.invoice_number,
		status = excluded.status,
		updated_at = excluded.updated_at,
		issue_date = excluded.issue_date,
		due_date = excluded.due_date,
		currency = excluded.currency,
		seller = excluded.seller,
		client = excluded.client,
		items = excluded.items,
		adjustments = excluded.adjustments,
		payments = excluded.payments,
		totals = excluded.totals,
		notes = excluded.notes,
		terms = excluded.terms
`

// execer covers *sql.DB and *sql.Tx so the transfer repository can reuse
// the same upsert inside a transaction
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// upsertInvoice writes one invoice through the given executor
func upsertInvoice(ctx context.Context, e execer, invoice *domain.Invoice) error {
	seller, err := marshalDoc(invoice.Seller)
	if err != nil {
		return err
	}
	client, err := marshalDoc(invoice.Client)
	if err != nil {
		return err
	}
	items, err := marshalDoc(invoice.Items)
	if err != nil {
		return err
	}
	adjustments, err := marshalDoc(invoice.Adjustments)
	if err != nil {
		return err
	}
	payments, err := marshalDoc(invoice.Payments)
	if err != nil {
		return err
	}
	totals, err := marshalDoc(invoice.Totals)
	if err != nil {
		return err
	}

	_, err = e.ExecContext(ctx, upsertInvoiceSQL,
		invoice.ID,
		invoice.Number,
		string(invoice.Status),
		invoice.CreatedAt.Format(timeLayout),
		invoice.UpdatedAt.Format(timeLayout),
		invoice.IssueDate.Format(timeLayout),
		invoice.DueDate.Format(timeLayout),
		invoice.Currency,
		seller,
		client,
		items,
		adjustments,
		payments,
		totals,
		invoice.Notes,
		invoice.Terms,
	)
	if err != nil {
		return wrapStorage("failed to save invoice", err)
	}
	return nil
}

// Save upserts an invoice and refreshes its UpdatedAt timestamp. Totals
// are written exactly as supplied; callers run the totals engine first.
func (r *InvoiceRepo) Save(ctx context.Context, invoice *domain.Invoice) error {
	if err := invoice.Validate(); err != nil {
		return fmt.Errorf("invalid invoice: %w", err)
	}

	// Stamp a copy so a failed write leaves the caller's invoice as it was
	stamped := *invoice
	stamped.UpdatedAt = time.Now()
	if err := upsertInvoice(ctx, r.db, &stamped); err != nil {
		return err
	}

	invoice.UpdatedAt = stamped.UpdatedAt
	return nil
}

// GetByID retrieves an invoice by ID
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	query := "SELECT " + invoiceColumns + " FROM invoices WHERE id = ?"

	invoice, err := scanInvoiceRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("invoice %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return invoice, nil
}

// GetByNumber retrieves an invoice by its human-facing number
func (r *InvoiceRepo) GetByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	query := "SELECT " + invoiceColumns + " FROM invoices WHERE invoice_number = ?"

	invoice, err := scanInvoiceRow(r.db.QueryRowContext(ctx, query, number))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("invoice %s: %w", number, domain.ErrNotFound)
		}
		return nil, err
	}
	return invoice, nil
}

// List retrieves every stored invoice. No ordering guarantee beyond what
// the query layer imposes.
func (r *InvoiceRepo) List(ctx context.Context) ([]*domain.Invoice, error) {
	query := "SELECT " + invoiceColumns + " FROM invoices"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapStorage("failed to list invoices", err)
	}
	defer rows.Close()

	invoices := make([]*domain.Invoice, 0)
	for rows.Next() {
		invoice, err := scanInvoiceRow(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapStorage("error iterating invoices", err)
	}

	return invoices, nil
}

// Delete hard-removes an invoice. A nonexistent ID is a no-op.
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM invoices WHERE id = ?", id)
	if err != nil {
		return wrapStorage("failed to delete invoice", err)
	}
	return nil
}

// Count returns the number of stored invoices
func (r *InvoiceRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM invoices").Scan(&count)
	if err != nil {
		return 0, wrapStorage("failed to count invoices", err)
	}
	return count, nil
}

// rowScanner covers *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanInvoiceRow reads one invoice row, decoding JSON sub-documents
func scanInvoiceRow(row rowScanner) (*domain.Invoice, error) {
	invoice := &domain.Invoice{}
	var status, createdAt, updatedAt, issueDate, dueDate string
	var seller, client, items, adjustments, payments, totals string
	var notes, terms sql.NullString

	err := row.Scan(
		&invoice.ID,
		&invoice.Number,
		&status,
		&createdAt,
		&updatedAt,
		&issueDate,
		&dueDate,
		&invoice.Currency,
		&seller,
		&client,
		&items,
		&adjustments,
		&payments,
		&totals,
		&notes,
		&terms,
	)
	if err != nil {
		return nil, err
	}

	invoice.Status = domain.InvoiceStatus(status)
	invoice.Notes = notes.String
	invoice.Terms = terms.String

	if invoice.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if invoice.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	if invoice.IssueDate, err = parseTime(issueDate); err != nil {
		return nil, fmt.Errorf("failed to parse issue_date: %w", err)
	}
	if invoice.DueDate, err = parseTime(dueDate); err != nil {
		return nil, fmt.Errorf("failed to parse due_date: %w", err)
	}

	if err := unmarshalDoc(seller, &invoice.Seller); err != nil {
		return nil, err
	}
	if err := unmarshalDoc(client, &invoice.Client); err != nil {
		return nil, err
	}
	if err := unmarshalDoc(items, &invoice.Items); err != nil {
		return nil, err
	}
	if err := unmarshalDoc(adjustments, &invoice.Adjustments); err != nil {
		return nil, err
	}
	if err := unmarshalDoc(payments, &invoice.Payments); err != nil {
		return nil, err
	}
	if err := unmarshalDoc(totals, &invoice.Totals); err != nil {
		return nil, err
	}

	return invoice, nil
}
