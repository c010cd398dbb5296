package service

import (
	"context"
	"sort"
	"time"

	"github.com/andy/billkeep/internal/domain"
	"github.com/andy/billkeep/internal/repository"
)

// memStore is an in-memory stand-in for the SQLite repositories. It
// implements all three repository interfaces so the transfer tests can
// observe replace/merge against the same backing maps the invoice and
// settings methods read.
type memStore struct {
	invoices map[string]*domain.Invoice
	settings map[string]string
	err      error
}

func newMemStore() *memStore {
	return &memStore{
		invoices: make(map[string]*domain.Invoice),
		settings: make(map[string]string),
	}
}

func (m *memStore) Save(ctx context.Context, invoice *domain.Invoice) error {
	if m.err != nil {
		return m.err
	}
	cp := *invoice
	cp.UpdatedAt = time.Now()
	m.invoices[cp.ID] = &cp
	return nil
}

func (m *memStore) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	if m.err != nil {
		return nil, m.err
	}
	invoice, ok := m.invoices[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *invoice
	return &cp, nil
}

func (m *memStore) GetByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, invoice := range m.invoices {
		if invoice.Number == number {
			cp := *invoice
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) List(ctx context.Context) ([]*domain.Invoice, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*domain.Invoice, 0, len(m.invoices))
	for _, invoice := range m.invoices {
		out = append(out, invoice)
	}
	return out, nil
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	delete(m.invoices, id)
	return nil
}

func (m *memStore) Count(ctx context.Context) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return len(m.invoices), nil
}

func (m *memStore) Set(ctx context.Context, key, value string) error {
	if m.err != nil {
		return m.err
	}
	m.settings[key] = value
	return nil
}

func (m *memStore) Get(ctx context.Context, key string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	value, ok := m.settings[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return value, nil
}

func (m *memStore) All(ctx context.Context) ([]repository.Setting, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]repository.Setting, 0, len(m.settings))
	for key, value := range m.settings {
		out = append(out, repository.Setting{Key: key, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *memStore) ReplaceAll(ctx context.Context, invoices []*domain.Invoice, settings []repository.Setting) error {
	if m.err != nil {
		return m.err
	}
	m.invoices = make(map[string]*domain.Invoice)
	m.settings = make(map[string]string)
	return m.writeAll(invoices, settings)
}

func (m *memStore) MergeAll(ctx context.Context, invoices []*domain.Invoice, settings []repository.Setting) error {
	if m.err != nil {
		return m.err
	}
	return m.writeAll(invoices, settings)
}

func (m *memStore) writeAll(invoices []*domain.Invoice, settings []repository.Setting) error {
	for _, invoice := range invoices {
		cp := *invoice
		m.invoices[cp.ID] = &cp
	}
	for _, setting := range settings {
		m.settings[setting.Key] = setting.Value
	}
	return nil
}

// storedInvoice seeds the store with a minimal invoice for listing tests
func storedInvoice(store *memStore, id, number string, status domain.InvoiceStatus) *domain.Invoice {
	invoice := domain.NewInvoice(number, 30)
	invoice.ID = id
	invoice.Status = status
	store.invoices[id] = invoice
	return invoice
}
