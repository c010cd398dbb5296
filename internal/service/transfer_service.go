package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andy/billkeep/internal/domain"
	"github.com/andy/billkeep/internal/repository"
	"github.com/rs/zerolog"
)

// SnapshotFormatVersion is the current export document version. Readers
// must tolerate higher versions by ignoring unknown invoice fields.
const SnapshotFormatVersion = 1

// Snapshot is the self-describing interchange document: the full invoice
// collection plus every settings pair
type Snapshot struct {
	FormatVersion int                  `json:"formatVersion"`
	ExportedAt    string               `json:"exportedAt"`
	Invoices      []*domain.Invoice    `json:"invoices"`
	Settings      []repository.Setting `json:"settings"`
}

// TransferService serializes the store to a snapshot and restores it
type TransferService interface {
	// Export captures every invoice and setting as a JSON document
	Export(ctx context.Context) ([]byte, error)

	// Import restores a snapshot. With merge false the store is replaced
	// wholesale; with merge true records are upserted by id/key. Returns
	// the number of invoices imported. A document that does not parse as
	// a snapshot aborts before any write.
	Import(ctx context.Context, data []byte, merge bool) (int, error)
}

type transferService struct {
	invoices repository.InvoiceRepository
	settings repository.SettingsRepository
	transfer repository.TransferRepository
	log      zerolog.Logger
}

// NewTransferService creates a new transfer service
func NewTransferService(
	invoices repository.InvoiceRepository,
	settings repository.SettingsRepository,
	transfer repository.TransferRepository,
	log zerolog.Logger,
) TransferService {
	return &transferService{
		invoices: invoices,
		settings: settings,
		transfer: transfer,
		log:      log.With().Str("component", "transfer_service").Logger(),
	}
}

func (s *transferService) Export(ctx context.Context) ([]byte, error) {
	invoices, err := s.invoices.List(ctx)
	if err != nil {
		return nil, err
	}

	settings, err := s.settings.All(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := Snapshot{
		FormatVersion: SnapshotFormatVersion,
		ExportedAt:    time.Now().Format(time.RFC3339),
		Invoices:      invoices,
		Settings:      settings,
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	s.log.Info().Int("invoices", len(invoices)).Int("settings", len(settings)).Msg("exported snapshot")
	return data, nil
}

func (s *transferService) Import(ctx context.Context, data []byte, merge bool) (int, error) {
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrMalformedImport, err)
	}
	if snapshot.FormatVersion < 1 {
		return 0, fmt.Errorf("%w: missing formatVersion", domain.ErrMalformedImport)
	}
	// JSON "null" entries survive unmarshalling as nil pointers; reject
	// them here so the store only ever sees actual records.
	for i, invoice := range snapshot.Invoices {
		if invoice == nil {
			return 0, fmt.Errorf("%w: null invoice at index %d", domain.ErrMalformedImport, i)
		}
	}

	// Beyond existing, imported invoices are written as-is; missing
	// fields are not rejected here.
	if merge {
		if err := s.transfer.MergeAll(ctx, snapshot.Invoices, snapshot.Settings); err != nil {
			return 0, err
		}
	} else {
		if err := s.transfer.ReplaceAll(ctx, snapshot.Invoices, snapshot.Settings); err != nil {
			return 0, err
		}
	}

	s.log.Info().
		Int("invoices", len(snapshot.Invoices)).
		Bool("merge", merge).
		Msg("imported snapshot")
	return len(snapshot.Invoices), nil
}
