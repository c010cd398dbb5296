package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andy/billkeep/internal/db"
	"github.com/andy/billkeep/internal/domain"
)

// SettingsRepo is a SQLite implementation of SettingsRepository
type SettingsRepo struct {
	db *db.DB
}

// NewSettingsRepo creates a new SettingsRepo
func NewSettingsRepo(database *db.DB) *SettingsRepo {
	return &SettingsRepo{db: database}
}

const upsertSettingSQL = `
	INSERT INTO settings (key, value)
	VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value
`

// Set stores a value under the given key, overwriting any previous value.
// Values are opaque; no schema is enforced.
func (r *SettingsRepo) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, upsertSettingSQL, key, value)
	if err != nil {
		return wrapStorage("failed to save setting", err)
	}
	return nil
}

// Get retrieves a setting value by key
func (r *SettingsRepo) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("setting %s: %w", key, domain.ErrNotFound)
		}
		return "", wrapStorage("failed to get setting", err)
	}
	return value, nil
}

// All retrieves every stored key/value pair
func (r *SettingsRepo) All(ctx context.Context) ([]Setting, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT key, value FROM settings ORDER BY key")
	if err != nil {
		return nil, wrapStorage("failed to list settings", err)
	}
	defer rows.Close()

	settings := make([]Setting, 0)
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings = append(settings, s)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapStorage("error iterating settings", err)
	}

	return settings, nil
}
