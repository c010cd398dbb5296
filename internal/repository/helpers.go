package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/andy/billkeep/internal/domain"
)

// timeLayout is the RFC3339 format for storing times in SQLite
const timeLayout = time.RFC3339Nano

// parseTime parses a time string in RFC3339 format
func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// wrapStorage marks a driver failure as the typed storage-unavailable
// outcome while keeping the underlying cause in the chain
func wrapStorage(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
}

// marshalDoc serializes a nested invoice document column
func marshalDoc(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}
	return string(data), nil
}

// unmarshalDoc deserializes a nested invoice document column
func unmarshalDoc(data string, v interface{}) error {
	if data == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return nil
}
