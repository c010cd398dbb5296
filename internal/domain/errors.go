package domain

import "errors"

// Typed outcomes surfaced across the service boundary. Callers branch on
// these with errors.Is rather than matching error text.
var (
	// ErrNotFound is returned when a get or duplicate targets a missing
	// record. Absence is a normal outcome; callers decide the fallback.
	ErrNotFound = errors.New("record not found")

	// ErrStorageUnavailable is returned when the durable medium cannot be
	// reached. There is no automatic retry.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrMalformedImport is returned when an import document does not parse
	// as a snapshot. The import aborts before any write occurs.
	ErrMalformedImport = errors.New("malformed import document")
)
