package storage

import "errors"

// Common storage errors.
var (
	// ErrNotFound is returned when no document is stored for a root id.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidKey is returned for an empty root id or a key that does not decode.
	ErrInvalidKey = errors.New("invalid document key")
)
