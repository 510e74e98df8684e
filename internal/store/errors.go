package store

import "errors"

// Sentinel errors callers map to HTTP statuses at the API boundary. Any other
// store error is treated as a transient backend failure.
var (
	// ErrNotFound reports that an id matched no row.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateSource reports a unique-constraint violation on a source URL.
	ErrDuplicateSource = errors.New("source url already exists")
)
