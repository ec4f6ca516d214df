package storage

import "errors"

// Common storage errors.
var (
	// ErrNotFound is returned when a rule is not in the store.
	ErrNotFound = errors.New("rule not found")
)
