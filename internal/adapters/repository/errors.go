package repository

import "errors"

// Sentinel kinds for store errors. Callers branch with errors.Is: a
// missing row is a valid state, a version conflict asks for a retry,
// anything else is a transient store failure.
var (
	ErrNotFound = errors.New("row not found")
	ErrConflict = errors.New("profile version conflict")
)
