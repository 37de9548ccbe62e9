package domain

import "errors"

// Error taxonomy shared by the stores, the record service and the HTTP layer.
// Callers wrap these with fmt.Errorf("...: %w") and match with errors.Is.
var (
	// ErrValidation means the caller sent missing or malformed input (400).
	ErrValidation = errors.New("validation error")

	// ErrUnauthorized covers a missing/invalid token and a wrong password (401).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned for unknown bookmark IDs and tag names (404).
	ErrNotFound = errors.New("not found")
)
