package domain

import "errors"

// Error taxonomy shared by services and handlers. Services wrap these with
// %w so the API layer can map any error with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
)
