package domain

import "errors"

// Sentinel errors shared across services and repositories. The HTTP layer
// maps them to status codes with errors.Is; services add context with
// fmt.Errorf("...: %w", err).
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConflict          = errors.New("conflict")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
)
