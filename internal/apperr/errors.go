// Package apperr defines the error taxonomy shared by every core component.
// Callers match with errors.Is; only the CLI boundary turns these into exit codes.
package apperr

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrIntegrity         = errors.New("integrity violation")
	ErrValidation        = errors.New("validation failed")
	ErrCycle             = errors.New("supersede cycle")
	ErrIO                = errors.New("io failure")
)
