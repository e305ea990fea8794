package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error taxonomy. Every service error wraps exactly one of these so the
// transport layer can map it to a status code with errors.Is.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
)

// Specific failures.
var (
	ErrTokenMissing    = fmt.Errorf("%w: token required", ErrUnauthenticated)
	ErrTokenExpired    = fmt.Errorf("%w: token expired", ErrUnauthenticated)
	ErrSessionRevoked  = fmt.Errorf("%w: session revoked", ErrUnauthenticated)
	ErrProfileNotFound = fmt.Errorf("%w: no profile for this account", ErrNotFound)
	ErrProfileExists   = fmt.Errorf("%w: profile already exists", ErrConflict)
	ErrNotEnrolled     = fmt.Errorf("%w: student is not enrolled in the class", ErrConflict)
)

// ValidationError carries field-level messages keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
