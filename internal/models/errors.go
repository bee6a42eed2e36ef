package models

import (
	"errors"
	"fmt"
)

// Custom errors
var (
	ErrEmptyLedger = errors.New("ledger is empty")
	ErrInvalidMode = errors.New("unknown strategy mode")
	ErrNotFound    = errors.New("record not found")
)

// ValidationError describes a malformed event input. The event is rejected
// before any append, so the caller can fix the field and resubmit.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
