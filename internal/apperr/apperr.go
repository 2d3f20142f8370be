// Package apperr defines the error taxonomy shared by the service layer:
// validation, conflict, permission and not-found failures. Handlers map
// these to HTTP responses in exactly one place.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized means the request carries no valid session.
	ErrUnauthorized = errors.New("authentication required")
	// ErrForbidden means the session's user lacks permission.
	ErrForbidden = errors.New("permission denied")
)

// ValidationError reports bad form or query input for a specific field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Validationf builds a field-level validation error.
func Validationf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ConflictError reports a store-level integrity violation in user terms.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// Conflictf builds a conflict error.
func Conflictf(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict reports whether err is a conflict error.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
