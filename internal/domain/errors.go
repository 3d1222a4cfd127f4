package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by stores when no record matches.
	ErrNotFound = errors.New("bookmark not found")

	// ErrUnknownUser is returned when an operation has no owning user.
	ErrUnknownUser = errors.New("unknown user")

	// ErrNilRecord is returned when an operation receives no record at all.
	ErrNilRecord = errors.New("bookmark cannot be null")

	// ErrMissingID is returned when an update or delete does not name a record.
	ErrMissingID = errors.New("bookmark id is required")

	// ErrValidation is the parent of every field validation failure.
	ErrValidation = errors.New("validation failed")
)

// ValidationError describes one rejected field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
