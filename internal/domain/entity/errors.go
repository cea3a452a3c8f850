package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrNotFound indicates that a requested entity was not found
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrStoreUnreadable indicates that the recipient store could not be
	// read at all. This is the only condition under which a digest cycle
	// fails as a whole; per-recipient delivery failures never do.
	ErrStoreUnreadable = errors.New("recipient store unreadable")
)

// ValidationError reports which entity field failed validation and why.
// Handlers surface the field name to the client; the underlying value
// is never echoed back.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}
