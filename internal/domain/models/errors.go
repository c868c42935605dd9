package models

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a lookup for an id or key with no stored row.
var ErrNotFound = errors.New("not found")

// ErrCustomerNotFound marks a customer name that resolves to no active
// customer in the requested shift and owner scope.
var ErrCustomerNotFound = errors.New("customer not found")

// ValidationError carries a field-level message for a rejected request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a field-level validation failure.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
