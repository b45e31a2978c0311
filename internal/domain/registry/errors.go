package registry

import (
	"errors"
	"fmt"
)

// ErrValidation is the sentinel wrapped by every ValidationError
var ErrValidation = errors.New("validation failed")

// ValidationError reports caller input the store refuses to accept
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Reason: err.Error()}
}
