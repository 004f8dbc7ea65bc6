package catalog

import (
	"errors"
	"fmt"
)

// ErrorType defines the categories of errors the catalog reports to callers.
// Cache failures have no type: they are always recovered inside the package.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "VALIDATION"
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"
	ErrorTypeStore      ErrorType = "STORE"
)

// Error is the error type returned by Service operations.
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work
func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidation creates a validation error
func NewValidation(message string) error {
	return &Error{Type: ErrorTypeValidation, Message: message}
}

// NewNotFound creates a not found error
func NewNotFound(message string) error {
	return &Error{Type: ErrorTypeNotFound, Message: message}
}

// NewStore creates a store error wrapping the underlying failure
func NewStore(message string, err error) error {
	return &Error{Type: ErrorTypeStore, Message: message, Err: err}
}

func isType(err error, t ErrorType) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == t
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool { return isType(err, ErrorTypeValidation) }

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool { return isType(err, ErrorTypeNotFound) }

// IsStore checks if an error is a store error
func IsStore(err error) bool { return isType(err, ErrorTypeStore) }

// Message returns the caller-safe message of a catalog error, or "" for anything else.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}
