package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrNotFound indicates that a requested record was not found
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidationFailed indicates that validation checks have failed
	ErrValidationFailed = errors.New("validation failed")

	// ErrConflict indicates that the operation clashes with existing state
	// (duplicate subscription, already-applied transition など)
	ErrConflict = errors.New("conflict")
)

// ValidationError represents a validation error with detailed field information.
// Message is written for end users and is surfaced unchanged in the response envelope.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Is reports ValidationError as ErrValidationFailed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// NotFoundError names the resource that could not be located.
// Message, when set, replaces the generated text.
//
//	err := &NotFoundError{Resource: "Donation"}
//	err.Error()                    // "Donation not found"
//	errors.Is(err, ErrNotFound)    // true
type NotFoundError struct {
	Resource string
	Message  string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Resource == "" {
		return "Resource not found"
	}
	return e.Resource + " not found"
}

// Is reports NotFoundError as ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ConflictError carries a user-facing explanation of a state conflict.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// Is reports ConflictError as ErrConflict.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
