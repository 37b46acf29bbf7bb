package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		message  string
		expected string
	}{
		{
			name:     "required email",
			field:    "email",
			message:  "Email is required",
			expected: "validation error on field 'email': Email is required",
		},
		{
			name:     "amount",
			field:    "amount",
			message:  "Amount and email are required",
			expected: "validation error on field 'amount': Amount and email are required",
		},
		{
			name:     "empty field name",
			field:    "",
			message:  "test message",
			expected: "validation error on field '': test message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &ValidationError{Field: tt.field, Message: tt.message}
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestValidationError_MatchesSentinel(t *testing.T) {
	err := fmt.Errorf("subscribe: %w", &ValidationError{Field: "email", Message: "Email is required"})

	assert.True(t, errors.Is(err, ErrValidationFailed))
	assert.False(t, errors.Is(err, ErrNotFound))

	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "email", ve.Field)
}

func TestNotFoundError(t *testing.T) {
	err := fmt.Errorf("verify: %w", &NotFoundError{Resource: "Donation"})

	assert.Equal(t, "verify: Donation not found", err.Error())
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))

	assert.Equal(t, "Resource not found", (&NotFoundError{}).Error())
	assert.Equal(t, "No active subscribers found", (&NotFoundError{Resource: "Subscriber", Message: "No active subscribers found"}).Error())
}

func TestConflictError(t *testing.T) {
	err := &ConflictError{Message: "Email already subscribed"}

	assert.Equal(t, "Email already subscribed", err.Error())
	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrValidationFailed))
}

func TestSentinelErrors_Uniqueness(t *testing.T) {
	all := []error{ErrNotFound, ErrInvalidInput, ErrValidationFailed, ErrConflict}
	for i := range all {
		for j := range all {
			if i != j {
				assert.False(t, errors.Is(all[i], all[j]), "%v should not match %v", all[i], all[j])
			}
		}
	}
}
