package auth

import (
	"strings"

	"tlwd-backend/internal/domain/entity"
)

// DefaultMinPasswordLength is the shortest password accepted on change.
const DefaultMinPasswordLength = 8

// weakPasswordList contains common passwords that are rejected outright.
var weakPasswordList = []string{
	"password",
	"12345678",
	"123456789",
	"1234567890",
	"qwertyui",
	"qwerty123",
	"admin123",
	"password1",
	"password123",
	"letmein1",
	"welcome1",
	"iloveyou",
	"tlwd1234",
}

// CredentialRequirements defines password policy requirements.
type CredentialRequirements struct {
	MinPasswordLength int
	WeakPasswords     []string
}

// DefaultRequirements is the policy used when a Service leaves Requirements zero.
func DefaultRequirements() CredentialRequirements {
	return CredentialRequirements{
		MinPasswordLength: DefaultMinPasswordLength,
		WeakPasswords:     weakPasswordList,
	}
}

// Validate checks pass against the policy. The returned error is a
// *entity.ValidationError on field "newPassword".
func (r CredentialRequirements) Validate(pass string) error {
	min := r.MinPasswordLength
	if min <= 0 {
		min = DefaultMinPasswordLength
	}
	if len([]rune(pass)) < min {
		return &entity.ValidationError{Field: "newPassword", Message: "Password must be at least 8 characters"}
	}
	if isRepeatedChar(pass) {
		return &entity.ValidationError{Field: "newPassword", Message: "Password is too weak"}
	}
	lower := strings.ToLower(pass)
	for _, weak := range r.WeakPasswords {
		if lower == weak {
			return &entity.ValidationError{Field: "newPassword", Message: "Password is too weak"}
		}
	}
	return nil
}

// isRepeatedChar reports a password made of a single repeated character.
func isRepeatedChar(pass string) bool {
	if pass == "" {
		return false
	}
	first := pass[0]
	for i := 1; i < len(pass); i++ {
		if pass[i] != first {
			return false
		}
	}
	return true
}
