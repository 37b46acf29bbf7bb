package entity

import (
	"net/mail"
	"regexp"
	"strings"
)

// maxEmailLength follows RFC 5321.
const maxEmailLength = 254

// emailPattern rejects display-name forms that net/mail would accept.
var emailPattern = regexp.MustCompile(`^[^\s@<>()]+@[^\s@<>()]+\.[^\s@<>()]+$`)

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks that email is a plain addr-spec.
// The field name is used for the returned ValidationError.
func ValidateEmail(field, email string) error {
	if email == "" {
		return &ValidationError{Field: field, Message: "Email is required"}
	}
	if len(email) > maxEmailLength || !emailPattern.MatchString(email) {
		return &ValidationError{Field: field, Message: "Please provide a valid email"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return &ValidationError{Field: field, Message: "Please provide a valid email"}
	}
	return nil
}

// RequireFields returns a ValidationError naming the first blank value.
// pairs are (field, value) in declaration order.
func RequireFields(message string, pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return &ValidationError{Field: pairs[i], Message: message}
		}
	}
	return nil
}
