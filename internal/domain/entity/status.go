package entity

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CanonicalStatus maps value onto the declared spelling in allowed,
// comparing case-insensitively. Surrounding whitespace is ignored.
func CanonicalStatus(value string, allowed []string) (string, error) {
	v := strings.TrimSpace(value)
	for _, a := range allowed {
		if strings.EqualFold(a, v) {
			return a, nil
		}
	}
	return "", &ValidationError{
		Field:   "status",
		Message: "Status must be one of: " + strings.Join(allowed, ", "),
	}
}

// PublicStatusSet returns the spellings of status a query should accept.
// Legacy rows were written with mixed casing, so the set holds status as
// given plus its lower-case and capitalised forms. Other statuses never match.
func PublicStatusSet(status string) []string {
	if status == "" {
		return nil
	}
	lower := strings.ToLower(status)
	set := []string{status}
	for _, s := range []string{lower, cases.Title(language.English).String(lower)} {
		if !slices.Contains(set, s) {
			set = append(set, s)
		}
	}
	return set
}

// IsPublicStatus reports whether status is in PublicStatusSet(public).
func IsPublicStatus(status, public string) bool {
	if public == "" {
		return false
	}
	return slices.Contains(PublicStatusSet(public), status)
}
