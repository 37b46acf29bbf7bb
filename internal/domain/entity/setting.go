package entity

import "time"

// Setting is a key/value site option (contact email, social links, ...).
type Setting struct {
	Key       string
	Value     any
	Category  string
	UpdatedAt time.Time
}
