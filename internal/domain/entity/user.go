package entity

import "time"

// User is an admin account. PasswordHash is a bcrypt hash.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
