package domain

import "time"

// User represents a registered account. Users are immutable after registration.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
