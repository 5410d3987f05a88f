package domain

import "time"

// Channel is a user's public content collection. Each user owns at most one.
type Channel struct {
	ChannelID   string
	OwnerID     string
	Name        string
	Description string
	Banner      string
	Subscribers []string
	CreatedAt   time.Time
}

// ChannelUpdate carries the fields an owner may change. Nil fields are left untouched.
type ChannelUpdate struct {
	Name        *string
	Description *string
	Banner      *string
}
