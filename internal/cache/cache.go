// Package cache keeps short-lived id -> username mappings so listing and detail
// requests do not hit the users table for names they resolved moments ago.
package cache

import (
	"context"
	"time"
)

// DefaultTTL bounds how stale a cached username may be.
const DefaultTTL = time.Minute

// UsernameCache is a batch-oriented lookup cache.
type UsernameCache interface {
	// GetMany returns the cached names for ids. Missing ids are absent from the result.
	GetMany(ctx context.Context, ids []string) (map[string]string, error)
	SetMany(ctx context.Context, names map[string]string) error
}
