package repository

import (
	"context"

	"vidhub/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// UsernamesByIDs resolves every known id in a single query. Unknown ids are absent from the result.
	UsernamesByIDs(ctx context.Context, ids []string) (map[string]string, error)
}
