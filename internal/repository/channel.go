package repository

import (
	"context"

	"vidhub/internal/domain"
)

// ChannelRepository persists channels. Create fails with domain.ErrConflict when
// the owner already has a channel.
type ChannelRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, channel *domain.Channel) error
	GetByOwner(ctx context.Context, ownerID string) (*domain.Channel, error)
	GetByChannelID(ctx context.Context, channelID string) (*domain.Channel, error)
	Update(ctx context.Context, channel *domain.Channel) error
}
