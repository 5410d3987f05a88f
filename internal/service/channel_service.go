package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"vidhub/internal/domain"
	"vidhub/internal/repository"
)

// ChannelDetails is a channel annotated with its owner's username.
type ChannelDetails struct {
	Channel       domain.Channel
	OwnerUsername string
}

// ChannelService enforces the one-channel-per-user rule and owner-only updates.
type ChannelService interface {
	Create(ctx context.Context, ownerID, name, description, banner string) (*ChannelDetails, error)
	GetByOwner(ctx context.Context, ownerID string) (*ChannelDetails, error)
	GetByChannelID(ctx context.Context, channelID string) (*ChannelDetails, error)
	Update(ctx context.Context, channelID, actorID string, update domain.ChannelUpdate) (*ChannelDetails, error)
}

type channelService struct {
	channels  repository.ChannelRepository
	usernames *UsernameDirectory
}

func NewChannelService(channels repository.ChannelRepository, usernames *UsernameDirectory) ChannelService {
	return &channelService{
		channels:  channels,
		usernames: usernames,
	}
}

func (s *channelService) Create(ctx context.Context, ownerID, name, description, banner string) (*ChannelDetails, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: channel name is required", domain.ErrValidation)
	}

	if _, err := s.channels.GetByOwner(ctx, ownerID); err == nil {
		return nil, fmt.Errorf("%w: user already has a channel", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	channel := &domain.Channel{
		ChannelID:   "channel_" + uuid.NewString(),
		OwnerID:     ownerID,
		Name:        name,
		Description: strings.TrimSpace(description),
		Banner:      strings.TrimSpace(banner),
		Subscribers: []string{},
		CreatedAt:   time.Now().UTC(),
	}
	// the unique owner index turns a lost race into ErrConflict here
	if err := s.channels.Create(ctx, channel); err != nil {
		return nil, err
	}
	return s.annotate(ctx, channel)
}

func (s *channelService) GetByOwner(ctx context.Context, ownerID string) (*ChannelDetails, error) {
	channel, err := s.channels.GetByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: no channel found for this user", domain.ErrNotFound)
		}
		return nil, err
	}
	return s.annotate(ctx, channel)
}

func (s *channelService) GetByChannelID(ctx context.Context, channelID string) (*ChannelDetails, error) {
	channel, err := s.lookup(ctx, channelID)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, channel)
}

func (s *channelService) Update(ctx context.Context, channelID, actorID string, update domain.ChannelUpdate) (*ChannelDetails, error) {
	channel, err := s.lookup(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if channel.OwnerID != actorID {
		return nil, fmt.Errorf("%w: not authorized to update this channel", domain.ErrForbidden)
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: channel name cannot be empty", domain.ErrValidation)
		}
		channel.Name = name
	}
	if update.Description != nil {
		channel.Description = strings.TrimSpace(*update.Description)
	}
	// an empty banner keeps the current one
	if update.Banner != nil && strings.TrimSpace(*update.Banner) != "" {
		channel.Banner = strings.TrimSpace(*update.Banner)
	}

	if err := s.channels.Update(ctx, channel); err != nil {
		return nil, err
	}
	return s.annotate(ctx, channel)
}

func (s *channelService) lookup(ctx context.Context, channelID string) (*domain.Channel, error) {
	channel, err := s.channels.GetByChannelID(ctx, channelID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: channel not found", domain.ErrNotFound)
		}
		return nil, err
	}
	return channel, nil
}

func (s *channelService) annotate(ctx context.Context, channel *domain.Channel) (*ChannelDetails, error) {
	names, err := s.usernames.Resolve(ctx, []string{channel.OwnerID})
	if err != nil {
		return nil, err
	}
	return &ChannelDetails{
		Channel:       *channel,
		OwnerUsername: usernameOr(names, channel.OwnerID),
	}, nil
}
