package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vidhub/internal/domain"
	"vidhub/internal/repository"
)

// owner_id is unique so two concurrent creations for one user cannot both land.
const createChannelsTable = `
CREATE TABLE IF NOT EXISTS channels (
	channel_id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	banner TEXT NOT NULL DEFAULT '',
	subscribers TEXT NOT NULL DEFAULT '[]',
	created_at DATETIME NOT NULL,
	FOREIGN KEY(owner_id) REFERENCES users(id)
);
`

type ChannelRepository struct {
	db *sql.DB
}

func NewChannelRepository(db *sql.DB) repository.ChannelRepository {
	return &ChannelRepository{db: db}
}

func (r *ChannelRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createChannelsTable); err != nil {
		return fmt.Errorf("create channels table: %w", err)
	}
	return nil
}

func (r *ChannelRepository) Create(ctx context.Context, channel *domain.Channel) error {
	if channel.CreatedAt.IsZero() {
		channel.CreatedAt = time.Now().UTC()
	}
	subscribers, err := encodeSubscribers(channel.Subscribers)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO channels (channel_id, owner_id, name, description, banner, subscribers, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		channel.ChannelID,
		channel.OwnerID,
		channel.Name,
		channel.Description,
		channel.Banner,
		subscribers,
		channel.CreatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user already has a channel: %w", domain.ErrConflict)
		}
		return fmt.Errorf("insert channel: %w", err)
	}
	return nil
}

func (r *ChannelRepository) GetByOwner(ctx context.Context, ownerID string) (*domain.Channel, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT channel_id, owner_id, name, description, banner, subscribers, created_at
FROM channels
WHERE owner_id = ?`,
		ownerID,
	)
	return scanChannel(row)
}

func (r *ChannelRepository) GetByChannelID(ctx context.Context, channelID string) (*domain.Channel, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT channel_id, owner_id, name, description, banner, subscribers, created_at
FROM channels
WHERE channel_id = ?`,
		channelID,
	)
	return scanChannel(row)
}

// Update writes the mutable fields. Owner and creation time are never rewritten.
func (r *ChannelRepository) Update(ctx context.Context, channel *domain.Channel) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE channels
SET name=?, description=?, banner=?
WHERE channel_id=?`,
		channel.Name,
		channel.Description,
		channel.Banner,
		channel.ChannelID,
	)
	if err != nil {
		return fmt.Errorf("update channel: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("channel update rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("channel %s: %w", channel.ChannelID, domain.ErrNotFound)
	}
	return nil
}

func scanChannel(row interface {
	Scan(dest ...any) error
}) (*domain.Channel, error) {
	var (
		channel     domain.Channel
		subscribers string
	)
	if err := row.Scan(
		&channel.ChannelID,
		&channel.OwnerID,
		&channel.Name,
		&channel.Description,
		&channel.Banner,
		&subscribers,
		&channel.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("channel: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scan channel: %w", err)
	}
	if err := json.Unmarshal([]byte(subscribers), &channel.Subscribers); err != nil {
		return nil, fmt.Errorf("decode subscribers: %w", err)
	}
	if channel.Subscribers == nil {
		channel.Subscribers = []string{}
	}
	return &channel, nil
}

func encodeSubscribers(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encode subscribers: %w", err)
	}
	return string(b), nil
}
