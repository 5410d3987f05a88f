package repository

import (
	"context"

	"vidhub/internal/domain"
)

// VideoRepository exposes persistence operations for Video aggregates.
// Returned videos carry their LikedBy/DislikedBy sets; only Get loads comments.
type VideoRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, video *domain.Video) error
	Exists(ctx context.Context, id string) (bool, error)
	Get(ctx context.Context, id string) (*domain.Video, error)
	List(ctx context.Context, filter domain.VideoFilter) ([]domain.Video, error)
	ListByChannel(ctx context.Context, channelID string) ([]domain.Video, error)
	UpdateMetadata(ctx context.Context, video *domain.Video) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) (int64, error)
}

// EngagementRepository applies reactions and comment changes atomically per video.
type EngagementRepository interface {
	Init(ctx context.Context) error
	// ApplyReaction returns the new counters and the reaction the user holds afterwards.
	ApplyReaction(ctx context.Context, videoID, userID string, requested domain.Reaction) (domain.ReactionCounts, domain.Reaction, error)
	AddComment(ctx context.Context, comment *domain.Comment) error
	// DeleteCommentAt removes the comment at a list position if authorID wrote it.
	// An index out of range is ErrValidation, another author's comment ErrForbidden.
	DeleteCommentAt(ctx context.Context, videoID string, index int, authorID string) error
	GetComment(ctx context.Context, videoID, commentID string) (*domain.Comment, error)
	DeleteComment(ctx context.Context, videoID, commentID, authorID string) error
}
