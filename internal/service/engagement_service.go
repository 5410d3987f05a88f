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

// EngagementService applies likes, dislikes and comments to videos.
type EngagementService interface {
	Like(ctx context.Context, videoID, userID string) (domain.ReactionCounts, error)
	Dislike(ctx context.Context, videoID, userID string) (domain.ReactionCounts, error)
	AddComment(ctx context.Context, videoID, userID, text string) (*CommentDetails, error)
	// DeleteCommentAt removes the comment at a list position. Positions shift after
	// every deletion; DeleteComment is the stable alternative.
	DeleteCommentAt(ctx context.Context, videoID, userID string, index int) error
	DeleteComment(ctx context.Context, videoID, userID, commentID string) error
}

type engagementService struct {
	videos     repository.VideoRepository
	engagement repository.EngagementRepository
	usernames  *UsernameDirectory
	recorder   EngagementRecorder
}

func NewEngagementService(videos repository.VideoRepository, engagement repository.EngagementRepository, usernames *UsernameDirectory, recorder EngagementRecorder) EngagementService {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &engagementService{
		videos:     videos,
		engagement: engagement,
		usernames:  usernames,
		recorder:   recorder,
	}
}

func (s *engagementService) Like(ctx context.Context, videoID, userID string) (domain.ReactionCounts, error) {
	return s.react(ctx, videoID, userID, domain.ReactionLike)
}

func (s *engagementService) Dislike(ctx context.Context, videoID, userID string) (domain.ReactionCounts, error) {
	return s.react(ctx, videoID, userID, domain.ReactionDislike)
}

func (s *engagementService) react(ctx context.Context, videoID, userID string, reaction domain.Reaction) (domain.ReactionCounts, error) {
	if userID == "" {
		return domain.ReactionCounts{}, fmt.Errorf("%w: authentication required", domain.ErrUnauthenticated)
	}
	videoID, err := canonicalID("video", videoID)
	if err != nil {
		return domain.ReactionCounts{}, err
	}

	counts, result, err := s.engagement.ApplyReaction(ctx, videoID, userID, reaction)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ReactionCounts{}, fmt.Errorf("%w: video not found", domain.ErrNotFound)
		}
		return domain.ReactionCounts{}, err
	}

	s.recorder.ReactionToggled(string(reaction), string(result))
	return counts, nil
}

func (s *engagementService) AddComment(ctx context.Context, videoID, userID, text string) (*CommentDetails, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: authentication required", domain.ErrUnauthenticated)
	}
	videoID, err := canonicalID("video", videoID)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment text is required", domain.ErrValidation)
	}

	names, err := s.usernames.Resolve(ctx, []string{userID})
	if err != nil {
		return nil, err
	}
	username, ok := names[userID]
	if !ok {
		return nil, fmt.Errorf("%w: user not found", domain.ErrNotFound)
	}

	comment := &domain.Comment{
		ID:        uuid.NewString(),
		VideoID:   videoID,
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.engagement.AddComment(ctx, comment); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: video not found", domain.ErrNotFound)
		}
		return nil, err
	}
	s.recorder.CommentAdded()
	return &CommentDetails{Comment: *comment, Username: username}, nil
}

// DeleteCommentAt deletes by list position; the repository resolves and checks it atomically.
func (s *engagementService) DeleteCommentAt(ctx context.Context, videoID, userID string, index int) error {
	videoID, err := s.requireVideo(ctx, videoID)
	if err != nil {
		return err
	}
	if err := s.engagement.DeleteCommentAt(ctx, videoID, index, userID); err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			return fmt.Errorf("%w: invalid comment index", domain.ErrValidation)
		case errors.Is(err, domain.ErrForbidden):
			return fmt.Errorf("%w: not authorized to delete this comment", domain.ErrForbidden)
		}
		return err
	}
	s.recorder.CommentDeleted()
	return nil
}

func (s *engagementService) DeleteComment(ctx context.Context, videoID, userID, commentID string) error {
	videoID, err := s.requireVideo(ctx, videoID)
	if err != nil {
		return err
	}
	commentID, err = canonicalID("comment", commentID)
	if err != nil {
		return err
	}
	comment, err := s.engagement.GetComment(ctx, videoID, commentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: comment not found", domain.ErrNotFound)
		}
		return err
	}
	if comment.UserID != userID {
		return fmt.Errorf("%w: not authorized to delete this comment", domain.ErrForbidden)
	}
	// conditional on the author, so a comment removed concurrently reports not found
	if err := s.engagement.DeleteComment(ctx, comment.VideoID, comment.ID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: comment not found", domain.ErrNotFound)
		}
		return err
	}
	s.recorder.CommentDeleted()
	return nil
}

// requireVideo returns the canonical video id once the video is known to exist.
func (s *engagementService) requireVideo(ctx context.Context, videoID string) (string, error) {
	videoID, err := canonicalID("video", videoID)
	if err != nil {
		return "", err
	}
	exists, err := s.videos.Exists(ctx, videoID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("%w: video not found", domain.ErrNotFound)
	}
	return videoID, nil
}
