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

// VideoDetails is a video annotated with display names.
type VideoDetails struct {
	Video            domain.Video
	UploaderUsername string
	Comments         []CommentDetails
}

// CommentDetails is a comment annotated with its author's username.
type CommentDetails struct {
	Comment  domain.Comment
	Username string
}

// VideoService manages the video catalog.
type VideoService interface {
	Upload(ctx context.Context, actorID string, input domain.VideoInput) (*VideoDetails, error)
	List(ctx context.Context, filter domain.VideoFilter) ([]VideoDetails, error)
	ListByChannel(ctx context.Context, channelID string) ([]VideoDetails, error)
	Get(ctx context.Context, id string) (*VideoDetails, error)
	Update(ctx context.Context, id, actorID string, update domain.VideoUpdate) (*VideoDetails, error)
	Delete(ctx context.Context, id, actorID string) error
	RegisterView(ctx context.Context, id string) (int64, error)
}

type videoService struct {
	videos    repository.VideoRepository
	channels  repository.ChannelRepository
	usernames *UsernameDirectory
	recorder  EngagementRecorder
}

func NewVideoService(videos repository.VideoRepository, channels repository.ChannelRepository, usernames *UsernameDirectory, recorder EngagementRecorder) VideoService {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &videoService{
		videos:    videos,
		channels:  channels,
		usernames: usernames,
		recorder:  recorder,
	}
}

// Upload publishes a video on the actor's own channel. Counters start at zero.
func (s *videoService) Upload(ctx context.Context, actorID string, input domain.VideoInput) (*VideoDetails, error) {
	if actorID == "" {
		return nil, fmt.Errorf("%w: authentication required", domain.ErrUnauthenticated)
	}
	if claimed := strings.TrimSpace(input.Uploader); claimed != "" && claimed != actorID {
		return nil, fmt.Errorf("%w: cannot upload on behalf of another user", domain.ErrForbidden)
	}
	if err := validateVideoInput(input); err != nil {
		return nil, err
	}

	channelID := strings.TrimSpace(input.ChannelID)
	if channelID == "" {
		return nil, fmt.Errorf("%w: channel ID is required", domain.ErrValidation)
	}
	channel, err := s.channels.GetByChannelID(ctx, channelID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: channel not found", domain.ErrNotFound)
		}
		return nil, err
	}
	if channel.OwnerID != actorID {
		return nil, fmt.Errorf("%w: not authorized to upload to this channel", domain.ErrForbidden)
	}

	video := &domain.Video{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		ThumbnailURL: strings.TrimSpace(input.ThumbnailURL),
		VideoURL:     strings.TrimSpace(input.VideoURL),
		Category:     strings.TrimSpace(input.Category),
		ChannelID:    channel.ChannelID,
		Uploader:     actorID,
		LikedBy:      []string{},
		DislikedBy:   []string{},
		Comments:     []domain.Comment{},
		UploadDate:   time.Now().UTC(),
	}
	if err := s.videos.Create(ctx, video); err != nil {
		return nil, err
	}

	details, err := s.annotate(ctx, []domain.Video{*video})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (s *videoService) List(ctx context.Context, filter domain.VideoFilter) ([]VideoDetails, error) {
	videos, err := s.videos.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, videos)
}

func (s *videoService) ListByChannel(ctx context.Context, channelID string) ([]VideoDetails, error) {
	videos, err := s.videos.ListByChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, videos)
}

// Get returns the video with uploader and every comment author resolved in one lookup.
func (s *videoService) Get(ctx context.Context, id string) (*VideoDetails, error) {
	video, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(video.Comments)+1)
	ids = append(ids, video.Uploader)
	for _, c := range video.Comments {
		ids = append(ids, c.UserID)
	}
	names, err := s.usernames.Resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	details := &VideoDetails{
		Video:            *video,
		UploaderUsername: usernameOr(names, video.Uploader),
		Comments:         make([]CommentDetails, len(video.Comments)),
	}
	for i, c := range video.Comments {
		details.Comments[i] = CommentDetails{Comment: c, Username: usernameOr(names, c.UserID)}
	}
	return details, nil
}

// Update changes only the allow-listed metadata fields.
func (s *videoService) Update(ctx context.Context, id, actorID string, update domain.VideoUpdate) (*VideoDetails, error) {
	video, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if video.Uploader != actorID {
		return nil, fmt.Errorf("%w: not authorized", domain.ErrForbidden)
	}

	if update.Title != nil {
		if err := validateTitle(*update.Title); err != nil {
			return nil, err
		}
		video.Title = strings.TrimSpace(*update.Title)
	}
	if update.Description != nil {
		if err := validateDescription(*update.Description); err != nil {
			return nil, err
		}
		video.Description = strings.TrimSpace(*update.Description)
	}
	if update.ThumbnailURL != nil {
		if err := validateMedia("thumbnail URL", *update.ThumbnailURL); err != nil {
			return nil, err
		}
		video.ThumbnailURL = strings.TrimSpace(*update.ThumbnailURL)
	}
	if update.VideoURL != nil {
		if err := validateMedia("video URL", *update.VideoURL); err != nil {
			return nil, err
		}
		video.VideoURL = strings.TrimSpace(*update.VideoURL)
	}
	if update.Category != nil {
		if err := validateCategory(*update.Category); err != nil {
			return nil, err
		}
		video.Category = strings.TrimSpace(*update.Category)
	}

	if err := s.videos.UpdateMetadata(ctx, video); err != nil {
		return nil, err
	}
	return s.Get(ctx, video.ID)
}

func (s *videoService) Delete(ctx context.Context, id, actorID string) error {
	video, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}
	if video.Uploader != actorID {
		return fmt.Errorf("%w: not authorized", domain.ErrForbidden)
	}
	return s.videos.Delete(ctx, video.ID)
}

// RegisterView counts every call; there is no per-viewer deduplication.
func (s *videoService) RegisterView(ctx context.Context, id string) (int64, error) {
	id, err := canonicalID("video", id)
	if err != nil {
		return 0, err
	}
	views, err := s.videos.IncrementViews(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, fmt.Errorf("%w: video not found", domain.ErrNotFound)
		}
		return 0, err
	}
	s.recorder.ViewRegistered()
	return views, nil
}

func (s *videoService) lookup(ctx context.Context, id string) (*domain.Video, error) {
	id, err := canonicalID("video", id)
	if err != nil {
		return nil, err
	}
	video, err := s.videos.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: video not found", domain.ErrNotFound)
		}
		return nil, err
	}
	return video, nil
}

// annotate resolves every uploader of the batch in one lookup.
func (s *videoService) annotate(ctx context.Context, videos []domain.Video) ([]VideoDetails, error) {
	ids := make([]string, len(videos))
	for i := range videos {
		ids[i] = videos[i].Uploader
	}
	names, err := s.usernames.Resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	details := make([]VideoDetails, len(videos))
	for i := range videos {
		details[i] = VideoDetails{
			Video:            videos[i],
			UploaderUsername: usernameOr(names, videos[i].Uploader),
		}
	}
	return details, nil
}

func validateVideoInput(input domain.VideoInput) error {
	if err := validateTitle(input.Title); err != nil {
		return err
	}
	if err := validateDescription(input.Description); err != nil {
		return err
	}
	if err := validateMedia("thumbnail URL", input.ThumbnailURL); err != nil {
		return err
	}
	if err := validateMedia("video URL", input.VideoURL); err != nil {
		return err
	}
	return validateCategory(input.Category)
}
