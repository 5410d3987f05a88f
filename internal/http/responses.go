package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vidhub/internal/domain"
	"vidhub/internal/service"
)

type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
}

type ChannelResponse struct {
	ChannelID       string   `json:"channelId"`
	ChannelName     string   `json:"channelName"`
	Description     string   `json:"description"`
	ChannelBanner   string   `json:"channelBanner"`
	Owner           string   `json:"owner"`
	OwnerUsername   string   `json:"ownerUsername"`
	SubscriberCount int      `json:"subscriberCount"`
	Subscribers     []string `json:"subscribers"`
	CreatedAt       string   `json:"createdAt"`
}

type VideoResponse struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	ThumbnailURL     string   `json:"thumbnailUrl"`
	VideoURL         string   `json:"videoUrl"`
	Category         string   `json:"category"`
	ChannelID        string   `json:"channelId"`
	Uploader         string   `json:"uploader"`
	UploaderUsername string   `json:"uploaderUsername"`
	Views            int64    `json:"views"`
	Likes            int64    `json:"likes"`
	Dislikes         int64    `json:"dislikes"`
	LikedBy          []string `json:"likedBy"`
	DislikedBy       []string `json:"dislikedBy"`
	UploadDate       string   `json:"uploadDate"`
}

// VideoDetailResponse is a single video with its annotated comments.
type VideoDetailResponse struct {
	VideoResponse
	Comments []CommentResponse `json:"comments"`
}

type CommentResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: formatTime(user.CreatedAt),
	}
}

func (h *Handler) respondChannel(c *gin.Context, status int, channel *service.ChannelDetails) {
	banner, err := h.media.Resolve(c.Request.Context(), channel.Channel.Banner)
	if err != nil {
		h.writeError(c, err)
		return
	}

	subscribers := nonNil(channel.Channel.Subscribers)
	c.JSON(status, ChannelResponse{
		ChannelID:       channel.Channel.ChannelID,
		ChannelName:     channel.Channel.Name,
		Description:     channel.Channel.Description,
		ChannelBanner:   banner,
		Owner:           channel.Channel.OwnerID,
		OwnerUsername:   channel.OwnerUsername,
		SubscriberCount: len(subscribers),
		Subscribers:     subscribers,
		CreatedAt:       formatTime(channel.Channel.CreatedAt),
	})
}

func (h *Handler) respondVideos(c *gin.Context, videos []service.VideoDetails) {
	resp := make([]VideoResponse, len(videos))
	for i := range videos {
		v, err := h.videoToResponse(c.Request.Context(), videos[i])
		if err != nil {
			h.writeError(c, err)
			return
		}
		resp[i] = v
	}
	c.JSON(http.StatusOK, resp)
}

// videoToResponse presigns stored object references so clients always get fetchable URLs.
func (h *Handler) videoToResponse(ctx context.Context, details service.VideoDetails) (VideoResponse, error) {
	video := details.Video
	thumbnail, err := h.media.Resolve(ctx, video.ThumbnailURL)
	if err != nil {
		return VideoResponse{}, err
	}
	videoURL, err := h.media.Resolve(ctx, video.VideoURL)
	if err != nil {
		return VideoResponse{}, err
	}

	return VideoResponse{
		ID:               video.ID,
		Title:            video.Title,
		Description:      video.Description,
		ThumbnailURL:     thumbnail,
		VideoURL:         videoURL,
		Category:         video.Category,
		ChannelID:        video.ChannelID,
		Uploader:         video.Uploader,
		UploaderUsername: details.UploaderUsername,
		Views:            video.Views,
		Likes:            video.Likes,
		Dislikes:         video.Dislikes,
		LikedBy:          nonNil(video.LikedBy),
		DislikedBy:       nonNil(video.DislikedBy),
		UploadDate:       formatTime(video.UploadDate),
	}, nil
}

func (h *Handler) videoDetailToResponse(ctx context.Context, details service.VideoDetails) (VideoDetailResponse, error) {
	base, err := h.videoToResponse(ctx, details)
	if err != nil {
		return VideoDetailResponse{}, err
	}
	resp := VideoDetailResponse{
		VideoResponse: base,
		Comments:      make([]CommentResponse, len(details.Comments)),
	}
	for i := range details.Comments {
		resp.Comments[i] = commentToResponse(details.Comments[i])
	}
	return resp, nil
}

func commentToResponse(comment service.CommentDetails) CommentResponse {
	return CommentResponse{
		ID:        comment.Comment.ID,
		UserID:    comment.Comment.UserID,
		Username:  comment.Username,
		Text:      comment.Comment.Text,
		Timestamp: formatTime(comment.Comment.CreatedAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
