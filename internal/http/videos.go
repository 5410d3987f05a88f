package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vidhub/internal/domain"
)

type uploadVideoRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnailUrl"`
	VideoURL     string `json:"videoUrl"`
	ChannelID    string `json:"channelId"`
	Category     string `json:"category"`
	Uploader     string `json:"uploader"`
}

// updateVideoRequest lists the only fields an uploader may change. Anything else in
// the body is dropped by the decoder.
type updateVideoRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	ThumbnailURL *string `json:"thumbnailUrl"`
	VideoURL     *string `json:"videoUrl"`
	Category     *string `json:"category"`
}

type commentRequest struct {
	Text string `json:"text"`
}

func (h *Handler) uploadVideo(c *gin.Context) {
	var req uploadVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	video, err := h.videos.Upload(c.Request.Context(), currentIdentity(c).ID, domain.VideoInput{
		Title:        req.Title,
		Description:  req.Description,
		ThumbnailURL: req.ThumbnailURL,
		VideoURL:     req.VideoURL,
		Category:     req.Category,
		ChannelID:    req.ChannelID,
		Uploader:     req.Uploader,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp, err := h.videoToResponse(c.Request.Context(), *video)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Video uploaded successfully", "video": resp})
}

func (h *Handler) listVideos(c *gin.Context) {
	videos, err := h.videos.List(c.Request.Context(), domain.VideoFilter{
		Title:    c.Query("title"),
		Category: c.Query("category"),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.respondVideos(c, videos)
}

func (h *Handler) listChannelVideos(c *gin.Context) {
	videos, err := h.videos.ListByChannel(c.Request.Context(), c.Param("channelId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.respondVideos(c, videos)
}

func (h *Handler) getVideo(c *gin.Context) {
	video, err := h.videos.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp, err := h.videoDetailToResponse(c.Request.Context(), *video)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) updateVideo(c *gin.Context) {
	var req updateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	video, err := h.videos.Update(c.Request.Context(), c.Param("id"), currentIdentity(c).ID, domain.VideoUpdate{
		Title:        req.Title,
		Description:  req.Description,
		ThumbnailURL: req.ThumbnailURL,
		VideoURL:     req.VideoURL,
		Category:     req.Category,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp, err := h.videoDetailToResponse(c.Request.Context(), *video)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Video updated", "video": resp})
}

func (h *Handler) deleteVideo(c *gin.Context) {
	if err := h.videos.Delete(c.Request.Context(), c.Param("id"), currentIdentity(c).ID); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Video deleted"})
}

func (h *Handler) registerView(c *gin.Context) {
	views, err := h.videos.RegisterView(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"views": views})
}

func (h *Handler) likeVideo(c *gin.Context) {
	counts, err := h.engagement.Like(c.Request.Context(), c.Param("id"), currentIdentity(c).ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"likes": counts.Likes, "dislikes": counts.Dislikes})
}

func (h *Handler) dislikeVideo(c *gin.Context) {
	counts, err := h.engagement.Dislike(c.Request.Context(), c.Param("id"), currentIdentity(c).ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"likes": counts.Likes, "dislikes": counts.Dislikes})
}

func (h *Handler) addComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	comment, err := h.engagement.AddComment(c.Request.Context(), c.Param("id"), currentIdentity(c).ID, req.Text)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment added", "comment": commentToResponse(*comment)})
}

func (h *Handler) deleteCommentAt(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.writeError(c, fmt.Errorf("%w: invalid comment index", domain.ErrValidation))
		return
	}

	if err := h.engagement.DeleteCommentAt(c.Request.Context(), c.Param("id"), currentIdentity(c).ID, index); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}

func (h *Handler) deleteComment(c *gin.Context) {
	err := h.engagement.DeleteComment(c.Request.Context(), c.Param("id"), currentIdentity(c).ID, c.Param("commentId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}
