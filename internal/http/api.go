package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"vidhub/internal/auth"
	"vidhub/internal/domain"
	"vidhub/internal/metrics"
	"vidhub/internal/service"
	"vidhub/internal/storage"
)

// Options carries the handler's collaborators. Metrics and Gatherer are optional.
type Options struct {
	Users      service.UserService
	Channels   service.ChannelService
	Videos     service.VideoService
	Engagement service.EngagementService
	Tokens     *auth.TokenManager
	Media      storage.Resolver
	Metrics    *metrics.Collector
	Gatherer   prometheus.Gatherer
	Logger     logrus.FieldLogger
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users      service.UserService
	channels   service.ChannelService
	videos     service.VideoService
	engagement service.EngagementService
	tokens     *auth.TokenManager
	media      storage.Resolver
	metrics    *metrics.Collector
	gatherer   prometheus.Gatherer
	logger     logrus.FieldLogger
}

func NewHandler(opts Options) *Handler {
	media := opts.Media
	if media == nil {
		media = storage.Passthrough{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		users:      opts.Users,
		channels:   opts.Channels,
		videos:     opts.Videos,
		engagement: opts.Engagement,
		tokens:     opts.Tokens,
		media:      media,
		metrics:    opts.Metrics,
		gatherer:   opts.Gatherer,
		logger:     logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	router.Use(h.requestLogger())
	if h.metrics != nil {
		router.Use(h.metrics.Middleware())
	}
	if h.gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)
		api.GET("/auth/me", h.authRequired(), h.me)

		api.POST("/channels", h.authRequired(), h.createChannel)
		api.GET("/channels/my", h.authRequired(), h.myChannel)
		api.GET("/channels/:id", h.getChannel)
		api.PUT("/channels/:id", h.authRequired(), h.updateChannel)

		api.POST("/videos/upload", h.authRequired(), h.uploadVideo)
		api.GET("/videos", h.listVideos)
		api.GET("/videos/channel/:channelId", h.listChannelVideos)
		api.GET("/videos/:id", h.getVideo)
		api.PUT("/videos/:id", h.authRequired(), h.updateVideo)
		api.DELETE("/videos/:id", h.authRequired(), h.deleteVideo)
		api.POST("/videos/:id/view", h.registerView)
		api.POST("/videos/:id/like", h.authRequired(), h.likeVideo)
		api.POST("/videos/:id/dislike", h.authRequired(), h.dislikeVideo)
		api.POST("/videos/:id/comment", h.authRequired(), h.addComment)
		api.DELETE("/videos/:id/comment/:index", h.authRequired(), h.deleteCommentAt)
		api.DELETE("/videos/:id/comments/:commentId", h.authRequired(), h.deleteComment)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := h.logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  status,
			"latency": time.Since(start).String(),
			"client":  c.ClientIP(),
		})
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case status >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Debug("request served")
		}
	}
}

// writeError maps an error kind to its status code. Unexpected errors are logged and
// reported without detail.
func (h *Handler) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.WithError(err).WithField("path", c.Request.URL.Path).Error("internal error")
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
