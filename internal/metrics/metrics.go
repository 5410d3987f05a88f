package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the service's Prometheus instruments.
type Collector struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	reactions    *prometheus.CounterVec
	views        prometheus.Counter
	comments     *prometheus.CounterVec
}

// New registers the instruments on reg. Tests pass a fresh prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vidhub_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vidhub_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		reactions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vidhub_reactions_total",
			Help: "Like/dislike toggles by requested reaction and resulting state",
		}, []string{"reaction", "result"}),
		views: factory.NewCounter(prometheus.CounterOpts{
			Name: "vidhub_video_views_total",
			Help: "Registered video views",
		}),
		comments: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vidhub_comments_total",
			Help: "Comment mutations by operation",
		}, []string{"op"}),
	}
}

// Middleware records request counts and latency keyed by the matched route template.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := ctx.Request.Method
		c.httpRequests.WithLabelValues(method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
		c.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// ReactionToggled counts a toggle; result is the reaction held afterwards ("none" when cleared).
func (c *Collector) ReactionToggled(reaction, result string) {
	if result == "" {
		result = "none"
	}
	c.reactions.WithLabelValues(reaction, result).Inc()
}

func (c *Collector) ViewRegistered() {
	c.views.Inc()
}

func (c *Collector) CommentAdded() {
	c.comments.WithLabelValues("add").Inc()
}

func (c *Collector) CommentDeleted() {
	c.comments.WithLabelValues("delete").Inc()
}
