package handler

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// MetricsHandler handles Prometheus metrics endpoint
type MetricsHandler struct {
}

var (
	// HTTP request duration histogram
	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "flickster_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"method", "path", "status"})

	// Active connections gauge
	activeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "flickster_active_connections",
		Help: "Number of active connections",
	})

	// Total requests counter
	totalRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flickster_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	// Media upload size histogram
	mediaUploadSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "flickster_media_upload_size_bytes",
		Help:    "Size of uploaded media files in bytes",
		Buckets: []float64{10 * 1024, 100 * 1024, 1024 * 1024, 10 * 1024 * 1024, 100 * 1024 * 1024, 1024 * 1024 * 1024},
	}, []string{"kind"})

	// Total media files uploaded
	mediaUploaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flickster_media_uploaded_total",
		Help: "Total number of media files uploaded",
	}, []string{"kind"})

	// Accounts registered
	usersRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flickster_users_registered_total",
		Help: "Total number of registered accounts",
	})

	// Password recovery tokens issued
	recoveryTokensIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flickster_recovery_tokens_issued_total",
		Help: "Total number of password recovery tokens issued",
	})

	// Failed authentication attempts counter
	authFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flickster_auth_failures_total",
		Help: "Total number of failed authentication attempts",
	}, []string{"reason"})
)

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// Handler returns the Prometheus metrics handler for Fiber
func (h *MetricsHandler) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Gather metrics from the default registry
		mfs, err := prometheus.DefaultGatherer.Gather()
		if err != nil {
			return c.Status(500).SendString("Failed to gather metrics")
		}

		// Format as Prometheus text format
		var sb strings.Builder
		for _, mf := range mfs {
			if _, err := expfmt.MetricFamilyToText(&sb, mf); err != nil {
				return c.Status(500).SendString("Failed to format metrics")
			}
		}

		c.Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		return c.SendString(sb.String())
	}
}

// MetricsMiddleware records HTTP metrics for each request
func MetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Increment active connections
		activeConnections.Inc()
		defer activeConnections.Dec()
		start := time.Now()

		// Continue request processing
		err := c.Next()

		// Record metrics
		status := c.Response().StatusCode()
		path := c.Route().Path
		if path == "" {
			path = "__unmatched__"
		}

		statusStr := "200"
		if status >= 200 && status < 300 {
			statusStr = "2xx"
		} else if status >= 300 && status < 400 {
			statusStr = "3xx"
		} else if status >= 400 && status < 500 {
			statusStr = "4xx"
		} else if status >= 500 {
			statusStr = "5xx"
		}

		totalRequests.WithLabelValues(c.Method(), path, statusStr).Inc()
		httpDuration.WithLabelValues(c.Method(), path, statusStr).Observe(time.Since(start).Seconds())

		return err
	}
}

// RecordMediaUpload records metrics for a media upload. kind is "image" or
// "video".
func RecordMediaUpload(kind string, size float64) {
	mediaUploadSize.WithLabelValues(kind).Observe(size)
	mediaUploaded.WithLabelValues(kind).Inc()
}

// RecordUserRegistered increments the registered accounts counter.
func RecordUserRegistered() {
	usersRegistered.Inc()
}

// RecordRecoveryTokenIssued increments the recovery tokens counter.
func RecordRecoveryTokenIssued() {
	recoveryTokensIssued.Inc()
}

// RecordAuthFailure increments the failed auth counter with a reason label.
func RecordAuthFailure(reason string) {
	authFailures.WithLabelValues(reason).Inc()
}
