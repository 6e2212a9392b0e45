package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// PrometheusMetrics contient toutes les métriques Prometheus
type PrometheusMetrics struct {
	// Métriques HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Métriques du pipeline de recommandations
	PipelineDuration  *prometheus.HistogramVec
	CacheHitsTotal    *prometheus.CounterVec
	SkipBurstsTotal   prometheus.Counter
	ColdStartsTotal   prometheus.Counter
	EmptyResultsTotal prometheus.Counter

	// Métriques du canal de push
	PushSessionsActive prometheus.Gauge
	PushUsersActive    prometheus.Gauge
	PushEmitsTotal     *prometheus.CounterVec
	RefreshesTotal     *prometheus.CounterVec

	// Registry
	registry *prometheus.Registry
	logger   *zap.Logger
}

// NewPrometheusMetrics crée une nouvelle instance des métriques
func NewPrometheusMetrics(logger *zap.Logger) *PrometheusMetrics {
	registry := prometheus.NewRegistry()

	metrics := &PrometheusMetrics{
		registry: registry,
		logger:   logger,

		HTTPRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "auralis_backend",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "auralis_backend",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
			},
			[]string{"method", "endpoint", "status_code"},
		),

		PipelineDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "auralis_backend",
				Subsystem: "recommendations",
				Name:      "pipeline_duration_seconds",
				Help:      "Recommendation pipeline duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
			},
			[]string{"path"},
		),

		CacheHitsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "auralis_backend",
				Subsystem: "recommendations",
				Name:      "cache_events_total",
				Help:      "Recommendation cache hits and misses",
			},
			[]string{"result"},
		),

		SkipBurstsTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Namespace: "auralis_backend",
				Subsystem: "recommendations",
				Name:      "skip_bursts_total",
				Help:      "Skip bursts detected on the interaction write path",
			},
		),

		ColdStartsTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Namespace: "auralis_backend",
				Subsystem: "recommendations",
				Name:      "cold_starts_total",
				Help:      "Requests served through the cold-start branch",
			},
		),

		EmptyResultsTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Namespace: "auralis_backend",
				Subsystem: "recommendations",
				Name:      "empty_results_total",
				Help:      "Recommendation responses returned with an empty track list",
			},
		),

		PushSessionsActive: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Namespace: "auralis_backend",
				Subsystem: "push",
				Name:      "sessions_active",
				Help:      "Current number of live push sessions",
			},
		),

		PushUsersActive: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Namespace: "auralis_backend",
				Subsystem: "push",
				Name:      "users_active",
				Help:      "Current number of users with at least one live session",
			},
		),

		PushEmitsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "auralis_backend",
				Subsystem: "push",
				Name:      "emits_total",
				Help:      "Per-session emit outcomes during fan-out",
			},
			[]string{"result"},
		),

		RefreshesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "auralis_backend",
				Subsystem: "push",
				Name:      "refreshes_total",
				Help:      "Refresh triggers by reason",
			},
			[]string{"reason"},
		),
	}

	return metrics
}

// GinMiddleware middleware d'instrumentation des requêtes HTTP
func (m *PrometheusMetrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, endpoint, status).Observe(time.Since(start).Seconds())
	}
}

// Handler expose le registre au format Prometheus
func (m *PrometheusMetrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
