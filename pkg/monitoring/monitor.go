package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	AttemptsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_attempts_started_total",
			Help: "Assessment attempts started",
		},
		[]string{"definition"},
	)

	AttemptsFinalized = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_attempts_finalized_total",
			Help: "Assessment attempts finalized",
		},
		[]string{"definition"},
	)

	AttemptsAbandoned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "assessment_attempts_abandoned_total",
			Help: "In-progress attempts marked abandoned by the sweeper",
		},
	)

	ValidityWarnings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_validity_warnings_total",
			Help: "Validity warnings raised on finalized attempts",
		},
		[]string{"warning"},
	)

	RetakeDenied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_retake_denied_total",
			Help: "Start requests refused by the retake governor",
		},
		[]string{"reason"},
	)

	ScoringDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assessment_scoring_duration_seconds",
			Help:    "Time spent evaluating one attempt",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	ResultCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_result_cache_total",
			Help: "Result lookups by source",
		},
		[]string{"source"}, // redis, db, computed
	)
)

var registerOnce sync.Once

// Init registers all collectors; repeated calls are no-ops.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			AttemptsStarted,
			AttemptsFinalized,
			AttemptsAbandoned,
			ValidityWarnings,
			RetakeDenied,
			ScoringDuration,
			ResultCacheLookups,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
