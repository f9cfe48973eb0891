// Package metrics exposes Prometheus collectors for the HTTP layer and the
// inquiry pipeline.
package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status_code"},
	)

	httpResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000},
		},
		[]string{"method", "endpoint"},
	)

	// Database metrics
	dbConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_open",
			Help: "Number of open catalog database connections",
		},
	)

	dbConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle catalog database connections",
		},
	)

	// Business metrics
	inquiriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inquiries_total",
			Help: "Total number of submitted inquiries",
		},
		[]string{"kind", "outcome"}, // booking|contact, sent|failed|duplicate
	)

	confirmationCopyFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "confirmation_copy_failures_total",
			Help: "Confirmation copies that could not be delivered after the primary notification",
		},
		[]string{"kind"},
	)
)

// Middleware records request count, latency and response size per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
		httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(time.Since(start).Seconds())
		if size := c.Writer.Size(); size > 0 {
			httpResponseSize.WithLabelValues(method, endpoint).Observe(float64(size))
		}
	}
}

// Handler serves the registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordInquiry counts a submission by kind and outcome.
func RecordInquiry(kind, outcome string) {
	inquiriesTotal.WithLabelValues(kind, outcome).Inc()
}

func RecordConfirmationCopyFailure(kind string) {
	confirmationCopyFailuresTotal.WithLabelValues(kind).Inc()
}

// UpdateDBConnections copies the pool statistics into the gauges.
func UpdateDBConnections(stats sql.DBStats) {
	dbConnectionsOpen.Set(float64(stats.OpenConnections))
	dbConnectionsIdle.Set(float64(stats.Idle))
}
