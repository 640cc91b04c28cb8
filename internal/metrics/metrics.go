// Package metrics defines the Prometheus instrumentation for lazythumbs.
// All metrics are prefixed with "lazythumbs_".
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Render outcomes
const (
	OutcomeNegativeHit   = "negative_hit"
	OutcomeStored        = "stored"
	OutcomeRendered      = "rendered"
	OutcomeRaceRecovered = "race_recovered"
	OutcomeNotFound      = "not_found"
	OutcomeInvalid       = "invalid"
	OutcomeError         = "error"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lazythumbs_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lazythumbs_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lazythumbs_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Render metrics
var (
	RendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lazythumbs_renders_total",
			Help: "Total number of render requests by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	RenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lazythumbs_render_duration_seconds",
			Help:    "Time spent decoding, transforming and encoding a thumbnail",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"action"},
	)

	EncodeRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lazythumbs_encode_retries_total",
			Help: "Encodes retried with bare options after the tuned encode failed",
		},
	)
)

// Cache metrics
var (
	CacheErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lazythumbs_cache_errors_total",
			Help: "Negative-result cache errors by operation",
		},
		[]string{"op"},
	)
)
