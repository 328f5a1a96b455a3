package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Reference metrics
	LocateResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinref_locate_results_total",
			Help: "Total number of reference extract lookups by outcome",
		},
		[]string{"status"}, // found, partial, not_found, no_source, no_occurrence
	)

	CitationMarkers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinref_citation_markers_total",
			Help: "Total number of citation markers hydrated",
		},
		[]string{"kind"}, // citation, placeholder
	)

	// Backend metrics
	BackendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinref_backend_requests_total",
			Help: "Total number of requests sent to the summarization backend",
		},
		[]string{"operation", "outcome"},
	)

	BackendLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clinref_backend_latency_seconds",
			Help:    "Summarization backend request latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"operation"},
	)

	FallbackRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinref_fallback_retries_total",
			Help: "Total number of retries against the fallback database",
		},
		[]string{"operation", "outcome"},
	)

	// Streaming metrics
	StreamChunksDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clinref_stream_chunks_dropped_total",
			Help: "Total number of answer chunks dropped because they arrived after completion",
		},
	)

	StreamsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clinref_streams_active",
			Help: "Number of answer streams currently open",
		},
	)

	// Panel metrics
	PanelsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clinref_panels_active",
			Help: "Number of open reference panels",
		},
	)

	TypeaheadSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clinref_typeahead_sessions_active",
			Help: "Number of open typeahead websocket sessions",
		},
	)

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinref_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "status"},
	)

	HTTPLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clinref_http_latency_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

// RecordBackendRequest records one backend call
func RecordBackendRequest(operation, outcome string, duration time.Duration) {
	BackendRequests.WithLabelValues(operation, outcome).Inc()
	BackendLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordHTTPRequest records one served request
func RecordHTTPRequest(method string, status int, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, statusClass(status)).Inc()
	HTTPLatency.WithLabelValues(method).Observe(duration.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
