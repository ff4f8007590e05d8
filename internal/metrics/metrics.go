// Package metrics holds the Prometheus collectors for the HTTP layer, the
// matching pipeline and the catalog store.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "setmatch_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "setmatch_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "setmatch_http_active_requests",
			Help: "Number of HTTP requests being served",
		},
	)

	// Pipeline
	CandidatesPerRequest = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "setmatch_candidates_per_request",
			Help:    "Number of candidate sets selected per comparison",
			Buckets: []float64{0, 10, 100, 1000, 5000, 10000, 25000, 50000},
		},
	)

	BatchesEmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "setmatch_batches_emitted_total",
			Help: "Scored batches written to clients",
		},
	)

	BatchErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "setmatch_batch_errors_total",
			Help: "Batches whose scoring query failed",
		},
	)

	StreamsAborted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "setmatch_streams_aborted_total",
			Help: "Comparison streams stopped because the client went away",
		},
	)

	// Catalog store
	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "setmatch_store_query_duration_seconds",
			Help:    "Duration of catalog store calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	StoreQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "setmatch_store_query_errors_total",
			Help: "Catalog store calls that returned an error",
		},
		[]string{"operation"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "setmatch_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// RecordAPIRequest records one finished HTTP request.
func RecordAPIRequest(method, route, status string, d time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// TrackActiveRequest moves the active request gauge up or down.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// ObserveStore records one catalog store call.
func ObserveStore(op string, d time.Duration, err error) {
	StoreQueryDuration.WithLabelValues(op).Observe(d.Seconds())
	if err != nil {
		StoreQueryErrors.WithLabelValues(op).Inc()
	}
}
