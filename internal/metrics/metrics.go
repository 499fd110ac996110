// Package metrics exposes Prometheus collectors for the ingestion service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	submissionsTotal           *prometheus.CounterVec
	scoutFailuresTotal         *prometheus.CounterVec
	emailsTotal                *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		submissionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scout_submissions_total",
				Help: "Total listing submissions, labeled by category, strategy and status.",
			},
			[]string{"category", "strategy", "status"},
		)

		scoutFailuresTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scout_failures_total",
				Help: "Total extractor failures absorbed into placeholder metadata, labeled by strategy.",
			},
			[]string{"strategy"},
		)

		emailsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scout_emails_total",
				Help: "Total notification emails attempted, labeled by kind and outcome.",
			},
			[]string{"kind", "outcome"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveSubmission increments the submission counter.
func ObserveSubmission(category, strategy, status string) {
	submissionsTotal.WithLabelValues(category, strategy, status).Inc()
}

// ObserveScoutFailure counts an absorbed extractor failure.
func ObserveScoutFailure(strategy string) {
	scoutFailuresTotal.WithLabelValues(strategy).Inc()
}

// ObserveEmail counts a notification attempt.
func ObserveEmail(kind, outcome string) {
	emailsTotal.WithLabelValues(kind, outcome).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
