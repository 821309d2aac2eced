// Package metrics holds the Prometheus collectors of the discovery service.
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "github.com/atul950/NearBuy-ed/pkg/errors"
)

var (
	catalogRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_catalog_requests_total",
			Help: "Total number of catalog requests by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	catalogDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "discovery_catalog_request_duration_seconds",
			Help:    "Duration of catalog requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	staleResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_stale_responses_discarded_total",
			Help: "Total number of catalog responses dropped because a newer request was issued",
		},
		[]string{"view"},
	)

	liveSessions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "discovery_sessions_live",
			Help: "Number of open view sessions",
		},
		[]string{"view"},
	)

	reviewSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_review_submissions_total",
			Help: "Total number of review submissions by outcome",
		},
		[]string{"outcome"},
	)
)

// Outcome returns the metric label for err: "ok" or the lower-cased error
// kind.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return strings.ToLower(apperrors.Kind(err))
}

// ObserveCatalog records one catalog request that started at start.
func ObserveCatalog(operation string, start time.Time, err error) {
	catalogRequests.WithLabelValues(operation, Outcome(err)).Inc()
	catalogDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// StaleDiscarded counts a response dropped by a view.
func StaleDiscarded(view string) {
	staleResponses.WithLabelValues(view).Inc()
}

// SetLiveSessions reports the number of open sessions of a view kind.
func SetLiveSessions(view string, n int) {
	liveSessions.WithLabelValues(view).Set(float64(n))
}

// ReviewSubmitted counts a review submission attempt.
func ReviewSubmitted(err error) {
	reviewSubmissions.WithLabelValues(Outcome(err)).Inc()
}
