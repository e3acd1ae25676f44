// Package metrics holds Prometheus instruments used across the service.
// All collectors are registered with the global registry, so importing
// this package is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waitlist_submissions_total",
			Help: "Signup submit attempts by outcome.",
		}, []string{"outcome"})

	SubmissionsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "waitlist_submissions_in_flight",
			Help: "Signup inserts currently waiting on the database.",
		})

	PersistDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "waitlist_persist_duration_seconds",
			Help:    "Latency of signup inserts.",
			Buckets: prometheus.DefBuckets,
		})

	CountErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "waitlist_count_errors_total",
			Help: "Cumulative number of failed signup count lookups.",
		})

	RateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "waitlist_rate_limited_total",
			Help: "Requests rejected by the per-client rate limiter.",
		})
)

func init() {
	prometheus.MustRegister(
		SubmissionsTotal,
		SubmissionsInFlight,
		PersistDuration,
		CountErrorsTotal,
		RateLimitedTotal,
	)
}
