// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

// Package metrics declares the Prometheus instruments exported on /metrics.
//
// Instruments cover:
//   - behavior tracking volume and profile population
//   - refresh decisions, backend refresh and sync calls
//   - scheduled sweeps and weekly batches
//   - backend circuit breaker state
//   - HTTP API latency and throughput
//   - profile store latency and errors
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Behavior tracking
	EventsTracked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paperlens_events_tracked_total",
			Help: "Total number of behavior events tracked",
		},
		[]string{"kind"}, // search, activity, paper_view, bookmark, like, deep_dive, domain
	)

	ProfilesKnown = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "paperlens_profiles_known",
			Help: "Number of user profiles held by the engine",
		},
	)

	ProfilesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "paperlens_profiles_created_total",
			Help: "Total number of profiles created on first access",
		},
	)

	ProfilesErased = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "paperlens_profiles_erased_total",
			Help: "Total number of privacy erasures",
		},
	)

	// Refresh scheduler
	RefreshRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paperlens_refresh_requests_total",
			Help: "Total number of backend refresh requests by trigger and result",
		},
		[]string{"trigger", "result"}, // trigger: event, sweep, weekly, manual; result: success, failure, skipped
	)

	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "paperlens_refresh_duration_seconds",
			Help:    "Duration of backend refresh requests",
			Buckets: prometheus.DefBuckets,
		},
	)

	SyncRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paperlens_history_sync_total",
			Help: "Total number of search history sync attempts by result",
		},
		[]string{"result"}, // success, failure, suppressed, skipped
	)

	ScheduledRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paperlens_scheduled_runs_total",
			Help: "Total number of sweep and weekly batch runs",
		},
		[]string{"job"},
	)

	ScheduledUsers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paperlens_scheduled_users_total",
			Help: "Users visited by scheduled jobs, by outcome",
		},
		[]string{"job", "outcome"}, // outcome: refreshed, failed, skipped
	)

	NextAnchorTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "paperlens_next_weekly_anchor_timestamp_seconds",
			Help: "Unix time of the next weekly batch activation",
		},
	)

	// Circuit breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Storage
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paperlens_store_operation_duration_seconds",
			Help:    "Duration of profile store operations",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"backend", "operation"},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paperlens_store_errors_total",
			Help: "Total number of failed profile store operations",
		},
		[]string{"backend", "operation"},
	)

	// HTTP API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of in-flight API requests",
		},
	)
)

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRefresh records the outcome of one backend refresh request.
func RecordRefresh(trigger string, duration time.Duration, ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	RefreshRequests.WithLabelValues(trigger, result).Inc()
	RefreshDuration.Observe(duration.Seconds())
}

// RecordStoreOperation records latency and failure of a store call.
func RecordStoreOperation(backend, operation string, duration time.Duration, err error) {
	StoreOperationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
	if err != nil {
		StoreErrors.WithLabelValues(backend, operation).Inc()
	}
}
