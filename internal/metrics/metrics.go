// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

// Package metrics holds the Prometheus collectors of the client.
//
// Collectors register on the default registry through promauto. The dev proxy
// exposes them at /metrics; the CLI never serves them.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Client Metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metroline_http_requests_total",
			Help: "Backend requests by origin, method and status code",
		},
		[]string{"origin", "method", "status"}, // status "0" for transport failures
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "metroline_http_request_duration_seconds",
			Help:    "Backend request latency",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"origin", "method"},
	)

	HTTPErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metroline_http_errors_total",
			Help: "Backend request failures by origin and error kind",
		},
		[]string{"origin", "kind"}, // kind: transport, application, envelope
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "metroline_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metroline_circuit_breaker_requests_total",
			Help: "Requests through the circuit breaker",
		},
		[]string{"name", "result"}, // result: success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metroline_circuit_breaker_state_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Query Cache Metrics
	QueryFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metroline_query_fetches_total",
			Help: "Query fetches by key root and outcome",
		},
		[]string{"root", "outcome"}, // outcome: success, error, cancelled
	)

	QueryDeduplicated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "metroline_query_deduplicated_total",
			Help: "Fetch requests served by an in-flight fetch of the same key",
		},
	)

	QueryInvalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "metroline_query_invalidated_entries_total",
			Help: "Entries marked stale by prefix invalidation",
		},
	)

	QueryEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "metroline_query_entries",
			Help: "Entries currently held by the query cache",
		},
	)

	QueryEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "metroline_query_gc_evictions_total",
			Help: "Entries removed by garbage collection",
		},
	)

	// Session Metrics
	SessionWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metroline_session_writes_total",
			Help: "Durable session writes by operation and result",
		},
		[]string{"operation", "result"},
	)

	SessionAuthenticated = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "metroline_session_authenticated",
			Help: "1 when a profile is held by the session store",
		},
	)

	// Admin Statistics Metrics
	AdminStatsFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metroline_admin_stats_fetches_total",
			Help: "Admin statistics fetches by statistic and result",
		},
		[]string{"stat", "result"},
	)
)

// RecordHTTPRequest records one backend round trip. Status 0 means no response.
func RecordHTTPRequest(origin, method string, status int, duration time.Duration) {
	HTTPRequests.WithLabelValues(origin, method, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(origin, method).Observe(duration.Seconds())
}

// RecordHTTPError counts a classified failure.
func RecordHTTPError(origin, kind string) {
	HTTPErrors.WithLabelValues(origin, kind).Inc()
}

// RecordQueryFetch counts a completed fetch for the first element of a key.
func RecordQueryFetch(root, outcome string) {
	QueryFetches.WithLabelValues(root, outcome).Inc()
}

// RecordSessionWrite counts a durable session write.
func RecordSessionWrite(operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	SessionWrites.WithLabelValues(operation, result).Inc()
}

// SetSessionAuthenticated mirrors the session flag.
func SetSessionAuthenticated(authenticated bool) {
	if authenticated {
		SessionAuthenticated.Set(1)
		return
	}
	SessionAuthenticated.Set(0)
}

// RecordAdminStatsFetch counts one statistics request.
func RecordAdminStatsFetch(stat string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	AdminStatsFetches.WithLabelValues(stat, result).Inc()
}
