// Clipstream - Video Sharing Platform Backend
// Copyright 2026 Clipstream Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipstream/clipstream

// Package metrics registers the process Prometheus collectors: HTTP request
// latency and throughput, store query performance, media-host client health,
// and domain counters for the toggle operations.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics.
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
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Store metrics.
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// Media-host client metrics.
	MediaRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_host_requests_total",
			Help: "Total number of media host requests",
		},
		[]string{"operation", "outcome"},
	)

	MediaRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_host_request_duration_seconds",
			Help:    "Media host request duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	// 0 closed, 1 half-open, 2 open.
	MediaBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_host_circuit_breaker_state",
			Help: "Media host circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// Domain counters.
	ToggleOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toggle_operations_total",
			Help: "Total number of like/subscription toggles",
		},
		[]string{"relation", "result"},
	)

	VideoViewsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_views_recorded_total",
			Help: "Total number of unique video views recorded",
		},
	)

	AdminSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "admin_sessions_active",
			Help: "Current number of live admin sessions",
		},
	)
)

// RecordAPIRequest records one completed HTTP request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordDBQuery records one store query.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordMediaRequest records one media-host call.
func RecordMediaRequest(operation string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	MediaRequestsTotal.WithLabelValues(operation, outcome).Inc()
	MediaRequestDuration.Observe(duration.Seconds())
}

// RecordToggle records a like/subscription toggle outcome.
func RecordToggle(relation string, active bool) {
	result := "removed"
	if active {
		result = "added"
	}
	ToggleOperations.WithLabelValues(relation, result).Inc()
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
