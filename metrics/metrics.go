// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Results pipeline
var (
	// AggregationsTotal counts results views built
	AggregationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pollview_aggregations_total",
			Help: "Total results views built",
		},
	)

	// IntegrityIssuesTotal counts tally problems found by kind
	IntegrityIssuesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pollview_integrity_issues_total",
			Help: "Tally integrity issues by kind",
		},
		[]string{"kind"},
	)

	// StaleViewsTotal counts views served from a stored snapshot
	StaleViewsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pollview_stale_views_total",
			Help: "Results views served from a stored snapshot after an upstream failure",
		},
	)

	SnapshotsSavedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pollview_snapshots_saved_total",
			Help: "Total result snapshots persisted",
		},
	)
)

// Upstream API
var (
	// UpstreamRequestDuration tracks upstream latency in seconds
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pollview_upstream_request_duration_seconds",
			Help:    "Upstream poll API request duration by operation and status",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"operation", "status"},
	)

	// CircuitBreakerState tracks the upstream breaker (0=closed, 1=half-open, 2=open)
	CircuitBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pollview_upstream_circuit_breaker_state",
			Help: "Upstream circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	VotesForwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pollview_votes_forwarded_total",
			Help: "Vote submissions forwarded upstream by outcome",
		},
		[]string{"outcome"},
	)

	VotesRateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pollview_votes_rate_limited_total",
			Help: "Vote submissions rejected by the per-client rate limiter",
		},
	)
)

// Cache
var (
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pollview_cache_hits_total",
			Help: "Results cache hits by layer",
		},
		[]string{"layer"},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pollview_cache_misses_total",
			Help: "Results cache misses that reached upstream",
		},
	)

	CacheErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pollview_cache_errors_total",
			Help: "Redis cache errors by operation",
		},
		[]string{"operation"},
	)
)

// Live stream
var (
	LiveConnectionsCurrent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pollview_live_connections_current",
			Help: "Current live websocket connections",
		},
	)

	LiveMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pollview_live_messages_total",
			Help: "Live websocket messages sent by type",
		},
		[]string{"type"},
	)
)
