// SignalRank - Hybrid Content Ranking and Interest Adaptation Service
// Copyright 2026 M. Velan (mvelan)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvelan/signalrank

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - Ranking request latency, throughput, and strategy mix
// - Signal adapter health and degradation
// - Interest vector updates and write contention
// - Circuit breaker state for upstream engines
// - API endpoint latency and throughput

var (
	// Ranking Metrics
	RankRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rank_requests_total",
			Help: "Total number of ranking requests",
		},
		[]string{"strategy", "outcome"}, // strategy: cold_start|hybrid, outcome: ok|error
	)

	RankDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rank_duration_seconds",
			Help:    "Ranking request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"strategy"},
	)

	RankCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rank_candidates",
			Help:    "Number of distinct candidates considered per ranking request",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 200},
		},
	)

	// Signal Adapter Metrics
	SignalRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_requests_total",
			Help: "Total number of signal adapter calls",
		},
		[]string{"source", "outcome"}, // outcome: ok|error|timeout
	)

	SignalDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "signal_duration_seconds",
			Help:    "Signal adapter call duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"source"},
	)

	// Interest Update Metrics
	InterestUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interest_updates_total",
			Help: "Total number of interest vector updates",
		},
		[]string{"trigger", "outcome"}, // trigger: interaction|onboard|search
	)

	InterestUpdateConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "interest_update_conflicts_total",
			Help: "Total number of optimistic-concurrency conflicts during interest updates",
		},
	)

	InteractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interactions_total",
			Help: "Total number of tracked interactions",
		},
		[]string{"action"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breakers",
		},
		[]string{"name", "result"}, // result: success|failure|rejected
	)

	// API Endpoint Metrics
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
)

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRank records one completed ranking request.
func RecordRank(strategy string, err error, candidates int, duration time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	RankRequestsTotal.WithLabelValues(strategy, outcome).Inc()
	if err == nil {
		RankDuration.WithLabelValues(strategy).Observe(duration.Seconds())
		RankCandidates.Observe(float64(candidates))
	}
}

// RecordInterestUpdate records one interest vector update attempt.
func RecordInterestUpdate(trigger string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	InterestUpdatesTotal.WithLabelValues(trigger, outcome).Inc()
}

// RecordSignal records one signal adapter call.
func RecordSignal(source, outcome string, duration time.Duration) {
	SignalRequestsTotal.WithLabelValues(source, outcome).Inc()
	SignalDuration.WithLabelValues(source).Observe(duration.Seconds())
}
