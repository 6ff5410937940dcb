// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for recommendation requests.
const (
	OutcomeSampled      = "sampled"
	OutcomePersonalized = "personalized"
	OutcomeEmpty        = "empty"
	OutcomeInvalid      = "invalid"
	OutcomeError        = "error"
)

var (
	// Recommendation Metrics
	RecommendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respite_recommend_requests_total",
			Help: "Total recommendation requests by outcome",
		},
		[]string{"outcome"}, // sampled, personalized, empty, invalid, error
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "respite_recommend_duration_seconds",
			Help:    "Duration of Engine.Recommend in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	RecommendCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "respite_recommend_candidates",
			Help:    "Number of candidates returned per recommendation",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
	)

	SelectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respite_selections_total",
			Help: "Total place selections by result",
		},
		[]string{"result"}, // recorded, duplicate, error
	)

	// Ledger Metrics
	LedgerAppendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "respite_ledger_append_duration_seconds",
			Help:    "Duration of durable ledger appends in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend"},
	)

	LedgerAppendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respite_ledger_appends_total",
			Help: "Total ledger appends",
		},
		[]string{"backend"},
	)

	LedgerErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respite_ledger_errors_total",
			Help: "Total ledger errors by operation",
		},
		[]string{"backend", "operation"}, // append, read
	)

	// Catalog Metrics
	CatalogReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respite_catalog_reloads_total",
			Help: "Total catalog reload attempts by result",
		},
		[]string{"result"}, // success, failure
	)

	CatalogPlaces = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "respite_catalog_places",
			Help: "Number of places in the active catalog snapshot",
		},
	)

	CatalogCategories = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "respite_catalog_categories",
			Help: "Number of distinct categories in the active catalog snapshot",
		},
	)

	// Classifier Metrics
	ClassifierCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respite_classifier_calls_total",
			Help: "Total classifier calls by outcome",
		},
		[]string{"outcome"}, // ok, error, rejected, rate_limited
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "respite_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respite_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Event Metrics
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respite_events_published_total",
			Help: "Total interaction events published by result",
		},
		[]string{"result"},
	)

	EventsConsumedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "respite_events_consumed_total",
			Help: "Total interaction events consumed",
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respite_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "respite_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "respite_active_sessions",
			Help: "Number of live recommendation sessions",
		},
	)
)

// RecordRecommendation records one Engine.Recommend call.
func RecordRecommendation(outcome string, candidates int, duration time.Duration) {
	RecommendRequestsTotal.WithLabelValues(outcome).Inc()
	RecommendDuration.Observe(duration.Seconds())
	if outcome != OutcomeInvalid && outcome != OutcomeError {
		RecommendCandidates.Observe(float64(candidates))
	}
}

// RecordSelection records the result of a selection: recorded, duplicate or error.
func RecordSelection(result string) {
	SelectionsTotal.WithLabelValues(result).Inc()
}

// RecordLedgerAppend records a ledger append and its error, if any.
func RecordLedgerAppend(backend string, duration time.Duration, err error) {
	LedgerAppendDuration.WithLabelValues(backend).Observe(duration.Seconds())
	if err != nil {
		LedgerErrorsTotal.WithLabelValues(backend, "append").Inc()
		return
	}
	LedgerAppendsTotal.WithLabelValues(backend).Inc()
}

// RecordLedgerReadError records a failed ledger read.
func RecordLedgerReadError(backend string) {
	LedgerErrorsTotal.WithLabelValues(backend, "read").Inc()
}

// RecordCatalogReload records a reload attempt and, on success, the new size.
func RecordCatalogReload(places, categories int, err error) {
	if err != nil {
		CatalogReloadsTotal.WithLabelValues("failure").Inc()
		return
	}
	CatalogReloadsTotal.WithLabelValues("success").Inc()
	SetCatalogSize(places, categories)
}

// SetCatalogSize updates the catalog gauges.
func SetCatalogSize(places, categories int) {
	CatalogPlaces.Set(float64(places))
	CatalogCategories.Set(float64(categories))
}

// RecordClassifierCall records a classifier call outcome.
func RecordClassifierCall(outcome string) {
	ClassifierCallsTotal.WithLabelValues(outcome).Inc()
}

// RecordEventPublished records an event publish attempt.
func RecordEventPublished(err error) {
	if err != nil {
		EventsPublishedTotal.WithLabelValues("error").Inc()
		return
	}
	EventsPublishedTotal.WithLabelValues("ok").Inc()
}

// RecordEventConsumed records one consumed event.
func RecordEventConsumed() {
	EventsConsumedTotal.Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// SetActiveSessions updates the session gauge.
func SetActiveSessions(n int) {
	ActiveSessions.Set(float64(n))
}
