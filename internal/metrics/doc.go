// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

/*
Package metrics provides Prometheus metrics collection and export for observability.

Collectors are registered with the default registry through promauto at
package init and exposed at /metrics by the API router.

# Available Metrics

Recommendation Metrics:
  - respite_recommend_requests_total: Recommend calls (counter)
    Labels: outcome (sampled, personalized, empty, invalid, error)
  - respite_recommend_duration_seconds: Recommend latency (histogram)
  - respite_recommend_candidates: Candidates per response (histogram)
  - respite_selections_total: Selections (counter)
    Labels: result (recorded, duplicate, error)

Ledger Metrics:
  - respite_ledger_append_duration_seconds: Durable append latency (histogram)
    Labels: backend
  - respite_ledger_appends_total: Successful appends (counter)
    Labels: backend
  - respite_ledger_errors_total: Failures (counter)
    Labels: backend, operation (append, read)

Catalog Metrics:
  - respite_catalog_reloads_total: Reload attempts (counter)
    Labels: result (success, failure)
  - respite_catalog_places, respite_catalog_categories: Active snapshot size (gauges)

Classifier and Event Metrics:
  - respite_classifier_calls_total: Labels: outcome (ok, error, rejected, rate_limited)
  - respite_events_published_total: Labels: result (ok, error)
  - respite_events_consumed_total

HTTP Metrics:
  - respite_http_requests_total: Labels: method, endpoint, status
  - respite_http_request_duration_seconds: Labels: method, endpoint
  - respite_active_sessions (gauge)

Example PromQL queries:

	# Share of empty recommendation results
	sum(rate(respite_recommend_requests_total{outcome="empty"}[5m]))
	  / sum(rate(respite_recommend_requests_total[5m]))

	# Ledger p95 append latency per backend
	histogram_quantile(0.95, sum by (le, backend) (rate(respite_ledger_append_duration_seconds_bucket[5m])))

# Thread Safety

All recording functions are safe for concurrent use.
*/
package metrics
