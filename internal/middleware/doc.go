// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

/*
Package middleware provides HTTP middleware shared by the API router.

Components:

  - RequestID: X-Request-ID propagation into the logging context
  - Metrics: Prometheus request duration by route pattern
  - Compression: gzip for clients that accept it
  - SlowRequests: warn-level log for requests above a threshold

All middleware use the func(http.Handler) http.Handler shape so they can be
passed to chi's Use:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Metrics)
	r.Use(middleware.SlowRequests(time.Second))
	r.Use(middleware.Compression)

Metrics label requests by the chi route pattern (for example
/api/v1/sessions/{id}) rather than the raw path, so session IDs do not
create new series.
*/
package middleware
