// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

/*
Package api exposes the recommendation engine over HTTP using the Chi router.

Every endpoint lives under /api/v1 and answers with the same envelope:

	{
	  "status": "success" | "error",
	  "data": ...,
	  "metadata": {"timestamp": "...", "request_id": "...", "query_time_ms": 3},
	  "error": {"code": "VALIDATION_ERROR", "message": "...", "details": {...}}
	}

Routes:

	GET    /api/v1/health/live
	GET    /api/v1/health/ready
	POST   /api/v1/sessions                        {"actor_id": "u1"}
	GET    /api/v1/sessions/{id}
	DELETE /api/v1/sessions/{id}
	POST   /api/v1/sessions/{id}/recommendations   {"lat", "lon", "radius_km", "preferred_tag", "context"}
	POST   /api/v1/sessions/{id}/selections        {"place_name": "Riverside"}
	GET    /api/v1/sessions/{id}/related?place=Riverside
	GET    /api/v1/actors/{actorID}/profile
	GET    /api/v1/actors/{actorID}/suggestions?lat=..&lon=..
	GET    /api/v1/categories/{category}/neighbors?k=3
	GET    /api/v1/interactions/recent?n=10
	GET    /api/v1/catalog
	GET    /api/v1/metrics

Selections answer 201 when recorded, 200 when the daily guard reports a
duplicate and 503 when the ledger write fails.

Sessions are held in a SessionStore and expire after a period of
inactivity. The store's Serve method runs the sweep and is meant to run
under the supervisor.

Middleware, outermost first: request ID, real IP, panic recovery, CORS,
then per-group rate limiting (httprate), Prometheus metrics and gzip.
*/
package api
