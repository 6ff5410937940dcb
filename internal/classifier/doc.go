// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

// Package classifier predicts a preferred place tag from declared context
// (mood, weather, time of day) for the recommendation engine.
//
// HTTPClassifier calls an external model over HTTP. Each call is paced by a
// token bucket (golang.org/x/time/rate) and guarded by a circuit breaker
// (sony/gobreaker). A rate-limited call fails fast instead of waiting, and an
// open circuit rejects calls until the breaker timeout passes. The engine
// treats every error as "no prediction", so a slow or failing classifier
// never blocks a recommendation.
//
// Wire format:
//
//	POST <url>
//	{"features": {"mood": "tired", "hour": "21", "weekday": "Friday"}}
//
//	200 OK
//	{"tag": "quiet", "confidence": 0.82}
//
// Static and Func adapt fixed values and plain functions to the same
// interface for tests and offline tools.
package classifier
