// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

/*
Command server runs the Respite recommendation API.

Respite suggests a small, varied set of nearby places (cafes, parks,
libraries, benches) for someone building a recovery routine. Every
selection is written to an interaction ledger; once a session has asked a
couple of times, the recorded selections and the choices of similar actors
shape the next suggestions.

# Startup

 1. Configuration: koanf v2 (defaults, then config.yaml, then environment)
 2. Logging: zerolog, JSON or console
 3. Catalog: CSV or DuckDB table, loaded into an immutable snapshot
 4. Ledger: file, memory, badger, duckdb, sqlite or postgres backend
 5. Classifier (optional): remote tag predictor behind a circuit breaker
 6. Events (optional): watermill gochannel or NATS fan-out of selections
 7. Engine: sampler, content index, preference ranker, user-based CF
 8. Supervisor tree: suture v4 with catalog watcher, session sweeper,
    event consumer and HTTP server

# Configuration

Common environment variables:

	CATALOG_PATH=/data/places.csv
	CATALOG_WATCH=true              # reload when the CSV changes
	LEDGER_BACKEND=file             # file, memory, badger, duckdb, sqlite, postgres
	LEDGER_PATH=/data/interactions.csv
	RECOMMEND_TIMEZONE=Asia/Seoul   # defines a calendar day for the duplicate guard
	CLASSIFIER_ENABLED=false
	EVENTS_ENABLED=false
	EVENTS_BACKEND=gochannel        # or nats (build with -tags nats)
	HTTP_PORT=8080
	LOG_LEVEL=info
	LOG_FORMAT=json

CONFIG_PATH points at a YAML file; see internal/config for every key.

# Build Tags

	go build ./cmd/server               # in-process events only
	go build -tags nats ./cmd/server    # NATS events backend

# Signals

SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains for
up to 10 seconds, then the event transport and ledger are closed.
*/
package main
