// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

// Package ledger is the append-only record of place selections.
//
// A Ledger wraps one Store backend and adds metrics, error classification
// and the derived queries the recommender needs (top categories, recent
// history, same-day lookups). Backends:
//
//   - memory: process-local slice, for tests and the CLI
//   - file: CSV with header timestamp,user_id,name,category, fsynced per append
//   - badger: embedded LSM store with SyncWrites
//   - duckdb, sqlite: embedded SQL, one committed INSERT per append
//   - postgres: shared SQL through a pgx pool
//
// Every backend returns records in append order and serializes its own
// appends. An append that returns nil is durable. Storage failures surface
// as *WriteError, which matches ErrWrite.
//
// The ledger records whatever it is given; duplicate suppression is the
// caller's policy (see SelectedOn).
package ledger
