// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/respite/internal/config"
)

// Open builds the backend named by cfg.Backend and wraps it in a Ledger.
// loc is the zone used for click-log timestamps.
func Open(ctx context.Context, cfg config.LedgerConfig, loc *time.Location) (*Ledger, error) {
	var (
		store Store
		err   error
	)
	switch cfg.Backend {
	case "memory":
		store = NewMemoryStore()
	case "file", "":
		store, err = OpenFileStore(cfg.Path, cfg.SyncWrites, loc)
	case "badger":
		store, err = OpenBadgerStore(cfg.Path, cfg.SyncWrites)
	case "duckdb":
		store, err = OpenDuckDBStore(ctx, cfg.Path)
	case "sqlite":
		store, err = OpenSQLiteStore(ctx, cfg.Path)
	case "postgres":
		store, err = OpenPostgresStore(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s ledger: %w", cfg.Backend, err)
	}
	return New(store), nil
}
