// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package ledger

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB driver
)

// DuckDBStore keeps interactions in a DuckDB table.
type DuckDBStore struct {
	sqlStore
}

// OpenDuckDBStore opens the database file at path and creates the
// interactions table if needed.
func OpenDuckDBStore(ctx context.Context, path string) (*DuckDBStore, error) {
	// Disable auto-install/auto-load to prevent hangs in restricted network environments
	connStr := fmt.Sprintf("%s?access_mode=read_write&autoinstall_known_extensions=false&autoload_known_extensions=false", path)

	db, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// DuckDB allows one writer per process
	db.SetMaxOpenConns(1)

	if err := execAll(ctx, db,
		`CREATE SEQUENCE IF NOT EXISTS interactions_seq START 1`,
		`CREATE TABLE IF NOT EXISTS interactions (
			seq      BIGINT PRIMARY KEY DEFAULT nextval('interactions_seq'),
			ts       VARCHAR NOT NULL,
			user_id  VARCHAR NOT NULL,
			name     VARCHAR NOT NULL,
			category VARCHAR NOT NULL
		)`,
	); err != nil {
		return nil, err
	}

	return &DuckDBStore{sqlStore{
		name:   "duckdb",
		db:     db,
		insert: `INSERT INTO interactions (ts, user_id, name, category) VALUES (?, ?, ?, ?)`,
	}}, nil
}
