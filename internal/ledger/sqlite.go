// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore keeps interactions in an SQLite database.
type SQLiteStore struct {
	sqlStore
}

// OpenSQLiteStore opens the database at path in WAL mode and creates the
// interactions table if needed.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(FULL)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := execAll(ctx, db,
		`CREATE TABLE IF NOT EXISTS interactions (
			seq      INTEGER PRIMARY KEY AUTOINCREMENT,
			ts       TEXT NOT NULL,
			user_id  TEXT NOT NULL,
			name     TEXT NOT NULL,
			category TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_user ON interactions (user_id)`,
	); err != nil {
		return nil, err
	}

	return &SQLiteStore{sqlStore{
		name:   "sqlite",
		db:     db,
		insert: `INSERT INTO interactions (ts, user_id, name, category) VALUES (?, ?, ?, ?)`,
	}}, nil
}
