// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"
)

// sqlStore is the database/sql backend shared by DuckDB and SQLite.
// Rows carry a monotonically increasing seq column that defines append order.
type sqlStore struct {
	name   string
	db     *sql.DB
	insert string

	mu     sync.Mutex
	closed bool
}

func (s *sqlStore) Name() string { return s.name }

func (s *sqlStore) Append(ctx context.Context, in Interaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.insert,
		in.Timestamp.UTC().Format(time.RFC3339Nano), in.ActorID, in.PlaceName, in.Category,
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

const selectAll = `SELECT ts, user_id, name, category FROM interactions ORDER BY seq`

const selectTail = `SELECT ts, user_id, name, category FROM (
	SELECT seq, ts, user_id, name, category FROM interactions ORDER BY seq DESC LIMIT ?
) AS t ORDER BY seq`

func (s *sqlStore) ReadAll(ctx context.Context) ([]Interaction, error) {
	return s.query(ctx, selectAll)
}

// Tail returns the last n interactions in append order.
func (s *sqlStore) Tail(ctx context.Context, n int) ([]Interaction, error) {
	return s.query(ctx, selectTail, n)
}

func (s *sqlStore) query(ctx context.Context, query string, args ...any) ([]Interaction, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Interaction, 0)
	for rows.Next() {
		var (
			ts string
			in Interaction
		)
		if err := rows.Scan(&ts, &in.ActorID, &in.PlaceName, &in.Category); err != nil {
			return nil, err
		}
		in.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", ts, err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (s *sqlStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// execAll runs schema statements in order.
func execAll(ctx context.Context, db *sql.DB, stmts ...string) error {
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Join(fmt.Errorf("schema: %w", err), db.Close())
		}
	}
	return nil
}
