// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps interactions in a shared PostgreSQL table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgresStore connects with dsn and creates the interactions table
// if needed.
func OpenPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	if poolCfg.MaxConns == 0 {
		poolCfg.MaxConns = 4
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	_, err = pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS interactions (
		seq      BIGSERIAL PRIMARY KEY,
		ts       TIMESTAMPTZ NOT NULL,
		user_id  TEXT NOT NULL,
		name     TEXT NOT NULL,
		category TEXT NOT NULL
	)`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating interactions table: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Name() string { return "postgres" }

func (s *PostgresStore) Append(ctx context.Context, in Interaction) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO interactions (ts, user_id, name, category) VALUES ($1, $2, $3, $4)`,
		in.Timestamp, in.ActorID, in.PlaceName, in.Category)
	return err
}

func (s *PostgresStore) ReadAll(ctx context.Context) ([]Interaction, error) {
	rows, err := s.pool.Query(ctx, `SELECT ts, user_id, name, category FROM interactions ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// Tail returns the last n interactions in append order.
func (s *PostgresStore) Tail(ctx context.Context, n int) ([]Interaction, error) {
	rows, err := s.pool.Query(ctx, `SELECT ts, user_id, name, category FROM (
		SELECT seq, ts, user_id, name, category FROM interactions ORDER BY seq DESC LIMIT $1
	) t ORDER BY seq`, n)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func collect(rows pgx.Rows) ([]Interaction, error) {
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Interaction, error) {
		var (
			in Interaction
			ts time.Time
		)
		err := row.Scan(&ts, &in.ActorID, &in.PlaceName, &in.Category)
		in.Timestamp = ts
		return in, err
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Interaction{}
	}
	return out, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
