// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/respite/internal/metrics"
)

// Store is a ledger backend.
type Store interface {
	// Append durably records one interaction.
	Append(ctx context.Context, in Interaction) error

	// ReadAll returns every interaction in append order.
	ReadAll(ctx context.Context) ([]Interaction, error)

	// Name identifies the backend in logs and metrics.
	Name() string

	Close() error
}

// TailReader is implemented by stores that can return the newest records
// without reading the whole ledger.
type TailReader interface {
	Tail(ctx context.Context, n int) ([]Interaction, error)
}

// Ledger wraps a Store with metrics and derived queries.
// It is safe for concurrent use when the Store is.
type Ledger struct {
	store Store
}

// New wraps store.
func New(store Store) *Ledger {
	return &Ledger{store: store}
}

// Backend returns the store name.
func (l *Ledger) Backend() string {
	return l.store.Name()
}

// Append records in unchanged; callers stamp the time. Storage failures
// return *WriteError.
func (l *Ledger) Append(ctx context.Context, in Interaction) error {
	start := time.Now()
	err := l.store.Append(ctx, in)
	metrics.RecordLedgerAppend(l.store.Name(), time.Since(start), err)
	if err == nil {
		return nil
	}

	var we *WriteError
	if errors.As(err, &we) {
		return err
	}
	return &WriteError{Backend: l.store.Name(), Err: err}
}

// ReadAll returns every interaction in append order.
func (l *Ledger) ReadAll(ctx context.Context) ([]Interaction, error) {
	all, err := l.store.ReadAll(ctx)
	if err != nil {
		metrics.RecordLedgerReadError(l.store.Name())
		return nil, fmt.Errorf("read ledger %s: %w", l.store.Name(), err)
	}
	return all, nil
}

// TopCategories returns the n most selected categories across all actors.
func (l *Ledger) TopCategories(ctx context.Context, n int) ([]CategoryCount, error) {
	all, err := l.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	return CountCategories(all, n), nil
}

// Recent returns the last n interactions in append order.
func (l *Ledger) Recent(ctx context.Context, n int) ([]Interaction, error) {
	if n <= 0 {
		return []Interaction{}, nil
	}
	if tr, ok := l.store.(TailReader); ok {
		out, err := tr.Tail(ctx, n)
		if err != nil {
			metrics.RecordLedgerReadError(l.store.Name())
			return nil, fmt.Errorf("tail ledger %s: %w", l.store.Name(), err)
		}
		return out, nil
	}

	all, err := l.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) > n {
		all = all[len(all)-n:]
	}
	return all, nil
}

// SelectedOn reports whether actorID already selected placeName on the
// calendar day of at, in loc.
func (l *Ledger) SelectedOn(ctx context.Context, actorID, placeName string, at time.Time, loc *time.Location) (bool, error) {
	all, err := l.ReadAll(ctx)
	if err != nil {
		return false, err
	}
	for i := len(all) - 1; i >= 0; i-- {
		in := &all[i]
		if in.ActorID == actorID && in.PlaceName == placeName && SameDay(in.Timestamp, at, loc) {
			return true, nil
		}
	}
	return false, nil
}

// Close closes the underlying store.
func (l *Ledger) Close() error {
	return l.store.Close()
}
