// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package ledger

import (
	"context"
	"sync"
)

// MemoryStore keeps interactions in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Interaction
	closed  bool
}

// NewMemoryStore returns a store preloaded with seed.
func NewMemoryStore(seed ...Interaction) *MemoryStore {
	records := make([]Interaction, len(seed))
	copy(records, seed)
	return &MemoryStore{records: records}
}

func (s *MemoryStore) Name() string { return "memory" }

func (s *MemoryStore) Append(ctx context.Context, in Interaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.records = append(s.records, in)
	return nil
}

func (s *MemoryStore) ReadAll(ctx context.Context) ([]Interaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := make([]Interaction, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
