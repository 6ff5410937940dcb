// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package events

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Tally counts consumed selections per category since it was created.
type Tally struct {
	mu       sync.RWMutex
	counts   map[string]int
	total    int
	last     time.Time
	started  time.Time
	seen     map[string]struct{}
	maxIDs   int
	idsOrder []string
}

// CategoryTally is one category's consumed selection count.
type CategoryTally struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// TallySnapshot is a consistent copy of a Tally.
type TallySnapshot struct {
	Since      time.Time       `json:"since"`
	Total      int             `json:"total"`
	LastEvent  time.Time       `json:"last_event,omitempty"`
	Categories []CategoryTally `json:"categories"`
}

// NewTally creates an empty tally. Event IDs are remembered to drop
// redeliveries, up to a bounded window.
func NewTally() *Tally {
	return &Tally{
		counts:  make(map[string]int),
		started: time.Now().UTC(),
		seen:    make(map[string]struct{}),
		maxIDs:  4096,
	}
}

// HandleInteraction counts event once per event ID.
func (t *Tally) HandleInteraction(_ context.Context, event InteractionRecorded) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, dup := t.seen[event.EventID]; dup {
		return nil
	}
	t.seen[event.EventID] = struct{}{}
	t.idsOrder = append(t.idsOrder, event.EventID)
	if len(t.idsOrder) > t.maxIDs {
		delete(t.seen, t.idsOrder[0])
		t.idsOrder = t.idsOrder[1:]
	}

	t.counts[event.Category]++
	t.total++
	t.last = event.Timestamp
	return nil
}

// Snapshot returns the counts, most selected first, ties by name.
func (t *Tally) Snapshot() TallySnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	cats := make([]CategoryTally, 0, len(t.counts))
	for c, n := range t.counts {
		cats = append(cats, CategoryTally{Category: c, Count: n})
	}
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].Count != cats[j].Count {
			return cats[i].Count > cats[j].Count
		}
		return cats[i].Category < cats[j].Category
	})

	return TallySnapshot{
		Since:      t.started,
		Total:      t.total,
		LastEvent:  t.last,
		Categories: cats,
	}
}
