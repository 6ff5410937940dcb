// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package ledger

import (
	"sort"
	"time"
)

// Interaction is one recorded selection of a place by an actor.
type Interaction struct {
	Timestamp time.Time `json:"timestamp"`
	ActorID   string    `json:"user_id"`
	PlaceName string    `json:"name"`
	Category  string    `json:"category"`
}

// CategoryCount is a category with its selection count.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// CountCategories returns up to n categories by descending count.
// Equal counts keep the order in which the category first appeared.
// n <= 0 returns every category. Interactions with an empty category are
// not counted, so a ledger holding only those yields no categories.
func CountCategories(interactions []Interaction, n int) []CategoryCount {
	counts := make([]CategoryCount, 0)
	pos := make(map[string]int)
	for i := range interactions {
		c := interactions[i].Category
		if c == "" {
			continue
		}
		if idx, ok := pos[c]; ok {
			counts[idx].Count++
			continue
		}
		pos[c] = len(counts)
		counts = append(counts, CategoryCount{Category: c, Count: 1})
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})

	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// ForActor returns the interactions recorded for actorID, in order.
func ForActor(interactions []Interaction, actorID string) []Interaction {
	var out []Interaction
	for i := range interactions {
		if interactions[i].ActorID == actorID {
			out = append(out, interactions[i])
		}
	}
	return out
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
