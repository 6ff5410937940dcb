// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package algorithms

import (
	"sort"

	"github.com/tomtom215/respite/internal/ledger"
)

// UserBasedCF implements user-based collaborative filtering over the
// interaction ledger.
//
// The actor×place count matrix is built in first-appearance order. The
// requesting actor is compared with every other actor by cosine similarity,
// the topN most similar actors are kept (ties to matrix order), and their
// selections are counted. The topN most frequent places are returned, ties
// to first appearance in the ledger.
type UserBasedCF struct {
	// ExcludeSeen drops places the requesting actor already selected before
	// the result is truncated.
	ExcludeSeen bool
}

// NewUserBasedCF creates a collaborative recommender.
func NewUserBasedCF(excludeSeen bool) *UserBasedCF {
	return &UserBasedCF{ExcludeSeen: excludeSeen}
}

// Recommend returns up to topN place names for actorID. The result is empty
// when fewer than two actors have interactions or actorID has none.
func (u *UserBasedCF) Recommend(interactions []ledger.Interaction, actorID string, topN int) []string {
	if topN <= 0 {
		return []string{}
	}

	actors := make(map[string]int)
	places := make(map[string]int)
	var actorOrder, placeOrder []string
	for i := range interactions {
		in := &interactions[i]
		if _, ok := actors[in.ActorID]; !ok {
			actors[in.ActorID] = len(actorOrder)
			actorOrder = append(actorOrder, in.ActorID)
		}
		if _, ok := places[in.PlaceName]; !ok {
			places[in.PlaceName] = len(placeOrder)
			placeOrder = append(placeOrder, in.PlaceName)
		}
	}

	target, ok := actors[actorID]
	if !ok || len(actorOrder) < 2 {
		return []string{}
	}

	matrix := make([][]float64, len(actorOrder))
	for i := range matrix {
		matrix[i] = make([]float64, len(placeOrder))
	}
	for i := range interactions {
		in := &interactions[i]
		matrix[actors[in.ActorID]][places[in.PlaceName]]++
	}

	similar := make([]neighbor, 0, len(actorOrder)-1)
	for a := range matrix {
		if a == target {
			continue
		}
		similar = append(similar, neighbor{ID: a, Similarity: cosineSimilarity(matrix[target], matrix[a])})
	}
	sort.SliceStable(similar, func(i, j int) bool {
		return similar[i].Similarity > similar[j].Similarity
	})
	if len(similar) > topN {
		similar = similar[:topN]
	}

	chosen := make(map[string]struct{}, len(similar))
	for _, nb := range similar {
		chosen[actorOrder[nb.ID]] = struct{}{}
	}

	counts := make([]nameCount, 0)
	pos := make(map[string]int)
	for i := range interactions {
		in := &interactions[i]
		if _, ok := chosen[in.ActorID]; !ok {
			continue
		}
		if u.ExcludeSeen && matrix[target][places[in.PlaceName]] > 0 {
			continue
		}
		if idx, ok := pos[in.PlaceName]; ok {
			counts[idx].Count++
			continue
		}
		pos[in.PlaceName] = len(counts)
		counts = append(counts, nameCount{Name: in.PlaceName, Count: 1})
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})

	out := make([]string, 0, min(topN, len(counts)))
	for i := 0; i < len(counts) && i < topN; i++ {
		out = append(out, counts[i].Name)
	}
	return out
}
