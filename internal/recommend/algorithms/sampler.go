// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package algorithms

import (
	"math/rand"
	"sort"

	"github.com/tomtom215/respite/internal/geo"
)

// unpreferredRank is the sort key of categories missing from the preferred
// order, unless the preferred order is longer.
const unpreferredRank = 99

// DiversitySampler draws exactly one candidate per category so no single
// category dominates a response.
//
// Output ordering:
//
//	rank(c) = index of c in preferredOrder, or max(99, len(preferredOrder))
//
// sorted stably, so categories of equal rank keep first-seen order.
type DiversitySampler struct{}

// NewDiversitySampler creates a sampler.
func NewDiversitySampler() *DiversitySampler {
	return &DiversitySampler{}
}

// Sample groups candidates by category and picks one per group uniformly
// with rng. A nil rng picks the first member of each group. RankKey of the
// returned candidates is their output position.
func (s *DiversitySampler) Sample(candidates []geo.Candidate, preferredOrder []string, rng *rand.Rand) []geo.Candidate {
	if len(candidates) == 0 {
		return []geo.Candidate{}
	}

	groups := make(map[string][]int)
	var order []string
	for i := range candidates {
		c := candidates[i].Category
		if _, ok := groups[c]; !ok {
			order = append(order, c)
		}
		groups[c] = append(groups[c], i)
	}

	picked := make([]geo.Candidate, 0, len(order))
	for _, c := range order {
		members := groups[c]
		pick := 0
		if rng != nil && len(members) > 1 {
			pick = rng.Intn(len(members))
		}
		picked = append(picked, candidates[members[pick]])
	}

	ranks := categoryRanks(preferredOrder)
	fallback := max(unpreferredRank, len(preferredOrder))
	rankOf := func(category string) int {
		if r, ok := ranks[category]; ok {
			return r
		}
		return fallback
	}
	sort.SliceStable(picked, func(i, j int) bool {
		return rankOf(picked[i].Category) < rankOf(picked[j].Category)
	})

	for i := range picked {
		picked[i].RankKey = i
	}
	return picked
}

// categoryRanks maps each preferred category to its first index.
func categoryRanks(preferredOrder []string) map[string]int {
	ranks := make(map[string]int, len(preferredOrder))
	for i, c := range preferredOrder {
		if _, ok := ranks[c]; !ok {
			ranks[c] = i
		}
	}
	return ranks
}
