// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package algorithms

import (
	"errors"

	"github.com/tomtom215/respite/internal/ledger"
	"github.com/tomtom215/respite/internal/logging"
	"github.com/tomtom215/respite/internal/recommend"
)

// PreferenceRanker builds a PreferenceProfile from interactions: the
// most selected categories, expanded with their content neighbors.
type PreferenceRanker struct{}

// NewPreferenceRanker creates a ranker.
func NewPreferenceRanker() *PreferenceRanker {
	return &PreferenceRanker{}
}

// Rank returns the topN categories of interactions and the union of their
// k nearest content neighbors, deduplicated in first-seen order. Categories
// the index does not know contribute no neighbors. A nil index skips the
// expansion.
func (r *PreferenceRanker) Rank(interactions []ledger.Interaction, index recommend.NeighborIndex, topN, k int) recommend.PreferenceProfile {
	profile := recommend.PreferenceProfile{
		TopCategories:      ledger.CountCategories(interactions, topN),
		ExpandedCategories: []string{},
	}
	if len(profile.TopCategories) == 0 || index == nil {
		return profile
	}

	seen := make(map[string]struct{})
	for _, top := range profile.TopCategories {
		neighbors, err := index.Neighbors(top.Category, k)
		if err != nil {
			if !errors.Is(err, recommend.ErrUnknownCategory) {
				logging.Warn().Err(err).Str("category", top.Category).Msg("neighbor lookup failed")
			}
			continue
		}
		for _, c := range neighbors {
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			profile.ExpandedCategories = append(profile.ExpandedCategories, c)
		}
	}
	return profile
}
