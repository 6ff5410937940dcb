// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package algorithms

import (
	"math"

	"github.com/tomtom215/respite/internal/catalog"
	"github.com/tomtom215/respite/internal/recommend"
)

// neighbor is a similar actor or document with its similarity score.
type neighbor struct {
	ID         int
	Similarity float64
}

// cosineSimilarity computes cosine similarity between two dense vectors.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// nameCount is a name with its frequency, kept in first-seen order until
// sorted.
type nameCount struct {
	Name  string
	Count int
}

// ContentIndexBuilder adapts BuildContentIndex to recommend.IndexBuilder.
func ContentIndexBuilder(places []catalog.Place) recommend.NeighborIndex {
	return BuildContentIndex(places)
}

// Ensure all algorithms implement the engine interfaces.
var (
	_ recommend.Sampler       = (*DiversitySampler)(nil)
	_ recommend.NeighborIndex = (*ContentIndex)(nil)
	_ recommend.Ranker        = (*PreferenceRanker)(nil)
	_ recommend.Collaborator  = (*UserBasedCF)(nil)
	_ recommend.IndexBuilder  = ContentIndexBuilder
)
