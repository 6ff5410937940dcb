// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

// Package algorithms implements the recommendation building blocks used by
// the recommend.Engine.
//
// # Components
//
//   - DiversitySampler: one random candidate per category, preferred
//     categories first (recommend.Sampler)
//   - ContentIndex: TF-IDF over "category tags" documents with cosine
//     nearest-neighbor lookup between categories (recommend.NeighborIndex)
//   - PreferenceRanker: top categories from the ledger expanded with their
//     content neighbors (recommend.Ranker)
//   - UserBasedCF: actor-to-actor cosine similarity over selection counts
//     (recommend.Collaborator)
//
// # Determinism
//
// Every component is a pure function of its inputs. The sampler takes its
// *rand.Rand from the caller, so a pinned seed pins the output. The content
// index is built once per catalog snapshot; rebuilding after the catalog
// changes may change neighbors.
//
// # Usage
//
//	engine, err := recommend.NewEngine(cfg, cat, led, recommend.Components{
//	    Sampler:      algorithms.NewDiversitySampler(),
//	    IndexBuilder: algorithms.ContentIndexBuilder,
//	    Ranker:       algorithms.NewPreferenceRanker(),
//	    Collaborator: algorithms.NewUserBasedCF(true),
//	}, logger)
//
// # Thread Safety
//
// The sampler, ranker and recommender are stateless. A ContentIndex is
// immutable after BuildContentIndex returns. All are safe for concurrent use.
package algorithms
