// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

// Package recommend orchestrates place recommendations for a recovery
// routine: nearby places, one per category, ordered by what the actor has
// picked before.
//
// # Flow
//
// Each call to Engine.Recommend walks a Session through a small state
// machine:
//
//	Idle -> Filtered -> Sampled -> Personalized
//	          |            |            |
//	          v            +-> Filtered <+
//	        Idle (no places within the radius)
//
//   - Filtered: the geo filter keeps places within the radius of the origin,
//     or all places when the origin is unknown
//   - Sampled: one place per category, preferred categories first
//   - Personalized: from the PersonalizeAfter-th query on, the preference
//     profile and collaborative suggestions are added to the same sample
//
// An empty filter result returns a Response with Empty set and leaves the
// session's last response untouched.
//
// # Components
//
// The engine holds no algorithm of its own. Sampler, NeighborIndex, Ranker
// and Collaborator are supplied through Components; package algorithms
// provides the standard implementations. An optional TagPredictor fills in
// the preferred tag from declared context, and an optional EventPublisher
// fans out recorded selections.
//
// # Snapshots
//
// The catalog, its spatial grid and its content index are published
// together through an atomic pointer. ReloadCatalog builds a new snapshot
// and swaps it in; a failed reload keeps serving the old one.
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
//	sess := recommend.NewSession("user-42")
//	resp, err := engine.Recommend(ctx, sess, recommend.Query{
//	    Origin:   &geo.Point{Lat: 37.5665, Lon: 126.9780},
//	    RadiusKm: 3,
//	})
//	sel, err := engine.RecordSelection(ctx, sess, resp.Candidates[0].Name)
//
// # Thread Safety
//
// Engine is safe for concurrent use. A Session serializes its own calls.
// RecordSelection holds an engine-wide lock around the daily duplicate
// check and the ledger append so concurrent clicks record once.
package recommend
