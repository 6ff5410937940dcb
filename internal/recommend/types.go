// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package recommend

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/tomtom215/respite/internal/catalog"
	"github.com/tomtom215/respite/internal/geo"
	"github.com/tomtom215/respite/internal/ledger"
)

// State is the position of a Session in the recommendation flow.
type State int

const (
	// StateIdle means no usable response: no query yet, or the last query
	// matched nothing.
	StateIdle State = iota
	// StateFiltered means the geo filter ran and produced candidates.
	StateFiltered
	// StateSampled means one candidate per category was drawn.
	StateSampled
	// StatePersonalized means profile and collaborative suggestions were
	// layered on the sampled response.
	StatePersonalized
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFiltered:
		return "filtered"
	case StateSampled:
		return "sampled"
	case StatePersonalized:
		return "personalized"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText renders the state name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Query is one recommendation request.
type Query struct {
	// Origin is nil when the caller's location is unavailable; every place
	// is then a candidate and distances are undefined.
	Origin *geo.Point `json:"origin,omitempty"`

	// RadiusKm is the inclusive search radius.
	RadiusKm float64 `json:"radius_km"`

	// PreferredTag boosts categories whose places carry it. When empty the
	// tag predictor, if any, supplies one.
	PreferredTag string `json:"preferred_tag,omitempty"`

	// DeclaredContext is free-form context (mood, weather, time of day)
	// forwarded to the tag predictor.
	DeclaredContext map[string]string `json:"context,omitempty"`
}

// CategoryCount is a category with its selection count.
type CategoryCount = ledger.CategoryCount

// PreferenceProfile summarises recorded selections, ledger-wide unless
// Config.ActorScopedProfile is set. It is derived on demand and never stored.
type PreferenceProfile struct {
	TopCategories      []CategoryCount `json:"top_categories"`
	ExpandedCategories []string        `json:"expanded_categories"`
}

// IsEmpty reports whether the profile carries no preference at all.
func (p *PreferenceProfile) IsEmpty() bool {
	return p == nil || (len(p.TopCategories) == 0 && len(p.ExpandedCategories) == 0)
}

// Suggestion is a collaborative suggestion resolved against the catalog.
type Suggestion struct {
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	Location   string   `json:"location,omitempty"`
	DistanceKm *float64 `json:"distance_km"`
}

// Response is the durable output of one query.
type Response struct {
	Candidates               []geo.Candidate    `json:"candidates"`
	Personalization          *PreferenceProfile `json:"personalization,omitempty"`
	CollaborativeSuggestions []Suggestion       `json:"collaborative_suggestions,omitempty"`
	Empty                    bool               `json:"empty"`
	State                    State              `json:"state"`
	Metadata                 Metadata           `json:"metadata"`
}

// Metadata describes how a Response was produced.
type Metadata struct {
	RequestID      string    `json:"request_id"`
	QueryNumber    int       `json:"query_number"`
	Filtered       int       `json:"filtered"`
	PreferredOrder []string  `json:"preferred_order,omitempty"`
	EffectiveTag   string    `json:"effective_tag,omitempty"`
	TagPredicted   bool      `json:"tag_predicted,omitempty"`
	CatalogLoaded  time.Time `json:"catalog_loaded_at"`
	GeneratedAt    time.Time `json:"generated_at"`
	LatencyMS      int64     `json:"latency_ms"`
}

// Selection is the outcome of RecordSelection.
type Selection struct {
	Interaction ledger.Interaction `json:"interaction"`
	Duplicate   bool               `json:"duplicate"`
}

// Sampler draws one candidate per category.
type Sampler interface {
	Sample(candidates []geo.Candidate, preferredOrder []string, rng *rand.Rand) []geo.Candidate
}

// NeighborIndex answers "which categories are similar to this one".
// It returns *UnknownCategoryError for categories it has never seen.
type NeighborIndex interface {
	Neighbors(category string, k int) ([]string, error)
}

// IndexBuilder builds a NeighborIndex for one catalog snapshot.
type IndexBuilder func(places []catalog.Place) NeighborIndex

// Ranker derives a preference profile from interactions.
type Ranker interface {
	Rank(interactions []ledger.Interaction, index NeighborIndex, topN, k int) PreferenceProfile
}

// Collaborator suggests place names from similar actors.
type Collaborator interface {
	Recommend(interactions []ledger.Interaction, actorID string, topN int) []string
}

// TagPredictor predicts a preferred tag from declared context. Errors are
// treated as "no prediction".
type TagPredictor interface {
	PredictTag(ctx context.Context, features map[string]string) (string, error)
}

// EventPublisher fans out recorded interactions.
type EventPublisher interface {
	PublishInteraction(ctx context.Context, in ledger.Interaction) error
}

// RandSource returns the random source for one request.
type RandSource func() *rand.Rand
