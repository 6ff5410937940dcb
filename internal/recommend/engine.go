// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/respite/internal/catalog"
	"github.com/tomtom215/respite/internal/geo"
	"github.com/tomtom215/respite/internal/ledger"
	"github.com/tomtom215/respite/internal/logging"
	"github.com/tomtom215/respite/internal/metrics"
	"github.com/tomtom215/respite/internal/validation"
)

// snapshot is one immutable catalog generation with its derived indexes.
type snapshot struct {
	catalog *catalog.Catalog
	grid    *geo.Index
	index   NeighborIndex
}

// Components are the pluggable parts of an Engine. Sampler, IndexBuilder,
// Ranker and Collaborator are required.
type Components struct {
	Sampler      Sampler
	IndexBuilder IndexBuilder
	Ranker       Ranker
	Collaborator Collaborator

	// TagPredictor is optional; without it only Query.PreferredTag is used.
	TagPredictor TagPredictor

	// Publisher is optional; recorded selections are fanned out through it.
	Publisher EventPublisher

	// RandSource defaults to DefaultRandSource(Config.Seed).
	RandSource RandSource

	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Engine produces recommendations from a catalog snapshot and the ledger.
// It is safe for concurrent use; per-caller state lives in Session.
type Engine struct {
	config *Config
	logger zerolog.Logger

	snap   atomic.Pointer[snapshot]
	ledger *ledger.Ledger

	sampler    Sampler
	buildIndex IndexBuilder
	ranker     Ranker
	collab     Collaborator
	tagger     TagPredictor
	publisher  EventPublisher
	rand       RandSource
	now        func() time.Time

	// selectMu makes the duplicate check and the append one step.
	selectMu sync.Mutex

	requestCount atomic.Int64
	errorCount   atomic.Int64
}

// NewEngine creates an engine serving cat and recording into led.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, cat *catalog.Catalog, led *ledger.Ledger, comps Components, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cat == nil {
		return nil, errors.New("catalog is required")
	}
	if led == nil {
		return nil, errors.New("ledger is required")
	}
	if comps.Sampler == nil || comps.IndexBuilder == nil || comps.Ranker == nil || comps.Collaborator == nil {
		return nil, errors.New("sampler, index builder, ranker and collaborator are required")
	}

	e := &Engine{
		config:     cfg,
		logger:     logger.With().Str("component", "recommend").Logger(),
		ledger:     led,
		sampler:    comps.Sampler,
		buildIndex: comps.IndexBuilder,
		ranker:     comps.Ranker,
		collab:     comps.Collaborator,
		tagger:     comps.TagPredictor,
		publisher:  comps.Publisher,
		rand:       comps.RandSource,
		now:        comps.Clock,
	}
	if e.rand == nil {
		e.rand = DefaultRandSource(cfg.Seed)
	}
	if e.now == nil {
		e.now = time.Now
	}

	e.publish(cat)
	metrics.SetCatalogSize(cat.Len(), len(cat.Categories()))
	return e, nil
}

// DefaultRandSource returns a source seeded with seed for every request,
// or a distinct time-based seed per request when seed is zero.
func DefaultRandSource(seed int64) RandSource {
	if seed != 0 {
		return func() *rand.Rand {
			return rand.New(rand.NewSource(seed)) //nolint:gosec // math/rand is fine for recommendation shuffling
		}
	}
	base := time.Now().UnixNano()
	var counter atomic.Int64
	return func() *rand.Rand {
		return rand.New(rand.NewSource(base + counter.Add(1))) //nolint:gosec // math/rand is fine for recommendation shuffling
	}
}

// publish builds and installs a snapshot for cat.
func (e *Engine) publish(cat *catalog.Catalog) {
	places := cat.Places()
	e.snap.Store(&snapshot{
		catalog: cat,
		grid:    geo.NewIndex(places, e.config.CellSizeKm),
		index:   e.buildIndex(places),
	})
}

// Catalog returns the catalog currently being served.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.snap.Load().catalog
}

// Ledger returns the interaction ledger.
func (e *Engine) Ledger() *ledger.Ledger {
	return e.ledger
}

// Config returns the engine configuration. It must not be modified.
func (e *Engine) Config() *Config {
	return e.config
}

// ReloadCatalog loads src and swaps it in. On failure the current snapshot
// keeps serving and the error is returned.
func (e *Engine) ReloadCatalog(ctx context.Context, src catalog.Source) error {
	cat, err := catalog.Load(ctx, src)
	if err != nil {
		metrics.RecordCatalogReload(0, 0, err)
		e.logger.Error().Err(err).Str("source", src.String()).Msg("catalog reload failed, keeping previous snapshot")
		return fmt.Errorf("reload catalog: %w", err)
	}

	e.publish(cat)
	metrics.RecordCatalogReload(cat.Len(), len(cat.Categories()), nil)
	e.logger.Info().
		Str("source", src.String()).
		Int("places", cat.Len()).
		Int("categories", len(cat.Categories())).
		Msg("catalog snapshot swapped")
	return nil
}

// Recommend runs one query for sess.
//
// The geo filter runs first. No candidates leaves the session Idle and
// returns a response with Empty set; the session's last response is kept.
// Otherwise one candidate per category is sampled in preference order. From
// the PersonalizeAfter-th query on, the profile and collaborative
// suggestions are added to the same sample.
func (e *Engine) Recommend(ctx context.Context, sess *Session, q Query) (*Response, error) {
	began := time.Now()
	start := e.now()
	e.requestCount.Add(1)

	if sess == nil {
		e.errorCount.Add(1)
		return nil, ErrNoSession
	}
	if err := e.validateQuery(q); err != nil {
		metrics.RecordRecommendation(metrics.OutcomeInvalid, 0, time.Since(began))
		return nil, err
	}

	requestID := logging.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	logger := e.logger.With().
		Str("request_id", requestID).
		Str("session_id", sess.ID()).
		Str("actor_id", sess.ActorID()).
		Logger()

	snap := e.snap.Load()

	interactions, ledgerErr := e.ledger.ReadAll(ctx)
	if ledgerErr != nil {
		logger.Warn().Err(ledgerErr).Msg("ledger unavailable, recommending without personalization")
	}
	history := e.profileLog(interactions, sess.ActorID())

	filtered := snap.grid.Within(q.Origin, q.RadiusKm)
	tag, predicted := e.effectiveTag(ctx, q, logger)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch(start)

	if err := sess.transition(StateFiltered); err != nil {
		e.errorCount.Add(1)
		metrics.RecordRecommendation(metrics.OutcomeError, 0, time.Since(began))
		return nil, err
	}

	meta := Metadata{
		RequestID:     requestID,
		Filtered:      len(filtered),
		EffectiveTag:  tag,
		TagPredicted:  predicted,
		CatalogLoaded: snap.catalog.LoadedAt(),
		GeneratedAt:   start,
	}

	if len(filtered) == 0 {
		if err := sess.transition(StateIdle); err != nil {
			return nil, err
		}
		meta.QueryNumber = sess.queries
		meta.LatencyMS = time.Since(began).Milliseconds()
		metrics.RecordRecommendation(metrics.OutcomeEmpty, 0, time.Since(began))
		logger.Debug().Float64("radius_km", q.RadiusKm).Msg("no places within radius")
		return &Response{
			Candidates: []geo.Candidate{},
			Empty:      true,
			State:      StateIdle,
			Metadata:   meta,
		}, nil
	}

	top := ledger.CountCategories(history, e.config.TopCategories)
	preferred := preferredOrder(top, filtered, tag)
	sampled := e.sampler.Sample(filtered, preferred, e.rand())

	if err := sess.transition(StateSampled); err != nil {
		return nil, err
	}
	sess.queries++
	sess.filtered = filtered

	meta.QueryNumber = sess.queries
	meta.PreferredOrder = preferred
	resp := &Response{
		Candidates: sampled,
		State:      StateSampled,
		Metadata:   meta,
	}

	outcome := metrics.OutcomeSampled
	if sess.queries >= e.config.PersonalizeAfter && ledgerErr == nil {
		profile := e.ranker.Rank(history, snap.index, e.config.TopCategories, e.config.NeighborK)
		names := e.collab.Recommend(interactions, sess.ActorID(), e.config.CollaborativeTopN)

		resp.Personalization = &profile
		resp.CollaborativeSuggestions = resolveSuggestions(snap.catalog, names, q.Origin)
		if err := sess.transition(StatePersonalized); err != nil {
			return nil, err
		}
		resp.State = StatePersonalized
		outcome = metrics.OutcomePersonalized
	}

	resp.Metadata.LatencyMS = time.Since(began).Milliseconds()
	sess.last = resp

	metrics.RecordRecommendation(outcome, len(sampled), time.Since(began))
	logger.Debug().
		Int("filtered", len(filtered)).
		Int("returned", len(sampled)).
		Str("state", resp.State.String()).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

// queryRules carries the declarative part of query validation.
type queryRules struct {
	Lat      *float64 `json:"lat" validate:"required_with=Lon,omitempty,latitude"`
	Lon      *float64 `json:"lon" validate:"required_with=Lat,omitempty,longitude"`
	RadiusKm float64  `json:"radius_km" validate:"gt=0"`
}

func (e *Engine) validateQuery(q Query) error {
	rules := queryRules{RadiusKm: q.RadiusKm}
	if q.Origin != nil {
		lat, lon := q.Origin.Lat, q.Origin.Lon
		rules.Lat, rules.Lon = &lat, &lon
	}
	if verr := validation.ValidateStruct(&rules); verr != nil {
		if errs := verr.Errors(); len(errs) > 0 {
			return &ValidationError{Field: errs[0].Field(), Reason: errs[0].Error()}
		}
		return &ValidationError{Reason: verr.Error()}
	}
	if math.IsInf(q.RadiusKm, 0) {
		return &ValidationError{Field: "radius_km", Reason: "radius_km must be finite"}
	}
	if limit := e.config.MaxRadiusKm; limit > 0 && q.RadiusKm > limit {
		return &ValidationError{Field: "radius_km", Reason: fmt.Sprintf("radius_km must be at most %g", limit)}
	}
	return nil
}

// effectiveTag returns the query's tag, or a predicted one. Prediction
// failures mean no tag.
func (e *Engine) effectiveTag(ctx context.Context, q Query, logger zerolog.Logger) (string, bool) {
	if q.PreferredTag != "" {
		return q.PreferredTag, false
	}
	if e.tagger == nil {
		return "", false
	}

	if e.config.TagTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.TagTimeout)
		defer cancel()
	}

	tag, err := e.predictTag(ctx, e.features(q))
	if err != nil {
		logger.Debug().Err(err).Msg("tag prediction unavailable")
		return "", false
	}
	return tag, tag != ""
}

// predictTag calls the predictor, turning a panic into an error.
func (e *Engine) predictTag(ctx context.Context, features map[string]string) (tag string, err error) {
	defer func() {
		if r := recover(); r != nil {
			tag, err = "", fmt.Errorf("tag predictor panicked: %v", r)
		}
	}()
	return e.tagger.PredictTag(ctx, features)
}

// publishInteraction hands in to the event publisher, turning a panic into
// an error.
func (e *Engine) publishInteraction(ctx context.Context, in ledger.Interaction) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("event publisher panicked: %v", r)
		}
	}()
	return e.publisher.PublishInteraction(ctx, in)
}

// features is the classifier input: declared context plus local time.
func (e *Engine) features(q Query) map[string]string {
	out := make(map[string]string, len(q.DeclaredContext)+2)
	for k, v := range q.DeclaredContext {
		out[k] = v
	}
	now := e.now().In(e.config.location())
	if _, ok := out["hour"]; !ok {
		out["hour"] = fmt.Sprintf("%d", now.Hour())
	}
	if _, ok := out["weekday"]; !ok {
		out["weekday"] = now.Weekday().String()
	}
	return out
}

// preferredOrder lists the ledger's top categories, then categories of
// filtered places carrying tag, without repeats.
func preferredOrder(top []CategoryCount, filtered []geo.Candidate, tag string) []string {
	seen := make(map[string]struct{}, len(top))
	order := make([]string, 0, len(top))
	add := func(c string) {
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		order = append(order, c)
	}

	for _, c := range top {
		add(c.Category)
	}
	if tag != "" {
		for i := range filtered {
			if filtered[i].HasTag(tag) {
				add(filtered[i].Category)
			}
		}
	}
	return order
}

// resolveSuggestions maps place names to catalog details, dropping names
// the catalog no longer has.
func resolveSuggestions(cat *catalog.Catalog, names []string, origin *geo.Point) []Suggestion {
	out := make([]Suggestion, 0, len(names))
	for _, name := range names {
		p, ok := cat.Lookup(name)
		if !ok {
			continue
		}
		s := Suggestion{Name: p.Name, Category: p.Category, Location: p.Location}
		if origin != nil {
			d := geo.Haversine(*origin, geo.Point{Lat: p.Lat, Lon: p.Lon})
			s.DistanceKm = &d
		}
		out = append(out, s)
	}
	return out
}

// RecordSelection records that the session's actor opened placeName.
//
// A repeat of the same place by the same actor on the same calendar day is
// reported as a duplicate and not written when the daily guard is on.
// Ledger failures are returned; event publishing failures are only logged.
func (e *Engine) RecordSelection(ctx context.Context, sess *Session, placeName string) (Selection, error) {
	if sess == nil {
		return Selection{}, ErrNoSession
	}

	place, ok := e.snap.Load().catalog.Lookup(placeName)
	if !ok {
		metrics.RecordSelection("unknown")
		return Selection{}, fmt.Errorf("%w: %q", ErrUnknownPlace, placeName)
	}

	now := e.now()
	in := ledger.Interaction{
		Timestamp: now,
		ActorID:   sess.ActorID(),
		PlaceName: place.Name,
		Category:  place.Category,
	}

	sess.mu.Lock()
	sess.touch(now)
	sess.mu.Unlock()

	e.selectMu.Lock()
	if e.config.DailyDuplicateGuard {
		dup, err := e.ledger.SelectedOn(ctx, in.ActorID, in.PlaceName, now, e.config.location())
		if err != nil {
			e.selectMu.Unlock()
			metrics.RecordSelection("error")
			return Selection{}, fmt.Errorf("check daily selections: %w", err)
		}
		if dup {
			e.selectMu.Unlock()
			metrics.RecordSelection("duplicate")
			return Selection{Interaction: in, Duplicate: true}, nil
		}
	}
	err := e.ledger.Append(ctx, in)
	e.selectMu.Unlock()
	if err != nil {
		metrics.RecordSelection("error")
		return Selection{}, err
	}
	metrics.RecordSelection("recorded")

	if e.publisher != nil {
		if err := e.publishInteraction(ctx, in); err != nil {
			e.logger.Warn().Err(err).Str("place", in.PlaceName).Msg("failed to publish interaction event")
		}
	}

	e.logger.Info().
		Str("session_id", sess.ID()).
		Str("actor_id", in.ActorID).
		Str("place", in.PlaceName).
		Str("category", in.Category).
		Msg("selection recorded")
	return Selection{Interaction: in}, nil
}

// RelatedPlaces returns the other places of placeName's category from the
// session's last filtered set. It is available once the session is
// personalized and only for the profile's top categories.
func (e *Engine) RelatedPlaces(ctx context.Context, sess *Session, placeName string) ([]geo.Candidate, error) {
	if sess == nil {
		return nil, ErrNoSession
	}

	sess.mu.Lock()
	queries := sess.queries
	filtered := sess.filtered
	sess.touch(e.now())
	sess.mu.Unlock()

	if queries == 0 || queries < e.config.PersonalizeAfter {
		return nil, fmt.Errorf("%w: session has %d queries, needs %d", ErrRelatedUnavailable, queries, e.config.PersonalizeAfter)
	}

	var category string
	for i := range filtered {
		if filtered[i].Name == placeName {
			category = filtered[i].Category
			break
		}
	}
	if category == "" {
		return nil, fmt.Errorf("%w: %q is not in the last result", ErrUnknownPlace, placeName)
	}

	profile, err := e.Profile(ctx, sess.ActorID())
	if err != nil {
		return nil, err
	}
	favourite := false
	for _, c := range profile.TopCategories {
		if c.Category == category {
			favourite = true
			break
		}
	}
	if !favourite {
		return nil, fmt.Errorf("%w: %q is not a top category", ErrRelatedUnavailable, category)
	}

	related := make([]geo.Candidate, 0)
	for i := range filtered {
		c := filtered[i]
		if c.Category != category || c.Name == placeName {
			continue
		}
		c.RankKey = len(related)
		related = append(related, c)
		if e.config.RelatedLimit > 0 && len(related) == e.config.RelatedLimit {
			break
		}
	}
	return related, nil
}

// Profile returns the preference profile a query by actorID would use,
// without running one.
func (e *Engine) Profile(ctx context.Context, actorID string) (PreferenceProfile, error) {
	interactions, err := e.ledger.ReadAll(ctx)
	if err != nil {
		return PreferenceProfile{}, err
	}
	snap := e.snap.Load()
	return e.ranker.Rank(e.profileLog(interactions, actorID), snap.index, e.config.TopCategories, e.config.NeighborK), nil
}

// profileLog is the part of the ledger the preference profile is built from.
func (e *Engine) profileLog(interactions []ledger.Interaction, actorID string) []ledger.Interaction {
	if e.config.ActorScopedProfile {
		return ledger.ForActor(interactions, actorID)
	}
	return interactions
}

// Suggestions returns collaborative suggestions for actorID. Distances are
// filled in when origin is given.
func (e *Engine) Suggestions(ctx context.Context, actorID string, origin *geo.Point) ([]Suggestion, error) {
	interactions, err := e.ledger.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	names := e.collab.Recommend(interactions, actorID, e.config.CollaborativeTopN)
	return resolveSuggestions(e.snap.Load().catalog, names, origin), nil
}

// Neighbors returns up to k categories similar to category in the current
// snapshot.
func (e *Engine) Neighbors(category string, k int) ([]string, error) {
	return e.snap.Load().index.Neighbors(category, k)
}

// Stats reports request counters since start.
type Stats struct {
	Requests int64 `json:"requests"`
	Errors   int64 `json:"errors"`
}

// Stats returns request counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Requests: e.requestCount.Load(),
		Errors:   e.errorCount.Load(),
	}
}
