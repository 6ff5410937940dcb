// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package recommend_test

import (
	"context"
	"errors"
	"math"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/respite/internal/catalog"
	"github.com/tomtom215/respite/internal/geo"
	"github.com/tomtom215/respite/internal/ledger"
	"github.com/tomtom215/respite/internal/recommend"
	"github.com/tomtom215/respite/internal/recommend/algorithms"
)

var origin = geo.Point{Lat: 37.5665, Lon: 126.9780}

// north returns a point km kilometers due north of origin.
func north(km float64) (lat, lon float64) {
	return origin.Lat + km/(geo.EarthRadiusKm*math.Pi/180), origin.Lon
}

func placeAt(name, category string, km float64, tags ...string) catalog.Place {
	lat, lon := north(km)
	return catalog.Place{Name: name, Category: category, Tags: tags, Lat: lat, Lon: lon}
}

func fixedClock(t time.Time) func() time.Time {
	var mu sync.Mutex
	now := t
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
}

// movableClock is a clock tests can advance.
type movableClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *movableClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *movableClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

var testNow = time.Date(2026, 5, 12, 10, 30, 0, 0, time.UTC)

type engineOpts struct {
	cfg       *recommend.Config
	store     ledger.Store
	tagger    recommend.TagPredictor
	publisher recommend.EventPublisher
	clock     func() time.Time
}

func newEngine(t *testing.T, places []catalog.Place, opts engineOpts) *recommend.Engine {
	t.Helper()

	cat, err := catalog.New(places)
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}
	cfg := opts.cfg
	if cfg == nil {
		cfg = recommend.DefaultConfig()
		cfg.Seed = 42
	}
	store := opts.store
	if store == nil {
		store = ledger.NewMemoryStore()
	}
	clock := opts.clock
	if clock == nil {
		clock = fixedClock(testNow)
	}

	engine, err := recommend.NewEngine(cfg, cat, ledger.New(store), recommend.Components{
		Sampler:      algorithms.NewDiversitySampler(),
		IndexBuilder: algorithms.ContentIndexBuilder,
		Ranker:       algorithms.NewPreferenceRanker(),
		Collaborator: algorithms.NewUserBasedCF(true),
		TagPredictor: opts.tagger,
		Publisher:    opts.publisher,
		Clock:        clock,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return engine
}

func query(radius float64) recommend.Query {
	o := origin
	return recommend.Query{Origin: &o, RadiusKm: radius}
}

func categories(cands []geo.Candidate) []string {
	out := make([]string, len(cands))
	for i := range cands {
		out[i] = cands[i].Category
	}
	return out
}

func interaction(actor, name, category string, at time.Time) ledger.Interaction {
	return ledger.Interaction{Timestamp: at, ActorID: actor, PlaceName: name, Category: category}
}

func neighborhood() []catalog.Place {
	return []catalog.Place{
		placeAt("Riverside", "park", 0.4, "nature", "walk"),
		placeAt("Bean There", "cafe", 0.6, "coffee", "quiet"),
		placeAt("City Library", "library", 0.8, "quiet", "books"),
		placeAt("Kids Corner", "park", 1.2, "playground"),
		placeAt("Rose Garden", "garden", 1.5, "nature", "walk"),
		placeAt("Hill Trail", "trail", 1.9, "nature"),
		placeAt("Far Lake", "lake", 25, "nature", "water"),
	}
}

func TestNewEngine_Validation(t *testing.T) {
	t.Parallel()

	cat, _ := catalog.New(neighborhood())
	led := ledger.New(ledger.NewMemoryStore())
	full := recommend.Components{
		Sampler:      algorithms.NewDiversitySampler(),
		IndexBuilder: algorithms.ContentIndexBuilder,
		Ranker:       algorithms.NewPreferenceRanker(),
		Collaborator: algorithms.NewUserBasedCF(true),
	}
	noRanker := full
	noRanker.Ranker = nil
	badCfg := recommend.DefaultConfig()
	badCfg.TopCategories = 0

	tests := []struct {
		name  string
		cfg   *recommend.Config
		cat   *catalog.Catalog
		led   *ledger.Ledger
		comps recommend.Components
	}{
		{"nil catalog", nil, nil, led, full},
		{"nil ledger", nil, cat, nil, full},
		{"missing ranker", nil, cat, led, noRanker},
		{"invalid config", badCfg, cat, led, full},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := recommend.NewEngine(tt.cfg, tt.cat, tt.led, tt.comps, zerolog.Nop()); err == nil {
				t.Error("NewEngine() error = nil, want error")
			}
		})
	}

	engine, err := recommend.NewEngine(nil, cat, led, full, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine(nil config) error = %v", err)
	}
	if engine.Config().TopCategories != 3 {
		t.Errorf("default TopCategories = %d, want 3", engine.Config().TopCategories)
	}
}

// Scenario A: {A, B, A} at {0.5, 1.0, 10.0} km with radius 2 keeps the
// first two and samples one per category.
func TestEngine_RecommendRadiusAndDiversity(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, []catalog.Place{
		placeAt("p1", "A", 0.5),
		placeAt("p2", "B", 1.0),
		placeAt("p3", "A", 10.0),
	}, engineOpts{})

	resp, err := engine.Recommend(context.Background(), recommend.NewSession("u1"), query(2.0))
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if resp.Metadata.Filtered != 2 {
		t.Errorf("Filtered = %d, want 2", resp.Metadata.Filtered)
	}
	if got := categories(resp.Candidates); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("categories = %v, want [A B]", got)
	}
	for _, c := range resp.Candidates {
		if c.Name == "p3" {
			t.Error("p3 at 10 km returned for radius 2")
		}
		if c.DistanceKm == nil {
			t.Errorf("DistanceKm of %s = nil, want set", c.Name)
		}
	}
	if resp.State != recommend.StateSampled {
		t.Errorf("State = %v, want sampled", resp.State)
	}
}

func TestEngine_RecommendRadiusBoundaryInclusive(t *testing.T) {
	t.Parallel()

	boundary := placeAt("edge", "A", 1.0)
	o := origin
	exact := geo.Haversine(o, geo.Point{Lat: boundary.Lat, Lon: boundary.Lon})

	engine := newEngine(t, []catalog.Place{boundary}, engineOpts{})
	resp, err := engine.Recommend(context.Background(), recommend.NewSession("u1"),
		recommend.Query{Origin: &o, RadiusKm: exact})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(resp.Candidates) != 1 {
		t.Errorf("len(Candidates) = %d at exact radius, want 1", len(resp.Candidates))
	}
}

// Scenario D: no origin means every place is a candidate and distances are
// undefined.
func TestEngine_RecommendWithoutOrigin(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, neighborhood(), engineOpts{})
	resp, err := engine.Recommend(context.Background(), recommend.NewSession("u1"), recommend.Query{RadiusKm: 1})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if resp.Metadata.Filtered != len(neighborhood()) {
		t.Errorf("Filtered = %d, want %d", resp.Metadata.Filtered, len(neighborhood()))
	}
	if len(resp.Candidates) != 6 {
		t.Errorf("len(Candidates) = %d, want 6 categories", len(resp.Candidates))
	}
	for _, c := range resp.Candidates {
		if c.DistanceKm != nil {
			t.Errorf("DistanceKm of %s = %v, want nil", c.Name, *c.DistanceKm)
		}
	}
}

func TestEngine_RecommendInvalidQuery(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, neighborhood(), engineOpts{})
	nan := math.NaN()

	tests := []struct {
		name  string
		query recommend.Query
		field string
	}{
		{"zero radius", query(0), "radius_km"},
		{"negative radius", query(-1), "radius_km"},
		{"nan radius", query(nan), "radius_km"},
		{"infinite radius", query(math.Inf(1)), "radius_km"},
		{"radius above max", query(51), "radius_km"},
		{"latitude out of range", recommend.Query{Origin: &geo.Point{Lat: 91, Lon: 0}, RadiusKm: 1}, "lat"},
		{"longitude out of range", recommend.Query{Origin: &geo.Point{Lat: 0, Lon: -181}, RadiusKm: 1}, "lon"},
		{"nan latitude", recommend.Query{Origin: &geo.Point{Lat: nan, Lon: 0}, RadiusKm: 1}, "lat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sess := recommend.NewSession("u1")
			_, err := engine.Recommend(context.Background(), sess, tt.query)
			if !errors.Is(err, recommend.ErrInvalidQuery) {
				t.Fatalf("error = %v, want ErrInvalidQuery", err)
			}
			var verr *recommend.ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Errorf("ValidationError.Field = %q, want %q", verr.Field, tt.field)
			}
			if sess.State() != recommend.StateIdle || sess.QueryCount() != 0 {
				t.Errorf("session changed by invalid query: state %v, queries %d", sess.State(), sess.QueryCount())
			}
		})
	}
}

func TestEngine_RecommendNilSession(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, neighborhood(), engineOpts{})
	if _, err := engine.Recommend(context.Background(), nil, query(2)); !errors.Is(err, recommend.ErrNoSession) {
		t.Errorf("error = %v, want ErrNoSession", err)
	}
	if _, err := engine.RecordSelection(context.Background(), nil, "Riverside"); !errors.Is(err, recommend.ErrNoSession) {
		t.Errorf("RecordSelection error = %v, want ErrNoSession", err)
	}
	if _, err := engine.RelatedPlaces(context.Background(), nil, "Riverside"); !errors.Is(err, recommend.ErrNoSession) {
		t.Errorf("RelatedPlaces error = %v, want ErrNoSession", err)
	}
	if stats := engine.Stats(); stats.Requests != 1 || stats.Errors != 1 {
		t.Errorf("Stats() = %+v, want 1 request 1 error", stats)
	}
}

func TestEngine_SessionStateMachine(t *testing.T) {
	t.Parallel()

	day := testNow.Add(-24 * time.Hour)
	store := ledger.NewMemoryStore(
		interaction("u1", "Riverside", "park", day),
		interaction("u2", "Riverside", "park", day),
		interaction("u2", "Rose Garden", "garden", day),
	)
	engine := newEngine(t, neighborhood(), engineOpts{store: store})
	ctx := context.Background()
	sess := recommend.NewSession("u1")

	if sess.State() != recommend.StateIdle {
		t.Fatalf("new session state = %v, want idle", sess.State())
	}

	first, err := engine.Recommend(ctx, sess, query(2))
	if err != nil {
		t.Fatalf("first Recommend() error = %v", err)
	}
	if first.State != recommend.StateSampled || sess.State() != recommend.StateSampled {
		t.Errorf("after first query state = %v/%v, want sampled", first.State, sess.State())
	}
	if first.Personalization != nil {
		t.Errorf("first query Personalization = %+v, want nil", first.Personalization)
	}
	if first.Metadata.QueryNumber != 1 {
		t.Errorf("QueryNumber = %d, want 1", first.Metadata.QueryNumber)
	}

	second, err := engine.Recommend(ctx, sess, query(2))
	if err != nil {
		t.Fatalf("second Recommend() error = %v", err)
	}
	if second.State != recommend.StatePersonalized {
		t.Fatalf("after second query state = %v, want personalized", second.State)
	}
	if second.Personalization == nil || len(second.Personalization.TopCategories) == 0 {
		t.Fatalf("Personalization = %+v, want top categories", second.Personalization)
	}
	if got := second.Personalization.TopCategories[0].Category; got != "park" {
		t.Errorf("top category = %q, want park", got)
	}
	if len(second.CollaborativeSuggestions) != 1 || second.CollaborativeSuggestions[0].Name != "Rose Garden" {
		t.Errorf("CollaborativeSuggestions = %+v, want [Rose Garden]", second.CollaborativeSuggestions)
	}
	if s := second.CollaborativeSuggestions[0]; s.Category != "garden" || s.DistanceKm == nil {
		t.Errorf("suggestion = %+v, want resolved category and distance", s)
	}
	if sess.Last() != second {
		t.Error("Last() is not the second response")
	}

	// An empty result leaves the last response in place.
	far := geo.Point{Lat: -33.86, Lon: 151.21}
	empty, err := engine.Recommend(ctx, sess, recommend.Query{Origin: &far, RadiusKm: 1})
	if err != nil {
		t.Fatalf("empty Recommend() error = %v", err)
	}
	if !empty.Empty || empty.State != recommend.StateIdle || len(empty.Candidates) != 0 {
		t.Errorf("empty response = %+v, want Empty idle with no candidates", empty)
	}
	if empty.Candidates == nil {
		t.Error("empty Candidates = nil, want empty slice")
	}
	if sess.State() != recommend.StateIdle {
		t.Errorf("state after empty = %v, want idle", sess.State())
	}
	if sess.Last() != second {
		t.Error("empty query replaced Last()")
	}
	if sess.QueryCount() != 2 {
		t.Errorf("QueryCount = %d after empty query, want 2", sess.QueryCount())
	}

	third, err := engine.Recommend(ctx, sess, query(2))
	if err != nil {
		t.Fatalf("third Recommend() error = %v", err)
	}
	if third.State != recommend.StatePersonalized || third.Metadata.QueryNumber != 3 {
		t.Errorf("third response state %v number %d, want personalized 3", third.State, third.Metadata.QueryNumber)
	}
}

func TestEngine_PersonalizeAfterConfigurable(t *testing.T) {
	t.Parallel()

	cfg := recommend.DefaultConfig()
	cfg.Seed = 1
	cfg.PersonalizeAfter = 1
	store := ledger.NewMemoryStore(interaction("u1", "Riverside", "park", testNow.Add(-time.Hour)))
	engine := newEngine(t, neighborhood(), engineOpts{cfg: cfg, store: store})

	resp, err := engine.Recommend(context.Background(), recommend.NewSession("u1"), query(2))
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if resp.State != recommend.StatePersonalized {
		t.Errorf("State = %v, want personalized on first query", resp.State)
	}
}

func TestEngine_PreferredOrderFromLedger(t *testing.T) {
	t.Parallel()

	at := testNow.Add(-48 * time.Hour)
	store := ledger.NewMemoryStore(
		interaction("u1", "City Library", "library", at),
		interaction("u1", "City Library", "library", at),
		interaction("u1", "Hill Trail", "trail", at),
		interaction("u2", "Bean There", "cafe", at),
	)
	engine := newEngine(t, neighborhood(), engineOpts{store: store})

	resp, err := engine.Recommend(context.Background(), recommend.NewSession("u1"), query(2))
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	got := categories(resp.Candidates)
	if len(got) < 3 || got[0] != "library" || got[1] != "trail" || got[2] != "cafe" {
		t.Errorf("categories = %v, want library, trail, cafe first", got)
	}
	if want := []string{"library", "trail", "cafe"}; !reflect.DeepEqual(resp.Metadata.PreferredOrder, want) {
		t.Errorf("PreferredOrder = %v, want %v", resp.Metadata.PreferredOrder, want)
	}
}

func TestEngine_ProfileFromOtherActors(t *testing.T) {
	t.Parallel()

	at := testNow.Add(-48 * time.Hour)
	store := ledger.NewMemoryStore(
		interaction("u2", "Rose Garden", "garden", at),
		interaction("u2", "Rose Garden", "garden", at.Add(time.Hour)),
	)

	tests := []struct {
		name        string
		actorScoped bool
		wantTop     []recommend.CategoryCount
		wantOrder   []string
	}{
		{
			name:      "ledger wide",
			wantTop:   []recommend.CategoryCount{{Category: "garden", Count: 2}},
			wantOrder: []string{"garden"},
		},
		{
			name:        "actor scoped",
			actorScoped: true,
			wantTop:     []recommend.CategoryCount{},
			wantOrder:   []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := recommend.DefaultConfig()
			cfg.Seed = 42
			cfg.ActorScopedProfile = tt.actorScoped
			engine := newEngine(t, neighborhood(), engineOpts{cfg: cfg, store: store})
			ctx := context.Background()
			sess := recommend.NewSession("u1")

			var resp *recommend.Response
			for i := 0; i < 3; i++ {
				var err error
				if resp, err = engine.Recommend(ctx, sess, query(2)); err != nil {
					t.Fatalf("Recommend() #%d error = %v", i+1, err)
				}
			}
			if resp.State != recommend.StatePersonalized || resp.Personalization == nil {
				t.Fatalf("State = %v, Personalization = %+v, want personalized", resp.State, resp.Personalization)
			}
			if !reflect.DeepEqual(resp.Personalization.TopCategories, tt.wantTop) {
				t.Errorf("TopCategories = %v, want %v", resp.Personalization.TopCategories, tt.wantTop)
			}
			if !reflect.DeepEqual(resp.Metadata.PreferredOrder, tt.wantOrder) {
				t.Errorf("PreferredOrder = %v, want %v", resp.Metadata.PreferredOrder, tt.wantOrder)
			}
			if got := categories(resp.Candidates); len(tt.wantOrder) > 0 && got[0] != tt.wantOrder[0] {
				t.Errorf("first category = %q, want %q", got[0], tt.wantOrder[0])
			}
		})
	}
}

func TestEngine_PreferredTag(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, neighborhood(), engineOpts{})
	q := query(2)
	q.PreferredTag = "QUIET"

	resp, err := engine.Recommend(context.Background(), recommend.NewSession("u1"), q)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	got := categories(resp.Candidates)
	if got[0] != "cafe" || got[1] != "library" {
		t.Errorf("categories = %v, want cafe and library first", got)
	}
	if resp.Metadata.EffectiveTag != "QUIET" || resp.Metadata.TagPredicted {
		t.Errorf("tag metadata = %q/%v, want QUIET/false", resp.Metadata.EffectiveTag, resp.Metadata.TagPredicted)
	}
}

type stubTagger struct {
	tag      string
	err      error
	panics   bool
	features map[string]string
	calls    atomic.Int32
}

func (s *stubTagger) PredictTag(ctx context.Context, features map[string]string) (string, error) {
	s.calls.Add(1)
	s.features = features
	if s.panics {
		panic("classifier exploded")
	}
	return s.tag, s.err
}

func TestEngine_PredictedTag(t *testing.T) {
	t.Parallel()

	tagger := &stubTagger{tag: "nature"}
	engine := newEngine(t, neighborhood(), engineOpts{tagger: tagger})
	q := query(2)
	q.DeclaredContext = map[string]string{"mood": "tired"}

	resp, err := engine.Recommend(context.Background(), recommend.NewSession("u1"), q)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if resp.Metadata.EffectiveTag != "nature" || !resp.Metadata.TagPredicted {
		t.Errorf("tag metadata = %q/%v, want nature/true", resp.Metadata.EffectiveTag, resp.Metadata.TagPredicted)
	}
	if want := []string{"park", "garden", "trail"}; !reflect.DeepEqual(resp.Metadata.PreferredOrder, want) {
		t.Errorf("PreferredOrder = %v, want %v", resp.Metadata.PreferredOrder, want)
	}
	if tagger.features["mood"] != "tired" || tagger.features["hour"] != "10" || tagger.features["weekday"] != "Tuesday" {
		t.Errorf("features = %v, want mood, hour and weekday", tagger.features)
	}

	// An explicit tag skips the predictor.
	q.PreferredTag = "quiet"
	if _, err := engine.Recommend(context.Background(), recommend.NewSession("u1"), q); err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if calls := tagger.calls.Load(); calls != 1 {
		t.Errorf("predictor calls = %d, want 1", calls)
	}
}

func TestEngine_PredictorFailureIgnored(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		tagger *stubTagger
	}{
		{"error", &stubTagger{tag: "nature", err: errors.New("circuit open")}},
		{"panic", &stubTagger{tag: "nature", panics: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			engine := newEngine(t, neighborhood(), engineOpts{tagger: tt.tagger})
			resp, err := engine.Recommend(context.Background(), recommend.NewSession("u1"), query(2))
			if err != nil {
				t.Fatalf("Recommend() error = %v, want predictor failure swallowed", err)
			}
			if resp.Metadata.EffectiveTag != "" || resp.Metadata.TagPredicted || len(resp.Candidates) == 0 {
				t.Errorf("response = %+v, want candidates without tag", resp.Metadata)
			}
		})
	}
}

// failingStore fails reads, writes or both.
type failingStore struct {
	*ledger.MemoryStore
	failRead, failWrite bool
}

func (s *failingStore) Name() string { return "failing" }

func (s *failingStore) Append(ctx context.Context, in ledger.Interaction) error {
	if s.failWrite {
		return errors.New("disk full")
	}
	return s.MemoryStore.Append(ctx, in)
}

func (s *failingStore) ReadAll(ctx context.Context) ([]ledger.Interaction, error) {
	if s.failRead {
		return nil, errors.New("corrupt log")
	}
	return s.MemoryStore.ReadAll(ctx)
}

func TestEngine_LedgerReadFailureDegrades(t *testing.T) {
	t.Parallel()

	store := &failingStore{MemoryStore: ledger.NewMemoryStore(), failRead: true}
	engine := newEngine(t, neighborhood(), engineOpts{store: store})
	sess := recommend.NewSession("u1")

	for i := 0; i < 3; i++ {
		resp, err := engine.Recommend(context.Background(), sess, query(2))
		if err != nil {
			t.Fatalf("Recommend() #%d error = %v", i+1, err)
		}
		if resp.Personalization != nil || resp.State != recommend.StateSampled {
			t.Errorf("query %d: state %v personalization %+v, want sampled without profile", i+1, resp.State, resp.Personalization)
		}
	}
}

func TestEngine_SeededDeterminism(t *testing.T) {
	t.Parallel()

	var places []catalog.Place
	for i := 0; i < 40; i++ {
		places = append(places, placeAt(string(rune('a'+i%26))+string(rune('A'+i/26)), []string{"park", "cafe", "gym", "pool"}[i%4], float64(i)*0.04))
	}

	a := newEngine(t, places, engineOpts{})
	b := newEngine(t, places, engineOpts{})
	ra, err := a.Recommend(context.Background(), recommend.NewSession("u1"), query(5))
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	rb, err := b.Recommend(context.Background(), recommend.NewSession("u1"), query(5))
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if !reflect.DeepEqual(ra.Candidates, rb.Candidates) {
		t.Errorf("seeded engines disagree:\n%v\n%v", ra.Candidates, rb.Candidates)
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []ledger.Interaction
	err    error
	panics bool
}

func (p *recordingPublisher) PublishInteraction(ctx context.Context, in ledger.Interaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, in)
	if p.panics {
		panic("broker client exploded")
	}
	return p.err
}

func TestEngine_RecordSelection(t *testing.T) {
	t.Parallel()

	clock := &movableClock{now: testNow}
	pub := &recordingPublisher{}
	engine := newEngine(t, neighborhood(), engineOpts{publisher: pub, clock: clock.Now})
	ctx := context.Background()
	sess := recommend.NewSession("u1")

	sel, err := engine.RecordSelection(ctx, sess, "Riverside")
	if err != nil {
		t.Fatalf("RecordSelection() error = %v", err)
	}
	if sel.Duplicate {
		t.Error("first selection reported as duplicate")
	}
	want := interaction("u1", "Riverside", "park", testNow)
	if sel.Interaction != want {
		t.Errorf("Interaction = %+v, want %+v", sel.Interaction, want)
	}

	clock.Advance(3 * time.Hour)
	dup, err := engine.RecordSelection(ctx, sess, "Riverside")
	if err != nil {
		t.Fatalf("duplicate RecordSelection() error = %v", err)
	}
	if !dup.Duplicate {
		t.Error("same-day repeat not reported as duplicate")
	}

	clock.Advance(24 * time.Hour)
	next, err := engine.RecordSelection(ctx, sess, "Riverside")
	if err != nil || next.Duplicate {
		t.Errorf("next-day selection = %+v, %v, want recorded", next, err)
	}

	all, err := engine.Ledger().ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("ledger has %d records, want 2", len(all))
	}
	if len(pub.events) != 2 {
		t.Errorf("published %d events, want 2", len(pub.events))
	}

	if _, err := engine.RecordSelection(ctx, sess, "Nowhere"); !errors.Is(err, recommend.ErrUnknownPlace) {
		t.Errorf("unknown place error = %v, want ErrUnknownPlace", err)
	}
}

func TestEngine_RecordSelectionGuardDisabled(t *testing.T) {
	t.Parallel()

	cfg := recommend.DefaultConfig()
	cfg.DailyDuplicateGuard = false
	engine := newEngine(t, neighborhood(), engineOpts{cfg: cfg})
	sess := recommend.NewSession("u1")

	for i := 0; i < 3; i++ {
		sel, err := engine.RecordSelection(context.Background(), sess, "Bean There")
		if err != nil || sel.Duplicate {
			t.Fatalf("RecordSelection() #%d = %+v, %v, want recorded", i+1, sel, err)
		}
	}
	all, _ := engine.Ledger().ReadAll(context.Background())
	if len(all) != 3 {
		t.Errorf("ledger has %d records, want 3", len(all))
	}
}

func TestEngine_RecordSelectionGuardPerActor(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, neighborhood(), engineOpts{})
	ctx := context.Background()

	for _, actor := range []string{"u1", "u2"} {
		sel, err := engine.RecordSelection(ctx, recommend.NewSession(actor), "Bean There")
		if err != nil || sel.Duplicate {
			t.Errorf("RecordSelection(%s) = %+v, %v, want recorded", actor, sel, err)
		}
	}
}

func TestEngine_RecordSelectionTimezone(t *testing.T) {
	t.Parallel()

	seoul, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	cfg := recommend.DefaultConfig()
	cfg.Location = seoul

	// 14:30 UTC is 23:30 in Seoul; one hour later is the next Seoul day.
	clock := &movableClock{now: time.Date(2026, 5, 12, 14, 30, 0, 0, time.UTC)}
	engine := newEngine(t, neighborhood(), engineOpts{cfg: cfg, clock: clock.Now})
	sess := recommend.NewSession("u1")

	if _, err := engine.RecordSelection(context.Background(), sess, "Riverside"); err != nil {
		t.Fatalf("RecordSelection() error = %v", err)
	}
	clock.Advance(time.Hour)
	sel, err := engine.RecordSelection(context.Background(), sess, "Riverside")
	if err != nil {
		t.Fatalf("RecordSelection() error = %v", err)
	}
	if sel.Duplicate {
		t.Error("selection after local midnight reported as duplicate")
	}
}

func TestEngine_RecordSelectionConcurrentGuard(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, neighborhood(), engineOpts{})
	sess := recommend.NewSession("u1")

	var wg sync.WaitGroup
	var recorded atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sel, err := engine.RecordSelection(context.Background(), sess, "Riverside")
			if err == nil && !sel.Duplicate {
				recorded.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := recorded.Load(); got != 1 {
		t.Errorf("recorded = %d, want 1", got)
	}
}

func TestEngine_RecordSelectionWriteError(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{}
	store := &failingStore{MemoryStore: ledger.NewMemoryStore(), failWrite: true}
	engine := newEngine(t, neighborhood(), engineOpts{store: store, publisher: pub})

	_, err := engine.RecordSelection(context.Background(), recommend.NewSession("u1"), "Riverside")
	if !errors.Is(err, ledger.ErrWrite) {
		t.Fatalf("error = %v, want ErrWrite", err)
	}
	var werr *ledger.WriteError
	if !errors.As(err, &werr) || werr.Backend != "failing" {
		t.Errorf("WriteError = %+v, want backend failing", werr)
	}
	if len(pub.events) != 0 {
		t.Errorf("published %d events after failed write, want 0", len(pub.events))
	}
}

func TestEngine_RecordSelectionPublishFailureIgnored(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		pub  *recordingPublisher
	}{
		{"error", &recordingPublisher{err: errors.New("broker down")}},
		{"panic", &recordingPublisher{panics: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			engine := newEngine(t, neighborhood(), engineOpts{publisher: tt.pub})
			ctx := context.Background()
			sel, err := engine.RecordSelection(ctx, recommend.NewSession("u1"), "Riverside")
			if err != nil || sel.Duplicate {
				t.Errorf("RecordSelection() = %+v, %v, want recorded despite publish failure", sel, err)
			}
			all, err := engine.Ledger().ReadAll(ctx)
			if err != nil || len(all) != 1 {
				t.Errorf("ledger = %v, %v, want the selection recorded", all, err)
			}
		})
	}
}

func TestEngine_RelatedPlaces(t *testing.T) {
	t.Parallel()

	at := testNow.Add(-24 * time.Hour)
	places := append(neighborhood(),
		placeAt("Pocket Park", "park", 1.7, "bench"),
		placeAt("Old Park", "park", 30),
	)
	store := ledger.NewMemoryStore(
		interaction("u1", "Riverside", "park", at),
		interaction("u1", "Riverside", "park", at),
	)
	engine := newEngine(t, places, engineOpts{store: store})
	ctx := context.Background()
	sess := recommend.NewSession("u1")

	if _, err := engine.Recommend(ctx, sess, query(2)); err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if _, err := engine.RelatedPlaces(ctx, sess, "Riverside"); !errors.Is(err, recommend.ErrRelatedUnavailable) {
		t.Errorf("before personalization error = %v, want ErrRelatedUnavailable", err)
	}

	if _, err := engine.Recommend(ctx, sess, query(2)); err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	related, err := engine.RelatedPlaces(ctx, sess, "Riverside")
	if err != nil {
		t.Fatalf("RelatedPlaces() error = %v", err)
	}
	var names []string
	for i, c := range related {
		names = append(names, c.Name)
		if c.RankKey != i {
			t.Errorf("RankKey[%d] = %d, want %d", i, c.RankKey, i)
		}
	}
	if want := []string{"Kids Corner", "Pocket Park"}; !reflect.DeepEqual(names, want) {
		t.Errorf("related = %v, want %v", names, want)
	}

	if _, err := engine.RelatedPlaces(ctx, sess, "Bean There"); !errors.Is(err, recommend.ErrRelatedUnavailable) {
		t.Errorf("non-favourite category error = %v, want ErrRelatedUnavailable", err)
	}
	if _, err := engine.RelatedPlaces(ctx, sess, "Old Park"); !errors.Is(err, recommend.ErrUnknownPlace) {
		t.Errorf("place outside last result error = %v, want ErrUnknownPlace", err)
	}
}

func TestEngine_ProfileAndSuggestions(t *testing.T) {
	t.Parallel()

	at := testNow.Add(-24 * time.Hour)
	store := ledger.NewMemoryStore(
		interaction("u1", "Riverside", "park", at),
		interaction("u1", "Riverside", "park", at),
		interaction("u1", "Bean There", "cafe", at),
		interaction("u2", "Riverside", "park", at),
		interaction("u2", "Rose Garden", "garden", at),
		interaction("u2", "Gone Place", "cafe", at),
	)
	engine := newEngine(t, neighborhood(), engineOpts{store: store})
	ctx := context.Background()

	profile, err := engine.Profile(ctx, "u1")
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	wantTop := []recommend.CategoryCount{
		{Category: "park", Count: 3},
		{Category: "cafe", Count: 2},
		{Category: "garden", Count: 1},
	}
	if !reflect.DeepEqual(profile.TopCategories, wantTop) {
		t.Errorf("TopCategories = %v, want %v", profile.TopCategories, wantTop)
	}
	for _, c := range profile.ExpandedCategories {
		if c == "" {
			t.Error("empty expanded category")
		}
	}

	// The profile is ledger-wide, so an actor with no selections sees it too.
	other, err := engine.Profile(ctx, "nobody")
	if err != nil || !reflect.DeepEqual(other, profile) {
		t.Errorf("Profile(nobody) = %+v, %v, want %+v", other, err, profile)
	}

	scopedCfg := recommend.DefaultConfig()
	scopedCfg.ActorScopedProfile = true
	scoped := newEngine(t, neighborhood(), engineOpts{cfg: scopedCfg, store: store})
	own, err := scoped.Profile(ctx, "u1")
	if err != nil {
		t.Fatalf("scoped Profile() error = %v", err)
	}
	wantOwn := []recommend.CategoryCount{{Category: "park", Count: 2}, {Category: "cafe", Count: 1}}
	if !reflect.DeepEqual(own.TopCategories, wantOwn) {
		t.Errorf("scoped TopCategories = %v, want %v", own.TopCategories, wantOwn)
	}
	if empty, err := scoped.Profile(ctx, "nobody"); err != nil || !empty.IsEmpty() {
		t.Errorf("scoped Profile(nobody) = %+v, %v, want empty", empty, err)
	}

	if blank, err := newEngine(t, neighborhood(), engineOpts{}).Profile(ctx, "u1"); err != nil || !blank.IsEmpty() {
		t.Errorf("Profile() on empty ledger = %+v, %v, want empty", blank, err)
	}

	// Gone Place is not in the catalog and is dropped.
	suggestions, err := engine.Suggestions(ctx, "u1", nil)
	if err != nil {
		t.Fatalf("Suggestions() error = %v", err)
	}
	if len(suggestions) != 1 || suggestions[0].Name != "Rose Garden" || suggestions[0].DistanceKm != nil {
		t.Errorf("Suggestions() = %+v, want [Rose Garden] without distance", suggestions)
	}
}

func TestEngine_Neighbors(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, neighborhood(), engineOpts{})
	got, err := engine.Neighbors("cafe", 1)
	if err != nil {
		t.Fatalf("Neighbors() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"library"}) {
		t.Errorf("Neighbors(cafe, 1) = %v, want [library]", got)
	}
	if _, err := engine.Neighbors("aquarium", 3); !errors.Is(err, recommend.ErrUnknownCategory) {
		t.Errorf("error = %v, want ErrUnknownCategory", err)
	}
}

// staticSource serves fixed records or an error.
type staticSource struct {
	records []catalog.Record
	err     error
}

func (s *staticSource) Records(ctx context.Context) ([]catalog.Record, error) {
	return s.records, s.err
}

func (s *staticSource) String() string { return "static" }

func record(name, category string, km float64) catalog.Record {
	lat, lon := north(km)
	return catalog.Record{Name: name, Category: category, Lat: &lat, Lon: &lon}
}

func TestEngine_ReloadCatalog(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, neighborhood(), engineOpts{})
	ctx := context.Background()
	before := engine.Catalog()

	if err := engine.ReloadCatalog(ctx, &staticSource{err: errors.New("file locked")}); !errors.Is(err, catalog.ErrLoad) {
		t.Errorf("failed reload error = %v, want ErrLoad", err)
	}
	if engine.Catalog() != before {
		t.Error("failed reload replaced the catalog")
	}
	if err := engine.ReloadCatalog(ctx, &staticSource{}); err == nil {
		t.Error("empty reload error = nil, want error")
	}
	if engine.Catalog() != before {
		t.Error("empty reload replaced the catalog")
	}

	src := &staticSource{records: []catalog.Record{
		record("Dock", "pier", 0.3),
		record("Boathouse", "pier", 0.5),
	}}
	if err := engine.ReloadCatalog(ctx, src); err != nil {
		t.Fatalf("ReloadCatalog() error = %v", err)
	}
	if engine.Catalog().Len() != 2 {
		t.Errorf("Len() = %d after reload, want 2", engine.Catalog().Len())
	}

	resp, err := engine.Recommend(ctx, recommend.NewSession("u1"), query(2))
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if got := categories(resp.Candidates); !reflect.DeepEqual(got, []string{"pier"}) {
		t.Errorf("categories after reload = %v, want [pier]", got)
	}
	if _, err := engine.Neighbors("cafe", 1); !errors.Is(err, recommend.ErrUnknownCategory) {
		t.Errorf("old category after reload error = %v, want ErrUnknownCategory", err)
	}
}

func TestEngine_ConcurrentSessions(t *testing.T) {
	t.Parallel()

	cfg := recommend.DefaultConfig()
	engine := newEngine(t, neighborhood(), engineOpts{cfg: cfg})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sess := recommend.NewSession("actor")
			for j := 0; j < 5; j++ {
				if _, err := engine.Recommend(ctx, sess, query(2)); err != nil {
					t.Errorf("Recommend() error = %v", err)
					return
				}
			}
			if sess.QueryCount() != 5 {
				t.Errorf("QueryCount = %d, want 5", sess.QueryCount())
			}
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = engine.ReloadCatalog(ctx, &staticSource{records: []catalog.Record{record("Dock", "pier", 0.3)}})
	}()
	wg.Wait()
}
