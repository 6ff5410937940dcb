// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package catalog

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/tomtom215/respite/internal/logging"
)

// Place is one immutable catalog row.
type Place struct {
	// Name is unique within a catalog.
	Name string `json:"name"`

	// Category is never empty.
	Category string `json:"category"`

	// Tags may be empty.
	Tags []string `json:"tags,omitempty"`

	// Location is a free-text address label.
	Location string `json:"location,omitempty"`

	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// HasTag reports whether the place carries tag (case-insensitive).
func (p Place) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Text returns the category and tags joined by spaces.
func (p Place) Text() string {
	if len(p.Tags) == 0 {
		return p.Category + " "
	}
	return p.Category + " " + strings.Join(p.Tags, " ")
}

// Record is a raw row as produced by a Source, before validation.
// A nil coordinate means the cell was empty or unparseable.
type Record struct {
	Name     string
	Category string
	Tags     string
	Location string
	Lat      *float64
	Lon      *float64
}

// Source yields raw catalog records.
type Source interface {
	// Records returns every row of the source. A missing required column
	// must be reported as a *LoadError.
	Records(ctx context.Context) ([]Record, error)

	// String identifies the source in logs and errors.
	String() string
}

// Catalog is an immutable, validated set of places.
type Catalog struct {
	source     string
	places     []Place
	byName     map[string]int
	categories []string
	dropped    int
	loadedAt   time.Time
}

// Load reads src and builds a Catalog from it.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	records, err := src.Records(ctx)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return nil, err
		}
		return nil, &LoadError{Source: src.String(), Err: err}
	}

	cat, err := newCatalog(src.String(), records)
	if err != nil {
		return nil, err
	}

	logging.Info().
		Str("source", src.String()).
		Int("places", cat.Len()).
		Int("categories", len(cat.categories)).
		Int("dropped", cat.dropped).
		Msg("catalog loaded")

	return cat, nil
}

// New builds a Catalog directly from places, applying the same row rules as
// Load. It is mostly useful in tests and for programmatic catalogs.
func New(places []Place) (*Catalog, error) {
	records := make([]Record, len(places))
	for i := range places {
		p := &places[i]
		lat, lon := p.Lat, p.Lon
		records[i] = Record{
			Name:     p.Name,
			Category: p.Category,
			Tags:     strings.Join(p.Tags, ","),
			Location: p.Location,
			Lat:      &lat,
			Lon:      &lon,
		}
	}
	return newCatalog("memory", records)
}

func newCatalog(source string, records []Record) (*Catalog, error) {
	cat := &Catalog{
		source:   source,
		places:   make([]Place, 0, len(records)),
		byName:   make(map[string]int, len(records)),
		loadedAt: time.Now(),
	}
	seenCategory := make(map[string]struct{})

	for i := range records {
		place, ok := normalize(&records[i])
		if !ok {
			cat.dropped++
			continue
		}
		if _, dup := cat.byName[place.Name]; dup {
			logging.Debug().Str("source", source).Str("name", place.Name).Msg("duplicate place name dropped")
			cat.dropped++
			continue
		}

		cat.byName[place.Name] = len(cat.places)
		cat.places = append(cat.places, place)

		if _, ok := seenCategory[place.Category]; !ok {
			seenCategory[place.Category] = struct{}{}
			cat.categories = append(cat.categories, place.Category)
		}
	}

	if len(cat.places) == 0 {
		return nil, &EmptyError{Source: source, Dropped: cat.dropped}
	}
	return cat, nil
}

// normalize validates a record and converts it to a Place.
func normalize(r *Record) (Place, bool) {
	name := strings.TrimSpace(r.Name)
	category := strings.TrimSpace(r.Category)
	if name == "" || category == "" || r.Lat == nil || r.Lon == nil {
		return Place{}, false
	}

	lat, lon := *r.Lat, *r.Lon
	if !validCoordinate(lat, 90) || !validCoordinate(lon, 180) {
		return Place{}, false
	}

	return Place{
		Name:     name,
		Category: category,
		Tags:     SplitTags(r.Tags),
		Location: strings.TrimSpace(r.Location),
		Lat:      lat,
		Lon:      lon,
	}, true
}

func validCoordinate(v, limit float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && math.Abs(v) <= limit
}

// SplitTags splits a raw tag cell on commas, semicolons, pipes and '#'.
// Blank tags are dropped and surrounding whitespace trimmed.
func SplitTags(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '|' || r == '#'
	})

	tags := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			tags = append(tags, f)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

// Len returns the number of places.
func (c *Catalog) Len() int {
	return len(c.places)
}

// Places returns a copy of all places in load order.
func (c *Catalog) Places() []Place {
	out := make([]Place, len(c.places))
	copy(out, c.places)
	return out
}

// At returns the i-th place in load order.
func (c *Catalog) At(i int) Place {
	return c.places[i]
}

// Lookup finds a place by name.
func (c *Catalog) Lookup(name string) (Place, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Place{}, false
	}
	return c.places[i], true
}

// Categories returns the distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// Dropped returns how many rows were rejected during load.
func (c *Catalog) Dropped() int {
	return c.dropped
}

// Source returns the description of the source this catalog came from.
func (c *Catalog) Source() string {
	return c.source
}

// LoadedAt returns when the catalog was built.
func (c *Catalog) LoadedAt() time.Time {
	return c.loadedAt
}
