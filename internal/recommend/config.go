// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package recommend

import (
	"fmt"
	"time"

	"github.com/tomtom215/respite/internal/config"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// TopCategories is how many of the most selected categories
	// seed the preference profile and the preferred order.
	TopCategories int `json:"top_categories"`

	// NeighborK is the number of content neighbors looked up per category.
	NeighborK int `json:"neighbor_k"`

	// CollaborativeTopN bounds both the similar actors and the suggestions.
	CollaborativeTopN int `json:"collaborative_top_n"`

	// PersonalizeAfter is the query number, counting the current one, from
	// which personalization is layered on. With 2 the second query is the
	// first personalized one.
	PersonalizeAfter int `json:"personalize_after"`

	// ActorScopedProfile restricts the preference profile and the preferred
	// order to the session actor's interactions. When false they are built
	// from the whole ledger.
	ActorScopedProfile bool `json:"actor_scoped_profile"`

	// DailyDuplicateGuard ignores a repeat selection of the same place by
	// the same actor on the same calendar day in Location.
	DailyDuplicateGuard bool `json:"daily_duplicate_guard"`

	// Location is the zone that defines a calendar day.
	Location *time.Location `json:"-"`

	// Seed pins sampling when non-zero: every request draws from a fresh
	// source seeded with it.
	Seed int64 `json:"seed"`

	// RelatedLimit caps RelatedPlaces results. Zero means no cap.
	RelatedLimit int `json:"related_limit"`

	// MaxRadiusKm is the largest accepted query radius. Zero means no cap.
	MaxRadiusKm float64 `json:"max_radius_km"`

	// CellSizeKm is the spatial grid cell size for each catalog snapshot.
	CellSizeKm float64 `json:"cell_size_km"`

	// TagTimeout bounds one tag prediction.
	TagTimeout time.Duration `json:"tag_timeout"`
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() *Config {
	return &Config{
		TopCategories:       3,
		NeighborK:           3,
		CollaborativeTopN:   3,
		PersonalizeAfter:    2,
		DailyDuplicateGuard: true,
		Location:            time.UTC,
		RelatedLimit:        10,
		MaxRadiusKm:         50,
		CellSizeKm:          5,
		TagTimeout:          500 * time.Millisecond,
	}
}

// ConfigFrom maps the loaded application settings onto the engine.
// Unset cell size and tag timeout keep their defaults.
func ConfigFrom(cfg *config.Config) *Config {
	c := DefaultConfig()
	c.TopCategories = cfg.Recommend.TopCategories
	c.NeighborK = cfg.Recommend.NeighborK
	c.CollaborativeTopN = cfg.Recommend.CollaborativeTopN
	c.PersonalizeAfter = cfg.Recommend.PersonalizeAfter
	c.DailyDuplicateGuard = cfg.Recommend.DailyDuplicateGuard
	c.ActorScopedProfile = cfg.Recommend.ActorScopedProfile
	c.Location = cfg.Location()
	c.Seed = cfg.Recommend.Seed
	c.RelatedLimit = cfg.Recommend.RelatedLimit
	c.MaxRadiusKm = cfg.Recommend.MaxRadiusKm
	if cfg.Catalog.CellSizeKm > 0 {
		c.CellSizeKm = cfg.Catalog.CellSizeKm
	}
	if cfg.Classifier.Timeout > 0 {
		c.TagTimeout = cfg.Classifier.Timeout
	}
	return c
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.TopCategories < 1 {
		return fmt.Errorf("top_categories must be positive, got %d", c.TopCategories)
	}
	if c.NeighborK < 1 {
		return fmt.Errorf("neighbor_k must be positive, got %d", c.NeighborK)
	}
	if c.CollaborativeTopN < 1 {
		return fmt.Errorf("collaborative_top_n must be positive, got %d", c.CollaborativeTopN)
	}
	if c.PersonalizeAfter < 0 {
		return fmt.Errorf("personalize_after must be non-negative, got %d", c.PersonalizeAfter)
	}
	if c.RelatedLimit < 0 {
		return fmt.Errorf("related_limit must be non-negative, got %d", c.RelatedLimit)
	}
	if c.MaxRadiusKm < 0 {
		return fmt.Errorf("max_radius_km must be non-negative, got %f", c.MaxRadiusKm)
	}
	if c.CellSizeKm < 0 {
		return fmt.Errorf("cell_size_km must be non-negative, got %f", c.CellSizeKm)
	}
	return nil
}

// location returns Location or UTC.
func (c *Config) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}
