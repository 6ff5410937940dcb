// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package recommend

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/respite/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error = %v", err)
	}
	if cfg.TopCategories != 3 || cfg.NeighborK != 3 || cfg.CollaborativeTopN != 3 {
		t.Errorf("defaults = %d/%d/%d, want 3/3/3", cfg.TopCategories, cfg.NeighborK, cfg.CollaborativeTopN)
	}
	if cfg.PersonalizeAfter != 2 {
		t.Errorf("PersonalizeAfter = %d, want 2", cfg.PersonalizeAfter)
	}
	if !cfg.DailyDuplicateGuard {
		t.Error("DailyDuplicateGuard = false, want true")
	}
	if cfg.Location != time.UTC {
		t.Errorf("Location = %v, want UTC", cfg.Location)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"zero top categories", func(c *Config) { c.TopCategories = 0 }, "top_categories"},
		{"zero neighbor k", func(c *Config) { c.NeighborK = 0 }, "neighbor_k"},
		{"zero collaborative top n", func(c *Config) { c.CollaborativeTopN = 0 }, "collaborative_top_n"},
		{"negative personalize after", func(c *Config) { c.PersonalizeAfter = -1 }, "personalize_after"},
		{"zero personalize after", func(c *Config) { c.PersonalizeAfter = 0 }, ""},
		{"negative related limit", func(c *Config) { c.RelatedLimit = -1 }, "related_limit"},
		{"negative max radius", func(c *Config) { c.MaxRadiusKm = -1 }, "max_radius_km"},
		{"negative cell size", func(c *Config) { c.CellSizeKm = -1 }, "cell_size_km"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_LocationFallback(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	if cfg.location() != time.UTC {
		t.Errorf("location() = %v, want UTC", cfg.location())
	}
}

func TestErrors(t *testing.T) {
	t.Parallel()

	verr := &ValidationError{Field: "radius_km", Reason: "radius_km must be greater than 0"}
	if !errors.Is(verr, ErrInvalidQuery) {
		t.Error("ValidationError does not match ErrInvalidQuery")
	}
	if got := verr.Error(); got != "invalid query: radius_km must be greater than 0" {
		t.Errorf("Error() = %q", got)
	}

	uerr := &UnknownCategoryError{Category: "aquarium"}
	if !errors.Is(uerr, ErrUnknownCategory) || errors.Is(uerr, ErrInvalidQuery) {
		t.Error("UnknownCategoryError matches the wrong sentinel")
	}
	if got := uerr.Error(); got != `unknown category "aquarium"` {
		t.Errorf("Error() = %q", got)
	}
}

func TestConfigFrom(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFrom("")
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	cfg.Recommend.Timezone = "Asia/Seoul"
	cfg.Recommend.PersonalizeAfter = 4
	cfg.Recommend.ActorScopedProfile = true
	cfg.Catalog.CellSizeKm = 2.5
	cfg.Classifier.Timeout = 250 * time.Millisecond

	c := ConfigFrom(cfg)
	if c.PersonalizeAfter != 4 {
		t.Errorf("PersonalizeAfter = %d, want 4", c.PersonalizeAfter)
	}
	if !c.ActorScopedProfile {
		t.Error("ActorScopedProfile = false, want true")
	}
	if DefaultConfig().ActorScopedProfile {
		t.Error("default ActorScopedProfile = true, want ledger-wide profile")
	}
	if c.Location.String() != "Asia/Seoul" {
		t.Errorf("Location = %v, want Asia/Seoul", c.Location)
	}
	if c.CellSizeKm != 2.5 {
		t.Errorf("CellSizeKm = %v, want 2.5", c.CellSizeKm)
	}
	if c.TagTimeout != 250*time.Millisecond {
		t.Errorf("TagTimeout = %v, want 250ms", c.TagTimeout)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	cfg.Catalog.CellSizeKm = 0
	if got := ConfigFrom(cfg).CellSizeKm; got != DefaultConfig().CellSizeKm {
		t.Errorf("CellSizeKm with unset setting = %v, want default %v", got, DefaultConfig().CellSizeKm)
	}
}
