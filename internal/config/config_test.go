// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{
			name:    "missing catalog path",
			mutate:  func(c *Config) { c.Catalog.Path = "" },
			wantErr: "CATALOG_PATH",
		},
		{
			name:    "unknown catalog format",
			mutate:  func(c *Config) { c.Catalog.Format = "parquet" },
			wantErr: "CATALOG_FORMAT",
		},
		{
			name:    "unknown encoding",
			mutate:  func(c *Config) { c.Catalog.Encoding = "latin1" },
			wantErr: "CATALOG_ENCODING",
		},
		{
			name:   "memory ledger needs no path",
			mutate: func(c *Config) { c.Ledger.Backend = "memory"; c.Ledger.Path = "" },
		},
		{
			name:    "file ledger needs path",
			mutate:  func(c *Config) { c.Ledger.Path = "" },
			wantErr: "LEDGER_PATH",
		},
		{
			name:   "postgres with dsn",
			mutate: func(c *Config) { c.Ledger.Backend = "postgres"; c.Ledger.DSN = "postgres://localhost/respite" },
		},
		{
			name:    "zero top categories",
			mutate:  func(c *Config) { c.Recommend.TopCategories = 0 },
			wantErr: "RECOMMEND_TOP_CATEGORIES",
		},
		{
			name:    "default radius above max",
			mutate:  func(c *Config) { c.Recommend.DefaultRadiusKm = 80 },
			wantErr: "RECOMMEND_DEFAULT_RADIUS_KM",
		},
		{
			name:    "short session ttl",
			mutate:  func(c *Config) { c.Recommend.SessionTTL = time.Second },
			wantErr: "RECOMMEND_SESSION_TTL",
		},
		{
			name: "classifier with path",
			mutate: func(c *Config) {
				c.Classifier.Enabled = true
				c.Classifier.URL = "http://classifier:8000/predict"
			},
		},
		{
			name: "classifier bad scheme",
			mutate: func(c *Config) {
				c.Classifier.Enabled = true
				c.Classifier.URL = "ftp://classifier/predict"
			},
			wantErr: "CLASSIFIER_URL",
		},
		{
			name:   "events disabled skips backend",
			mutate: func(c *Config) { c.Events.Enabled = false; c.Events.Backend = "kafka" },
		},
		{
			name:    "unknown events backend",
			mutate:  func(c *Config) { c.Events.Backend = "kafka" },
			wantErr: "EVENTS_BACKEND",
		},
		{
			name:    "rate limit window too long",
			mutate:  func(c *Config) { c.Security.RateLimitWindow = 2 * time.Hour },
			wantErr: "RATE_LIMIT_WINDOW",
		},
		{
			name: "rate limit disabled skips bounds",
			mutate: func(c *Config) {
				c.Security.RateLimitDisabled = true
				c.Security.RateLimitReqs = 0
			},
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "LOG_LEVEL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLocation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tz   string
		want string
	}{
		{"", "UTC"},
		{"Asia/Seoul", "Asia/Seoul"},
		{"Nowhere/Town", "UTC"},
	}
	for _, tt := range tests {
		cfg := defaultConfig()
		cfg.Recommend.Timezone = tt.tz
		if got := cfg.Location().String(); got != tt.want {
			t.Errorf("Location() with %q = %q, want %q", tt.tz, got, tt.want)
		}
	}
}

func TestServerAddr(t *testing.T) {
	t.Parallel()

	s := ServerConfig{Host: "127.0.0.1", Port: 8080}
	if got := s.Addr(); got != "127.0.0.1:8080" {
		t.Errorf("Addr() = %q, want 127.0.0.1:8080", got)
	}
}

func TestIsProduction(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if cfg.IsProduction() {
		t.Error("IsProduction() = true for development")
	}
	cfg.Server.Environment = "production"
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false for production")
	}
}
