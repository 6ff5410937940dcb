// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults from defaultConfig()
//  2. Config File: Optional YAML file (CONFIG_PATH or DefaultConfigPaths)
//  3. Environment Variables: Explicitly mapped variables override everything
//
// Config is immutable after Load() and safe for concurrent reads.
type Config struct {
	Catalog    CatalogConfig    `koanf:"catalog"`
	Ledger     LedgerConfig     `koanf:"ledger"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Classifier ClassifierConfig `koanf:"classifier"`
	Events     EventsConfig     `koanf:"events"`
	Server     ServerConfig     `koanf:"server"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// CatalogConfig describes where the place catalog comes from.
//
// Environment Variables:
//   - CATALOG_PATH: CSV file or DuckDB database path
//   - CATALOG_FORMAT: csv or duckdb (default: csv)
//   - CATALOG_TABLE: table name when reading a DuckDB database
//   - CATALOG_ENCODING: utf-8, utf-8-sig, cp949 or euc-kr (default: utf-8)
//   - CATALOG_WATCH: reload the catalog when the file changes (default: true)
//   - CATALOG_RELOAD_DEBOUNCE: quiet period before reloading (default: 2s)
//   - CATALOG_CELL_SIZE_KM: spatial grid cell size (default: 5)
type CatalogConfig struct {
	Path           string        `koanf:"path"`
	Format         string        `koanf:"format"`
	Table          string        `koanf:"table"`
	Encoding       string        `koanf:"encoding"`
	Watch          bool          `koanf:"watch"`
	ReloadDebounce time.Duration `koanf:"reload_debounce"`
	CellSizeKm     float64       `koanf:"cell_size_km"`
}

// LedgerConfig selects the interaction ledger backend.
//
// Environment Variables:
//   - LEDGER_BACKEND: memory, file, badger, duckdb, sqlite or postgres (default: file)
//   - LEDGER_PATH: file or directory for local backends
//   - LEDGER_DSN: connection string for postgres
//   - LEDGER_SYNC_WRITES: fsync every append (default: true)
type LedgerConfig struct {
	Backend    string `koanf:"backend"`
	Path       string `koanf:"path"`
	DSN        string `koanf:"dsn"`
	SyncWrites bool   `koanf:"sync_writes"`
}

// RecommendConfig holds recommendation engine settings.
type RecommendConfig struct {
	// TopCategories is how many of the most selected categories
	// seed the preference profile.
	TopCategories int `koanf:"top_categories"`

	// NeighborK is the number of content neighbors looked up per category.
	NeighborK int `koanf:"neighbor_k"`

	// CollaborativeTopN bounds both the similar actors and the suggestions.
	CollaborativeTopN int `koanf:"collaborative_top_n"`

	// ExcludeSeen drops places the actor already selected from suggestions.
	ExcludeSeen bool `koanf:"exclude_seen"`

	// PersonalizeAfter is the query number, counting the current one, from
	// which personalization is layered on.
	PersonalizeAfter int `koanf:"personalize_after"`

	// ActorScopedProfile builds the preference profile from the session
	// actor's interactions only. The default uses the whole ledger.
	ActorScopedProfile bool `koanf:"actor_scoped_profile"`

	// DailyDuplicateGuard ignores a repeat selection of the same place by
	// the same actor on the same day.
	DailyDuplicateGuard bool `koanf:"daily_duplicate_guard"`

	// Timezone is the IANA zone used for the daily guard.
	Timezone string `koanf:"timezone"`

	// Seed pins sampling when non-zero.
	Seed int64 `koanf:"seed"`

	RelatedLimit    int           `koanf:"related_limit"`
	DefaultRadiusKm float64       `koanf:"default_radius_km"`
	MaxRadiusKm     float64       `koanf:"max_radius_km"`
	SessionTTL      time.Duration `koanf:"session_ttl"`
}

// ClassifierConfig configures the optional external tag classifier.
type ClassifierConfig struct {
	Enabled bool          `koanf:"enabled"`
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`

	// RateLimit is the sustained calls per second; Burst the bucket size.
	RateLimit float64 `koanf:"rate_limit"`
	Burst     int     `koanf:"burst"`

	// BreakerFailures consecutive failures open the circuit for BreakerTimeout.
	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
}

// EventsConfig configures interaction event fan-out.
//
// The nats backend requires building with -tags nats.
type EventsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Backend string `koanf:"backend"`
	NATSURL string `koanf:"nats_url"`
	Topic   string `koanf:"topic"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // development, staging, production
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Location resolves Recommend.Timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	if c.Recommend.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Recommend.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration from defaults, the optional YAML file and the
// environment, then validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
