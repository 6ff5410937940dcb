// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/respite/config.yaml",
	"/etc/respite/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Path:           "/data/places.csv",
			Format:         "csv",
			Encoding:       "utf-8",
			Watch:          true,
			ReloadDebounce: 2 * time.Second,
			CellSizeKm:     5,
		},
		Ledger: LedgerConfig{
			Backend:    "file",
			Path:       "/data/click_log.csv",
			SyncWrites: true,
		},
		Recommend: RecommendConfig{
			TopCategories:       3,
			NeighborK:           3,
			CollaborativeTopN:   3,
			ExcludeSeen:         true,
			PersonalizeAfter:    2,
			DailyDuplicateGuard: true,
			Timezone:            "UTC",
			Seed:                0, // 0 = unseeded
			RelatedLimit:        10,
			DefaultRadiusKm:     3,
			MaxRadiusKm:         50,
			SessionTTL:          30 * time.Minute,
		},
		Classifier: ClassifierConfig{
			Enabled:         false,
			Timeout:         500 * time.Millisecond,
			RateLimit:       20,
			Burst:           5,
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		Events: EventsConfig{
			Enabled: true,
			Backend: "gochannel",
			NATSURL: "nats://127.0.0.1:4222",
			Topic:   "respite.interactions",
		},
		Server: ServerConfig{
			Port:        8080,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any mapped setting
func LoadWithKoanf() (*Config, error) {
	return LoadFrom(findConfigFile())
}

// LoadFrom is LoadWithKoanf with an explicit config file. An empty path
// skips the file layer.
func LoadFrom(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// CATALOG_PATH -> catalog.path, LEDGER_BACKEND -> ledger.backend, ...
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values (from env vars)
// to slices for known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Catalog
	"catalog_path":            "catalog.path",
	"catalog_format":          "catalog.format",
	"catalog_table":           "catalog.table",
	"catalog_encoding":        "catalog.encoding",
	"catalog_watch":           "catalog.watch",
	"catalog_reload_debounce": "catalog.reload_debounce",
	"catalog_cell_size_km":    "catalog.cell_size_km",

	// Ledger
	"ledger_backend":     "ledger.backend",
	"ledger_path":        "ledger.path",
	"ledger_dsn":         "ledger.dsn",
	"ledger_sync_writes": "ledger.sync_writes",

	// Recommendation engine
	"recommend_top_categories":        "recommend.top_categories",
	"recommend_neighbor_k":            "recommend.neighbor_k",
	"recommend_collaborative_top_n":   "recommend.collaborative_top_n",
	"recommend_exclude_seen":          "recommend.exclude_seen",
	"recommend_personalize_after":     "recommend.personalize_after",
	"recommend_daily_duplicate_guard": "recommend.daily_duplicate_guard",
	"recommend_actor_scoped_profile":  "recommend.actor_scoped_profile",
	"recommend_timezone":              "recommend.timezone",
	"recommend_seed":                  "recommend.seed",
	"recommend_related_limit":         "recommend.related_limit",
	"recommend_default_radius_km":     "recommend.default_radius_km",
	"recommend_max_radius_km":         "recommend.max_radius_km",
	"recommend_session_ttl":           "recommend.session_ttl",

	// Classifier
	"classifier_enabled":          "classifier.enabled",
	"classifier_url":              "classifier.url",
	"classifier_timeout":          "classifier.timeout",
	"classifier_rate_limit":       "classifier.rate_limit",
	"classifier_burst":            "classifier.burst",
	"classifier_breaker_failures": "classifier.breaker_failures",
	"classifier_breaker_timeout":  "classifier.breaker_timeout",

	// Events
	"events_enabled": "events.enabled",
	"events_backend": "events.backend",
	"nats_url":       "events.nats_url",
	"events_topic":   "events.topic",

	// Server
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to a koanf path.
// Unmapped variables return "" and are skipped, so unrelated environment
// variables never reach the config.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
