// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateCatalog,
		c.validateLedger,
		c.validateRecommend,
		c.validateClassifier,
		c.validateEvents,
		c.validateServer,
		c.validateSecurity,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

var validCatalogFormats = map[string]bool{"csv": true, "duckdb": true}

var validEncodings = map[string]bool{
	"":          true,
	"utf-8":     true,
	"utf8":      true,
	"utf-8-sig": true,
	"cp949":     true,
	"euc-kr":    true,
}

func (c *Config) validateCatalog() error {
	if c.Catalog.Path == "" {
		return fmt.Errorf("CATALOG_PATH is required")
	}
	if !validCatalogFormats[c.Catalog.Format] {
		return fmt.Errorf("CATALOG_FORMAT must be one of: csv, duckdb")
	}
	if !validEncodings[c.Catalog.Encoding] {
		return fmt.Errorf("CATALOG_ENCODING must be one of: utf-8, utf-8-sig, cp949, euc-kr")
	}
	if c.Catalog.Watch && c.Catalog.ReloadDebounce < 0 {
		return fmt.Errorf("CATALOG_RELOAD_DEBOUNCE must not be negative")
	}
	if c.Catalog.CellSizeKm < 0 {
		return fmt.Errorf("CATALOG_CELL_SIZE_KM must not be negative")
	}
	return nil
}

var validLedgerBackends = map[string]bool{
	"memory":   true,
	"file":     true,
	"badger":   true,
	"duckdb":   true,
	"sqlite":   true,
	"postgres": true,
}

func (c *Config) validateLedger() error {
	if !validLedgerBackends[c.Ledger.Backend] {
		return fmt.Errorf("LEDGER_BACKEND must be one of: memory, file, badger, duckdb, sqlite, postgres")
	}
	switch c.Ledger.Backend {
	case "memory":
		return nil
	case "postgres":
		if c.Ledger.DSN == "" {
			return fmt.Errorf("LEDGER_DSN is required when LEDGER_BACKEND=postgres")
		}
	default:
		if c.Ledger.Path == "" {
			return fmt.Errorf("LEDGER_PATH is required when LEDGER_BACKEND=%s", c.Ledger.Backend)
		}
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := &c.Recommend
	if r.TopCategories < 1 {
		return fmt.Errorf("RECOMMEND_TOP_CATEGORIES must be at least 1")
	}
	if r.NeighborK < 1 {
		return fmt.Errorf("RECOMMEND_NEIGHBOR_K must be at least 1")
	}
	if r.CollaborativeTopN < 1 {
		return fmt.Errorf("RECOMMEND_COLLABORATIVE_TOP_N must be at least 1")
	}
	if r.PersonalizeAfter < 0 {
		return fmt.Errorf("RECOMMEND_PERSONALIZE_AFTER must not be negative")
	}
	if r.MaxRadiusKm <= 0 {
		return fmt.Errorf("RECOMMEND_MAX_RADIUS_KM must be positive")
	}
	if r.DefaultRadiusKm <= 0 || r.DefaultRadiusKm > r.MaxRadiusKm {
		return fmt.Errorf("RECOMMEND_DEFAULT_RADIUS_KM must be in (0, %g]", r.MaxRadiusKm)
	}
	if r.Timezone != "" {
		if _, err := time.LoadLocation(r.Timezone); err != nil {
			return fmt.Errorf("RECOMMEND_TIMEZONE %q is not a valid IANA zone: %w", r.Timezone, err)
		}
	}
	if r.SessionTTL < time.Minute {
		return fmt.Errorf("RECOMMEND_SESSION_TTL must be at least 1m")
	}
	return nil
}

func (c *Config) validateClassifier() error {
	if !c.Classifier.Enabled {
		return nil
	}
	if err := checkURL("CLASSIFIER_URL", c.Classifier.URL, "http", "https"); err != nil {
		return err
	}
	if c.Classifier.Timeout <= 0 {
		return fmt.Errorf("CLASSIFIER_TIMEOUT must be positive")
	}
	if c.Classifier.RateLimit <= 0 || c.Classifier.Burst < 1 {
		return fmt.Errorf("CLASSIFIER_RATE_LIMIT must be positive and CLASSIFIER_BURST at least 1")
	}
	if c.Classifier.BreakerFailures < 1 {
		return fmt.Errorf("CLASSIFIER_BREAKER_FAILURES must be at least 1")
	}
	return nil
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}
	if c.Events.Topic == "" {
		return fmt.Errorf("EVENTS_TOPIC is required when events are enabled")
	}
	switch c.Events.Backend {
	case "gochannel":
		return nil
	case "nats":
		return checkURL("NATS_URL", c.Events.NATSURL, "nats", "tls", "ws", "wss")
	default:
		return fmt.Errorf("EVENTS_BACKEND must be one of: gochannel, nats")
	}
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

func (c *Config) validateSecurity() error {
	if c.IsProduction() && c.hasWildcardCORS() {
		return fmt.Errorf("CORS_ORIGINS=* (wildcard) is not allowed in production; set specific origins")
	}
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS reports whether wildcard CORS should be logged at startup.
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.hasWildcardCORS()
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// checkURL requires an absolute URL with a host and one of schemes. A path
// is allowed since classifiers expose a single predict route.
func checkURL(name, raw string, schemes ...string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", name, err)
	}
	if !slices.Contains(schemes, u.Scheme) {
		return fmt.Errorf("%s scheme must be one of %s, got %q", name, strings.Join(schemes, ", "), u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host", name)
	}
	return nil
}
