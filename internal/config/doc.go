// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

/*
Package config provides layered configuration loading for Respite.

# Configuration Sources

Configuration is assembled with Koanf v2 in three layers, later layers
winning:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: CONFIG_PATH, else the first of DefaultConfigPaths
 3. Explicitly mapped environment variables (see envMappings)

Unmapped environment variables are ignored. Comma-separated values are
split for slice fields such as CORS_ORIGINS.

# Configuration Structure

  - CatalogConfig: catalog source, encoding, hot reload and grid cell size
  - LedgerConfig: interaction ledger backend (memory, file, badger, duckdb, sqlite, postgres)
  - RecommendConfig: profile sizes, personalization threshold, daily guard timezone, radius bounds
  - ClassifierConfig: optional HTTP tag classifier with rate limit and circuit breaker
  - EventsConfig: interaction event fan-out (gochannel, or nats with -tags nats)
  - ServerConfig, SecurityConfig, LoggingConfig: HTTP surface and logging

# Example

	# config.yaml
	catalog:
	  path: /data/places.csv
	  encoding: cp949
	ledger:
	  backend: badger
	  path: /data/ledger
	recommend:
	  timezone: Asia/Seoul

	CATALOG_PATH=/srv/places.csv LEDGER_BACKEND=sqlite LEDGER_PATH=/srv/ledger.db ./respite

Validate is called by Load; every error names the environment variable to fix.
*/
package config
