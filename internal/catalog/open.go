// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package catalog

import (
	"fmt"

	"github.com/tomtom215/respite/internal/config"
)

// SourceFor builds the Source described by cfg.
func SourceFor(cfg config.CatalogConfig) (Source, error) {
	switch cfg.Format {
	case "", "csv":
		return &CSVSource{Path: cfg.Path, Encoding: cfg.Encoding}, nil
	case "duckdb":
		return &DuckDBSource{Path: cfg.Path, Table: cfg.Table}, nil
	default:
		return nil, fmt.Errorf("unknown catalog format %q", cfg.Format)
	}
}
