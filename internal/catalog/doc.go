// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

// Package catalog loads, validates and normalizes the place dataset.
//
// A Catalog is built once per load and is immutable afterwards, so it can be
// shared between goroutines without locking. Reloading produces a new
// Catalog; callers swap the pointer.
//
// # Sources
//
// Rows come from a Source:
//
//   - CSVSource: a CSV file with at least name, category, lat and lon
//     columns (header matching is case-insensitive). Legacy exports in
//     cp949/euc-kr and UTF-8 with BOM are decoded transparently.
//   - DuckDBSource: a DuckDB table, or any file DuckDB can read through
//     read_csv_auto.
//
// # Row Rules
//
// Rows without lat, lon or category are dropped, as are rows whose
// coordinates are out of range or whose name is empty or repeated (the
// first occurrence wins). If nothing survives, Load returns an EmptyError.
//
// # Usage
//
//	cat, err := catalog.Load(ctx, &catalog.CSVSource{Path: "places.csv", Encoding: "cp949"})
//	if errors.Is(err, catalog.ErrEmpty) {
//	    // nothing to recommend
//	}
package catalog
