// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB driver
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// DuckDBSource reads places through DuckDB.
//
// With Table set, rows come from that table in the database at Path.
// Otherwise Path is treated as a data file and read with read_csv_auto.
type DuckDBSource struct {
	Path  string
	Table string
}

func (s *DuckDBSource) String() string {
	if s.Table != "" {
		return "duckdb:" + s.Path + "#" + s.Table
	}
	return "duckdb:" + s.Path
}

func (s *DuckDBSource) query() (dsn, query string, err error) {
	const opts = "?autoinstall_known_extensions=false&autoload_known_extensions=false"
	if s.Table != "" {
		if !identifierPattern.MatchString(s.Table) {
			return "", "", fmt.Errorf("invalid table name %q", s.Table)
		}
		return s.Path + opts, "SELECT * FROM " + s.Table, nil
	}
	quoted := "'" + strings.ReplaceAll(s.Path, "'", "''") + "'"
	return ":memory:" + opts, "SELECT * FROM read_csv_auto(" + quoted + ", all_varchar = true, header = true)", nil
}

// Records implements Source.
func (s *DuckDBSource) Records(ctx context.Context) ([]Record, error) {
	dsn, query, err := s.query()
	if err != nil {
		return nil, &LoadError{Source: s.String(), Err: err}
	}

	conn, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, &LoadError{Source: s.String(), Err: fmt.Errorf("failed to open database: %w", err)}
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, &LoadError{Source: s.String(), Err: fmt.Errorf("query catalog: %w", err)}
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, &LoadError{Source: s.String(), Err: err}
	}
	cols, missing := resolveColumns(header)
	if len(missing) > 0 {
		return nil, &LoadError{Source: s.String(), Missing: missing}
	}

	values := make([]any, len(header))
	for i := range values {
		values[i] = new(any)
	}

	var records []Record
	for rows.Next() {
		if err := rows.Scan(values...); err != nil {
			return nil, &LoadError{Source: s.String(), Err: fmt.Errorf("scan catalog row: %w", err)}
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = stringify(*(v.(*any)))
		}
		records = append(records, Record{
			Name:     cell(row, cols["name"]),
			Category: cell(row, cols["category"]),
			Tags:     cell(row, cols["tags"]),
			Location: cell(row, cols["location"]),
			Lat:      parseCoordinate(cell(row, cols["lat"])),
			Lon:      parseCoordinate(cell(row, cols["lon"])),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &LoadError{Source: s.String(), Err: err}
	}
	return records, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
