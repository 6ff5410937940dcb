// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/tomtom215/respite/internal/logging"
)

// Column aliases accepted in catalog headers (compared lowercased).
var columnAliases = map[string][]string{
	"name":     {"name", "place", "place_name"},
	"category": {"category", "cat"},
	"tags":     {"tag", "tags"},
	"location": {"location", "location_label", "address"},
	"lat":      {"lat", "latitude"},
	"lon":      {"lon", "lng", "long", "longitude"},
}

var requiredColumns = []string{"name", "category", "lat", "lon"}

// CSVSource reads places from a delimited text file.
type CSVSource struct {
	// Path is the file to read.
	Path string

	// Encoding is one of "", "utf-8", "utf-8-sig", "cp949" or "euc-kr".
	// Empty means UTF-8 with an optional BOM.
	Encoding string

	// Comma overrides the field delimiter (default ',').
	Comma rune
}

func (s *CSVSource) String() string {
	return "csv:" + s.Path
}

// Records implements Source.
func (s *CSVSource) Records(ctx context.Context) ([]Record, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, &LoadError{Source: s.String(), Err: err}
	}
	defer f.Close()

	r, err := DecodeReader(f, s.Encoding)
	if err != nil {
		return nil, &LoadError{Source: s.String(), Err: err}
	}
	return s.read(ctx, r)
}

func (s *CSVSource) read(ctx context.Context, r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	if s.Comma != 0 {
		cr.Comma = s.Comma
	}

	header, err := cr.Read()
	if err != nil {
		return nil, &LoadError{Source: s.String(), Err: fmt.Errorf("read header: %w", err)}
	}

	cols, missing := resolveColumns(header)
	if len(missing) > 0 {
		return nil, &LoadError{Source: s.String(), Missing: missing}
	}

	var records []Record
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := cr.Read()
		line++
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				logging.Warn().Str("source", s.String()).Int("line", line).Err(err).Msg("skipping malformed catalog line")
				continue
			}
			return nil, &LoadError{Source: s.String(), Err: err}
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

	return records, nil
}

// resolveColumns maps canonical column names to header indices.
// Optional columns that are absent map to -1.
func resolveColumns(header []string) (map[string]int, []string) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, exists := index[key]; !exists {
			index[key] = i
		}
	}

	cols := make(map[string]int, len(columnAliases))
	for canonical, aliases := range columnAliases {
		cols[canonical] = -1
		for _, alias := range aliases {
			if i, ok := index[alias]; ok {
				cols[canonical] = i
				break
			}
		}
	}

	var missing []string
	for _, req := range requiredColumns {
		if cols[req] < 0 {
			missing = append(missing, req)
		}
	}
	return cols, missing
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseCoordinate(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// DecodeReader wraps r so that it yields UTF-8 for the named encoding.
// A leading UTF-8 byte order mark is always stripped.
func DecodeReader(r io.Reader, name string) (io.Reader, error) {
	var enc encoding.Encoding
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8", "utf-8-sig", "utf8-sig":
		enc = unicode.UTF8BOM
	case "cp949", "euc-kr", "euckr", "ms949":
		enc = korean.EUCKR
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}
