// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package ledger

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tomtom215/respite/internal/catalog"
	"github.com/tomtom215/respite/internal/logging"
)

// TimestampLayout is the timestamp format of imported click logs, read in
// the ledger's zone. It is also the display format.
const TimestampLayout = "2006-01-02 15:04:05"

// storedTimestampLayout is what FileStore writes. It keeps the zone offset
// and every fractional digit.
const storedTimestampLayout = time.RFC3339Nano

// csvHeader is the click-log header row.
var csvHeader = []string{"timestamp", "user_id", "name", "category"}

// ReadCSV parses a click log. Malformed lines and lines with an unparsable
// timestamp are skipped with a warning. Timestamps without a zone are read
// in loc. enc names the file encoding as accepted by catalog.DecodeReader.
func ReadCSV(ctx context.Context, r io.Reader, enc string, loc *time.Location) ([]Interaction, error) {
	if loc == nil {
		loc = time.UTC
	}
	decoded, err := catalog.DecodeReader(r, enc)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []Interaction{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := headerColumns(header)
	if err != nil {
		return nil, err
	}

	out := make([]Interaction, 0)
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
				logging.Warn().Int("line", line).Err(err).Msg("skipping malformed click-log line")
				continue
			}
			return nil, err
		}
		if len(row) < len(csvHeader) {
			logging.Warn().Int("line", line).Int("fields", len(row)).Msg("skipping short click-log line")
			continue
		}

		ts, err := parseTimestamp(strings.TrimSpace(row[cols[0]]), loc)
		if err != nil {
			logging.Warn().Int("line", line).Err(err).Msg("skipping click-log line with bad timestamp")
			continue
		}
		out = append(out, Interaction{
			Timestamp: ts,
			ActorID:   strings.TrimSpace(row[cols[1]]),
			PlaceName: strings.TrimSpace(row[cols[2]]),
			Category:  strings.TrimSpace(row[cols[3]]),
		})
	}
	return out, nil
}

// headerColumns returns the indices of csvHeader's columns in header.
func headerColumns(header []string) ([]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, exists := index[key]; !exists {
			index[key] = i
		}
	}

	cols := make([]int, len(csvHeader))
	var missing []string
	for i, name := range csvHeader {
		idx, ok := index[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		cols[i] = idx
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("click log missing columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func parseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(TimestampLayout, s, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(storedTimestampLayout, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02 15:04", s, loc)
}

// formatRow renders in as a click-log row.
func formatRow(in Interaction, loc *time.Location) []string {
	return []string{
		in.Timestamp.In(loc).Format(storedTimestampLayout),
		in.ActorID,
		in.PlaceName,
		in.Category,
	}
}
