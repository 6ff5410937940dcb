// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package ledger

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore appends interactions to a UTF-8 CSV click log.
//
// Timestamps are written as RFC 3339 with nanoseconds in the store's zone.
// Rows in the older "2006-01-02 15:04:05" layout are still read, in the
// same zone.
type FileStore struct {
	path       string
	loc        *time.Location
	syncWrites bool

	mu sync.RWMutex
	f  *os.File
}

// OpenFileStore opens or creates the click log at path. A new or empty
// file gets the header row.
func OpenFileStore(path string, syncWrites bool, loc *time.Location) (*FileStore, error) {
	if loc == nil {
		loc = time.UTC
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open click log: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat click log: %w", err)
	}
	if info.Size() == 0 {
		if err := writeRow(f, csvHeader, syncWrites); err != nil {
			f.Close()
			return nil, fmt.Errorf("write click log header: %w", err)
		}
	}

	return &FileStore{path: path, loc: loc, syncWrites: syncWrites, f: f}, nil
}

func (s *FileStore) Name() string { return "file" }

// Path returns the click log path.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Append(ctx context.Context, in Interaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return ErrClosed
	}
	return writeRow(s.f, formatRow(in, s.loc), s.syncWrites)
}

func (s *FileStore) ReadAll(ctx context.Context) ([]Interaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.f == nil {
		return nil, ErrClosed
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(ctx, f, "utf-8", s.loc)
}

func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}

// writeRow writes one encoded row with a single write call.
func writeRow(f *os.File, row []string, syncWrites bool) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		return err
	}
	if syncWrites {
		return f.Sync()
	}
	return nil
}
