// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// storeFactory opens a store rooted at dir. Opening the same dir twice must
// see the same data.
type storeFactory struct {
	name    string
	open    func(t *testing.T, dir string) Store
	durable bool
}

func storeFactories() []storeFactory {
	ctx := context.Background()
	return []storeFactory{
		{
			name: "memory",
			open: func(t *testing.T, _ string) Store { return NewMemoryStore() },
		},
		{
			name: "file",
			open: func(t *testing.T, dir string) Store {
				s, err := OpenFileStore(filepath.Join(dir, "click_log.csv"), true, time.UTC)
				if err != nil {
					t.Fatalf("OpenFileStore() error = %v", err)
				}
				return s
			},
			durable: true,
		},
		{
			name: "badger",
			open: func(t *testing.T, dir string) Store {
				s, err := OpenBadgerStore(filepath.Join(dir, "badger"), true)
				if err != nil {
					t.Fatalf("OpenBadgerStore() error = %v", err)
				}
				return s
			},
			durable: true,
		},
		{
			name: "duckdb",
			open: func(t *testing.T, dir string) Store {
				s, err := OpenDuckDBStore(ctx, filepath.Join(dir, "ledger.duckdb"))
				if err != nil {
					t.Fatalf("OpenDuckDBStore() error = %v", err)
				}
				return s
			},
			durable: true,
		},
		{
			name: "sqlite",
			open: func(t *testing.T, dir string) Store {
				s, err := OpenSQLiteStore(ctx, filepath.Join(dir, "ledger.db"))
				if err != nil {
					t.Fatalf("OpenSQLiteStore() error = %v", err)
				}
				return s
			},
			durable: true,
		},
	}
}

func TestStores_AppendOrder(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			ctx := context.Background()
			s := f.open(t, t.TempDir())
			defer s.Close()

			want := []Interaction{
				ix("u1", "Riverside Path", "walking", 0),
				ix("u2", "Quiet Cafe", "cafe", time.Minute),
				ix("u1", "산책로", "walking", 2*time.Minute),
			}
			for _, in := range want {
				if err := s.Append(ctx, in); err != nil {
					t.Fatalf("Append() error = %v", err)
				}
			}

			got, err := s.ReadAll(ctx)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			assertInteractions(t, got, want)
		})
	}
}

func TestStores_SubSecondTimestamps(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			ctx := context.Background()
			s := f.open(t, t.TempDir())
			defer s.Close()

			in := ix("u1", "Riverside Path", "walking", 123456789*time.Nanosecond)
			if err := s.Append(ctx, in); err != nil {
				t.Fatalf("Append() error = %v", err)
			}
			got, err := s.ReadAll(ctx)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			assertInteractions(t, got, []Interaction{in})
		})
	}
}

func TestStores_Durable(t *testing.T) {
	for _, f := range storeFactories() {
		if !f.durable {
			continue
		}
		t.Run(f.name, func(t *testing.T) {
			ctx := context.Background()
			dir := t.TempDir()

			s := f.open(t, dir)
			first := ix("u1", "Library", "reading", 0)
			if err := s.Append(ctx, first); err != nil {
				t.Fatalf("Append() error = %v", err)
			}
			if err := s.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}

			s = f.open(t, dir)
			defer s.Close()
			second := ix("u2", "Hill Trail", "hiking", time.Hour)
			if err := s.Append(ctx, second); err != nil {
				t.Fatalf("Append() after reopen error = %v", err)
			}

			got, err := s.ReadAll(ctx)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			assertInteractions(t, got, []Interaction{first, second})
		})
	}
}

func TestStores_ConcurrentAppends(t *testing.T) {
	const writers, perWriter = 8, 10

	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			ctx := context.Background()
			s := f.open(t, t.TempDir())
			defer s.Close()

			var wg sync.WaitGroup
			errs := make(chan error, writers*perWriter)
			for w := 0; w < writers; w++ {
				wg.Add(1)
				go func(w int) {
					defer wg.Done()
					for i := 0; i < perWriter; i++ {
						in := ix(fmt.Sprintf("u%d", w), fmt.Sprintf("place-%d", i), "cafe", time.Duration(i)*time.Second)
						if err := s.Append(ctx, in); err != nil {
							errs <- err
						}
					}
				}(w)
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				t.Errorf("Append() error = %v", err)
			}

			got, err := s.ReadAll(ctx)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if len(got) != writers*perWriter {
				t.Fatalf("len(ReadAll()) = %d, want %d", len(got), writers*perWriter)
			}

			// Per-writer order is preserved
			next := make(map[string]int)
			for _, in := range got {
				want := fmt.Sprintf("place-%d", next[in.ActorID])
				if in.PlaceName != want {
					t.Errorf("actor %s: got %s, want %s", in.ActorID, in.PlaceName, want)
				}
				next[in.ActorID]++
			}
		})
	}
}

func TestStores_Tail(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			ctx := context.Background()
			l := New(f.open(t, t.TempDir()))
			defer l.Close()

			for i := 0; i < 5; i++ {
				if err := l.Append(ctx, ix("u1", fmt.Sprintf("p%d", i), "park", time.Duration(i)*time.Minute)); err != nil {
					t.Fatalf("Append() error = %v", err)
				}
			}
			got, err := l.Recent(ctx, 2)
			if err != nil {
				t.Fatalf("Recent() error = %v", err)
			}
			if len(got) != 2 || got[0].PlaceName != "p3" || got[1].PlaceName != "p4" {
				t.Errorf("Recent(2) = %v, want p3, p4", got)
			}
		})
	}
}

func TestStores_Closed(t *testing.T) {
	for _, f := range storeFactories() {
		if f.name == "badger" {
			continue // closed DB behavior belongs to badger
		}
		t.Run(f.name, func(t *testing.T) {
			s := f.open(t, t.TempDir())
			if err := s.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}
			err := s.Append(context.Background(), ix("u1", "A", "cafe", 0))
			if !errors.Is(err, ErrClosed) {
				t.Errorf("Append() after Close error = %v, want ErrClosed", err)
			}
		})
	}
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("RESPITE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("RESPITE_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	s, err := OpenPostgresStore(ctx, dsn)
	if err != nil {
		t.Fatalf("OpenPostgresStore() error = %v", err)
	}
	defer s.Close()
	if _, err := s.pool.Exec(ctx, `TRUNCATE interactions`); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	want := []Interaction{
		ix("u1", "Riverside Path", "walking", 0),
		ix("u2", "Quiet Cafe", "cafe", time.Minute),
	}
	for _, in := range want {
		if err := s.Append(ctx, in); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	got, err := s.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	assertInteractions(t, got, want)

	tail, err := s.Tail(ctx, 1)
	if err != nil {
		t.Fatalf("Tail() error = %v", err)
	}
	if len(tail) != 1 || tail[0].PlaceName != "Quiet Cafe" {
		t.Errorf("Tail(1) = %v, want Quiet Cafe", tail)
	}
}

func assertInteractions(t *testing.T, got, want []Interaction) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d interactions, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		g, w := got[i], want[i]
		if g.ActorID != w.ActorID || g.PlaceName != w.PlaceName || g.Category != w.Category {
			t.Errorf("[%d] = %+v, want %+v", i, g, w)
		}
		if !g.Timestamp.Equal(w.Timestamp) {
			t.Errorf("[%d].Timestamp = %v, want %v", i, g.Timestamp, w.Timestamp)
		}
	}
}
