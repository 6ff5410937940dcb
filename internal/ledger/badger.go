// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package ledger

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/respite/internal/logging"
)

// Key prefix for interaction entries. Keys are prefix + big-endian sequence,
// so iteration order is append order.
var prefixInteraction = []byte("ix:")

// BadgerStore keeps interactions in an embedded BadgerDB.
type BadgerStore struct {
	db *badger.DB

	mu  sync.Mutex
	seq uint64
}

// OpenBadgerStore opens (or creates) the database directory at path.
// syncWrites fsyncs every commit.
func OpenBadgerStore(path string, syncWrites bool) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.SyncWrites = syncWrites

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	s := &BadgerStore{db: db}
	if err := s.loadSequence(); err != nil {
		db.Close()
		return nil, err
	}

	logging.Info().
		Str("path", path).
		Bool("sync_writes", syncWrites).
		Uint64("records", s.seq).
		Msg("badger ledger opened")
	return s, nil
}

// loadSequence resumes numbering after the last stored key.
func (s *BadgerStore) loadSequence() error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		// Seek to the end of the prefix range
		seekKey := append(append([]byte{}, prefixInteraction...), 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF)
		it.Seek(seekKey)
		if it.ValidForPrefix(prefixInteraction) {
			key := it.Item().Key()
			s.seq = binary.BigEndian.Uint64(key[len(prefixInteraction):])
		}
		return nil
	})
}

func interactionKey(seq uint64) []byte {
	key := make([]byte, len(prefixInteraction)+8)
	copy(key, prefixInteraction)
	binary.BigEndian.PutUint64(key[len(prefixInteraction):], seq)
	return key
}

func (s *BadgerStore) Name() string { return "badger" }

func (s *BadgerStore) Append(ctx context.Context, in Interaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal interaction: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.seq + 1
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(interactionKey(next), data))
	})
	if err != nil {
		if errors.Is(err, badger.ErrDBClosed) {
			return ErrClosed
		}
		return err
	}
	s.seq = next
	return nil
}

func (s *BadgerStore) ReadAll(ctx context.Context) ([]Interaction, error) {
	out := make([]Interaction, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefixInteraction); it.ValidForPrefix(prefixInteraction); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var in Interaction
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &in)
			})
			if err != nil {
				return fmt.Errorf("decode interaction %x: %w", it.Item().Key(), err)
			}
			out = append(out, in)
		}
		return nil
	})
	if errors.Is(err, badger.ErrDBClosed) {
		return nil, ErrClosed
	}
	return out, err
}

// Tail returns the last n interactions in append order.
func (s *BadgerStore) Tail(ctx context.Context, n int) ([]Interaction, error) {
	out := make([]Interaction, 0, n)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		seekKey := append(append([]byte{}, prefixInteraction...), 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF)
		for it.Seek(seekKey); it.ValidForPrefix(prefixInteraction) && len(out) < n; it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var in Interaction
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &in)
			}); err != nil {
				return err
			}
			out = append(out, in)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
