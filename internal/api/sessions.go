// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package api

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/respite/internal/logging"
	"github.com/tomtom215/respite/internal/metrics"
	"github.com/tomtom215/respite/internal/recommend"
)

// SessionStore holds live sessions in memory and expires idle ones.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*recommend.Session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates a store whose sessions expire after ttl without
// activity. A non-positive ttl disables expiry.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*recommend.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a session for actorID.
func (s *SessionStore) Create(actorID string) *recommend.Session {
	sess := recommend.NewSession(actorID)

	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	metrics.SetActiveSessions(n)
	return sess
}

// Get returns a live session. Expired sessions are removed on access.
func (s *SessionStore) Get(id string) (*recommend.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.expired(sess, s.now()) {
		s.Delete(id)
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Delete removes a session. It reports whether the session existed.
func (s *SessionStore) Delete(id string) bool {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()

	metrics.SetActiveSessions(n)
	return ok
}

// Len returns the number of stored sessions, expired or not.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionStore) expired(sess *recommend.Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.LastActive()) > s.ttl
}

// Sweep removes expired sessions and returns how many were removed.
func (s *SessionStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	metrics.SetActiveSessions(n)
	return removed
}

// Serve sweeps every ttl/4 until ctx is done. It implements suture.Service.
func (s *SessionStore) Serve(ctx context.Context) error {
	if s.ttl <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	interval := s.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				logging.Debug().Int("expired", n).Int("remaining", s.Len()).Msg("swept idle sessions")
			}
		}
	}
}

// String names the service in supervisor logs.
func (s *SessionStore) String() string {
	return "session-sweeper"
}
