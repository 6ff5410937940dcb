// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package recommend

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/respite/internal/geo"
)

// allowedTransitions lists the state changes a query may make.
var allowedTransitions = map[State][]State{
	StateIdle:         {StateFiltered},
	StateFiltered:     {StateIdle, StateSampled},
	StateSampled:      {StateFiltered, StatePersonalized},
	StatePersonalized: {StateFiltered},
}

// Session holds one actor's recommendation flow. It is created by the
// caller and passed to every Engine call; the engine keeps no session state.
type Session struct {
	id        string
	actorID   string
	createdAt time.Time

	mu         sync.Mutex
	state      State
	queries    int
	last       *Response
	filtered   []geo.Candidate
	lastActive time.Time
}

// NewSession starts an idle session for actorID.
func NewSession(actorID string) *Session {
	now := time.Now()
	return &Session{
		id:         uuid.New().String(),
		actorID:    actorID,
		createdAt:  now,
		lastActive: now,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// ActorID returns the actor the session belongs to.
func (s *Session) ActorID() string { return s.actorID }

// CreatedAt returns when the session started.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// QueryCount returns the number of queries that produced candidates.
func (s *Session) QueryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries
}

// Last returns the most recent non-empty response, or nil.
func (s *Session) Last() *Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Filtered returns a copy of the candidate set behind the last response.
func (s *Session) Filtered() []geo.Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]geo.Candidate, len(s.filtered))
	copy(out, s.filtered)
	return out
}

// LastActive returns the time of the last engine call on this session.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Snapshot is a consistent copy of a session's state.
type Snapshot struct {
	ID         string    `json:"id"`
	ActorID    string    `json:"actor_id"`
	State      State     `json:"state"`
	QueryCount int       `json:"query_count"`
	Last       *Response `json:"last_response,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
}

// Snapshot returns the session state under one lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:         s.id,
		ActorID:    s.actorID,
		State:      s.state,
		QueryCount: s.queries,
		Last:       s.last,
		CreatedAt:  s.createdAt,
		LastActive: s.lastActive,
	}
}

// transition moves to next. Caller holds s.mu.
func (s *Session) transition(next State) error {
	for _, allowed := range allowedTransitions[s.state] {
		if allowed == next {
			s.state = next
			return nil
		}
	}
	return fmt.Errorf("session %s: illegal transition %s -> %s", s.id, s.state, next)
}

// touch records activity. Caller holds s.mu.
func (s *Session) touch(now time.Time) {
	s.lastActive = now
}
