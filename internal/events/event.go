// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/respite/internal/ledger"
)

// EventTypeInteractionRecorded is the message type metadata value.
const EventTypeInteractionRecorded = "interaction.recorded"

// ErrInvalidEvent is returned for payloads that decode but are incomplete.
var ErrInvalidEvent = errors.New("invalid event")

// InteractionRecorded is published after a selection reaches the ledger.
type InteractionRecorded struct {
	EventID     string    `json:"event_id"`
	PublishedAt time.Time `json:"published_at"`
	RequestID   string    `json:"request_id,omitempty"`

	Timestamp time.Time `json:"timestamp"`
	ActorID   string    `json:"user_id"`
	PlaceName string    `json:"name"`
	Category  string    `json:"category"`
}

// NewInteractionRecorded wraps in with a fresh event ID.
func NewInteractionRecorded(in ledger.Interaction) InteractionRecorded {
	return InteractionRecorded{
		EventID:     uuid.New().String(),
		PublishedAt: time.Now().UTC(),
		Timestamp:   in.Timestamp,
		ActorID:     in.ActorID,
		PlaceName:   in.PlaceName,
		Category:    in.Category,
	}
}

// Interaction returns the ledger record carried by the event.
func (e *InteractionRecorded) Interaction() ledger.Interaction {
	return ledger.Interaction{
		Timestamp: e.Timestamp,
		ActorID:   e.ActorID,
		PlaceName: e.PlaceName,
		Category:  e.Category,
	}
}

// Validate checks the fields a consumer relies on.
func (e *InteractionRecorded) Validate() error {
	switch {
	case e.EventID == "":
		return fmt.Errorf("%w: event_id is required", ErrInvalidEvent)
	case e.ActorID == "":
		return fmt.Errorf("%w: user_id is required", ErrInvalidEvent)
	case e.PlaceName == "":
		return fmt.Errorf("%w: name is required", ErrInvalidEvent)
	}
	return nil
}

// Encode serializes the event.
func (e *InteractionRecorded) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses and validates an event payload.
func Decode(data []byte) (InteractionRecorded, error) {
	var e InteractionRecorded
	if err := json.Unmarshal(data, &e); err != nil {
		return InteractionRecorded{}, fmt.Errorf("decode event: %w", err)
	}
	if err := e.Validate(); err != nil {
		return InteractionRecorded{}, err
	}
	return e, nil
}
