// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/respite/internal/ledger"
	"github.com/tomtom215/respite/internal/logging"
	"github.com/tomtom215/respite/internal/metrics"
)

// ErrPublisherClosed is returned by PublishInteraction after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// Publisher sends InteractionRecorded events to one topic.
type Publisher struct {
	publisher message.Publisher
	topic     string

	mu     sync.RWMutex
	closed bool
}

// NewPublisher publishes to topic through pub.
func NewPublisher(pub message.Publisher, topic string) *Publisher {
	return &Publisher{publisher: pub, topic: topic}
}

// Topic returns the topic events are published to.
func (p *Publisher) Topic() string {
	return p.topic
}

// PublishInteraction publishes in as an InteractionRecorded event.
func (p *Publisher) PublishInteraction(ctx context.Context, in ledger.Interaction) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	event := NewInteractionRecorded(in)
	event.RequestID = logging.RequestIDFromContext(ctx)
	data, err := event.Encode()
	if err != nil {
		metrics.RecordEventPublished(err)
		return fmt.Errorf("encode event: %w", err)
	}

	msg := message.NewMessage(event.EventID, data)
	msg.Metadata.Set("event_type", EventTypeInteractionRecorded)
	msg.Metadata.Set("actor_id", event.ActorID)
	msg.Metadata.Set("category", event.Category)
	if event.RequestID != "" {
		msg.Metadata.Set("request_id", event.RequestID)
	}
	msg.SetContext(ctx)

	err = p.publisher.Publish(p.topic, msg)
	metrics.RecordEventPublished(err)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}
	return nil
}

// Close closes the underlying publisher. It is safe to call more than once.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}
