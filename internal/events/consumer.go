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
	"github.com/rs/zerolog"

	"github.com/tomtom215/respite/internal/metrics"
)

// ErrSubscriptionClosed is returned by Serve when the subscriber closes the
// message channel while the context is still live.
var ErrSubscriptionClosed = errors.New("subscription closed")

// Handler processes one decoded event. A returned error nacks the message.
type Handler interface {
	HandleInteraction(ctx context.Context, event InteractionRecorded) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event InteractionRecorded) error

// HandleInteraction calls f.
func (f HandlerFunc) HandleInteraction(ctx context.Context, event InteractionRecorded) error {
	return f(ctx, event)
}

// Consumer reads InteractionRecorded events from a topic. It implements
// suture.Service through Serve.
type Consumer struct {
	subscriber message.Subscriber
	topic      string
	handler    Handler
	logger     zerolog.Logger

	readyOnce sync.Once
	ready     chan struct{}
}

// NewConsumer creates a consumer for topic.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewConsumer(sub message.Subscriber, topic string, handler Handler, logger zerolog.Logger) *Consumer {
	return &Consumer{
		subscriber: sub,
		topic:      topic,
		handler:    handler,
		logger:     logger.With().Str("component", "events-consumer").Str("topic", topic).Logger(),
		ready:      make(chan struct{}),
	}
}

// Ready is closed once the first subscription is established.
func (c *Consumer) Ready() <-chan struct{} {
	return c.ready
}

// Serve subscribes and dispatches messages until ctx is done.
func (c *Consumer) Serve(ctx context.Context) error {
	messages, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", c.topic, err)
	}
	c.readyOnce.Do(func() { close(c.ready) })
	c.logger.Info().Msg("consumer subscribed")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return ErrSubscriptionClosed
			}
			c.dispatch(ctx, msg)
		}
	}
}

// dispatch handles one message. Undecodable payloads are acked and
// dropped so they are not redelivered forever.
func (c *Consumer) dispatch(ctx context.Context, msg *message.Message) {
	event, err := Decode(msg.Payload)
	if err != nil {
		c.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("dropping malformed event")
		msg.Ack()
		return
	}

	if err := c.handler.HandleInteraction(ctx, event); err != nil {
		c.logger.Error().Err(err).Str("event_id", event.EventID).Msg("event handler failed")
		msg.Nack()
		return
	}

	metrics.RecordEventConsumed()
	msg.Ack()
}

// String names the service in supervisor logs.
func (c *Consumer) String() string {
	return "events-consumer(" + c.topic + ")"
}
