// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package events

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/respite/internal/config"
)

// goChannelBuffer is the per-subscriber output buffer of the in-process
// backend.
const goChannelBuffer = 256

// Transport is a connected publisher/subscriber pair.
type Transport struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	Backend    string
}

// Close closes both halves. The gochannel backend shares one object.
func (t *Transport) Close() error {
	err := t.Publisher.Close()
	if t.Subscriber != nil && any(t.Subscriber) != any(t.Publisher) {
		if serr := t.Subscriber.Close(); serr != nil && err == nil {
			err = serr
		}
	}
	return err
}

// NewGoChannel returns an in-process pub/sub.
func NewGoChannel(logger watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: goChannelBuffer,
	}, logger)
}

// Open connects the backend named in cfg.
func Open(cfg config.EventsConfig, logger watermill.LoggerAdapter) (*Transport, error) {
	switch cfg.Backend {
	case "", "gochannel":
		ch := NewGoChannel(logger)
		return &Transport{Publisher: ch, Subscriber: ch, Backend: "gochannel"}, nil
	case "nats":
		pub, err := NewNATSPublisher(cfg.NATSURL, logger)
		if err != nil {
			return nil, err
		}
		sub, err := NewNATSSubscriber(cfg.NATSURL, "respite", logger)
		if err != nil {
			_ = pub.Close()
			return nil, err
		}
		return &Transport{Publisher: pub, Subscriber: sub, Backend: "nats"}, nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}
