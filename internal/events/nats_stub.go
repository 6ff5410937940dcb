// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

//go:build !nats

package events

import (
	"errors"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// NATSAvailable reports whether the binary was built with NATS support.
const NATSAvailable = false

// ErrNATSUnavailable is returned when the nats backend is requested from a
// binary built without -tags nats.
var ErrNATSUnavailable = errors.New("NATS events backend not available: build with -tags=nats")

// NewNATSPublisher returns ErrNATSUnavailable.
func NewNATSPublisher(string, watermill.LoggerAdapter) (message.Publisher, error) {
	return nil, ErrNATSUnavailable
}

// NewNATSSubscriber returns ErrNATSUnavailable.
func NewNATSSubscriber(string, string, watermill.LoggerAdapter) (message.Subscriber, error) {
	return nil, ErrNATSUnavailable
}
