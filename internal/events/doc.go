// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

// Package events fans out recorded selections as InteractionRecorded
// messages over Watermill.
//
// Backends:
//
//   - gochannel: in-process pub/sub, the default
//   - nats: core NATS via watermill-nats, only with -tags nats
//
// Publisher implements recommend.EventPublisher. Consumer subscribes to the
// same topic and hands each decoded event to a Handler; it runs as a
// supervised service. Tally is the built-in handler that keeps per-category
// selection counts since process start.
//
// Publishing is best effort: the engine logs publish failures and keeps the
// ledger as the source of truth.
package events
