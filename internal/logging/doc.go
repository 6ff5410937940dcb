// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

// Package logging provides centralized zerolog-based structured logging for Respite.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Msg("server starting")
//	logging.Error().Err(err).Msg("ledger append failed")
//
//	// With request/session IDs attached by the API middleware
//	logging.Ctx(ctx).Info().Str("place", name).Msg("selection recorded")
//
// Components that live for the whole process take a zerolog.Logger by value
// and derive a child with a component field:
//
//	logger := logging.WithComponent("recommend")
//
// # slog Bridge
//
// The supervisor library logs through log/slog. NewSlogLogger returns an
// slog.Logger whose records are written by the global zerolog logger, so
// both streams share format and level.
//
// # Configuration
//
// Level, format (json or console) and caller reporting come from the
// logging section of the application config (LOG_LEVEL, LOG_FORMAT and
// LOG_CALLER in the environment).
package logging
