// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package api

import (
	"time"

	"github.com/tomtom215/respite/internal/events"
	"github.com/tomtom215/respite/internal/recommend"
)

// HandlerConfig holds request defaults.
type HandlerConfig struct {
	// DefaultRadiusKm applies when a recommendation request omits radius_km.
	DefaultRadiusKm float64

	// MaxRecent caps /interactions/recent.
	MaxRecent int

	// MaxNeighbors caps the k parameter of /categories/{category}/neighbors.
	MaxNeighbors int

	// ReadyTimeout bounds the readiness probe's ledger read.
	ReadyTimeout time.Duration
}

// DefaultHandlerConfig returns the handler defaults.
func DefaultHandlerConfig() HandlerConfig {
	return HandlerConfig{
		DefaultRadiusKm: 3,
		MaxRecent:       100,
		MaxNeighbors:    20,
		ReadyTimeout:    2 * time.Second,
	}
}

// Handler serves the API endpoints.
type Handler struct {
	engine   *recommend.Engine
	sessions *SessionStore
	tally    *events.Tally // nil when events are disabled
	config   HandlerConfig

	startTime time.Time
}

// NewHandler creates a handler. tally may be nil.
func NewHandler(engine *recommend.Engine, sessions *SessionStore, tally *events.Tally, cfg HandlerConfig) *Handler {
	def := DefaultHandlerConfig()
	if cfg.DefaultRadiusKm <= 0 {
		cfg.DefaultRadiusKm = def.DefaultRadiusKm
	}
	if cfg.MaxRecent <= 0 {
		cfg.MaxRecent = def.MaxRecent
	}
	if cfg.MaxNeighbors <= 0 {
		cfg.MaxNeighbors = def.MaxNeighbors
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = def.ReadyTimeout
	}
	return &Handler{
		engine:    engine,
		sessions:  sessions,
		tally:     tally,
		config:    cfg,
		startTime: time.Now(),
	}
}
