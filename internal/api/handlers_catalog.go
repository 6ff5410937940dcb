// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/respite/internal/events"
	"github.com/tomtom215/respite/internal/ledger"
	"github.com/tomtom215/respite/internal/recommend"
)

// CategoryNeighbors is the body of GET /categories/{category}/neighbors.
type CategoryNeighbors struct {
	Category  string   `json:"category"`
	K         int      `json:"k"`
	Neighbors []string `json:"neighbors"`
}

// RecentInteractions is the body of GET /interactions/recent.
type RecentInteractions struct {
	Backend      string               `json:"backend"`
	Interactions []ledger.Interaction `json:"interactions"`
}

// CatalogStats is the body of GET /catalog.
type CatalogStats struct {
	Source         string                `json:"source"`
	Places         int                   `json:"places"`
	Dropped        int                   `json:"dropped"`
	Categories     []string              `json:"categories"`
	LoadedAt       time.Time             `json:"loaded_at"`
	LedgerBackend  string                `json:"ledger_backend"`
	ActiveSessions int                   `json:"active_sessions"`
	Engine         recommend.Stats       `json:"engine"`
	Selections     *events.TallySnapshot `json:"selections,omitempty"`
}

// Neighbors returns the content-similar categories of {category}.
func (h *Handler) Neighbors(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	category := chi.URLParam(r, "category")
	k, err := intParam(r, "k", 3, h.config.MaxNeighbors)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}

	neighbors, err := h.engine.Neighbors(category, k)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, CategoryNeighbors{Category: category, K: k, Neighbors: neighbors}, start)
}

// RecentInteractions returns the newest ledger entries, oldest first.
func (h *Handler) RecentInteractions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	n, err := intParam(r, "n", 10, h.config.MaxRecent)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}

	led := h.engine.Ledger()
	recent, err := led.Recent(r.Context(), n)
	if err != nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "interaction ledger unavailable", err)
		return
	}
	if recent == nil {
		recent = []ledger.Interaction{}
	}
	respondSuccess(w, r, http.StatusOK, RecentInteractions{Backend: led.Backend(), Interactions: recent}, start)
}

// CatalogStats describes the loaded catalog and engine counters.
func (h *Handler) CatalogStats(w http.ResponseWriter, r *http.Request) {
	cat := h.engine.Catalog()
	stats := CatalogStats{
		Source:         cat.Source(),
		Places:         cat.Len(),
		Dropped:        cat.Dropped(),
		Categories:     cat.Categories(),
		LoadedAt:       cat.LoadedAt(),
		LedgerBackend:  h.engine.Ledger().Backend(),
		ActiveSessions: h.sessions.Len(),
		Engine:         h.engine.Stats(),
	}
	if h.tally != nil {
		snap := h.tally.Snapshot()
		stats.Selections = &snap
	}
	respondSuccess(w, r, http.StatusOK, stats, time.Time{})
}
