// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/respite/internal/geo"
	"github.com/tomtom215/respite/internal/logging"
	"github.com/tomtom215/respite/internal/recommend"
)

// SessionCreated is the body of POST /sessions.
type SessionCreated struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actor_id"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

// RelatedResponse is the body of GET /sessions/{id}/related.
type RelatedResponse struct {
	Place   string          `json:"place"`
	Related []geo.Candidate `json:"related"`
}

// session resolves the {id} URL parameter, writing 404 on a miss.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*recommend.Session, bool) {
	sess, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondEngineError(w, r, err)
		return nil, false
	}
	return sess, true
}

// CreateSession starts a session for an actor.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req CreateSessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	sess := h.sessions.Create(req.ActorID)
	logging.Ctx(r.Context()).Debug().
		Str("session_id", sess.ID()).
		Str("actor_id", req.ActorID).
		Msg("session created")

	respondSuccess(w, r, http.StatusCreated, SessionCreated{
		ID:        sess.ID(),
		ActorID:   sess.ActorID(),
		State:     sess.State().String(),
		CreatedAt: sess.CreatedAt(),
	}, start)
}

// GetSession returns the session's state, query count and last response.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	respondSuccess(w, r, http.StatusOK, sess.Snapshot(), time.Time{})
}

// DeleteSession ends a session.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.Delete(chi.URLParam(r, "id")) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "session not found", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Recommend runs one query on the session.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req RecommendRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx := logging.ContextWithSessionID(r.Context(), sess.ID())
	resp, err := h.engine.Recommend(ctx, sess, req.Query(h.config.DefaultRadiusKm))
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, resp, start)
}

// Select records a selection. 201 when written, 200 for a same-day
// duplicate.
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req SelectionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx := logging.ContextWithSessionID(r.Context(), sess.ID())
	sel, err := h.engine.RecordSelection(ctx, sess, strings.TrimSpace(req.PlaceName))
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	status := http.StatusCreated
	if sel.Duplicate {
		status = http.StatusOK
	}
	respondSuccess(w, r, status, sel, start)
}

// Related lists other places in a favourite category from the last result.
func (h *Handler) Related(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	place := strings.TrimSpace(r.URL.Query().Get("place"))
	if place == "" {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "place query parameter is required", nil)
		return
	}

	ctx := logging.ContextWithSessionID(r.Context(), sess.ID())
	related, err := h.engine.RelatedPlaces(ctx, sess, place)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, r, http.StatusOK, RelatedResponse{Place: place, Related: related}, start)
}
