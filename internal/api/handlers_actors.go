// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/respite/internal/recommend"
)

// ActorProfile is the body of GET /actors/{actorID}/profile.
type ActorProfile struct {
	ActorID string                      `json:"actor_id"`
	Profile recommend.PreferenceProfile `json:"profile"`
}

// ActorSuggestions is the body of GET /actors/{actorID}/suggestions.
type ActorSuggestions struct {
	ActorID     string                 `json:"actor_id"`
	Suggestions []recommend.Suggestion `json:"suggestions"`
}

// actorIDParam validates the {actorID} URL parameter.
func actorIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	req := CreateSessionRequest{ActorID: chi.URLParam(r, "actorID")}
	if !validateRequest(w, r, &req) {
		return "", false
	}
	return req.ActorID, true
}

// Profile returns the preference profile a query by the actor would use.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	actorID, ok := actorIDParam(w, r)
	if !ok {
		return
	}
	profile, err := h.engine.Profile(r.Context(), actorID)
	if err != nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "interaction ledger unavailable", err)
		return
	}
	respondSuccess(w, r, http.StatusOK, ActorProfile{ActorID: actorID, Profile: profile}, start)
}

// Suggestions returns collaborative suggestions for an actor, with
// distances when lat and lon are given.
func (h *Handler) Suggestions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	actorID, ok := actorIDParam(w, r)
	if !ok {
		return
	}
	origin, err := originParams(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}

	suggestions, err := h.engine.Suggestions(r.Context(), actorID, origin)
	if err != nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "interaction ledger unavailable", err)
		return
	}
	if suggestions == nil {
		suggestions = []recommend.Suggestion{}
	}
	respondSuccess(w, r, http.StatusOK, ActorSuggestions{ActorID: actorID, Suggestions: suggestions}, start)
}
