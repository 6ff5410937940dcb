// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/respite/internal/ledger"
	"github.com/tomtom215/respite/internal/recommend"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// respondEngineError maps engine and ledger errors onto HTTP statuses.
func respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *recommend.ValidationError
	switch {
	case errors.As(err, &verr):
		respondErrorDetails(w, r, http.StatusBadRequest, &APIError{
			Code:    ErrCodeValidation,
			Message: verr.Error(),
			Details: map[string]interface{}{"field": verr.Field},
		}, nil)
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, recommend.ErrNoSession):
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "session not found", nil)
	case errors.Is(err, recommend.ErrUnknownPlace):
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, err.Error(), nil)
	case errors.Is(err, recommend.ErrUnknownCategory):
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, err.Error(), nil)
	case errors.Is(err, recommend.ErrRelatedUnavailable):
		respondError(w, r, http.StatusConflict, ErrCodeConflict, err.Error(), nil)
	case errors.Is(err, ledger.ErrWrite):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeLedgerWrite, "selection could not be recorded", err)
	default:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "internal error", err)
	}
}
