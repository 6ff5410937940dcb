// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package api

import (
	"context"
	"net/http"
	"time"
)

// HealthStatus is the body of the health endpoints.
type HealthStatus struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	CatalogPlaces int     `json:"catalog_places,omitempty"`
	LedgerBackend string  `json:"ledger_backend,omitempty"`
	LedgerOK      *bool   `json:"ledger_ok,omitempty"`
}

// HealthLive reports that the process is serving.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, HealthStatus{
		Status:        "alive",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}, time.Time{})
}

// HealthReady reports whether the catalog is loaded and the ledger can be
// read. It answers 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), h.config.ReadyTimeout)
	defer cancel()

	led := h.engine.Ledger()
	_, err := led.Recent(ctx, 1)
	ledgerOK := err == nil

	status := HealthStatus{
		Status:        "ready",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
		CatalogPlaces: h.engine.Catalog().Len(),
		LedgerBackend: led.Backend(),
		LedgerOK:      &ledgerOK,
	}
	code := http.StatusOK
	if !ledgerOK || status.CatalogPlaces == 0 {
		status.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	respondSuccess(w, r, code, status, start)
}
