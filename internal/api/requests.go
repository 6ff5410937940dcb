// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/respite/internal/geo"
	"github.com/tomtom215/respite/internal/recommend"
	"github.com/tomtom215/respite/internal/validation"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

// CreateSessionRequest starts a session.
type CreateSessionRequest struct {
	ActorID string `json:"actor_id" validate:"required,actorid"`
}

// RecommendRequest is one recommendation query. Lat and Lon are optional
// together; RadiusKm falls back to the configured default.
type RecommendRequest struct {
	Lat          *float64          `json:"lat" validate:"required_with=Lon,omitempty,latitude"`
	Lon          *float64          `json:"lon" validate:"required_with=Lat,omitempty,longitude"`
	RadiusKm     *float64          `json:"radius_km" validate:"omitempty,gt=0"`
	PreferredTag string            `json:"preferred_tag" validate:"max=64"`
	Context      map[string]string `json:"context" validate:"max=16"`
}

// Query converts the request, applying defaultRadius.
func (req *RecommendRequest) Query(defaultRadius float64) recommend.Query {
	q := recommend.Query{
		RadiusKm:        defaultRadius,
		PreferredTag:    req.PreferredTag,
		DeclaredContext: req.Context,
	}
	if req.RadiusKm != nil {
		q.RadiusKm = *req.RadiusKm
	}
	if req.Lat != nil && req.Lon != nil {
		q.Origin = &geo.Point{Lat: *req.Lat, Lon: *req.Lon}
	}
	return q
}

// SelectionRequest records that a place was opened.
type SelectionRequest struct {
	PlaceName string `json:"place_name" validate:"required,notblank,max=256"`
}

// decodeAndValidate reads a JSON body into dst and validates it. It writes
// the error response itself and reports whether the handler may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		msg := "invalid JSON body"
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			msg = "request body is required"
		case errors.As(err, &maxErr):
			msg = fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit)
		}
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, msg, nil)
		return false
	}
	return validateRequest(w, r, dst)
}

func validateRequest(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if verr := validation.ValidateStruct(req); verr != nil {
		apiErr := verr.ToAPIError()
		respondErrorDetails(w, r, http.StatusBadRequest, &APIError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		}, nil)
		return false
	}
	return true
}

// originParams parses optional lat/lon query parameters.
func originParams(r *http.Request) (*geo.Point, error) {
	latRaw, lonRaw := r.URL.Query().Get("lat"), r.URL.Query().Get("lon")
	if latRaw == "" && lonRaw == "" {
		return nil, nil
	}
	if latRaw == "" || lonRaw == "" {
		return nil, errors.New("lat and lon must be given together")
	}
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lat %q", latRaw)
	}
	lon, err := strconv.ParseFloat(lonRaw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lon %q", lonRaw)
	}
	p := geo.Point{Lat: lat, Lon: lon}
	if !p.Valid() {
		return nil, errors.New("lat/lon out of range")
	}
	return &p, nil
}

// intParam parses a positive integer query parameter bounded by max.
func intParam(r *http.Request, name string, def, limit int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > limit {
		return 0, fmt.Errorf("%s must be an integer between 1 and %d", name, limit)
	}
	return n, nil
}
