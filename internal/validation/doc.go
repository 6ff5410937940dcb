// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared process-wide; it caches struct
// metadata and is safe for concurrent use. Field names in errors follow the
// struct's json tags, so messages line up with request bodies:
//
//	type recommendRequest struct {
//	    Lat      *float64 `json:"lat" validate:"required_with=Lon,omitempty,latitude"`
//	    Lon      *float64 `json:"lon" validate:"required_with=Lat,omitempty,longitude"`
//	    RadiusKm float64  `json:"radius_km" validate:"gt=0,lte=50"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError() // Code: VALIDATION_ERROR
//	}
//
// Custom tags: notblank and actorid.
package validation
