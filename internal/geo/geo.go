// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

// Package geo filters catalog places by great-circle distance from an origin.
package geo

import (
	"math"
	"runtime"
	"sync"

	"github.com/tomtom215/respite/internal/catalog"
)

// EarthRadiusKm is the mean Earth radius used for all distances.
const EarthRadiusKm = 6371.0

// parallelThreshold is the input size above which Filter splits work
// across goroutines.
const parallelThreshold = 4096

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the point has finite, in-range coordinates.
func (p Point) Valid() bool {
	return !math.IsNaN(p.Lat) && !math.IsNaN(p.Lon) &&
		math.Abs(p.Lat) <= 90 && math.Abs(p.Lon) <= 180
}

// Candidate is a place annotated with request-specific fields.
type Candidate struct {
	catalog.Place

	// DistanceKm is nil when the request had no origin.
	DistanceKm *float64 `json:"distance_km"`

	// RankKey is the candidate's position in the final ordering.
	RankKey int `json:"rank"`
}

// Haversine returns the great-circle distance between a and b in kilometers.
func Haversine(a, b Point) float64 {
	lat1Rad := a.Lat * math.Pi / 180
	lat2Rad := b.Lat * math.Pi / 180
	deltaLat := (b.Lat - a.Lat) * math.Pi / 180
	deltaLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

// Filter returns the places within radiusKm of origin (inclusive), in input
// order. With a nil origin every place is returned with a nil distance.
func Filter(places []catalog.Place, origin *Point, radiusKm float64) []Candidate {
	if origin == nil {
		out := make([]Candidate, len(places))
		for i := range places {
			out[i] = Candidate{Place: places[i]}
		}
		return out
	}

	if len(places) < parallelThreshold {
		return filterRange(places, *origin, radiusKm)
	}
	return filterParallel(places, *origin, radiusKm)
}

func filterRange(places []catalog.Place, origin Point, radiusKm float64) []Candidate {
	var out []Candidate
	for i := range places {
		if c, ok := within(&places[i], origin, radiusKm); ok {
			out = append(out, c)
		}
	}
	return out
}

func within(p *catalog.Place, origin Point, radiusKm float64) (Candidate, bool) {
	d := Haversine(origin, Point{Lat: p.Lat, Lon: p.Lon})
	if d > radiusKm {
		return Candidate{}, false
	}
	return Candidate{Place: *p, DistanceKm: &d}, true
}

// filterParallel splits places into contiguous chunks, filters each in its
// own goroutine and concatenates the results in chunk order.
func filterParallel(places []catalog.Place, origin Point, radiusKm float64) []Candidate {
	workers := runtime.GOMAXPROCS(0)
	chunk := (len(places) + workers - 1) / workers
	parts := make([][]Candidate, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= len(places) {
			break
		}
		end := min(start+chunk, len(places))

		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			parts[w] = filterRange(places[start:end], origin, radiusKm)
		}(w, start, end)
	}
	wg.Wait()

	total := 0
	for _, p := range parts {
		total += len(p)
	}
	if total == 0 {
		return nil
	}
	out := make([]Candidate, 0, total)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
