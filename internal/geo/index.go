// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package geo

import (
	"math"
	"slices"

	"github.com/tomtom215/respite/internal/catalog"
)

// DefaultCellSizeKm is the grid cell edge used when NewIndex gets a
// non-positive size.
const DefaultCellSizeKm = 5.0

// cellKey addresses one grid cell. Y counts latitude bands from the south
// pole, X counts longitude bands from the antimeridian.
type cellKey struct {
	X, Y int
}

// Index is an immutable spatial hash grid over a fixed set of places.
//
// Instead of measuring every place, Within only measures the places whose
// cells intersect the bounding box of the search cap. The final distance
// test is the same one Filter applies, so both return identical results.
//
// Time Complexity:
//   - Build: O(n)
//   - Within: O(k log k) where k = places in the touched cells
type Index struct {
	places   []catalog.Place
	cells    map[cellKey][]int // place indices, ascending
	cellDeg  float64
	lonCells int
}

// NewIndex builds a grid over places. The slice is retained and must not be
// modified afterwards.
func NewIndex(places []catalog.Place, cellSizeKm float64) *Index {
	if cellSizeKm <= 0 {
		cellSizeKm = DefaultCellSizeKm
	}
	// Round the cell so longitude bands tile the full circle exactly.
	lonCells := int(math.Ceil(360 / (cellSizeKm / kmPerDegree)))
	idx := &Index{
		places:   places,
		cells:    make(map[cellKey][]int),
		cellDeg:  360 / float64(lonCells),
		lonCells: lonCells,
	}
	for i := range places {
		k := idx.key(places[i].Lat, places[i].Lon)
		idx.cells[k] = append(idx.cells[k], i)
	}
	return idx
}

// kmPerDegree is the length of one degree of latitude.
const kmPerDegree = EarthRadiusKm * math.Pi / 180

func (idx *Index) key(lat, lon float64) cellKey {
	return cellKey{X: idx.lonBand(lon), Y: int(math.Floor((lat + 90) / idx.cellDeg))}
}

func (idx *Index) lonBand(lon float64) int {
	x := int(math.Floor((lon + 180) / idx.cellDeg))
	return ((x % idx.lonCells) + idx.lonCells) % idx.lonCells
}

// Len returns the number of indexed places.
func (idx *Index) Len() int {
	return len(idx.places)
}

// NumCells returns the number of non-empty cells.
func (idx *Index) NumCells() int {
	return len(idx.cells)
}

// Places returns the indexed places. The slice must not be modified.
func (idx *Index) Places() []catalog.Place {
	return idx.places
}

// Within returns the same result as Filter(idx.Places(), origin, radiusKm).
func (idx *Index) Within(origin *Point, radiusKm float64) []Candidate {
	if origin == nil {
		return Filter(idx.places, nil, radiusKm)
	}
	if radiusKm < 0 {
		return nil
	}

	angular := radiusKm / EarthRadiusKm
	latRad := origin.Lat * math.Pi / 180

	// When the search cap reaches a pole every longitude is in play.
	if angular >= math.Pi/2-math.Abs(latRad) {
		return Filter(idx.places, origin, radiusKm)
	}

	dLat := angular * 180 / math.Pi
	dLon := math.Asin(math.Min(1, math.Sin(angular)/math.Cos(latRad))) * 180 / math.Pi

	// One cell of slack on each side absorbs rounding at cell edges.
	yMin := int(math.Floor((origin.Lat-dLat+90)/idx.cellDeg)) - 1
	yMax := int(math.Floor((origin.Lat+dLat+90)/idx.cellDeg)) + 1
	xMin := int(math.Floor((origin.Lon-dLon+180)/idx.cellDeg)) - 1
	xMax := int(math.Floor((origin.Lon+dLon+180)/idx.cellDeg)) + 1

	if xMax-xMin+1 >= idx.lonCells {
		return Filter(idx.places, origin, radiusKm)
	}

	var hits []int
	for y := yMin; y <= yMax; y++ {
		for x := xMin; x <= xMax; x++ {
			wrapped := ((x % idx.lonCells) + idx.lonCells) % idx.lonCells
			hits = append(hits, idx.cells[cellKey{X: wrapped, Y: y}]...)
		}
	}
	slices.Sort(hits)

	var out []Candidate
	for _, i := range hits {
		if c, ok := within(&idx.places[i], *origin, radiusKm); ok {
			out = append(out, c)
		}
	}
	return out
}
