// Package geo defines the coordinate primitives shared by the geometry
// engine, the persistence layer and the HTTP surface.
//
// Coordinates are stored and exchanged in GeoJSON order, [longitude,
// latitude].  Map front ends usually want [latitude, longitude]; the Display
// helpers perform that swap so the ordering convention lives in exactly one
// place.
package geo

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/landwho/landwho/pkg/errors"
)

// Point is a WGS84 coordinate in [lng, lat] order.
type Point struct {
	Lng float64
	Lat float64
}

// MarshalJSON encodes the point as a two-element [lng, lat] array.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Lng, p.Lat})
}

// UnmarshalJSON decodes a two-element [lng, lat] array.
func (p *Point) UnmarshalJSON(data []byte) error {
	var arr []float64
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	if len(arr) != 2 {
		return fmt.Errorf("geo: point must have exactly 2 elements, got %d", len(arr))
	}
	p.Lng, p.Lat = arr[0], arr[1]
	return nil
}

// Display returns the point in [lat, lng] order for map-facing payloads.
func (p Point) Display() [2]float64 {
	return [2]float64{p.Lat, p.Lng}
}

// Ring is an ordered sequence of points describing a polygon boundary.  A
// closed ring repeats its first point as its last.
type Ring []Point

// Validate checks that the ring has enough distinct points to bound an area.
func (r Ring) Validate() error {
	distinct := make(map[Point]struct{}, len(r))
	for _, p := range r {
		distinct[p] = struct{}{}
	}
	if len(distinct) < 3 {
		return apperrors.Newf(apperrors.ErrCodeGeoInvalidRing,
			"polygon ring needs at least 3 distinct points, got %d", len(distinct))
	}
	return nil
}

// IsClosed reports whether the ring's last point equals its first.
func (r Ring) IsClosed() bool {
	return len(r) >= 2 && r[0] == r[len(r)-1]
}

// Display returns the ring with every point in [lat, lng] order.
func (r Ring) Display() [][2]float64 {
	out := make([][2]float64, len(r))
	for i, p := range r {
		out[i] = p.Display()
	}
	return out
}

// RingFromDisplay builds a Ring from [lat, lng] ordered pairs, as submitted
// by map front ends.
func RingFromDisplay(pairs [][2]float64) Ring {
	r := make(Ring, len(pairs))
	for i, pair := range pairs {
		r[i] = Point{Lat: pair[0], Lng: pair[1]}
	}
	return r
}

// BBox is an axis-aligned bounding box in degrees.
type BBox struct {
	MinLng float64 `json:"min_lng"`
	MinLat float64 `json:"min_lat"`
	MaxLng float64 `json:"max_lng"`
	MaxLat float64 `json:"max_lat"`
}

// Expand grows the box by the given margin in degrees on every side.
func (b BBox) Expand(margin float64) BBox {
	return BBox{
		MinLng: b.MinLng - margin,
		MinLat: b.MinLat - margin,
		MaxLng: b.MaxLng + margin,
		MaxLat: b.MaxLat + margin,
	}
}

// Contains reports whether the point lies inside or on the box boundary.
func (b BBox) Contains(p Point) bool {
	return p.Lng >= b.MinLng && p.Lng <= b.MaxLng &&
		p.Lat >= b.MinLat && p.Lat <= b.MaxLat
}

// Center returns the box center point.
func (b BBox) Center() Point {
	return Point{
		Lng: (b.MinLng + b.MaxLng) / 2,
		Lat: (b.MinLat + b.MaxLat) / 2,
	}
}

// Ring returns the box boundary as a closed ring, counter-clockwise from the
// southwest corner.
func (b BBox) Ring() Ring {
	return Ring{
		{Lng: b.MinLng, Lat: b.MinLat},
		{Lng: b.MaxLng, Lat: b.MinLat},
		{Lng: b.MaxLng, Lat: b.MaxLat},
		{Lng: b.MinLng, Lat: b.MaxLat},
		{Lng: b.MinLng, Lat: b.MinLat},
	}
}
