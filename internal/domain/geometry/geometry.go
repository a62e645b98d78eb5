// Package geometry implements the planar polygon operations behind parcel
// gridding: ring closing, bounding boxes, grid generation and polygon
// clipping against grid cells.
//
// All math is done on WGS84 coordinates treated as planar, with meter
// conversions using the local latitude.  Parcels are about 100 m across, far
// below the scale where earth curvature matters.
package geometry

import (
	"math"

	apperrors "github.com/landwho/landwho/pkg/errors"
	"github.com/landwho/landwho/pkg/types/geo"
)

// metersPerDegreeLat is the near-constant north-south length of one degree.
const metersPerDegreeLat = 111_320.0

// areaEpsilon is the square-meter threshold below which a clipped overlap is
// treated as empty.  Cells that only touch a boundary edge fall under it.
const areaEpsilon = 1e-6

// CloseRing returns the ring with its first point appended as its last.
// Calling it on an already-closed ring is a no-op; the result always has
// exactly one closing point.
func CloseRing(ring geo.Ring) geo.Ring {
	if len(ring) == 0 {
		return ring
	}
	if ring.IsClosed() {
		return ring
	}
	out := make(geo.Ring, len(ring), len(ring)+1)
	copy(out, ring)
	return append(out, ring[0])
}

// OpenRing strips the closing point from a closed ring.  Open rings pass
// through unchanged.
func OpenRing(ring geo.Ring) geo.Ring {
	if ring.IsClosed() {
		return ring[:len(ring)-1]
	}
	return ring
}

// Bounds computes the axis-aligned bounding box of the ring.
func Bounds(ring geo.Ring) (geo.BBox, error) {
	if len(ring) == 0 {
		return geo.BBox{}, apperrors.New(apperrors.ErrCodeGeoInvalidRing, "empty ring has no bounds")
	}
	b := geo.BBox{
		MinLng: ring[0].Lng, MaxLng: ring[0].Lng,
		MinLat: ring[0].Lat, MaxLat: ring[0].Lat,
	}
	for _, p := range ring[1:] {
		b.MinLng = math.Min(b.MinLng, p.Lng)
		b.MaxLng = math.Max(b.MaxLng, p.Lng)
		b.MinLat = math.Min(b.MinLat, p.Lat)
		b.MaxLat = math.Max(b.MaxLat, p.Lat)
	}
	return b, nil
}

// CellSpanDegrees converts a cell edge length in meters to degree spans at
// the given latitude.  The longitude span stretches by 1/cos(lat) toward the
// poles.
func CellSpanDegrees(sizeMeters, atLatitude float64) (dLng, dLat float64) {
	dLat = sizeMeters / metersPerDegreeLat
	dLng = sizeMeters / (metersPerDegreeLat * math.Cos(atLatitude*math.Pi/180))
	return dLng, dLat
}

// Grid tiles the box with square cells of the given edge length, row-major
// from the southwest corner.  The last row and column may extend past the
// box so coverage is complete.
func Grid(box geo.BBox, sizeMeters float64) ([]geo.BBox, error) {
	if sizeMeters <= 0 {
		return nil, apperrors.Newf(apperrors.ErrCodeGeoInvalidCellSize,
			"cell size must be positive, got %v", sizeMeters)
	}
	dLng, dLat := CellSpanDegrees(sizeMeters, box.Center().Lat)

	var cells []geo.BBox
	for lat := box.MinLat; lat < box.MaxLat; lat += dLat {
		for lng := box.MinLng; lng < box.MaxLng; lng += dLng {
			cells = append(cells, geo.BBox{
				MinLng: lng, MinLat: lat,
				MaxLng: lng + dLng, MaxLat: lat + dLat,
			})
		}
	}
	return cells, nil
}

// Area returns the approximate area of the ring in square meters, using the
// shoelace formula with an equirectangular projection about the ring's mean
// latitude.  Open and closed rings give the same result.
func Area(ring geo.Ring) float64 {
	r := OpenRing(ring)
	if len(r) < 3 {
		return 0
	}

	var meanLat float64
	for _, p := range r {
		meanLat += p.Lat
	}
	meanLat /= float64(len(r))
	mLng := metersPerDegreeLat * math.Cos(meanLat*math.Pi/180)

	var sum float64
	for i := 0; i < len(r); i++ {
		j := (i + 1) % len(r)
		sum += r[i].Lng * mLng * r[j].Lat * metersPerDegreeLat
		sum -= r[j].Lng * mLng * r[i].Lat * metersPerDegreeLat
	}
	return math.Abs(sum) / 2
}

// Intersection clips the ring against the box and returns the overlap as a
// closed ring.  The second return value is false when the overlap is empty
// or degenerate, which includes polygons that only share an edge or corner
// with the box.
func Intersection(ring geo.Ring, box geo.BBox) (geo.Ring, bool) {
	clipped := clipToBox(OpenRing(ring), box)
	if len(clipped) < 3 || Area(clipped) < areaEpsilon {
		return nil, false
	}
	return CloseRing(clipped), true
}

// Intersects reports whether the ring and the box overlap with positive
// area.  Boundary tangency does not count.
func Intersects(ring geo.Ring, box geo.BBox) bool {
	_, ok := Intersection(ring, box)
	return ok
}

// clipToBox runs Sutherland-Hodgman clipping of an open subject ring against
// the four half-planes of an axis-aligned box.
func clipToBox(subject geo.Ring, box geo.BBox) geo.Ring {
	type edge struct {
		inside    func(geo.Point) bool
		intersect func(a, b geo.Point) geo.Point
	}

	lerp := func(a, b geo.Point, t float64) geo.Point {
		return geo.Point{
			Lng: a.Lng + t*(b.Lng-a.Lng),
			Lat: a.Lat + t*(b.Lat-a.Lat),
		}
	}

	edges := []edge{
		{ // west
			inside: func(p geo.Point) bool { return p.Lng >= box.MinLng },
			intersect: func(a, b geo.Point) geo.Point {
				return lerp(a, b, (box.MinLng-a.Lng)/(b.Lng-a.Lng))
			},
		},
		{ // east
			inside: func(p geo.Point) bool { return p.Lng <= box.MaxLng },
			intersect: func(a, b geo.Point) geo.Point {
				return lerp(a, b, (box.MaxLng-a.Lng)/(b.Lng-a.Lng))
			},
		},
		{ // south
			inside: func(p geo.Point) bool { return p.Lat >= box.MinLat },
			intersect: func(a, b geo.Point) geo.Point {
				return lerp(a, b, (box.MinLat-a.Lat)/(b.Lat-a.Lat))
			},
		},
		{ // north
			inside: func(p geo.Point) bool { return p.Lat <= box.MaxLat },
			intersect: func(a, b geo.Point) geo.Point {
				return lerp(a, b, (box.MaxLat-a.Lat)/(b.Lat-a.Lat))
			},
		},
	}

	out := subject
	for _, e := range edges {
		if len(out) == 0 {
			return nil
		}
		in := out
		out = nil
		for i := 0; i < len(in); i++ {
			cur := in[i]
			prev := in[(i+len(in)-1)%len(in)]
			curIn, prevIn := e.inside(cur), e.inside(prev)
			switch {
			case curIn && prevIn:
				out = append(out, cur)
			case curIn && !prevIn:
				out = append(out, e.intersect(prev, cur), cur)
			case !curIn && prevIn:
				out = append(out, e.intersect(prev, cur))
			}
		}
	}
	return out
}
