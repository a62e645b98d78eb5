package parcel

import (
	"math"

	"github.com/landwho/landwho/internal/domain/geometry"
	apperrors "github.com/landwho/landwho/pkg/errors"
	"github.com/landwho/landwho/pkg/types/geo"
)

// insideRatio is the overlap fraction above which a candidate counts as
// filling its whole cell.
const insideRatio = 0.999

// PartitionOptions control grid generation.
type PartitionOptions struct {
	// CellSizeMeters is the square cell edge length.
	CellSizeMeters float64
	// BBoxMarginDegrees expands the parent's bounding box before gridding so
	// boundary cells are not lost to the box edge.
	BBoxMarginDegrees float64
	// MaxCells rejects grids larger than this before any clipping happens.
	MaxCells int
}

// Partition clips a grid of square cells against the parent land boundary
// and returns the cells that overlap it with positive area, in row-major
// order from the southwest corner.  The result is deterministic for a given
// parent and options.
func Partition(parent geo.Ring, opts PartitionOptions) ([]Candidate, error) {
	if err := parent.Validate(); err != nil {
		return nil, err
	}
	closed := geometry.CloseRing(parent)

	bounds, err := geometry.Bounds(closed)
	if err != nil {
		return nil, err
	}
	bounds = bounds.Expand(opts.BBoxMarginDegrees)

	if opts.MaxCells > 0 {
		if n := estimateCells(bounds, opts.CellSizeMeters); n > opts.MaxCells {
			return nil, apperrors.Newf(apperrors.ErrCodeGeoInvalidCellSize,
				"grid of %d cells exceeds limit %d, use a larger cell size", n, opts.MaxCells)
		}
	}

	cells, err := geometry.Grid(bounds, opts.CellSizeMeters)
	if err != nil {
		return nil, err
	}

	cellArea := opts.CellSizeMeters * opts.CellSizeMeters

	var out []Candidate
	for i, cell := range cells {
		boundary, ok := geometry.Intersection(closed, cell)
		if !ok {
			continue
		}
		area := geometry.Area(boundary)
		class := ClassPartial
		if area >= insideRatio*cellArea {
			class = ClassInside
		}
		out = append(out, Candidate{
			Index:          i,
			Cell:           cell,
			Boundary:       boundary,
			AreaSqM:        area,
			Classification: class,
		})
	}
	return out, nil
}

// estimateCells predicts the grid size without materializing it.
func estimateCells(box geo.BBox, sizeMeters float64) int {
	if sizeMeters <= 0 {
		return 0
	}
	dLng, dLat := geometry.CellSpanDegrees(sizeMeters, box.Center().Lat)
	cols := int(math.Ceil((box.MaxLng - box.MinLng) / dLng))
	rows := int(math.Ceil((box.MaxLat - box.MinLat) / dLat))
	return cols * rows
}

// WithFingerprints fills each candidate's Fingerprint for the given land.
func WithFingerprints(landID string, candidates []Candidate) []Candidate {
	for i := range candidates {
		candidates[i].Fingerprint = Fingerprint(landID, candidates[i].Boundary)
	}
	return candidates
}

// MarkMinted flags candidates that geometrically overlap any of the given
// minted parcel boundaries.  Matching is by intersection rather than exact
// coordinate equality, so boundaries recorded at different precision still
// register as minted.
func MarkMinted(candidates []Candidate, minted []geo.Ring) []Candidate {
	if len(minted) == 0 {
		return candidates
	}
	for i := range candidates {
		for _, m := range minted {
			if geometry.Intersects(m, candidates[i].Cell) {
				candidates[i].Minted = true
				break
			}
		}
	}
	return candidates
}
