// Package parcel implements grid partitioning of registered lands into
// mintable parcel candidates, and the fingerprint that identifies a parcel
// boundary within its land.
package parcel

import (
	"github.com/landwho/landwho/pkg/types/geo"
)

// Classification describes how a candidate relates to its parent land.
type Classification string

const (
	// ClassInside marks candidates whose boundary fills the whole grid cell.
	ClassInside Classification = "inside"
	// ClassPartial marks candidates clipped by the land boundary.
	ClassPartial Classification = "partial"
)

// Candidate is one grid cell's overlap with a parent land.  Its boundary is
// the clipped intersection polygon, never the raw square cell.
type Candidate struct {
	// Index is the candidate's position in the row-major grid walk, stable
	// for a given land and cell size.
	Index int `json:"index"`

	// Cell is the grid square the candidate was clipped from.
	Cell geo.BBox `json:"cell"`

	// Boundary is the closed intersection ring in [lng, lat] order.
	Boundary geo.Ring `json:"boundary"`

	// AreaSqM is the boundary's approximate area in square meters.
	AreaSqM float64 `json:"area_sq_m"`

	Classification Classification `json:"classification"`

	// Fingerprint identifies this boundary within its land.
	Fingerprint string `json:"fingerprint"`

	// Minted is set when a persisted minted parcel geometrically overlaps
	// this candidate.  Minted candidates stay in the result for display but
	// are not selectable.
	Minted bool `json:"minted"`
}

// Selectable reports whether the candidate may be offered for minting.
func (c Candidate) Selectable() bool {
	return !c.Minted
}
