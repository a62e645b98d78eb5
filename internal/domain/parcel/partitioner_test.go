package parcel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landwho/landwho/internal/domain/geometry"
	apperrors "github.com/landwho/landwho/pkg/errors"
	"github.com/landwho/landwho/pkg/types/geo"
)

func defaultOpts() PartitionOptions {
	return PartitionOptions{
		CellSizeMeters:    100,
		BBoxMarginDegrees: 0.0005,
		MaxCells:          250_000,
	}
}

// testLand returns an open rectangular land spanning the given number of
// 100 m cells at the equator.
func testLand(cols, rows float64) geo.Ring {
	dLng, dLat := geometry.CellSpanDegrees(100, 0)
	return geo.Ring{
		{Lng: 0, Lat: 0},
		{Lng: cols * dLng, Lat: 0},
		{Lng: cols * dLng, Lat: rows * dLat},
		{Lng: 0, Lat: rows * dLat},
	}
}

func TestPartitionRejectsInvalidRing(t *testing.T) {
	_, err := Partition(geo.Ring{{Lng: 0, Lat: 0}, {Lng: 1, Lat: 1}}, defaultOpts())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeGeoInvalidRing))
}

func TestPartitionRejectsOversizedGrid(t *testing.T) {
	opts := defaultOpts()
	opts.MaxCells = 4
	_, err := Partition(testLand(10, 10), opts)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeGeoInvalidCellSize))
}

func TestPartitionProducesCandidates(t *testing.T) {
	land := testLand(5, 3)
	got, err := Partition(land, defaultOpts())
	require.NoError(t, err)
	require.NotEmpty(t, got)

	closed := geometry.CloseRing(land)
	var total float64
	lastIndex := -1
	for _, c := range got {
		// Row-major and strictly increasing indices.
		assert.Greater(t, c.Index, lastIndex)
		lastIndex = c.Index

		assert.True(t, c.Boundary.IsClosed())
		assert.GreaterOrEqual(t, len(c.Boundary), 4)
		assert.Positive(t, c.AreaSqM)
		assert.NotEmpty(t, c.Classification)
		total += c.AreaSqM

		// The boundary is the clipped overlap, so it never exceeds the cell.
		assert.LessOrEqual(t, c.AreaSqM, 100.0*100.0+1)

		// Every candidate genuinely overlaps the land.
		bounds, berr := geometry.Bounds(c.Boundary)
		require.NoError(t, berr)
		assert.True(t, geometry.Intersects(closed, bounds))
	}
	// Candidates partition the land.
	assert.InDelta(t, geometry.Area(closed), total, geometry.Area(closed)*1e-3)
}

func TestPartitionIsDeterministic(t *testing.T) {
	land := testLand(4, 2)
	a, err := Partition(land, defaultOpts())
	require.NoError(t, err)
	b, err := Partition(land, defaultOpts())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPartitionClassification(t *testing.T) {
	got, err := Partition(testLand(5, 3), defaultOpts())
	require.NoError(t, err)

	var inside, partial int
	for _, c := range got {
		switch c.Classification {
		case ClassInside:
			inside++
			assert.InDelta(t, 10_000, c.AreaSqM, 15)
		case ClassPartial:
			partial++
			assert.Less(t, c.AreaSqM, 10_000.0)
		}
	}
	// The margin shifts the grid off the land edges, so a 5x3-cell land has
	// both full interior cells and clipped rim cells.
	assert.Positive(t, inside)
	assert.Positive(t, partial)
}

func TestWithFingerprints(t *testing.T) {
	got, err := Partition(testLand(2, 2), defaultOpts())
	require.NoError(t, err)
	got = WithFingerprints("land-1", got)

	seen := map[string]bool{}
	for _, c := range got {
		require.Len(t, c.Fingerprint, 64)
		assert.False(t, seen[c.Fingerprint], "duplicate fingerprint in one land")
		seen[c.Fingerprint] = true
		assert.Equal(t, Fingerprint("land-1", c.Boundary), c.Fingerprint)
	}
}

func TestMarkMinted(t *testing.T) {
	got, err := Partition(testLand(3, 3), defaultOpts())
	require.NoError(t, err)
	require.NotEmpty(t, got)

	// Mint the first candidate's boundary; only that cell is flagged.
	minted := []geo.Ring{got[0].Boundary}
	got = MarkMinted(got, minted)

	assert.True(t, got[0].Minted)
	assert.False(t, got[0].Selectable())
	for _, c := range got[1:] {
		assert.False(t, c.Minted, "candidate %d wrongly flagged", c.Index)
		assert.True(t, c.Selectable())
	}
}

func TestMarkMintedNoMintedParcels(t *testing.T) {
	got, err := Partition(testLand(2, 2), defaultOpts())
	require.NoError(t, err)
	got = MarkMinted(got, nil)
	for _, c := range got {
		assert.False(t, c.Minted)
	}
}
