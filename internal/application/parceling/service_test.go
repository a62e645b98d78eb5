package parceling

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/landwho/landwho/internal/domain/geometry"
	"github.com/landwho/landwho/internal/domain/land"
	"github.com/landwho/landwho/internal/domain/mint"
	"github.com/landwho/landwho/internal/domain/parcel"
	"github.com/landwho/landwho/internal/infrastructure/monitoring/logging"
	apperrors "github.com/landwho/landwho/pkg/errors"
	"github.com/landwho/landwho/pkg/types/common"
	"github.com/landwho/landwho/pkg/types/geo"
)

const testWallet = "0x1111111111111111111111111111111111111111"

type mockLandRepo struct{ mock.Mock }

func (m *mockLandRepo) Save(ctx context.Context, l *land.Land) error {
	return m.Called(ctx, l).Error(0)
}

func (m *mockLandRepo) FindByID(ctx context.Context, id common.ID) (*land.Land, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*land.Land), args.Error(1)
}

func (m *mockLandRepo) ListByWallet(ctx context.Context, wallet string) ([]*land.Land, error) {
	args := m.Called(ctx, wallet)
	return nil, args.Error(1)
}

func (m *mockLandRepo) Update(ctx context.Context, l *land.Land) error {
	return m.Called(ctx, l).Error(0)
}

func (m *mockLandRepo) Delete(ctx context.Context, id common.ID) error {
	return m.Called(ctx, id).Error(0)
}

type mockOwnerRepo struct{ mock.Mock }

func (m *mockOwnerRepo) Save(ctx context.Context, o *land.Owner) error {
	return m.Called(ctx, o).Error(0)
}

func (m *mockOwnerRepo) FindByWallet(ctx context.Context, wallet string) (*land.Owner, error) {
	args := m.Called(ctx, wallet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*land.Owner), args.Error(1)
}

type mockMintRepo struct{ mock.Mock }

func (m *mockMintRepo) Save(ctx context.Context, p *mint.MintedParcel) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockMintRepo) FindByFingerprint(ctx context.Context, fp string) (*mint.MintedParcel, error) {
	args := m.Called(ctx, fp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mint.MintedParcel), args.Error(1)
}

func (m *mockMintRepo) ListByLand(ctx context.Context, landID common.ID) ([]*mint.MintedParcel, error) {
	args := m.Called(ctx, landID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*mint.MintedParcel), args.Error(1)
}

func (m *mockMintRepo) ListByWallet(ctx context.Context, wallet string) ([]*mint.MintedParcel, error) {
	args := m.Called(ctx, wallet)
	return nil, args.Error(1)
}

func (m *mockMintRepo) DeleteByLand(ctx context.Context, landID common.ID) error {
	return m.Called(ctx, landID).Error(0)
}

func testBoundary() geo.Ring {
	dLng, dLat := geometry.CellSpanDegrees(100, 0)
	return geo.Ring{
		{Lng: 0, Lat: 0},
		{Lng: 3 * dLng, Lat: 0},
		{Lng: 3 * dLng, Lat: 2 * dLat},
		{Lng: 0, Lat: 2 * dLat},
	}
}

func newFixture(t *testing.T) (*Service, *mockLandRepo, *mockMintRepo) {
	t.Helper()
	landRepo := &mockLandRepo{}
	mintRepo := &mockMintRepo{}
	lands := land.NewService(&mockOwnerRepo{}, landRepo, logging.NewNopLogger())
	svc := NewService(lands, mintRepo, parcel.PartitionOptions{
		CellSizeMeters:    100,
		BBoxMarginDegrees: 0.0005,
		MaxCells:          250_000,
	}, nil, logging.NewNopLogger())
	return svc, landRepo, mintRepo
}

func storedLand() *land.Land {
	return &land.Land{
		BaseEntity: common.NewBaseEntity(),
		Wallet:     testWallet,
		Name:       "farm",
		Boundary:   testBoundary(),
	}
}

func TestPartitionLand(t *testing.T) {
	svc, landRepo, mintRepo := newFixture(t)
	l := storedLand()
	landRepo.On("FindByID", mock.Anything, l.ID).Return(l, nil)
	mintRepo.On("ListByLand", mock.Anything, l.ID).Return([]*mint.MintedParcel{}, nil)

	grid, err := svc.PartitionLand(context.Background(), l.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, l.ID, grid.LandID)
	assert.Equal(t, 100.0, grid.CellSizeMeters)
	assert.NotEmpty(t, grid.Candidates)
	assert.Zero(t, grid.MintedCount)

	for _, c := range grid.Candidates {
		assert.NotEmpty(t, c.Fingerprint)
		assert.True(t, c.Boundary.IsClosed())
	}
}

func TestPartitionLandCustomCellSize(t *testing.T) {
	svc, landRepo, mintRepo := newFixture(t)
	l := storedLand()
	landRepo.On("FindByID", mock.Anything, l.ID).Return(l, nil)
	mintRepo.On("ListByLand", mock.Anything, l.ID).Return([]*mint.MintedParcel{}, nil)

	small, err := svc.PartitionLand(context.Background(), l.ID, 50)
	require.NoError(t, err)
	big, err := svc.PartitionLand(context.Background(), l.ID, 0)
	require.NoError(t, err)

	assert.Equal(t, 50.0, small.CellSizeMeters)
	assert.Greater(t, len(small.Candidates), len(big.Candidates))
}

func TestPartitionLandMintedOverlay(t *testing.T) {
	svc, landRepo, mintRepo := newFixture(t)
	l := storedLand()
	landRepo.On("FindByID", mock.Anything, l.ID).Return(l, nil)

	// First pass to learn a candidate boundary, then replay with it minted.
	mintRepo.On("ListByLand", mock.Anything, l.ID).Return([]*mint.MintedParcel{}, nil).Once()
	first, err := svc.PartitionLand(context.Background(), l.ID, 0)
	require.NoError(t, err)
	require.NotEmpty(t, first.Candidates)

	target := first.Candidates[0]
	mintRepo.On("ListByLand", mock.Anything, l.ID).Return([]*mint.MintedParcel{
		{Fingerprint: target.Fingerprint, Boundary: target.Boundary},
	}, nil)

	second, err := svc.PartitionLand(context.Background(), l.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, second.MintedCount)

	// Minted candidates are kept for display but not selectable.
	var flagged *parcel.Candidate
	for i := range second.Candidates {
		if second.Candidates[i].Minted {
			flagged = &second.Candidates[i]
		}
	}
	require.NotNil(t, flagged)
	assert.Equal(t, target.Fingerprint, flagged.Fingerprint)
	assert.False(t, flagged.Selectable())
	assert.Len(t, second.Candidates, len(first.Candidates))
}

func TestPartitionLandNotFound(t *testing.T) {
	svc, landRepo, _ := newFixture(t)
	landRepo.On("FindByID", mock.Anything, common.ID("gone")).
		Return(nil, apperrors.New(apperrors.ErrCodeNotFound, "no row"))

	_, err := svc.PartitionLand(context.Background(), "gone", 0)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeLandNotFound))
}

func TestPartitionLandRecordStoreError(t *testing.T) {
	svc, landRepo, mintRepo := newFixture(t)
	l := storedLand()
	landRepo.On("FindByID", mock.Anything, l.ID).Return(l, nil)
	mintRepo.On("ListByLand", mock.Anything, l.ID).
		Return(nil, apperrors.New(apperrors.ErrCodeDatabaseError, "down"))

	_, err := svc.PartitionLand(context.Background(), l.ID, 0)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeDatabaseError))
}
