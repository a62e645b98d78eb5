package land

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/landwho/landwho/internal/infrastructure/monitoring/logging"
	apperrors "github.com/landwho/landwho/pkg/errors"
	"github.com/landwho/landwho/pkg/types/common"
	"github.com/landwho/landwho/pkg/types/geo"
)

const testWallet = "0x1111111111111111111111111111111111111111"

var testBoundary = geo.Ring{
	{Lng: 51.30, Lat: 35.60},
	{Lng: 51.31, Lat: 35.60},
	{Lng: 51.31, Lat: 35.61},
	{Lng: 51.30, Lat: 35.61},
}

type mockOwnerRepo struct{ mock.Mock }

func (m *mockOwnerRepo) Save(ctx context.Context, o *Owner) error {
	return m.Called(ctx, o).Error(0)
}

func (m *mockOwnerRepo) FindByWallet(ctx context.Context, wallet string) (*Owner, error) {
	args := m.Called(ctx, wallet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Owner), args.Error(1)
}

type mockLandRepo struct{ mock.Mock }

func (m *mockLandRepo) Save(ctx context.Context, l *Land) error {
	return m.Called(ctx, l).Error(0)
}

func (m *mockLandRepo) FindByID(ctx context.Context, id common.ID) (*Land, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Land), args.Error(1)
}

func (m *mockLandRepo) ListByWallet(ctx context.Context, wallet string) ([]*Land, error) {
	args := m.Called(ctx, wallet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Land), args.Error(1)
}

func (m *mockLandRepo) Update(ctx context.Context, l *Land) error {
	return m.Called(ctx, l).Error(0)
}

func (m *mockLandRepo) Delete(ctx context.Context, id common.ID) error {
	return m.Called(ctx, id).Error(0)
}

func newTestService(t *testing.T) (*Service, *mockOwnerRepo, *mockLandRepo) {
	t.Helper()
	owners := &mockOwnerRepo{}
	lands := &mockLandRepo{}
	return NewService(owners, lands, logging.NewNopLogger()), owners, lands
}

func TestNewOwnerValidation(t *testing.T) {
	o, err := NewOwner("  " + testWallet + "  ")
	require.NoError(t, err)
	assert.Equal(t, testWallet, o.Wallet)

	_, err = NewOwner("not-a-wallet")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeLandInvalidRequest))
}

func TestNewOwnerLowercasesWallet(t *testing.T) {
	o, err := NewOwner("0xABCDEFABCDEFABCDEFABCDEFABCDEFABCDEFABCD")
	require.NoError(t, err)
	assert.Equal(t, "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd", o.Wallet)
}

func TestRegisterOwnerIdempotent(t *testing.T) {
	svc, owners, _ := newTestService(t)
	stored := &Owner{BaseEntity: common.NewBaseEntity(), Wallet: testWallet}

	owners.On("Save", mock.Anything, mock.Anything).Return(nil)
	owners.On("FindByWallet", mock.Anything, testWallet).Return(stored, nil)

	got, err := svc.RegisterOwner(context.Background(), testWallet)
	require.NoError(t, err)
	assert.Equal(t, stored, got)
	owners.AssertExpectations(t)
}

func TestRegisterLandUnknownOwner(t *testing.T) {
	svc, owners, _ := newTestService(t)
	owners.On("FindByWallet", mock.Anything, testWallet).
		Return(nil, apperrors.New(apperrors.ErrCodeOwnerNotFound, "missing"))

	_, err := svc.RegisterLand(context.Background(), testWallet, "farm", testBoundary)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeOwnerNotFound))
}

func TestRegisterLandSuccess(t *testing.T) {
	svc, owners, lands := newTestService(t)
	owners.On("FindByWallet", mock.Anything, testWallet).
		Return(&Owner{Wallet: testWallet}, nil)
	lands.On("Save", mock.Anything, mock.MatchedBy(func(l *Land) bool {
		return l.Wallet == testWallet && l.Name == "farm"
	})).Return(nil)

	got, err := svc.RegisterLand(context.Background(), testWallet, "farm", testBoundary)
	require.NoError(t, err)
	assert.False(t, got.ID.IsZero())
	lands.AssertExpectations(t)
}

func TestRegisterLandRejectsBadInput(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.RegisterLand(context.Background(), testWallet, "  ", testBoundary)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeLandInvalidRequest))

	_, err = svc.RegisterLand(context.Background(), testWallet, "farm", geo.Ring{{Lng: 0, Lat: 0}})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeGeoInvalidRing))
}

func TestGetLandNotFound(t *testing.T) {
	svc, _, lands := newTestService(t)
	lands.On("FindByID", mock.Anything, common.ID("nope")).
		Return(nil, apperrors.New(apperrors.ErrCodeNotFound, "no row"))

	_, err := svc.GetLand(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeLandNotFound))
}

func TestListLandsRequiresWallet(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.ListLands(context.Background(), "   ")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeLandInvalidRequest))
}

func TestListLands(t *testing.T) {
	svc, _, lands := newTestService(t)
	expect := []*Land{{Wallet: testWallet, Name: "a"}, {Wallet: testWallet, Name: "b"}}
	lands.On("ListByWallet", mock.Anything, testWallet).Return(expect, nil)

	got, err := svc.ListLands(context.Background(), " "+testWallet+" ")
	require.NoError(t, err)
	assert.Equal(t, expect, got)
}

func TestUpdateLandPartial(t *testing.T) {
	svc, _, lands := newTestService(t)
	existing := &Land{BaseEntity: common.NewBaseEntity(), Wallet: testWallet, Name: "old", Boundary: testBoundary}
	lands.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)
	lands.On("Update", mock.Anything, existing).Return(nil)

	// Only the name changes; nil boundary keeps the old polygon.
	got, err := svc.UpdateLand(context.Background(), existing.ID, "new name", nil)
	require.NoError(t, err)
	assert.Equal(t, "new name", got.Name)
	assert.Equal(t, testBoundary, got.Boundary)
}

func TestDeleteLand(t *testing.T) {
	svc, _, lands := newTestService(t)
	existing := &Land{BaseEntity: common.NewBaseEntity(), Wallet: testWallet, Name: "x", Boundary: testBoundary}
	lands.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)
	lands.On("Delete", mock.Anything, existing.ID).Return(nil)

	require.NoError(t, svc.DeleteLand(context.Background(), existing.ID))
	lands.AssertExpectations(t)
}
