package notification

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/landwho/landwho/internal/infrastructure/monitoring/logging"
	apperrors "github.com/landwho/landwho/pkg/errors"
	"github.com/landwho/landwho/pkg/types/common"
)

type mockRepo struct{ mock.Mock }

func (m *mockRepo) Save(ctx context.Context, n *Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *mockRepo) ListByWallet(ctx context.Context, wallet string, unseenOnly bool) ([]*Notification, error) {
	args := m.Called(ctx, wallet, unseenOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Notification), args.Error(1)
}

func (m *mockRepo) MarkSeen(ctx context.Context, id common.ID) error {
	return m.Called(ctx, id).Error(0)
}

func TestEmitPersistsPayload(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, logging.NewNopLogger())

	var saved *Notification
	repo.On("Save", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*Notification)
	}).Return(nil)

	payload := FailurePayload{
		Fingerprint: "abc",
		Code:        apperrors.ErrCodeMintChainTimeout,
		Message:     "confirmation timed out",
		MayStillConfirm: true,
	}
	require.NoError(t, svc.Emit(context.Background(), "0xwallet", KindMintFailed, payload))

	require.NotNil(t, saved)
	assert.Equal(t, KindMintFailed, saved.Kind)
	assert.False(t, saved.Seen)

	var back FailurePayload
	require.NoError(t, json.Unmarshal(saved.Payload, &back))
	assert.Equal(t, payload, back)
}

func TestEmitUnencodablePayload(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, logging.NewNopLogger())

	err := svc.Emit(context.Background(), "0xwallet", KindMintSucceeded, make(chan int))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeSerialization))
	repo.AssertNotCalled(t, "Save")
}

func TestListNormalizesWallet(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, logging.NewNopLogger())
	repo.On("ListByWallet", mock.Anything, "0xabc", true).Return([]*Notification{}, nil)

	_, err := svc.List(context.Background(), "  0xABC  ", true)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestListEmptyWallet(t *testing.T) {
	svc := NewService(&mockRepo{}, logging.NewNopLogger())
	_, err := svc.List(context.Background(), " ", false)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeBadRequest))
}

func TestMarkSeenTranslatesNotFound(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo, logging.NewNopLogger())
	repo.On("MarkSeen", mock.Anything, common.ID("gone")).
		Return(apperrors.New(apperrors.ErrCodeNotFound, "no row"))

	err := svc.MarkSeen(context.Background(), "gone")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotificationNotFound))
}
