package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCarriesCodeAndMessage(t *testing.T) {
	err := New(ErrCodeLandNotFound, "land not found")
	assert.Equal(t, ErrCodeLandNotFound, err.Code)
	assert.Contains(t, err.Error(), "LAND_002")
	assert.Contains(t, err.Error(), "land not found")
	assert.NotEmpty(t, err.Stack)
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(cause, ErrCodeDatabaseError, "query failed")
	require.NotNil(t, err)
	assert.True(t, stderrors.Is(err, cause))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "should vanish"))
}

func TestWithDetailDoesNotMutateOriginal(t *testing.T) {
	base := New(ErrCodeMintPinFailure, "pin failed")
	detailed := base.WithDetail("object %s", "abc123")
	assert.Empty(t, base.Detail)
	assert.Equal(t, "object abc123", detailed.Detail)
	assert.Equal(t, base.Code, detailed.Code)
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrorCode(""), GetCode(nil))
	assert.Equal(t, ErrCodeInternal, GetCode(stderrors.New("plain")))
	assert.Equal(t, ErrCodeMintChainTimeout, GetCode(New(ErrCodeMintChainTimeout, "timed out")))

	wrapped := Wrap(New(ErrCodeLandNotFound, "missing"), ErrCodeLandNotFound, "lookup")
	assert.Equal(t, ErrCodeLandNotFound, GetCode(wrapped))
}

func TestIsCode(t *testing.T) {
	err := New(ErrCodeMintAlreadyMintedOrPending, "duplicate")
	assert.True(t, IsCode(err, ErrCodeMintAlreadyMintedOrPending))
	assert.False(t, IsCode(err, ErrCodeMintPinFailure))
	assert.False(t, IsCode(stderrors.New("plain"), ErrCodeInternal))
}

func TestIsNotFoundAcrossDomains(t *testing.T) {
	assert.True(t, IsNotFound(New(ErrCodeOwnerNotFound, "no owner")))
	assert.True(t, IsNotFound(New(ErrCodeLandNotFound, "no land")))
	assert.True(t, IsNotFound(New(ErrCodeNotificationNotFound, "no notification")))
	assert.False(t, IsNotFound(New(ErrCodeConflict, "conflict")))
	assert.False(t, IsNotFound(nil))
}

func TestIsConflict(t *testing.T) {
	assert.True(t, IsConflict(New(ErrCodeMintAlreadyMintedOrPending, "in flight")))
	assert.True(t, IsConflict(New(ErrCodeConflict, "conflict")))
	assert.False(t, IsConflict(New(ErrCodeInternal, "boom")))
}

func TestHTTPStatusForCode(t *testing.T) {
	assert.Equal(t, http.StatusConflict, HTTPStatusForCode(ErrCodeMintAlreadyMintedOrPending))
	assert.Equal(t, http.StatusNotFound, HTTPStatusForCode(ErrCodeLandNotFound))
	assert.Equal(t, http.StatusGatewayTimeout, HTTPStatusForCode(ErrCodeMintChainTimeout))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusForCode(ErrCodeMintPersistenceAfterChain))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusForCode(ErrorCode("UNKNOWN_999")))
}

func TestClientServerErrorClassification(t *testing.T) {
	assert.True(t, IsClientError(ErrCodeGeoInvalidRing))
	assert.False(t, IsServerError(ErrCodeGeoInvalidRing))
	assert.True(t, IsServerError(ErrCodeMintPersistenceAfterChain))
	assert.False(t, IsClientError(ErrCodeMintPersistenceAfterChain))
}
