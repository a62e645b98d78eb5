package errors

import "net/http"

// ErrorCode is a string identifier for a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeValidation         ErrorCode = "COMMON_005"
	ErrCodeTimeout            ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_007"
	ErrCodeSerialization      ErrorCode = "COMMON_008"
	ErrCodeDatabaseError      ErrorCode = "COMMON_009"
	ErrCodeCacheError         ErrorCode = "COMMON_010"
	ErrCodeMessagingError     ErrorCode = "COMMON_011"
	ErrCodeNotImplemented     ErrorCode = "COMMON_012"
)

// Geometry module error codes
const (
	// ErrCodeGeoInvalidRing covers rings with fewer than three distinct
	// points and any other structurally unusable polygon input.
	ErrCodeGeoInvalidRing ErrorCode = "GEO_001"
	// ErrCodeGeoInvalidCellSize covers non-positive grid cell sizes.
	ErrCodeGeoInvalidCellSize ErrorCode = "GEO_002"
)

// Land / owner module error codes
const (
	ErrCodeOwnerNotFound      ErrorCode = "LAND_001"
	ErrCodeLandNotFound       ErrorCode = "LAND_002"
	ErrCodeLandInvalidRequest ErrorCode = "LAND_003"
)

// Mint workflow error codes.  The chain-related codes are deliberately
// distinct per stage: an operator reading a failure notification must be able
// to tell whether the ledger was touched before the failure occurred.
const (
	// ErrCodeMintAlreadyMintedOrPending is the admission-time rejection: the
	// fingerprint is either persisted already or currently in flight.
	ErrCodeMintAlreadyMintedOrPending ErrorCode = "MINT_001"

	// ErrCodeMintPinFailure means the content store rejected or failed the pin.
	// No on-chain effect has happened.
	ErrCodeMintPinFailure ErrorCode = "MINT_002"

	// ErrCodeMintChainSubmission means the ledger rejected the transaction at
	// submission time (invalid params, insufficient funds, nonce issues).
	ErrCodeMintChainSubmission ErrorCode = "MINT_003"

	// ErrCodeMintChainConfirmation means the transaction was included but
	// reverted, or inclusion failed definitively.
	ErrCodeMintChainConfirmation ErrorCode = "MINT_004"

	// ErrCodeMintChainTimeout means the confirmation wait exceeded its bound.
	// The transaction may still confirm later; notifications carrying this
	// code must say so.
	ErrCodeMintChainTimeout ErrorCode = "MINT_005"

	// ErrCodeMintPersistenceAfterChain is the severe case: the on-chain mint
	// succeeded but the record-store write failed, leaving ledger and record
	// store inconsistent.  Flagged for manual reconciliation; never folded
	// into the generic failure bucket.
	ErrCodeMintPersistenceAfterChain ErrorCode = "MINT_006"
)

// Notification module error codes
const (
	ErrCodeNotificationNotFound ErrorCode = "NTF_001"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes.  Codes absent
// from the map fall back to 500.
var errorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeMessagingError:     http.StatusInternalServerError,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeGeoInvalidRing:     http.StatusBadRequest,
	ErrCodeGeoInvalidCellSize: http.StatusBadRequest,

	ErrCodeOwnerNotFound:      http.StatusNotFound,
	ErrCodeLandNotFound:       http.StatusNotFound,
	ErrCodeLandInvalidRequest: http.StatusBadRequest,

	ErrCodeMintAlreadyMintedOrPending: http.StatusConflict,
	ErrCodeMintPinFailure:             http.StatusBadGateway,
	ErrCodeMintChainSubmission:        http.StatusBadGateway,
	ErrCodeMintChainConfirmation:      http.StatusBadGateway,
	ErrCodeMintChainTimeout:           http.StatusGatewayTimeout,
	ErrCodeMintPersistenceAfterChain:  http.StatusInternalServerError,

	ErrCodeNotificationNotFound: http.StatusNotFound,
}

// HTTPStatusForCode returns the HTTP status code associated with an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsClientError reports whether the code maps to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	s := HTTPStatusForCode(code)
	return s >= 400 && s < 500
}

// IsServerError reports whether the code maps to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	return HTTPStatusForCode(code) >= 500
}
