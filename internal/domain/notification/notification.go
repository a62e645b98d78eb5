// Package notification implements the pull-model delivery of mint outcomes
// to owner wallets.  The core writes one durable notification per terminal
// mint outcome; clients poll for unseen entries and acknowledge them.  The
// core never pushes and never deletes, so delivery is at-least-once.
package notification

import (
	"encoding/json"

	apperrors "github.com/landwho/landwho/pkg/errors"
	"github.com/landwho/landwho/pkg/types/common"
)

// Kind separates success notifications from failure notifications.
type Kind string

const (
	KindMintSucceeded Kind = "mint_succeeded"
	KindMintFailed    Kind = "mint_failed"
)

// Notification is one durable message addressed to an owner wallet.
type Notification struct {
	common.BaseEntity
	Wallet string `json:"wallet"`
	Kind   Kind   `json:"kind"`

	// Payload is the persisted minted-parcel record on success, or an error
	// descriptor on failure.
	Payload json.RawMessage `json:"payload"`

	Seen bool `json:"seen"`
}

// FailurePayload is the error descriptor carried by failure notifications.
type FailurePayload struct {
	Fingerprint string              `json:"fingerprint"`
	LandID      common.ID           `json:"land_id"`
	Code        apperrors.ErrorCode `json:"code"`
	Message     string              `json:"message"`

	// MayStillConfirm is set for confirmation timeouts: the transaction was
	// submitted and could still land on chain after the deadline.
	MayStillConfirm bool `json:"may_still_confirm,omitempty"`

	// NeedsReconciliation is set when the chain succeeded but the record
	// store write failed; the ledger and the record store disagree until an
	// operator intervenes.
	NeedsReconciliation bool `json:"needs_reconciliation,omitempty"`
}

// New constructs a notification for a wallet.
func New(wallet string, kind Kind, payload interface{}) (*Notification, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "failed to encode notification payload")
	}
	return &Notification{
		BaseEntity: common.NewBaseEntity(),
		Wallet:     wallet,
		Kind:       kind,
		Payload:    raw,
	}, nil
}
