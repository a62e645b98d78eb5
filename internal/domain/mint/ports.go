package mint

import (
	"context"
	"time"

	"github.com/landwho/landwho/pkg/types/common"
)

// Repository is the record-store port for minted parcels.
type Repository interface {
	// Save inserts the record.  A fingerprint collision surfaces as a
	// conflict error from the unique index.
	Save(ctx context.Context, p *MintedParcel) error

	// FindByFingerprint returns the record for a fingerprint, or a
	// not-found error.
	FindByFingerprint(ctx context.Context, fingerprint string) (*MintedParcel, error)

	ListByLand(ctx context.Context, landID common.ID) ([]*MintedParcel, error)
	ListByWallet(ctx context.Context, wallet string) ([]*MintedParcel, error)
	DeleteByLand(ctx context.Context, landID common.ID) error
}

// ContentStore pins parcel metadata before the chain is touched and returns
// the content-addressed key.
type ContentStore interface {
	Pin(ctx context.Context, metadata []byte) (string, error)
}

// Submission identifies a transaction accepted by the ledger but not yet
// confirmed.
type Submission struct {
	TxHash string
}

// Receipt is the confirmed outcome of a mint transaction.
type Receipt struct {
	TxHash      string
	TokenID     string
	BlockNumber uint64
}

// Ledger is the blockchain port.  Submission and confirmation are separate
// calls so their failures can be told apart: a submission error means the
// chain was never touched, a confirmation error means it may have been.
type Ledger interface {
	SubmitMint(ctx context.Context, p *MintedParcel) (Submission, error)
	AwaitConfirmation(ctx context.Context, sub Submission) (Receipt, error)
}

// Event is a mint lifecycle event published to the message broker.
type Event struct {
	Type        EventType           `json:"type"`
	Fingerprint string              `json:"fingerprint"`
	LandID      common.ID           `json:"land_id"`
	Wallet      string              `json:"wallet"`
	TxHash      string              `json:"tx_hash,omitempty"`
	Code        string              `json:"code,omitempty"`
	Message     string              `json:"message,omitempty"`
	OccurredAt  time.Time           `json:"occurred_at"`
}

// EventType names the terminal mint outcomes carried over the broker.
type EventType string

const (
	EventMintSucceeded EventType = "parcel.mint.succeeded"
	EventMintFailed    EventType = "parcel.mint.failed"

	// EventMintReconcile flags a chain success whose record-store write
	// failed; the reconciliation worker picks these up.
	EventMintReconcile EventType = "parcel.mint.reconcile"
)

// EventPublisher is the broker port.  Publishing is best-effort from the
// coordinator's point of view: a broker outage must not change the mint
// outcome.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
