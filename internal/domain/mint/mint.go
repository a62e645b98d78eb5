// Package mint holds the minted-parcel aggregate, the mint attempt state
// machine and the ports the coordinator drives: the in-flight registry, the
// content store, the ledger and the lifecycle event publisher.
package mint

import (
	"strings"

	"github.com/landwho/landwho/internal/domain/geometry"
	"github.com/landwho/landwho/internal/domain/parcel"
	apperrors "github.com/landwho/landwho/pkg/errors"
	"github.com/landwho/landwho/pkg/types/common"
	"github.com/landwho/landwho/pkg/types/geo"
)

// State is a mint attempt's position in its lifecycle.  Transitions run
// strictly forward; there is no retry loop.
type State string

const (
	StateRequested  State = "requested"
	StateAdmitted   State = "admitted"
	StatePinning    State = "pinning"
	StateOnChain    State = "on_chain"
	StatePersisting State = "persisting"
	StateNotifying  State = "notifying"
	StateDone       State = "done"
)

// Request is a mint admission request for one parcel boundary.
type Request struct {
	LandID   common.ID `json:"land_id"`
	LandName string    `json:"land_name"`
	Wallet   string    `json:"wallet"`
	Boundary geo.Ring  `json:"boundary"`

	// Price is the listing price as a decimal string, interpreted by the
	// ledger adapter.
	Price string `json:"price"`

	// RoyaltyBps is the creator royalty in basis points.
	RoyaltyBps int `json:"royalty_bps"`
}

// Validate checks the request and returns it with a closed boundary and
// normalized wallet.
func (r Request) Validate() (Request, error) {
	if r.LandID.IsZero() {
		return r, apperrors.New(apperrors.ErrCodeBadRequest, "land_id must not be empty")
	}
	r.Wallet = strings.ToLower(strings.TrimSpace(r.Wallet))
	if r.Wallet == "" {
		return r, apperrors.New(apperrors.ErrCodeBadRequest, "wallet must not be empty")
	}
	if err := r.Boundary.Validate(); err != nil {
		return r, err
	}
	r.Boundary = geometry.CloseRing(r.Boundary)
	if strings.TrimSpace(r.Price) == "" {
		return r, apperrors.New(apperrors.ErrCodeBadRequest, "price must not be empty")
	}
	if r.RoyaltyBps < 0 || r.RoyaltyBps > 10_000 {
		return r, apperrors.Newf(apperrors.ErrCodeBadRequest,
			"royalty_bps must be in [0, 10000], got %d", r.RoyaltyBps)
	}
	return r, nil
}

// Fingerprint returns the request's canonical parcel identity.
func (r Request) Fingerprint() string {
	return parcel.Fingerprint(r.LandID.String(), r.Boundary)
}

// MintedParcel is the durable record of a successful mint.  The unique
// index on Fingerprint in the record store is the final duplicate backstop.
type MintedParcel struct {
	common.BaseEntity
	LandID      common.ID `json:"land_id"`
	LandName    string    `json:"land_name"`
	Wallet      string    `json:"wallet"`
	Boundary    geo.Ring  `json:"boundary"`
	Fingerprint string    `json:"fingerprint"`
	Price       string    `json:"price"`
	RoyaltyBps  int       `json:"royalty_bps"`

	// ContentKey addresses the pinned metadata in the content store.
	ContentKey string `json:"content_key"`

	TokenID     string `json:"token_id"`
	TxHash      string `json:"tx_hash"`
	BlockNumber uint64 `json:"block_number"`
}

// NewMintedParcel assembles the record for an admitted request and its chain
// outcome.
func NewMintedParcel(req Request, fingerprint, contentKey string, receipt Receipt) *MintedParcel {
	return &MintedParcel{
		BaseEntity:  common.NewBaseEntity(),
		LandID:      req.LandID,
		LandName:    req.LandName,
		Wallet:      req.Wallet,
		Boundary:    req.Boundary,
		Fingerprint: fingerprint,
		Price:       req.Price,
		RoyaltyBps:  req.RoyaltyBps,
		ContentKey:  contentKey,
		TokenID:     receipt.TokenID,
		TxHash:      receipt.TxHash,
		BlockNumber: receipt.BlockNumber,
	}
}
