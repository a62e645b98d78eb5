package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/landwho/landwho/internal/application/minting"
	"github.com/landwho/landwho/internal/domain/mint"
	apperrors "github.com/landwho/landwho/pkg/errors"
	"github.com/landwho/landwho/pkg/types/common"
)

// MintHandler serves mint admission and minted-parcel listing.
type MintHandler struct {
	minting *minting.Service
	records mint.Repository
}

func NewMintHandler(svc *minting.Service, records mint.Repository) *MintHandler {
	return &MintHandler{minting: svc, records: records}
}

type mintRequest struct {
	LandID   string `json:"land_id"`
	LandName string `json:"land_name"`
	Wallet   string `json:"wallet"`
	// Boundary is the selected candidate in [lat, lng] display order.
	Boundary   [][2]float64 `json:"boundary"`
	Price      string       `json:"price"`
	RoyaltyBps int          `json:"royalty_bps"`
}

type mintedParcelResponse struct {
	ID          string       `json:"id"`
	LandID      string       `json:"land_id"`
	LandName    string       `json:"land_name"`
	Wallet      string       `json:"wallet"`
	Boundary    [][2]float64 `json:"boundary"`
	Fingerprint string       `json:"fingerprint"`
	Price       string       `json:"price"`
	RoyaltyBps  int          `json:"royalty_bps"`
	ContentKey  string       `json:"content_key"`
	TokenID     string       `json:"token_id"`
	TxHash      string       `json:"tx_hash"`
	BlockNumber uint64       `json:"block_number"`
	CreatedAt   time.Time    `json:"created_at"`
}

func toMintedParcelResponse(p *mint.MintedParcel) mintedParcelResponse {
	return mintedParcelResponse{
		ID:          p.ID.String(),
		LandID:      p.LandID.String(),
		LandName:    p.LandName,
		Wallet:      p.Wallet,
		Boundary:    p.Boundary.Display(),
		Fingerprint: p.Fingerprint,
		Price:       p.Price,
		RoyaltyBps:  p.RoyaltyBps,
		ContentKey:  p.ContentKey,
		TokenID:     p.TokenID,
		TxHash:      p.TxHash,
		BlockNumber: p.BlockNumber,
		CreatedAt:   p.CreatedAt,
	}
}

// Admit accepts a mint request for one parcel.  The reply is 202 with a
// pending status; the terminal outcome arrives through notifications.  A
// parcel that is already minted or currently in flight is rejected with 409.
func (h *MintHandler) Admit(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}

	admission, err := h.minting.Admit(r.Context(), mint.Request{
		LandID:     common.ID(strings.TrimSpace(req.LandID)),
		LandName:   req.LandName,
		Wallet:     req.Wallet,
		Boundary:   displayRing(req.Boundary),
		Price:      req.Price,
		RoyaltyBps: req.RoyaltyBps,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, admission)
}

// ListByWallet returns a wallet's minted parcels, newest first.
func (h *MintHandler) ListByWallet(w http.ResponseWriter, r *http.Request) {
	wallet := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("wallet")))
	if wallet == "" {
		writeAppError(w, apperrors.New(apperrors.ErrCodeBadRequest, "wallet query parameter is required"))
		return
	}

	parcels, err := h.records.ListByWallet(r.Context(), wallet)
	if err != nil {
		writeAppError(w, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "failed to list minted parcels"))
		return
	}

	out := make([]mintedParcelResponse, 0, len(parcels))
	for _, p := range parcels {
		out = append(out, toMintedParcelResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}
