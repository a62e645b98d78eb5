package handlers

import (
	"net/http"
	"time"

	"github.com/landwho/landwho/internal/domain/land"
)

// OwnerHandler serves owner registration.
type OwnerHandler struct {
	lands *land.Service
}

func NewOwnerHandler(lands *land.Service) *OwnerHandler {
	return &OwnerHandler{lands: lands}
}

type registerOwnerRequest struct {
	Wallet string `json:"wallet"`
}

type ownerResponse struct {
	ID        string    `json:"id"`
	Wallet    string    `json:"wallet"`
	CreatedAt time.Time `json:"created_at"`
}

// Register registers a wallet as a landowner.  Registration is idempotent:
// a repeated wallet returns the previously stored owner.
func (h *OwnerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerOwnerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}

	owner, err := h.lands.RegisterOwner(r.Context(), req.Wallet)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ownerResponse{
		ID:        owner.ID.String(),
		Wallet:    owner.Wallet,
		CreatedAt: owner.CreatedAt,
	})
}
