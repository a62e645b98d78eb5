package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/landwho/landwho/internal/domain/land"
	apperrors "github.com/landwho/landwho/pkg/errors"
	"github.com/landwho/landwho/pkg/types/common"
)

// LandHandler serves land registration, listing, update and deletion.
type LandHandler struct {
	lands *land.Service
}

func NewLandHandler(lands *land.Service) *LandHandler {
	return &LandHandler{lands: lands}
}

type registerLandRequest struct {
	Wallet string `json:"wallet"`
	Name   string `json:"name"`
	// Boundary is the drawn polygon in [lat, lng] display order.
	Boundary [][2]float64 `json:"boundary"`
}

type updateLandRequest struct {
	Name     string       `json:"name"`
	Boundary [][2]float64 `json:"boundary"`
}

type landResponse struct {
	ID        string       `json:"id"`
	Wallet    string       `json:"wallet"`
	Name      string       `json:"name"`
	Boundary  [][2]float64 `json:"boundary"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func toLandResponse(l *land.Land) landResponse {
	return landResponse{
		ID:        l.ID.String(),
		Wallet:    l.Wallet,
		Name:      l.Name,
		Boundary:  l.Boundary.Display(),
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

// Register records a polygon for a registered wallet.
func (h *LandHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerLandRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}

	l, err := h.lands.RegisterLand(r.Context(), req.Wallet, req.Name, displayRing(req.Boundary))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLandResponse(l))
}

// List returns a wallet's lands, newest first.
func (h *LandHandler) List(w http.ResponseWriter, r *http.Request) {
	wallet := r.URL.Query().Get("wallet")
	ls, err := h.lands.ListLands(r.Context(), wallet)
	if err != nil {
		writeAppError(w, err)
		return
	}

	out := make([]landResponse, 0, len(ls))
	for _, l := range ls {
		out = append(out, toLandResponse(l))
	}
	writeJSON(w, http.StatusOK, out)
}

// Get returns one land by id.
func (h *LandHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := common.ID(chi.URLParam(r, "landID"))
	l, err := h.lands.GetLand(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLandResponse(l))
}

// Update renames and/or redraws a land.  Omitted attributes stay unchanged.
func (h *LandHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := common.ID(chi.URLParam(r, "landID"))

	var req updateLandRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	if req.Name == "" && req.Boundary == nil {
		writeAppError(w, apperrors.New(apperrors.ErrCodeLandInvalidRequest,
			"at least one of name or boundary is required"))
		return
	}

	l, err := h.lands.UpdateLand(r.Context(), id, req.Name, displayRing(req.Boundary))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLandResponse(l))
}

// Delete removes a land and its derived display state.
func (h *LandHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := common.ID(chi.URLParam(r, "landID"))
	if err := h.lands.DeleteLand(r.Context(), id); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
