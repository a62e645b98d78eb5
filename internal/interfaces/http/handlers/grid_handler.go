package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/landwho/landwho/internal/application/parceling"
	"github.com/landwho/landwho/internal/domain/parcel"
	"github.com/landwho/landwho/pkg/types/common"
)

// GridHandler serves server-side partition previews.
type GridHandler struct {
	parceling *parceling.Service
}

func NewGridHandler(svc *parceling.Service) *GridHandler {
	return &GridHandler{parceling: svc}
}

type gridRequest struct {
	// CellSizeMeters selects the parcel edge length; zero or omitted picks
	// the configured default.
	CellSizeMeters float64 `json:"cell_size_meters"`
}

type candidateResponse struct {
	Index          int          `json:"index"`
	Boundary       [][2]float64 `json:"boundary"`
	AreaSqM        float64      `json:"area_sq_m"`
	Classification string       `json:"classification"`
	Fingerprint    string       `json:"fingerprint"`
	Minted         bool         `json:"minted"`
	Selectable     bool         `json:"selectable"`
}

type gridResponse struct {
	LandID         string              `json:"land_id"`
	CellSizeMeters float64             `json:"cell_size_meters"`
	MintedCount    int                 `json:"minted_count"`
	Candidates     []candidateResponse `json:"candidates"`
}

func toCandidateResponse(c parcel.Candidate) candidateResponse {
	return candidateResponse{
		Index:          c.Index,
		Boundary:       c.Boundary.Display(),
		AreaSqM:        c.AreaSqM,
		Classification: string(c.Classification),
		Fingerprint:    c.Fingerprint,
		Minted:         c.Minted,
		Selectable:     c.Selectable(),
	}
}

// Partition computes the parcel grid for a land.  The request body is
// optional; an absent body uses the configured cell size.
func (h *GridHandler) Partition(w http.ResponseWriter, r *http.Request) {
	id := common.ID(chi.URLParam(r, "landID"))

	var req gridRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeAppError(w, err)
			return
		}
	}

	grid, err := h.parceling.PartitionLand(r.Context(), id, req.CellSizeMeters)
	if err != nil {
		writeAppError(w, err)
		return
	}

	out := gridResponse{
		LandID:         grid.LandID.String(),
		CellSizeMeters: grid.CellSizeMeters,
		MintedCount:    grid.MintedCount,
		Candidates:     make([]candidateResponse, 0, len(grid.Candidates)),
	}
	for _, c := range grid.Candidates {
		out.Candidates = append(out.Candidates, toCandidateResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}
