// Package handlers implements the REST endpoints of the API server.  All
// request and response geometry is exchanged in [lat, lng] display order;
// the conversion to the internal [lng, lat] order happens here and nowhere
// else.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	apperrors "github.com/landwho/landwho/pkg/errors"
	"github.com/landwho/landwho/pkg/types/geo"
)

// maxBodyBytes caps request bodies; polygon payloads are small.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// ErrorResponse is the error body shape every endpoint shares.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// writeAppError maps an application error onto its HTTP status via the
// error-code table.  Server-side causes are masked; the code survives so
// clients can still react programmatically.
func writeAppError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	status := apperrors.HTTPStatusForCode(code)

	resp := ErrorResponse{Code: code.String()}
	var appErr *apperrors.AppError
	switch {
	case apperrors.As(err, &appErr) && apperrors.IsClientError(code):
		resp.Message = appErr.Message
		resp.Detail = appErr.Detail
	case apperrors.IsClientError(code):
		resp.Message = err.Error()
	default:
		resp.Message = "internal server error"
	}
	writeJSON(w, status, resp)
}

// decodeJSON reads and decodes a bounded request body.
func decodeJSON(r *http.Request, target interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "failed to read request body")
	}
	if len(body) == 0 {
		return apperrors.New(apperrors.ErrCodeBadRequest, "request body must not be empty")
	}
	if err := json.Unmarshal(body, target); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "malformed JSON body")
	}
	return nil
}

// displayRing converts a [lat, lng] pair list from a request into the
// internal ring representation.  nil input stays nil so optional boundaries
// pass through.
func displayRing(pairs [][2]float64) geo.Ring {
	if pairs == nil {
		return nil
	}
	return geo.RingFromDisplay(pairs)
}
