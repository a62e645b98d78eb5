package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/landwho/landwho/internal/domain/notification"
	"github.com/landwho/landwho/pkg/types/common"
)

// NotificationHandler serves the pull-model notification channel that
// carries terminal mint outcomes to the owning wallet.
type NotificationHandler struct {
	notifications *notification.Service
}

func NewNotificationHandler(svc *notification.Service) *NotificationHandler {
	return &NotificationHandler{notifications: svc}
}

type notificationResponse struct {
	ID        string          `json:"id"`
	Wallet    string          `json:"wallet"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	Seen      bool            `json:"seen"`
	CreatedAt time.Time       `json:"created_at"`
}

// List returns a wallet's notifications; unseen=true narrows to
// unacknowledged entries.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	wallet := r.URL.Query().Get("wallet")
	unseenOnly := r.URL.Query().Get("unseen") == "true"

	ns, err := h.notifications.List(r.Context(), wallet, unseenOnly)
	if err != nil {
		writeAppError(w, err)
		return
	}

	out := make([]notificationResponse, 0, len(ns))
	for _, n := range ns {
		out = append(out, notificationResponse{
			ID:        n.ID.String(),
			Wallet:    n.Wallet,
			Kind:      string(n.Kind),
			Payload:   n.Payload,
			Seen:      n.Seen,
			CreatedAt: n.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// MarkSeen acknowledges one notification.
func (h *NotificationHandler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	id := common.ID(chi.URLParam(r, "notificationID"))
	if err := h.notifications.MarkSeen(r.Context(), id); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
