package handler

import (
	"net/http"
	"time"

	"github.com/key-verify-api/internal/application/status"
	"github.com/key-verify-api/internal/domain"
)

// StatusHandler handles verification status lookups.
type StatusHandler struct {
	svc status.Service
	now func() time.Time
}

func NewStatusHandler(svc status.Service) *StatusHandler {
	return &StatusHandler{svc: svc, now: time.Now}
}

// Get serves GET ?userId=…
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.GetStatus(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{
		Success:   true,
		Data:      st,
		Timestamp: h.now().UTC().Format(domain.TimestampLayout),
	})
}
