package handler

import (
	"encoding/json"
	"net/http"

	"github.com/key-verify-api/internal/application/verify"
	"github.com/key-verify-api/internal/domain"
	"github.com/key-verify-api/internal/transport/http/middleware"
)

// maxVerifyBody caps the request body of a verification call.
const maxVerifyBody = 1 << 20

// VerifyHandler handles token verification.
type VerifyHandler struct {
	svc verify.Service
}

func NewVerifyHandler(svc verify.Service) *VerifyHandler { return &VerifyHandler{svc: svc} }

func (h *VerifyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req domain.VerificationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxVerifyBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, domain.KindMissingFields, "invalid request body")
		return
	}

	out, err := h.svc.Verify(r.Context(), req, middleware.RequestMeta(r))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{
		Success: true,
		Message: out.Message,
		Data: VerifyData{
			UserID:     out.UserID,
			Key:        out.Key,
			VerifiedAt: out.VerifiedAt,
		},
	})
}
