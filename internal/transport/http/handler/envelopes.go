package handler

import (
	"encoding/json"
	"net/http"

	"github.com/key-verify-api/internal/domain"
)

// Envelope is the response wrapper shared by every endpoint.
// Error carries a stable domain.ErrorKind whenever Success is false.
type Envelope struct {
	Success   bool        `json:"success"`
	Error     string      `json:"error,omitempty"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp,omitempty"`
}

// VerifyData is the payload of a successful verification.
type VerifyData struct {
	UserID     string `json:"userId"`
	Key        string `json:"key"`
	VerifiedAt string `json:"verifiedAt"`
}

// kindStatus maps error kinds to HTTP status codes: caller and business-rule
// failures are 4xx, store failures are 5xx.
var kindStatus = map[domain.ErrorKind]int{
	domain.KindMissingFields:    http.StatusBadRequest,
	domain.KindMissingUserID:    http.StatusBadRequest,
	domain.KindKeyNotFound:      http.StatusNotFound,
	domain.KindKeyInactive:      http.StatusForbidden,
	domain.KindTokenMismatch:    http.StatusUnauthorized,
	domain.KindStoreUnavailable: http.StatusServiceUnavailable,
	domain.KindPersistFailed:    http.StatusBadGateway,
	domain.KindUnexpected:       http.StatusInternalServerError,
}

func statusForKind(kind domain.ErrorKind) int {
	if s, ok := kindStatus[kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind domain.ErrorKind, msg string) {
	writeJSON(w, status, Envelope{Error: string(kind), Message: msg})
}

// httpError writes err as a failure envelope. Only the classified message is
// exposed; the wrapped cause stays in the logs.
func httpError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	writeError(w, statusForKind(kind), kind, domain.MessageOf(err))
}

// NotFound answers unknown routes with the standard envelope.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, Envelope{Error: "NOT_FOUND", Message: "route not found"})
}

// MethodNotAllowed answers known routes hit with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, Envelope{
		Error:   "METHOD_NOT_ALLOWED",
		Message: r.Method + " is not allowed on " + r.URL.Path,
	})
}
