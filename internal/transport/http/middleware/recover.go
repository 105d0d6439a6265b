package middleware

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/key-verify-api/internal/domain"
	"go.uber.org/zap"
)

// Recover turns a panic in a handler into a logged UNEXPECTED response so a
// single bad request never takes the process down.
func Recover(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("panic serving request",
					zap.Any("panic", rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("request_id", chimiddleware.GetReqID(r.Context())),
					zap.StackSkip("stack", 2),
				)
				writeJSONError(w, http.StatusInternalServerError, string(domain.KindUnexpected), "unexpected error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
