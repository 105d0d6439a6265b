package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/key-verify-api/internal/domain"
)

type clientIPKey struct{}

// ClientIP resolves the caller address once per request and stores it on the
// context. X-Forwarded-For and X-Real-Ip are set by whoever sent the request,
// so they are read only when trustProxy is on, i.e. when the service sits
// behind a proxy that overwrites them. Otherwise the socket peer is used.
func ClientIP(trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := remoteHost(r)
			if trustProxy {
				if fwd := forwardedIP(r); fwd != "" {
					ip = fwd
				}
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientIPKey{}, ip)))
		})
	}
}

// clientIP returns the address resolved by ClientIP, or the socket peer when
// the middleware did not run.
func clientIP(r *http.Request) string {
	if ip, ok := r.Context().Value(clientIPKey{}).(string); ok {
		return ip
	}
	return remoteHost(r)
}

// forwardedIP returns the first X-Forwarded-For hop, then X-Real-Ip.
func forwardedIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	return strings.TrimSpace(r.Header.Get("X-Real-Ip"))
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RequestMeta captures the caller context recorded alongside a verification.
func RequestMeta(r *http.Request) domain.RequestMeta {
	return domain.RequestMeta{
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
	}
}
