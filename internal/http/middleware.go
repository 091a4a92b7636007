package http

import (
	"context"
	"net/http"
	"strings"
)

type contextKey int

const clientIPContextKey contextKey = iota

// ExtractClientIP returns the client IP for session audit records.
// Checks X-Forwarded-For first (for proxied requests), then X-Real-IP,
// finally RemoteAddr. IPv6 brackets and ports are stripped so the value
// parses as a bare address.
func ExtractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// First entry is the originating client
		if before, _, ok := strings.Cut(xff, ","); ok {
			return strings.TrimSpace(before)
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 && strings.Count(addr, ":") == 1 {
		addr = addr[:idx]
	} else if strings.HasPrefix(addr, "[") {
		if end := strings.Index(addr, "]"); end != -1 {
			addr = addr[1:end]
		}
	}
	return addr
}

// ClientIPFromContext extracts the client IP stored by ClientIPMiddleware.
// Returns the empty string when the middleware did not run.
func ClientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPContextKey).(string)
	return ip
}

// ClientIPMiddleware stores the client IP in the request context so the
// login flow can record it on the sessions it creates.
func ClientIPMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ExtractClientIP(r)
			ctx := context.WithValue(r.Context(), clientIPContextKey, ip)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
