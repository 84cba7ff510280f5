package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// LogRequests returns [Middleware] that logs each request's method, path and
// duration. Hijacked connections (websocket upgrades) log their total
// lifetime, not just the handshake.
func LogRequests(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"duration", time.Since(start),
			)
		})
	}
}
