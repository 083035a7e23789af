// Package admin is the operator surface: dashboard, listings, windowed
// reports and order-draft confirmation, all behind a shared-token gate.
package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/ropeartlab/ropeartlab/internal/api"
)

// RequireToken gates a handler behind the admin token. An empty configured
// token disables the whole surface rather than leaving it open.
func RequireToken(token string, logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token == "" {
			api.ErrorMessage(w, logger, http.StatusServiceUnavailable, "admin access not configured")
			return
		}
		provided := r.Header.Get("Authorization")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			logger.Warn("admin request rejected", "path", r.URL.Path)
			api.ErrorMessage(w, logger, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
