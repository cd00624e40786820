package middleware

import (
	"log/slog"
	"net/http"

	"github.com/V4T54L/bbf-logging/internal/adapter/api/response"
	"github.com/V4T54L/bbf-logging/internal/adapter/metrics"
	"github.com/V4T54L/bbf-logging/internal/auth"
)

const AuthorizationHeader = "Authorization"

// Auth is a middleware factory that returns a new authentication middleware.
// It checks the Authorization header against the gate before the body is read.
func Auth(gate *auth.Gate, m *metrics.IngestMetrics, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := gate.Authorize(r.Header.Get(AuthorizationHeader)); err != nil {
				logger.Warn("rejected unauthorized request",
					"reason", err.Error(),
					"remote_addr", r.RemoteAddr,
					"request_id", RequestIDFromContext(r.Context()),
				)
				if m != nil {
					m.EventsTotal.WithLabelValues(metrics.StatusUnauthorized).Inc()
				}
				response.Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
