package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/V4T54L/bbf-logging/internal/adapter/api/response"
)

// NewAdminRouter creates the router for the operator-facing server: metrics,
// the live ingest-rate stream and a health check.
func NewAdminRouter(gatherer prometheus.Gatherer, rateStream http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	if rateStream != nil {
		r.Handle("/events/rate", rateStream)
	}
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
