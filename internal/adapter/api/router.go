package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/V4T54L/bbf-logging/internal/adapter/api/handler"
	"github.com/V4T54L/bbf-logging/internal/adapter/api/middleware"
	"github.com/V4T54L/bbf-logging/internal/adapter/metrics"
	"github.com/V4T54L/bbf-logging/internal/auth"
	"github.com/V4T54L/bbf-logging/internal/pkg/config"
)

// NewRouter creates and configures the main HTTP router for the ingest service.
// m and reporter may be nil.
func NewRouter(
	cfg *config.Config,
	logger *slog.Logger,
	gate *auth.Gate,
	ingestUseCase handler.EventIngester,
	m *metrics.IngestMetrics,
	reporter handler.EventReporter,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(chimw.Recoverer)

	ingestHandler := handler.NewIngestHandler(ingestUseCase, logger, cfg.MaxEventSize, cfg.RequestTimeout, m, reporter)

	r.With(middleware.Auth(gate, m, logger)).Post("/log", ingestHandler.ServeHTTP)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
