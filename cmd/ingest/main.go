package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/V4T54L/bbf-logging/internal/adapter/api"
	"github.com/V4T54L/bbf-logging/internal/adapter/api/handler"
	"github.com/V4T54L/bbf-logging/internal/adapter/metrics"
	"github.com/V4T54L/bbf-logging/internal/adapter/pii"
	"github.com/V4T54L/bbf-logging/internal/adapter/repository/eventlog"
	redisrepo "github.com/V4T54L/bbf-logging/internal/adapter/repository/redis"
	"github.com/V4T54L/bbf-logging/internal/auth"
	"github.com/V4T54L/bbf-logging/internal/domain"
	"github.com/V4T54L/bbf-logging/internal/pkg/config"
	"github.com/V4T54L/bbf-logging/internal/pkg/logger"
	"github.com/V4T54L/bbf-logging/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logger.New(cfg.LogLevel)
	slog.SetDefault(logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewIngestMetrics(registry)

	// --- Graceful Shutdown Context ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Event Log ---
	eventLog, err := eventlog.NewRepository(cfg.EventLogPath, cfg.EventLogFsync, m, logger)
	if err != nil {
		logger.Error("failed to open event log", "path", cfg.EventLogPath, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := eventLog.Close(); err != nil {
			logger.Error("failed to close event log", "error", err)
		}
	}()

	// --- Optional Redis fan-out ---
	var publisher domain.EventPublisher
	if cfg.RedisAddr != "" {
		redisClient, err := newRedisClient(cfg.RedisAddr)
		if err != nil {
			logger.Error("failed to parse redis address", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("could not connect to redis, events will only be written to the log", "error", err)
		}
		eventPublisher := redisrepo.NewEventPublisher(redisClient, logger, cfg.RedisStream, cfg.RedisStreamMaxLen, m)
		go eventPublisher.StartHealthCheck(ctx, 5*time.Second)
		publisher = eventPublisher
	}

	// --- Initialize Use Cases and Services ---
	piiRedactor := pii.NewRedactor(cfg.RedactionFields(), logger)
	ingestUseCase := usecase.NewIngestEventUseCase(eventLog, publisher, piiRedactor, m, logger)
	gate := auth.NewGate(cfg.APIKey, cfg.AuthScheme)
	rateBroker := handler.NewRateBroker(ctx, logger, time.Second)

	// --- Start Admin and Metrics Server ---
	adminServer := &http.Server{
		Addr:              cfg.AdminServerAddr,
		Handler:           api.NewAdminRouter(registry, rateBroker),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting admin & metrics server", "addr", adminServer.Addr)
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("admin & metrics server failed", "error", err)
		}
	}()

	// --- Initialize Ingest Server ---
	ingestServer := &http.Server{
		Addr:         cfg.IngestServerAddr,
		Handler:      api.NewRouter(cfg, logger, gate, ingestUseCase, m, rateBroker),
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting ingest server", "addr", ingestServer.Addr, "event_log", eventLog.Path())
		if err := ingestServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("ingest server failed", "error", err)
			stop() // Trigger shutdown on server error
		}
	}()

	// --- Wait for shutdown signal ---
	<-ctx.Done()
	logger.Info("shutting down servers...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	// In-flight appends finish before the deferred Close runs.
	if err := ingestServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("ingest server shutdown failed", "error", err)
	}
	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("admin server shutdown failed", "error", err)
	}

	logger.Info("servers shut down gracefully")
}

// newRedisClient accepts either a redis:// URL or a bare host:port.
func newRedisClient(addr string) (*redis.Client, error) {
	if strings.Contains(addr, "://") {
		opts, err := redis.ParseURL(addr)
		if err != nil {
			return nil, err
		}
		return redis.NewClient(opts), nil
	}
	return redis.NewClient(&redis.Options{Addr: addr}), nil
}
