package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/V4T54L/bbf-logging/internal/adapter/metrics"
	"github.com/V4T54L/bbf-logging/internal/domain"
)

// ErrUnavailable is returned by Publish while the stream is marked unreachable.
var ErrUnavailable = errors.New("redis stream is unavailable")

// publishTimeout bounds one XADD. Publishing is detached from the caller's
// cancellation because the record is already durable by then.
const publishTimeout = 2 * time.Second

// EventPublisher implements domain.EventPublisher by adding accepted records
// to a capped Redis Stream for live downstream consumers.
type EventPublisher struct {
	client      *redis.Client
	logger      *slog.Logger
	streamKey   string
	maxLen      int64
	metrics     *metrics.IngestMetrics
	isAvailable atomic.Bool
}

// NewEventPublisher creates a Redis-backed EventPublisher. The metrics argument may be nil.
func NewEventPublisher(client *redis.Client, logger *slog.Logger, streamKey string, maxLen int64, m *metrics.IngestMetrics) *EventPublisher {
	p := &EventPublisher{
		client:    client,
		logger:    logger.With("component", "redis_publisher"),
		streamKey: streamKey,
		maxLen:    maxLen,
		metrics:   m,
	}
	p.setAvailable(true) // Assume available initially
	return p
}

// StartHealthCheck pings Redis on every tick and flips availability accordingly.
// It blocks until ctx is cancelled.
func (p *EventPublisher) StartHealthCheck(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.logger.Info("Starting Redis health check", "stream", p.streamKey)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Stopping Redis health check")
			return
		case <-ticker.C:
			p.checkHealth(ctx)
		}
	}
}

func (p *EventPublisher) checkHealth(ctx context.Context) {
	if err := p.client.Ping(ctx).Err(); err != nil {
		if p.isAvailable.CompareAndSwap(true, false) {
			p.setAvailable(false)
			p.logger.Error("Redis connection lost", "error", err)
		}
		return
	}
	if p.isAvailable.CompareAndSwap(false, true) {
		p.setAvailable(true)
		p.logger.Info("Redis connection recovered")
	}
}

// Available reports whether the publisher currently forwards records.
func (p *EventPublisher) Available() bool {
	return p.isAvailable.Load()
}

// Publish adds record to the stream. While Redis is unreachable records are
// skipped; the durable log remains the source of truth.
func (p *EventPublisher) Publish(ctx context.Context, record domain.EventRecord) error {
	if !p.isAvailable.Load() {
		return ErrUnavailable
	}

	args := &redis.XAddArgs{
		Stream: p.streamKey,
		MaxLen: p.maxLen,
		Approx: true,
		Values: recordValues(record),
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		if isNetworkError(err) && p.isAvailable.CompareAndSwap(true, false) {
			p.setAvailable(false)
			p.logger.Error("Redis connection lost during publish", "error", err)
		}
		return fmt.Errorf("failed to XADD to redis stream: %w", err)
	}
	return nil
}

func (p *EventPublisher) setAvailable(ok bool) {
	p.isAvailable.Store(ok)
	if p.metrics == nil {
		return
	}
	if ok {
		p.metrics.PublisherHealthy.Set(1)
	} else {
		p.metrics.PublisherHealthy.Set(0)
	}
}

func recordValues(record domain.EventRecord) map[string]interface{} {
	fields := record.Fields()
	values := make(map[string]interface{}, len(fields))
	for i, col := range domain.Columns {
		values[col] = fields[i]
	}
	return values
}

// isNetworkError reports whether err means Redis itself is unreachable.
// A cancelled context says nothing about the server, even when the dialer
// wraps it in a net.Error.
func isNetworkError(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, redis.ErrClosed)
}
