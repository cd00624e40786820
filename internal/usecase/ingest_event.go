package usecase

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/V4T54L/bbf-logging/internal/adapter/metrics"
	"github.com/V4T54L/bbf-logging/internal/adapter/pii"
	"github.com/V4T54L/bbf-logging/internal/domain"
)

// IngestEventUseCase handles the business logic for ingesting an edit event.
type IngestEventUseCase struct {
	repo      domain.EventLogRepository
	publisher domain.EventPublisher
	redactor  *pii.Redactor
	metrics   *metrics.IngestMetrics
	logger    *slog.Logger
}

// NewIngestEventUseCase creates a new IngestEventUseCase.
// publisher and m may be nil.
func NewIngestEventUseCase(repo domain.EventLogRepository, publisher domain.EventPublisher, redactor *pii.Redactor, m *metrics.IngestMetrics, logger *slog.Logger) *IngestEventUseCase {
	return &IngestEventUseCase{
		repo:      repo,
		publisher: publisher,
		redactor:  redactor,
		metrics:   m,
		logger:    logger,
	}
}

// Ingest builds, redacts and durably appends one event. An error wrapping
// domain.ErrWriteFailure means the event was not recorded.
func (uc *IngestEventUseCase) Ingest(ctx context.Context, payload domain.Payload) (domain.EventRecord, error) {
	ctx, span := otel.Tracer("ingest-event-usecase").Start(ctx, "Ingest")
	defer span.End()

	// 1. Extract the fixed schema
	record := BuildEventRecord(payload)
	span.SetAttributes(
		attribute.String("event.type", record.EventType),
		attribute.String("event.id", record.EventID),
	)

	// 2. Redact PII from metadata
	if uc.redactor != nil {
		if redacted, err := uc.redactor.Redact(&record); err != nil {
			uc.logger.Warn("failed to redact PII, proceeding with original metadata", "error", err, "event_id", record.EventID)
			// Non-fatal error, we still ingest the event
		} else if redacted {
			uc.logger.Debug("redacted PII from metadata", "event_id", record.EventID)
		}
	}

	// 3. Append to the durable log
	start := time.Now()
	err := uc.repo.Append(ctx, record)
	if uc.metrics != nil {
		uc.metrics.AppendDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		uc.logger.Error("failed to append event", "error", err, "event_id", record.EventID)
		span.RecordError(err)
		span.SetStatus(codes.Error, "append failed")
		return domain.EventRecord{}, err
	}

	// 4. Fan out, best-effort
	if uc.publisher != nil {
		if err := uc.publisher.Publish(ctx, record); err != nil {
			if uc.metrics != nil {
				uc.metrics.PublishFailures.Inc()
			}
			uc.logger.Debug("failed to publish event", "error", err, "event_id", record.EventID)
		}
	}

	return record, nil
}
