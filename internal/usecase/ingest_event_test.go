package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/V4T54L/bbf-logging/internal/adapter/metrics"
	"github.com/V4T54L/bbf-logging/internal/adapter/pii"
	"github.com/V4T54L/bbf-logging/internal/domain"
	"github.com/V4T54L/bbf-logging/internal/domain/mocks"
)

func TestIngestEventUseCase_Ingest(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	redactor := pii.NewRedactor([]string{"email"}, logger)
	payload := domain.Payload{
		"EventType":  json.RawMessage(`"Edit"`),
		"InsertText": json.RawMessage(`"foo"`),
	}

	t.Run("Successful Ingestion", func(t *testing.T) {
		mockRepo := &mocks.MockEventLogRepository{}
		mockPub := &mocks.MockEventPublisher{}
		uc := NewIngestEventUseCase(mockRepo, mockPub, redactor, nil, logger)

		record, err := uc.Ingest(context.Background(), payload)

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if record.EventType != "Edit" || record.InsertText != "foo" {
			t.Errorf("unexpected record: %+v", record)
		}
		if len(mockRepo.Appended) != 1 {
			t.Fatalf("expected 1 event to be appended, got %d", len(mockRepo.Appended))
		}
		if mockRepo.Appended[0] != record {
			t.Error("appended record mismatch")
		}
		if len(mockPub.Published) != 1 {
			t.Errorf("expected 1 event to be published, got %d", len(mockPub.Published))
		}
	})

	t.Run("Repository Error", func(t *testing.T) {
		mockRepo := &mocks.MockEventLogRepository{
			AppendErr: fmt.Errorf("%w: disk full", domain.ErrWriteFailure),
		}
		mockPub := &mocks.MockEventPublisher{}
		uc := NewIngestEventUseCase(mockRepo, mockPub, redactor, nil, logger)

		_, err := uc.Ingest(context.Background(), payload)

		if !errors.Is(err, domain.ErrWriteFailure) {
			t.Fatalf("expected ErrWriteFailure, got %v", err)
		}
		if len(mockPub.Published) != 0 {
			t.Error("a failed append must not be published")
		}
	})

	t.Run("Publisher Error Is Not Fatal", func(t *testing.T) {
		m := metrics.NewIngestMetrics(prometheus.NewRegistry())
		mockRepo := &mocks.MockEventLogRepository{}
		mockPub := &mocks.MockEventPublisher{PublishErr: errors.New("stream down")}
		uc := NewIngestEventUseCase(mockRepo, mockPub, redactor, m, logger)

		_, err := uc.Ingest(context.Background(), payload)

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(mockRepo.Appended) != 1 {
			t.Errorf("expected 1 event to be appended, got %d", len(mockRepo.Appended))
		}
		if got := testutil.ToFloat64(m.PublishFailures); got != 1 {
			t.Errorf("expected 1 publish failure, got %v", got)
		}
	})

	t.Run("Nil Publisher", func(t *testing.T) {
		mockRepo := &mocks.MockEventLogRepository{}
		uc := NewIngestEventUseCase(mockRepo, nil, nil, nil, logger)

		if _, err := uc.Ingest(context.Background(), payload); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(mockRepo.Appended) != 1 {
			t.Errorf("expected 1 event to be appended, got %d", len(mockRepo.Appended))
		}
	})

	t.Run("PII Redaction", func(t *testing.T) {
		mockRepo := &mocks.MockEventLogRepository{}
		uc := NewIngestEventUseCase(mockRepo, nil, redactor, nil, logger)

		_, err := uc.Ingest(context.Background(), domain.Payload{
			"EventType":  json.RawMessage(`"Login"`),
			"X-Metadata": json.RawMessage(`{"email": "test@example.com"}`),
		})

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		expectedMetadata := `{"email":"[REDACTED]"}`
		if mockRepo.Appended[0].Metadata != expectedMetadata {
			t.Errorf("expected metadata to be redacted: got %s, want %s", mockRepo.Appended[0].Metadata, expectedMetadata)
		}
	})
}
