package mocks

import (
	"context"
	"sync"

	"github.com/V4T54L/bbf-logging/internal/domain"
)

// MockEventLogRepository is a mock implementation of domain.EventLogRepository for testing.
type MockEventLogRepository struct {
	mu        sync.Mutex
	Appended  []domain.EventRecord
	AppendErr error
}

func (m *MockEventLogRepository) Append(ctx context.Context, record domain.EventRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.Appended = append(m.Appended, record)
	return nil
}

// Records returns a copy of the appended records.
func (m *MockEventLogRepository) Records() []domain.EventRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.EventRecord, len(m.Appended))
	copy(out, m.Appended)
	return out
}

// MockEventPublisher is a mock implementation of domain.EventPublisher for testing.
type MockEventPublisher struct {
	mu         sync.Mutex
	Published  []domain.EventRecord
	PublishErr error
}

func (m *MockEventPublisher) Publish(ctx context.Context, record domain.EventRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PublishErr != nil {
		return m.PublishErr
	}
	m.Published = append(m.Published, record)
	return nil
}
