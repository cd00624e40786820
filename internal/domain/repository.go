package domain

import "context"

// EventLogRepository is the durable, append-only sink for event records.
type EventLogRepository interface {
	// Append writes one record and returns only after it is durable.
	// Failures wrap ErrWriteFailure and leave no partial record behind.
	Append(ctx context.Context, record EventRecord) error
}

// EventPublisher forwards accepted records to downstream consumers.
// Publishing happens after the durable append and is best-effort.
type EventPublisher interface {
	Publish(ctx context.Context, record EventRecord) error
}
