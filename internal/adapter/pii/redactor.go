package pii

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/V4T54L/bbf-logging/internal/domain"
)

const RedactedPlaceholder = "[REDACTED]"

// Redactor masks configured top-level keys of an event's metadata object.
type Redactor struct {
	fieldsToRedact map[string]struct{} // Use a map for O(1) lookups
	logger         *slog.Logger
}

// NewRedactor creates a new Redactor. Blank field names are ignored, so an
// empty list yields a Redactor that never modifies a record.
func NewRedactor(fields []string, logger *slog.Logger) *Redactor {
	fieldSet := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		fieldSet[field] = struct{}{}
	}
	return &Redactor{
		fieldsToRedact: fieldSet,
		logger:         logger,
	}
}

// Redact rewrites record.Metadata in place and reports whether anything was masked.
// Metadata that is not a JSON object is left untouched.
func (r *Redactor) Redact(record *domain.EventRecord) (bool, error) {
	if len(r.fieldsToRedact) == 0 || !strings.HasPrefix(record.Metadata, "{") {
		return false, nil
	}

	var metadata map[string]json.RawMessage
	if err := json.Unmarshal([]byte(record.Metadata), &metadata); err != nil {
		r.logger.Warn("failed to unmarshal metadata for PII redaction", "error", err, "event_id", record.EventID)
		return false, err
	}

	placeholder, _ := json.Marshal(RedactedPlaceholder)
	redacted := false
	for field := range r.fieldsToRedact {
		if _, ok := metadata[field]; ok {
			metadata[field] = placeholder
			redacted = true
		}
	}
	if !redacted {
		return false, nil
	}

	modified, err := json.Marshal(metadata)
	if err != nil {
		r.logger.Error("failed to marshal modified metadata after PII redaction", "error", err, "event_id", record.EventID)
		return false, err
	}
	record.Metadata = string(modified)
	return true, nil
}
