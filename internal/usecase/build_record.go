package usecase

import (
	"bytes"
	"encoding/json"

	"github.com/V4T54L/bbf-logging/internal/domain"
)

// metadataKey is the payload member holding auxiliary metadata.
const metadataKey = "X-Metadata"

// scalarFields maps payload keys to the record field they populate.
var scalarFields = []struct {
	key string
	set func(*domain.EventRecord, string)
}{
	{"EventType", func(e *domain.EventRecord, v string) { e.EventType = v }},
	{"InsertText", func(e *domain.EventRecord, v string) { e.InsertText = v }},
	{"DeleteText", func(e *domain.EventRecord, v string) { e.DeleteText = v }},
	{"SourceLocation", func(e *domain.EventRecord, v string) { e.SourceLocation = v }},
	{"ClientTimestamp", func(e *domain.EventRecord, v string) { e.ClientTimestamp = v }},
	{"CodeStateSection", func(e *domain.EventRecord, v string) { e.CodeStateSection = v }},
	{"ToolInstances", func(e *domain.EventRecord, v string) { e.ToolInstances = v }},
	{"EditType", func(e *domain.EventRecord, v string) { e.EditType = v }},
	{"CodeStateID", func(e *domain.EventRecord, v string) { e.CodeStateID = v }},
	{"X-Compilable", func(e *domain.EventRecord, v string) { e.Compilable = v }},
	{"EventID", func(e *domain.EventRecord, v string) { e.EventID = v }},
	{"SubjectID", func(e *domain.EventRecord, v string) { e.SubjectID = v }},
	{"AssignmentID", func(e *domain.EventRecord, v string) { e.AssignmentID = v }},
}

// BuildEventRecord extracts the fixed event schema from a decoded payload.
// Absent or null members become "", and metadata is always serialized JSON.
func BuildEventRecord(payload domain.Payload) domain.EventRecord {
	var rec domain.EventRecord
	for _, f := range scalarFields {
		f.set(&rec, scalarString(payload[f.key]))
	}
	rec.Metadata = metadataString(payload[metadataKey])
	return rec
}

// scalarString renders one payload member as a field value. Strings are
// unquoted, any other JSON value keeps its compact literal text.
func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return compact(raw)
}

func metadataString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return domain.EmptyMetadata
	}
	return compact(raw)
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(raw, []byte("null"))
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
