package usecase

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/V4T54L/bbf-logging/internal/domain"
)

func decodePayload(t *testing.T, body string) domain.Payload {
	t.Helper()
	var p domain.Payload
	require.NoError(t, json.Unmarshal([]byte(body), &p))
	return p
}

func TestBuildEventRecord_DefaultsAbsentFields(t *testing.T) {
	rec := BuildEventRecord(decodePayload(t, `{"EventType":"Edit","InsertText":"foo"}`))

	assert.Equal(t, "Edit", rec.EventType)
	assert.Equal(t, "foo", rec.InsertText)
	assert.Equal(t, domain.EmptyMetadata, rec.Metadata)

	for i, v := range rec.Fields() {
		switch domain.Columns[i] {
		case "event_type", "insert_text", "metadata":
			continue
		}
		assert.Empty(t, v, "field %s should default to empty", domain.Columns[i])
	}
}

func TestBuildEventRecord_EmptyPayload(t *testing.T) {
	rec := BuildEventRecord(domain.Payload{})

	assert.Equal(t, domain.EventRecord{Metadata: domain.EmptyMetadata}, rec)
}

func TestBuildEventRecord_AllFields(t *testing.T) {
	body := `{
		"EventType": "File.Edit",
		"InsertText": "print(\"hi\")\n",
		"DeleteText": "x, y",
		"SourceLocation": "12",
		"ClientTimestamp": "1718000000000",
		"CodeStateSection": "main.py",
		"ToolInstances": "PyCharm 2024.1",
		"EditType": "Insert",
		"X-Metadata": {"session": "abc", "lines": 3},
		"CodeStateID": "cs-1",
		"X-Compilable": "true",
		"EventID": "ev-1",
		"SubjectID": "student-7",
		"AssignmentID": "hw1"
	}`

	rec := BuildEventRecord(decodePayload(t, body))

	assert.Equal(t, domain.EventRecord{
		EventType:        "File.Edit",
		InsertText:       "print(\"hi\")\n",
		DeleteText:       "x, y",
		SourceLocation:   "12",
		ClientTimestamp:  "1718000000000",
		CodeStateSection: "main.py",
		ToolInstances:    "PyCharm 2024.1",
		EditType:         "Insert",
		Metadata:         `{"session":"abc","lines":3}`,
		CodeStateID:      "cs-1",
		Compilable:       "true",
		EventID:          "ev-1",
		SubjectID:        "student-7",
		AssignmentID:     "hw1",
	}, rec)
}

func TestBuildEventRecord_ValueVariants(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantType string
		wantMeta string
	}{
		{name: "null scalar", body: `{"EventType": null}`, wantType: "", wantMeta: "{}"},
		{name: "number scalar", body: `{"EventType": 42}`, wantType: "42", wantMeta: "{}"},
		{name: "bool scalar", body: `{"EventType": false}`, wantType: "false", wantMeta: "{}"},
		{name: "nested scalar", body: `{"EventType": {"a": [1, 2]}}`, wantType: `{"a":[1,2]}`, wantMeta: "{}"},
		{name: "null metadata", body: `{"X-Metadata": null}`, wantMeta: "{}"},
		{name: "string metadata", body: `{"X-Metadata": "prompt text"}`, wantMeta: `"prompt text"`},
		{name: "empty object metadata", body: `{"X-Metadata": {}}`, wantMeta: "{}"},
		{name: "unknown keys ignored", body: `{"Entry": "Prompt", "eventtype": "x"}`, wantMeta: "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := BuildEventRecord(decodePayload(t, tt.body))
			assert.Equal(t, tt.wantType, rec.EventType)
			assert.Equal(t, tt.wantMeta, rec.Metadata)
		})
	}
}

func TestBuildEventRecord_MetadataRoundTrip(t *testing.T) {
	body := `{"X-Metadata": {"user": {"id": 7, "tags": ["a", "b"]}, "ok": true, "note": "a,b \"c\""}}`

	rec := BuildEventRecord(decodePayload(t, body))

	var got, want map[string]any
	require.NoError(t, json.Unmarshal([]byte(rec.Metadata), &got))
	require.NoError(t, json.Unmarshal(decodePayload(t, body)[metadataKey], &want))
	assert.Equal(t, want, got)
}
