package domain

import (
	"encoding/json"
	"fmt"
)

// Columns lists the persisted field names of an EventRecord in log order.
var Columns = []string{
	"event_type",
	"insert_text",
	"delete_text",
	"source_location",
	"client_timestamp",
	"code_state_section",
	"tool_instances",
	"edit_type",
	"metadata",
	"code_state_id",
	"compilable",
	"event_id",
	"subject_id",
	"assignment_id",
}

// EmptyMetadata is the serialized form of an absent X-Metadata member.
const EmptyMetadata = "{}"

// EventRecord is the normalized, fixed-schema form of one ingested edit event.
// Every field is a plain string; absent payload members are stored as "".
type EventRecord struct {
	EventType        string `json:"event_type"`
	InsertText       string `json:"insert_text"`
	DeleteText       string `json:"delete_text"`
	SourceLocation   string `json:"source_location"`
	ClientTimestamp  string `json:"client_timestamp"`
	CodeStateSection string `json:"code_state_section"`
	ToolInstances    string `json:"tool_instances"`
	EditType         string `json:"edit_type"`
	Metadata         string `json:"metadata"`
	CodeStateID      string `json:"code_state_id"`
	Compilable       string `json:"compilable"`
	EventID          string `json:"event_id"`
	SubjectID        string `json:"subject_id"`
	AssignmentID     string `json:"assignment_id"`
}

// Fields returns the record's values in the order given by Columns.
func (e EventRecord) Fields() []string {
	return []string{
		e.EventType,
		e.InsertText,
		e.DeleteText,
		e.SourceLocation,
		e.ClientTimestamp,
		e.CodeStateSection,
		e.ToolInstances,
		e.EditType,
		e.Metadata,
		e.CodeStateID,
		e.Compilable,
		e.EventID,
		e.SubjectID,
		e.AssignmentID,
	}
}

// ParseEventRecord rebuilds a record from the positional fields of one log line.
func ParseEventRecord(fields []string) (EventRecord, error) {
	if len(fields) != len(Columns) {
		return EventRecord{}, fmt.Errorf("event record has %d fields, want %d", len(fields), len(Columns))
	}
	return EventRecord{
		EventType:        fields[0],
		InsertText:       fields[1],
		DeleteText:       fields[2],
		SourceLocation:   fields[3],
		ClientTimestamp:  fields[4],
		CodeStateSection: fields[5],
		ToolInstances:    fields[6],
		EditType:         fields[7],
		Metadata:         fields[8],
		CodeStateID:      fields[9],
		Compilable:       fields[10],
		EventID:          fields[11],
		SubjectID:        fields[12],
		AssignmentID:     fields[13],
	}, nil
}

// Payload is the decoded body of an ingest request. Members keep their raw
// JSON so that extraction can tell strings, nested values and null apart.
type Payload map[string]json.RawMessage
