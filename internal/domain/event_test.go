package domain

import (
	"testing"
)

func TestEventRecord_FieldsOrder(t *testing.T) {
	rec := EventRecord{
		EventType:        "a",
		InsertText:       "b",
		DeleteText:       "c",
		SourceLocation:   "d",
		ClientTimestamp:  "e",
		CodeStateSection: "f",
		ToolInstances:    "g",
		EditType:         "h",
		Metadata:         "i",
		CodeStateID:      "j",
		Compilable:       "k",
		EventID:          "l",
		SubjectID:        "m",
		AssignmentID:     "n",
	}

	fields := rec.Fields()
	if len(fields) != len(Columns) {
		t.Fatalf("expected %d fields, got %d", len(Columns), len(fields))
	}
	want := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m", "n"}
	for i := range want {
		if fields[i] != want[i] {
			t.Errorf("field %d (%s): got %q, want %q", i, Columns[i], fields[i], want[i])
		}
	}

	parsed, err := ParseEventRecord(fields)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if parsed != rec {
		t.Errorf("parsed record mismatch: got %+v, want %+v", parsed, rec)
	}
}

func TestParseEventRecord_WrongFieldCount(t *testing.T) {
	if _, err := ParseEventRecord([]string{"Edit", "foo"}); err == nil {
		t.Fatal("expected an error for a short record, got nil")
	}
	if _, err := ParseEventRecord(make([]string, len(Columns)+1)); err == nil {
		t.Fatal("expected an error for a long record, got nil")
	}
}
