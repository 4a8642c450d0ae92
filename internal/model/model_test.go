package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseTaskStatus(t *testing.T) {
	cases := []struct {
		in   string
		want TaskStatus
	}{
		{"", TaskNotStarted},
		{"  ", TaskNotStarted},
		{"in-progress", TaskInProgress},
		{"In Progress", TaskInProgress},
		{"not_started", TaskNotStarted},
		{"DONE", TaskDone},
		{"blocked", TaskBlocked},
	}
	for _, tc := range cases {
		got, err := ParseTaskStatus(tc.in)
		if err != nil {
			t.Fatalf("ParseTaskStatus(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseTaskStatus(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}

	if _, err := ParseTaskStatus("someday"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestParseInitiativeStatus(t *testing.T) {
	got, err := ParseInitiativeStatus("")
	if err != nil || got != InitiativeYellow {
		t.Fatalf("expected default yellow, got %q err=%v", got, err)
	}
	got, err = ParseInitiativeStatus(" Green ")
	if err != nil || got != InitiativeGreen {
		t.Fatalf("expected green, got %q err=%v", got, err)
	}
	if _, err := ParseInitiativeStatus("blue"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestFileID_DecodesLegacyNumbers(t *testing.T) {
	var files []File
	raw := `[{"id":1697040000123.4567,"name":"a.png"},{"id":"0192b3c4-aaaa","name":"b.png"},{"id":null,"name":"c.png"}]`
	if err := json.Unmarshal([]byte(raw), &files); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if files[0].ID != "1697040000123.4567" {
		t.Fatalf("unexpected numeric id: %q", files[0].ID)
	}
	if files[1].ID != "0192b3c4-aaaa" {
		t.Fatalf("unexpected string id: %q", files[1].ID)
	}
	if files[2].ID != "" {
		t.Fatalf("expected empty id for null, got %q", files[2].ID)
	}

	b, err := json.Marshal(files[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal back: %v", err)
	}
	if _, ok := back["id"].(string); !ok {
		t.Fatalf("expected id to re-encode as a string, got %#v", back["id"])
	}
}

func TestFileID_RejectsGarbage(t *testing.T) {
	var f File
	if err := json.Unmarshal([]byte(`{"id":true}`), &f); err == nil {
		t.Fatalf("expected error for boolean id")
	}
}
