package store

import (
	"testing"
)

func TestEventLog_AppendAndRead(t *testing.T) {
	s := Store{Dir: t.TempDir()}

	if err := s.AppendEvent("task.add", "1", map[string]any{"name": "a"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.AppendEvent("initiative.add", "2", map[string]any{"name": "b"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.AppendEvent("task.set", "1", map[string]any{"status": "done"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	all, err := s.ReadEvents(0)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 events, got %d", len(all))
	}
	if all[0].Type != "task.add" || all[2].Type != "task.set" {
		t.Fatalf("expected chronological order, got %q..%q", all[0].Type, all[2].Type)
	}

	last, err := s.ReadEvents(1)
	if err != nil {
		t.Fatalf("read limit: %v", err)
	}
	if len(last) != 1 || last[0].Type != "task.set" {
		t.Fatalf("expected newest event only, got %+v", last)
	}

	forTask, err := s.ReadEventsForEntity("1", 0)
	if err != nil {
		t.Fatalf("read entity: %v", err)
	}
	if len(forTask) != 2 {
		t.Fatalf("expected 2 events for entity 1, got %d", len(forTask))
	}
	payload, ok := forTask[1].Payload.(map[string]any)
	if !ok || payload["status"] != "done" {
		t.Fatalf("unexpected payload: %#v", forTask[1].Payload)
	}
}

func TestEventLog_RejectsMissingFields(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	if err := s.AppendEvent(" ", "1", nil); err == nil {
		t.Fatalf("expected error for missing type")
	}
	if err := s.AppendEvent("task.add", "", nil); err == nil {
		t.Fatalf("expected error for missing entity id")
	}
}

func TestEventLog_EmptyIsNonNil(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	evs, err := s.ReadEvents(10)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if evs == nil || len(evs) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", evs)
	}
}
