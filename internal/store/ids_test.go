package store

import (
	"strings"
	"testing"
	"time"

	"weekboard/internal/model"
)

func TestNextEntityID_UsesUnixMillis(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	if got := NextEntityID(NewDB(), now); got != 1700000000123 {
		t.Fatalf("expected unix millis id, got %d", got)
	}
}

func TestNextEntityID_BumpsPastExistingIDs(t *testing.T) {
	now := time.UnixMilli(1000)
	db := NewDB()
	db.Tasks = append(db.Tasks, model.Task{ID: 1000})
	db.Initiatives = append(db.Initiatives, model.Initiative{ID: 1001})

	got := NextEntityID(db, now)
	if got != 1002 {
		t.Fatalf("expected 1002, got %d", got)
	}
}

func TestNextEntityID_SameMillisecondNeverCollides(t *testing.T) {
	now := time.UnixMilli(5000)
	db := NewDB()
	seen := map[int64]bool{}
	for i := 0; i < 50; i++ {
		id := NextEntityID(db, now)
		if seen[id] {
			t.Fatalf("duplicate id %d at iteration %d", id, i)
		}
		seen[id] = true
		db.Tasks = append(db.Tasks, model.Task{ID: id})
	}
}

func TestNewFileID_UniqueAndNonEmpty(t *testing.T) {
	seen := map[model.FileID]bool{}
	for i := 0; i < 200; i++ {
		id := NewFileID()
		if strings.TrimSpace(string(id)) == "" {
			t.Fatalf("empty file id")
		}
		if seen[id] {
			t.Fatalf("duplicate file id %q", id)
		}
		seen[id] = true
	}
}
