package mutate

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"weekboard/internal/model"
	"weekboard/internal/store"
)

var t0 = time.UnixMilli(1700000000000)

func TestAddTask_DefaultsAndSize(t *testing.T) {
	db := store.NewDB()
	for i, name := range []string{"Draft spec", "  padded  ", "x"} {
		before := len(db.Tasks)
		res, err := AddTask(db, name, t0)
		if err != nil {
			t.Fatalf("AddTask(%q): %v", name, err)
		}
		if !res.Changed {
			t.Fatalf("expected changed for %q", name)
		}
		if len(db.Tasks) != before+1 {
			t.Fatalf("iteration %d: expected size %d, got %d", i, before+1, len(db.Tasks))
		}
		got := db.Tasks[len(db.Tasks)-1]
		if got.Status != model.TaskNotStarted || got.Files == nil || len(got.Files) != 0 || got.Notes != "" {
			t.Fatalf("unexpected defaults: %+v", got)
		}
	}
	if db.Tasks[1].Name != "padded" {
		t.Fatalf("expected trimmed name, got %q", db.Tasks[1].Name)
	}
	if db.Tasks[0].ID == db.Tasks[1].ID || db.Tasks[1].ID == db.Tasks[2].ID {
		t.Fatalf("expected unique ids, got %d %d %d", db.Tasks[0].ID, db.Tasks[1].ID, db.Tasks[2].ID)
	}
}

func TestAddTask_EmptyNameIsSilentNoop(t *testing.T) {
	db := store.NewDB()
	for _, name := range []string{"", "   ", "\t\n"} {
		res, err := AddTask(db, name, t0)
		if err != nil {
			t.Fatalf("expected no error for %q, got %v", name, err)
		}
		if res.Changed || res.Task != nil {
			t.Fatalf("expected no-op for %q", name)
		}
	}
	if len(db.Tasks) != 0 {
		t.Fatalf("expected no tasks, got %d", len(db.Tasks))
	}
}

func TestSetTaskDetail_Idempotent(t *testing.T) {
	db := store.NewDB()
	res, _ := AddTask(db, "Draft spec", t0)
	id := res.Task.ID

	first, err := SetTaskDetail(db, id, model.TaskInProgress, "<p>ok</p>")
	if err != nil {
		t.Fatalf("SetTaskDetail: %v", err)
	}
	if !first.Changed {
		t.Fatalf("expected first call to change")
	}
	snapshot := append([]model.Task(nil), db.Tasks...)

	second, err := SetTaskDetail(db, id, model.TaskInProgress, "<p>ok</p>")
	if err != nil {
		t.Fatalf("SetTaskDetail again: %v", err)
	}
	if second.Changed {
		t.Fatalf("expected second call to be a no-op")
	}
	if !reflect.DeepEqual(snapshot, db.Tasks) {
		t.Fatalf("state changed on repeat:\n got=%+v\nwant=%+v", db.Tasks, snapshot)
	}
}

func TestSetTaskDetail_Errors(t *testing.T) {
	db := store.NewDB()
	res, _ := AddTask(db, "a", t0)

	_, err := SetTaskDetail(db, 42, model.TaskDone, "")
	if !IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	_, err = SetTaskDetail(db, res.Task.ID, "waiting", "")
	if !errors.Is(err, model.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestDeleteTask_ThenLookupIsNotFound(t *testing.T) {
	db := store.NewDB()
	a, _ := AddTask(db, "a", t0)
	aID := a.Task.ID
	b, _ := AddTask(db, "b", t0)
	bID := b.Task.ID

	if _, err := DeleteTask(db, aID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if _, ok := db.FindTask(aID); ok {
		t.Fatalf("expected task %d gone", aID)
	}
	if _, ok := db.FindTask(bID); !ok {
		t.Fatalf("expected task %d kept", bID)
	}
	if _, err := DeleteTask(db, aID); !IsNotFound(err) {
		t.Fatalf("expected NotFoundError on second delete, got %v", err)
	}
}

func TestRenameTask(t *testing.T) {
	db := store.NewDB()
	a, _ := AddTask(db, "a", t0)
	id := a.Task.ID
	res, err := RenameTask(db, id, "  b ")
	if err != nil || !res.Changed || db.Tasks[0].Name != "b" {
		t.Fatalf("rename: %+v %v", res, err)
	}
	res, err = RenameTask(db, id, " ")
	if err != nil || res.Changed {
		t.Fatalf("expected empty rename to be a no-op: %+v %v", res, err)
	}
}

// Add, set detail, save, reload: the task reflects both fields.
func TestScenario_DraftSpecSurvivesReload(t *testing.T) {
	s := store.Store{Dir: t.TempDir()}
	db, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	res, err := AddTask(db, "Draft spec", t0)
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	id := res.Task.ID
	if res.Task.Status != model.TaskNotStarted {
		t.Fatalf("expected not-started, got %q", res.Task.Status)
	}
	if err := s.Save(db); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := SetTaskDetail(db, id, model.TaskInProgress, "<p>ok</p>"); err != nil {
		t.Fatalf("SetTaskDetail: %v", err)
	}
	if err := s.Save(db); err != nil {
		t.Fatalf("save: %v", err)
	}

	reloaded, err := s.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, ok := reloaded.FindTask(id)
	if !ok {
		t.Fatalf("task %d missing after reload", id)
	}
	if got.Status != model.TaskInProgress || got.Notes != "<p>ok</p>" {
		t.Fatalf("unexpected task after reload: %+v", got)
	}
}

func TestSetTaskDetail_KeepsUnknownStoredStatus(t *testing.T) {
	db := store.NewDB()
	db.Tasks = append(db.Tasks, model.Task{ID: 7, Name: "legacy", Status: "on-hold", Files: []model.File{}})

	res, err := SetTaskDetail(db, 7, "on-hold", "<p>still parked</p>")
	if err != nil {
		t.Fatalf("SetTaskDetail: %v", err)
	}
	if !res.Changed || res.Task.Status != "on-hold" || res.Task.Notes != "<p>still parked</p>" {
		t.Fatalf("expected notes saved with status kept, got %+v", res.Task)
	}

	if _, err := SetTaskDetail(db, 7, "paused", ""); !errors.Is(err, model.ErrInvalidStatus) {
		t.Fatalf("expected a changed unknown status to be rejected, got %v", err)
	}
	res, err = SetTaskDetail(db, 7, model.TaskDone, "<p>still parked</p>")
	if err != nil || res.Task.Status != model.TaskDone {
		t.Fatalf("expected a move to a known status, got %+v %v", res.Task, err)
	}
}
