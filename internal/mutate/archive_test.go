package mutate

import (
	"testing"
	"time"

	"weekboard/internal/model"
	"weekboard/internal/preview"
	"weekboard/internal/store"
)

func TestArchiveWeek_SnapshotsTasks(t *testing.T) {
	db := store.NewDB()
	a, _ := AddTask(db, "a", t0)
	ref := EntityRef{Kind: KindTask, ID: a.Task.ID}
	if _, err := AttachFile(db, ref, model.File{Name: "f.txt", Data: preview.EncodeDataURL("text/plain", []byte("x"))}); err != nil {
		t.Fatalf("attach: %v", err)
	}

	now := time.Date(2025, 3, 7, 17, 0, 0, 0, time.UTC)
	res, err := ArchiveWeek(db, 10, now)
	if err != nil {
		t.Fatalf("ArchiveWeek: %v", err)
	}
	if !res.Changed || res.Replaced {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(db.Tasks) != 1 {
		t.Fatalf("expected live tasks kept, got %d", len(db.Tasks))
	}

	aw, ok := ArchivedWeek(db, 10)
	if !ok || len(aw.Tasks) != 1 || aw.Week != 10 || !aw.ArchivedAt.Equal(now) {
		t.Fatalf("unexpected snapshot: %+v", aw)
	}

	// Later edits to the live task do not leak into the snapshot.
	if _, err := SetTaskDetail(db, a.Task.ID, model.TaskDone, "later"); err != nil {
		t.Fatalf("SetTaskDetail: %v", err)
	}
	if _, err := DeleteFile(db, ref, db.Tasks[0].Files[0].ID); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	aw, _ = ArchivedWeek(db, 10)
	if aw.Tasks[0].Status != model.TaskNotStarted || len(aw.Tasks[0].Files) != 1 {
		t.Fatalf("snapshot mutated by live edits: %+v", aw.Tasks[0])
	}

	again, err := ArchiveWeek(db, 10, now.Add(time.Hour))
	if err != nil || !again.Replaced {
		t.Fatalf("expected replace on second archive: %+v %v", again, err)
	}
}

func TestArchiveWeek_RejectsBadWeek(t *testing.T) {
	db := store.NewDB()
	for _, wk := range []int{0, -1, 99} {
		if _, err := ArchiveWeek(db, wk, t0); err == nil {
			t.Fatalf("expected error for week %d", wk)
		}
	}
	if _, ok := ArchivedWeek(db, 3); ok {
		t.Fatalf("expected missing week")
	}
}
