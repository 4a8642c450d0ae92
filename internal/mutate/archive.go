package mutate

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"weekboard/internal/model"
	"weekboard/internal/store"
)

type ArchiveResult struct {
	Week         model.ArchivedWeek
	Replaced     bool
	Changed      bool
	EventPayload map[string]any
}

// ArchiveWeek snapshots the current task list into archivedWeeks[week],
// replacing any earlier snapshot of the same week. The live task list is
// left untouched. Nothing calls this implicitly; it backs an explicit
// user action.
// Callers are responsible for saving db and appending the week.archive event.
func ArchiveWeek(db *store.DB, week int, now time.Time) (ArchiveResult, error) {
	if db == nil {
		return ArchiveResult{}, errors.New("nil db")
	}
	if week <= 0 || week > 54 {
		return ArchiveResult{}, fmt.Errorf("invalid week %d", week)
	}
	if db.ArchivedWeeks == nil {
		db.ArchivedWeeks = map[int]model.ArchivedWeek{}
	}

	tasks := make([]model.Task, 0, len(db.Tasks))
	for _, t := range db.Tasks {
		t.Files = slices.Clone(t.Files)
		if t.Files == nil {
			t.Files = []model.File{}
		}
		tasks = append(tasks, t)
	}

	_, replaced := db.ArchivedWeeks[week]
	aw := model.ArchivedWeek{Week: week, ArchivedAt: now.UTC(), Tasks: tasks}
	db.ArchivedWeeks[week] = aw
	return ArchiveResult{
		Week:     aw,
		Replaced: replaced,
		Changed:  true,
		EventPayload: map[string]any{
			"week":     week,
			"tasks":    len(tasks),
			"replaced": replaced,
		},
	}, nil
}

// ArchivedWeek looks up a snapshot. ok is false when the week was never archived.
func ArchivedWeek(db *store.DB, week int) (model.ArchivedWeek, bool) {
	if db == nil || db.ArchivedWeeks == nil {
		return model.ArchivedWeek{}, false
	}
	aw, ok := db.ArchivedWeeks[week]
	return aw, ok
}
