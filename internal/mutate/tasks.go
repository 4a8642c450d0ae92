package mutate

import (
	"errors"
	"slices"
	"strings"
	"time"

	"weekboard/internal/model"
	"weekboard/internal/store"
)

type TaskResult struct {
	Task         *model.Task
	Changed      bool
	EventPayload map[string]any
}

// AddTask appends a task named name with a fresh id and default fields.
// An empty (after trim) name is a silent no-op: Changed=false, no error.
// Callers are responsible for saving db and appending the task.add event.
func AddTask(db *store.DB, name string, now time.Time) (TaskResult, error) {
	if db == nil {
		return TaskResult{}, errors.New("nil db")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return TaskResult{}, nil
	}
	db.Tasks = append(db.Tasks, model.Task{
		ID:     store.NextEntityID(db, now),
		Name:   name,
		Status: model.TaskNotStarted,
		Notes:  "",
		Files:  []model.File{},
	})
	t := &db.Tasks[len(db.Tasks)-1]
	return TaskResult{
		Task:    t,
		Changed: true,
		EventPayload: map[string]any{
			"id":     t.ID,
			"name":   t.Name,
			"status": string(t.Status),
		},
	}, nil
}

// SetTaskDetail overwrites a task's status and notes.
// Callers are responsible for saving db and appending the task.set event.
func SetTaskDetail(db *store.DB, id int64, status model.TaskStatus, notes string) (TaskResult, error) {
	if db == nil {
		return TaskResult{}, errors.New("nil db")
	}
	t, ok := db.FindTask(id)
	if !ok {
		return TaskResult{}, NotFoundError{Kind: string(KindTask), ID: idString(id)}
	}
	// A stored status outside the enum is kept when passed back unchanged.
	st := status
	if st != t.Status {
		var err error
		if st, err = model.ParseTaskStatus(string(status)); err != nil {
			return TaskResult{}, err
		}
	}
	if t.Status == st && t.Notes == notes {
		return TaskResult{Task: t, Changed: false}, nil
	}
	prev := t.Status
	t.Status = st
	t.Notes = notes
	return TaskResult{
		Task:    t,
		Changed: true,
		EventPayload: map[string]any{
			"from":   string(prev),
			"status": string(t.Status),
			"notes":  t.Notes,
		},
	}, nil
}

// RenameTask sets a task's name. An empty name is rejected as a no-op.
func RenameTask(db *store.DB, id int64, name string) (TaskResult, error) {
	if db == nil {
		return TaskResult{}, errors.New("nil db")
	}
	t, ok := db.FindTask(id)
	if !ok {
		return TaskResult{}, NotFoundError{Kind: string(KindTask), ID: idString(id)}
	}
	name = strings.TrimSpace(name)
	if name == "" || name == t.Name {
		return TaskResult{Task: t, Changed: false}, nil
	}
	prev := t.Name
	t.Name = name
	return TaskResult{
		Task:         t,
		Changed:      true,
		EventPayload: map[string]any{"from": prev, "name": t.Name},
	}, nil
}

type DeleteResult struct {
	Changed      bool
	EventPayload map[string]any
}

// DeleteTask removes a task by id. Confirmation is the caller's job.
// Callers are responsible for saving db and appending the task.delete event.
func DeleteTask(db *store.DB, id int64) (DeleteResult, error) {
	if db == nil {
		return DeleteResult{}, errors.New("nil db")
	}
	idx := slices.IndexFunc(db.Tasks, func(t model.Task) bool { return t.ID == id })
	if idx < 0 {
		return DeleteResult{}, NotFoundError{Kind: string(KindTask), ID: idString(id)}
	}
	name := db.Tasks[idx].Name
	db.Tasks = slices.Delete(db.Tasks, idx, idx+1)
	return DeleteResult{
		Changed:      true,
		EventPayload: map[string]any{"name": name},
	}, nil
}
