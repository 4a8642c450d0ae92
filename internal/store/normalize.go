package store

import (
	"weekboard/internal/model"
)

// Normalize backfills defaults once on load so no access site has to:
// non-nil collections and file lists, default statuses, file ids, and
// unique entity ids (a duplicate keeps its data and gets a fresh id).
// It reports whether anything changed.
func Normalize(db *DB) bool {
	if db == nil {
		return false
	}
	changed := false

	if db.Tasks == nil {
		db.Tasks = []model.Task{}
		changed = true
	}
	if db.Initiatives == nil {
		db.Initiatives = []model.Initiative{}
		changed = true
	}
	if db.ArchivedWeeks == nil {
		db.ArchivedWeeks = map[int]model.ArchivedWeek{}
		changed = true
	}

	maxID := int64(0)
	for _, t := range db.Tasks {
		maxID = max(maxID, t.ID)
	}
	for _, in := range db.Initiatives {
		maxID = max(maxID, in.ID)
	}

	seenTasks := map[int64]bool{}
	for i := range db.Tasks {
		t := &db.Tasks[i]
		if t.ID == 0 || seenTasks[t.ID] {
			maxID++
			t.ID = maxID
			changed = true
		}
		seenTasks[t.ID] = true
		if normalizeTask(t) {
			changed = true
		}
	}

	seenInitiatives := map[int64]bool{}
	for i := range db.Initiatives {
		in := &db.Initiatives[i]
		if in.ID == 0 || seenInitiatives[in.ID] {
			maxID++
			in.ID = maxID
			changed = true
		}
		seenInitiatives[in.ID] = true
		if in.Status == "" {
			in.Status = model.InitiativeYellow
			changed = true
		}
		if files, ok := normalizeFiles(in.Files); ok {
			in.Files = files
			changed = true
		}
	}

	for wk, aw := range db.ArchivedWeeks {
		dirty := false
		if aw.Week == 0 && wk != 0 {
			aw.Week = wk
			dirty = true
		}
		if aw.Tasks == nil {
			aw.Tasks = []model.Task{}
			dirty = true
		}
		for i := range aw.Tasks {
			if normalizeTask(&aw.Tasks[i]) {
				dirty = true
			}
		}
		if dirty {
			db.ArchivedWeeks[wk] = aw
			changed = true
		}
	}

	return changed
}

func normalizeTask(t *model.Task) bool {
	changed := false
	if t.Status == "" {
		t.Status = model.TaskNotStarted
		changed = true
	}
	if files, ok := normalizeFiles(t.Files); ok {
		t.Files = files
		changed = true
	}
	return changed
}

func normalizeFiles(files []model.File) ([]model.File, bool) {
	if files == nil {
		return []model.File{}, true
	}
	changed := false
	seen := map[model.FileID]bool{}
	for i := range files {
		if files[i].ID == "" || seen[files[i].ID] {
			files[i].ID = NewFileID()
			changed = true
		}
		seen[files[i].ID] = true
	}
	return files, changed
}
