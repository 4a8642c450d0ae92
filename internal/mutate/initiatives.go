package mutate

import (
	"errors"
	"slices"
	"strings"
	"time"

	"weekboard/internal/model"
	"weekboard/internal/store"
)

type InitiativeResult struct {
	Initiative   *model.Initiative
	Changed      bool
	EventPayload map[string]any
}

// AddInitiative appends an initiative with a fresh id, status yellow and no content.
// An empty (after trim) name is a silent no-op.
func AddInitiative(db *store.DB, name string, now time.Time) (InitiativeResult, error) {
	if db == nil {
		return InitiativeResult{}, errors.New("nil db")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return InitiativeResult{}, nil
	}
	db.Initiatives = append(db.Initiatives, model.Initiative{
		ID:      store.NextEntityID(db, now),
		Name:    name,
		Status:  model.InitiativeYellow,
		Content: "",
		Files:   []model.File{},
	})
	in := &db.Initiatives[len(db.Initiatives)-1]
	return InitiativeResult{
		Initiative: in,
		Changed:    true,
		EventPayload: map[string]any{
			"id":     in.ID,
			"name":   in.Name,
			"status": string(in.Status),
		},
	}, nil
}

// SetInitiativeDetail overwrites an initiative's status and content.
func SetInitiativeDetail(db *store.DB, id int64, status model.InitiativeStatus, content string) (InitiativeResult, error) {
	if db == nil {
		return InitiativeResult{}, errors.New("nil db")
	}
	in, ok := db.FindInitiative(id)
	if !ok {
		return InitiativeResult{}, NotFoundError{Kind: string(KindInitiative), ID: idString(id)}
	}
	st := status
	if st != in.Status {
		var err error
		if st, err = model.ParseInitiativeStatus(string(status)); err != nil {
			return InitiativeResult{}, err
		}
	}
	if in.Status == st && in.Content == content {
		return InitiativeResult{Initiative: in, Changed: false}, nil
	}
	prev := in.Status
	in.Status = st
	in.Content = content
	return InitiativeResult{
		Initiative: in,
		Changed:    true,
		EventPayload: map[string]any{
			"from":    string(prev),
			"status":  string(in.Status),
			"content": in.Content,
		},
	}, nil
}

func RenameInitiative(db *store.DB, id int64, name string) (InitiativeResult, error) {
	if db == nil {
		return InitiativeResult{}, errors.New("nil db")
	}
	in, ok := db.FindInitiative(id)
	if !ok {
		return InitiativeResult{}, NotFoundError{Kind: string(KindInitiative), ID: idString(id)}
	}
	name = strings.TrimSpace(name)
	if name == "" || name == in.Name {
		return InitiativeResult{Initiative: in, Changed: false}, nil
	}
	prev := in.Name
	in.Name = name
	return InitiativeResult{
		Initiative:   in,
		Changed:      true,
		EventPayload: map[string]any{"from": prev, "name": in.Name},
	}, nil
}

func DeleteInitiative(db *store.DB, id int64) (DeleteResult, error) {
	if db == nil {
		return DeleteResult{}, errors.New("nil db")
	}
	idx := slices.IndexFunc(db.Initiatives, func(in model.Initiative) bool { return in.ID == id })
	if idx < 0 {
		return DeleteResult{}, NotFoundError{Kind: string(KindInitiative), ID: idString(id)}
	}
	name := db.Initiatives[idx].Name
	db.Initiatives = slices.Delete(db.Initiatives, idx, idx+1)
	return DeleteResult{
		Changed:      true,
		EventPayload: map[string]any{"name": name},
	}, nil
}
