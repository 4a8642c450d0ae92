package mutate

import (
	"errors"
	"fmt"
	"slices"

	"weekboard/internal/model"
	"weekboard/internal/store"
)

type StatusResult struct {
	Ref          EntityRef
	Status       string
	Changed      bool
	EventPayload map[string]any
}

// CycleStatus moves the entity's status step places through its status
// order, wrapping at either end. The event is the entity's regular set event.
// Callers are responsible for saving db and appending the event.
func CycleStatus(db *store.DB, ref EntityRef, step int) (StatusResult, error) {
	if db == nil {
		return StatusResult{}, errors.New("nil db")
	}
	out := StatusResult{Ref: ref}
	switch ref.Kind {
	case KindInitiative:
		in, ok := db.FindInitiative(ref.ID)
		if !ok {
			return StatusResult{}, NotFoundError{Kind: string(ref.Kind), ID: idString(ref.ID)}
		}
		next := Cycle(model.InitiativeStatuses(), in.Status, step)
		res, err := SetInitiativeDetail(db, ref.ID, next, in.Content)
		if err != nil {
			return StatusResult{}, err
		}
		out.Status, out.Changed, out.EventPayload = string(next), res.Changed, res.EventPayload
	case KindTask:
		t, ok := db.FindTask(ref.ID)
		if !ok {
			return StatusResult{}, NotFoundError{Kind: string(ref.Kind), ID: idString(ref.ID)}
		}
		next := Cycle(model.TaskStatuses(), t.Status, step)
		res, err := SetTaskDetail(db, ref.ID, next, t.Notes)
		if err != nil {
			return StatusResult{}, err
		}
		out.Status, out.Changed, out.EventPayload = string(next), res.Changed, res.EventPayload
	default:
		return StatusResult{}, fmt.Errorf("invalid entity kind %q", ref.Kind)
	}
	return out, nil
}

// Cycle steps through all starting from cur. An unknown cur starts at the
// first (or last, stepping back) value.
func Cycle[T comparable](all []T, cur T, step int) T {
	i := slices.Index(all, cur)
	if i < 0 {
		if step < 0 {
			return all[len(all)-1]
		}
		return all[0]
	}
	n := len(all)
	return all[((i+step)%n+n)%n]
}
