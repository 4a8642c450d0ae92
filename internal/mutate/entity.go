package mutate

import (
	"fmt"
	"strconv"
	"strings"

	"weekboard/internal/model"
	"weekboard/internal/store"
)

type EntityKind string

const (
	KindTask       EntityKind = "task"
	KindInitiative EntityKind = "initiative"
)

// ParseEntityKind accepts singular or plural forms.
func ParseEntityKind(s string) (EntityKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "task", "tasks":
		return KindTask, nil
	case "initiative", "initiatives":
		return KindInitiative, nil
	default:
		return "", fmt.Errorf("invalid entity kind %q (expected task|initiative)", s)
	}
}

// Plural is the collection name ("tasks", "initiatives").
func (k EntityKind) Plural() string {
	return string(k) + "s"
}

// EntityRef names one task or initiative.
type EntityRef struct {
	Kind EntityKind
	ID   int64
}

func (r EntityRef) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// ParseEntityRef parses a kind and a decimal id.
func ParseEntityRef(kind, id string) (EntityRef, error) {
	k, err := ParseEntityKind(kind)
	if err != nil {
		return EntityRef{}, err
	}
	n, err := ParseID(id)
	if err != nil {
		return EntityRef{}, err
	}
	return EntityRef{Kind: k, ID: n}, nil
}

// ParseID parses an entity id.
func ParseID(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return n, nil
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}

// filesOf returns the file list of the referenced entity for in-place edits.
func filesOf(db *store.DB, ref EntityRef) (*[]model.File, error) {
	switch ref.Kind {
	case KindTask:
		t, ok := db.FindTask(ref.ID)
		if !ok {
			return nil, NotFoundError{Kind: string(KindTask), ID: idString(ref.ID)}
		}
		return &t.Files, nil
	case KindInitiative:
		in, ok := db.FindInitiative(ref.ID)
		if !ok {
			return nil, NotFoundError{Kind: string(KindInitiative), ID: idString(ref.ID)}
		}
		return &in.Files, nil
	default:
		return nil, fmt.Errorf("invalid entity kind %q", ref.Kind)
	}
}
