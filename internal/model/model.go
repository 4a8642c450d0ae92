package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidStatus = errors.New("invalid status")

type TaskStatus string

const (
	TaskNotStarted TaskStatus = "not-started"
	TaskInProgress TaskStatus = "in-progress"
	TaskBlocked    TaskStatus = "blocked"
	TaskDone       TaskStatus = "done"
)

// TaskStatuses lists task statuses in display order.
func TaskStatuses() []TaskStatus {
	return []TaskStatus{TaskNotStarted, TaskInProgress, TaskBlocked, TaskDone}
}

type InitiativeStatus string

const (
	InitiativeRed    InitiativeStatus = "red"
	InitiativeYellow InitiativeStatus = "yellow"
	InitiativeGreen  InitiativeStatus = "green"
)

func InitiativeStatuses() []InitiativeStatus {
	return []InitiativeStatus{InitiativeRed, InitiativeYellow, InitiativeGreen}
}

// ParseTaskStatus normalizes s. Empty input yields the default status.
func ParseTaskStatus(s string) (TaskStatus, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TaskNotStarted, nil
	}
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")
	for _, st := range TaskStatuses() {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q (expected not-started|in-progress|blocked|done)", ErrInvalidStatus, s)
}

// ParseInitiativeStatus normalizes s. Empty input yields the default status.
func ParseInitiativeStatus(s string) (InitiativeStatus, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return InitiativeYellow, nil
	}
	for _, st := range InitiativeStatuses() {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q (expected red|yellow|green)", ErrInvalidStatus, s)
}

// FileID is a file record identifier. Blobs exported by the browser build
// stored numeric ids (a timestamp plus a random fraction); those decode into
// their decimal string form.
type FileID string

func (id *FileID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = FileID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("file id: %w", err)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return fmt.Errorf("file id: %w", err)
	}
	*id = FileID(n.String())
	return nil
}

type File struct {
	ID   FileID `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	// Data is a base64 data URL (data:<mime>;base64,<payload>).
	Data string `json:"data"`
}

type Task struct {
	ID     int64      `json:"id"`
	Name   string     `json:"name"`
	Status TaskStatus `json:"status"`
	Notes  string     `json:"notes"`
	Files  []File     `json:"files"`
}

type Initiative struct {
	ID      int64            `json:"id"`
	Name    string           `json:"name"`
	Status  InitiativeStatus `json:"status"`
	Content string           `json:"content"`
	Files   []File           `json:"files"`
}

// ArchivedWeek is a snapshot of the task list taken for one week number.
type ArchivedWeek struct {
	Week       int       `json:"week,omitempty"`
	ArchivedAt time.Time `json:"archivedAt,omitempty"`
	Tasks      []Task    `json:"tasks"`
}

type Event struct {
	ID       string    `json:"id"`
	TS       time.Time `json:"ts"`
	Type     string    `json:"type"`
	EntityID string    `json:"entityId"`
	Payload  any       `json:"payload"`
}
