package render

import (
	"strconv"
	"strings"

	"weekboard/internal/model"
)

const (
	EmptyTasks              = "No tasks yet"
	EmptyTasksHint          = `Click "Add Task" to get started!`
	EmptyInitiatives        = "No initiatives yet"
	EmptyInitiativesHint    = `Click "Add Initiative" to get started!`
	EmptyArchiveSelect      = "Select a week to view archived tasks"
	ConfirmDeleteTask       = "Are you sure you want to delete this task?"
	ConfirmDeleteInitiative = "Are you sure you want to delete this initiative?"
)

// EmptyArchiveWeek is shown when a week has no snapshot or an empty one.
func EmptyArchiveWeek(week int) string {
	return "No tasks found for Week " + strconv.Itoa(week)
}

// ConfirmDelete returns the confirmation prompt for an entity kind.
func ConfirmDelete(kind string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(kind)), "initiative") {
		return ConfirmDeleteInitiative
	}
	return ConfirmDeleteTask
}

// TaskStatusLabel is the display form of a task status: the first '-' becomes a space.
func TaskStatusLabel(st model.TaskStatus) string {
	return strings.Replace(string(st), "-", " ", 1)
}

// InitiativeGlyph maps an initiative status to its emoji. Unknown statuses get yellow's glyph.
func InitiativeGlyph(st model.InitiativeStatus) string {
	switch st {
	case model.InitiativeRed:
		return "🔴"
	case model.InitiativeGreen:
		return "🟢"
	default:
		return "🟡"
	}
}
