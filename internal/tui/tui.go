// Package tui is the full-screen terminal board: tasks, initiatives and
// archived weeks over the same store the web server uses.
package tui

import (
	"log/slog"
	"time"

	"weekboard/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	// MaxAttachmentBytes caps a single attached file. Zero means the default.
	MaxAttachmentBytes int64
	Log                *slog.Logger
	Now                func() time.Time
}

func Run(dir string, db *store.DB, opts Options) error {
	applyColorProfilePreference()
	m := newAppModel(dir, db, opts)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
