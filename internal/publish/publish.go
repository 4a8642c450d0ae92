package publish

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"weekboard/internal/store"
	"weekboard/internal/week"
)

type WriteOptions struct {
	RenderOptions
	// Archived also writes every archived week under archive/.
	Archived  bool
	Overwrite bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteReports writes the live board to <toDir>/week-<N>.md and, with
// Archived set, each archived week to <toDir>/archive/week-<N>.md.
func WriteReports(db *store.DB, now time.Time, toDir string, opt WriteOptions) (WriteResult, error) {
	if db == nil {
		return WriteResult{}, errors.New("missing db")
	}
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)
	if err := os.MkdirAll(toDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	md, err := RenderBoardMarkdown(db, now, opt.RenderOptions)
	if err != nil {
		return WriteResult{}, err
	}
	boardPath := filepath.Join(toDir, weekFileName(week.Number(now)))
	if err := writeFile(boardPath, []byte(md), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}
	written := []string{boardPath}

	if !opt.Archived {
		return WriteResult{Written: written}, nil
	}

	archiveDir := filepath.Join(toDir, "archive")
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return WriteResult{}, err
	}
	// Stop on first error.
	for _, wk := range db.ArchivedWeekNumbers() {
		md, err := RenderWeekMarkdown(db, wk, opt.RenderOptions)
		if err != nil {
			return WriteResult{}, err
		}
		p := filepath.Join(archiveDir, weekFileName(wk))
		if err := writeFile(p, []byte(md), opt.Overwrite); err != nil {
			return WriteResult{}, err
		}
		written = append(written, p)
	}
	return WriteResult{Written: written}, nil
}

func weekFileName(wk int) string {
	return fmt.Sprintf("week-%02d.md", wk)
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
