package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"weekboard/internal/model"
	"weekboard/internal/mutate"
	"weekboard/internal/preview"
	"weekboard/internal/store"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type uploadDoneMsg struct {
	ref     mutate.EntityRef
	results []mutate.UploadResult
	err     error
}

type fileOpenDoneMsg struct {
	err error
}

func filePickerHeight(screenH int) int {
	// Leave room for the modal title, borders and help line.
	h := screenH - 16
	if h < 8 {
		h = 8
	}
	if h > 18 {
		h = 18
	}
	return h
}

func (m *appModel) openFilePicker() tea.Cmd {
	ref, _, ok := m.selectedRef()
	if !ok {
		return nil
	}

	fp := filepicker.New()
	fp.AllowedTypes = nil
	fp.FileAllowed = true
	fp.DirAllowed = false
	fp.ShowHidden = false
	fp.ShowPermissions = false
	fp.ShowSize = true
	fp.AutoHeight = false
	fp.Height = filePickerHeight(m.height)
	fp.Cursor = "›"
	fp.KeyMap.Back = key.NewBinding(
		key.WithKeys("h", "backspace", "left"),
		key.WithHelp("h", "up"),
	)
	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(colorAccent)
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(colorAccent)
	fp.Styles.Symlink = lipgloss.NewStyle().Foreground(colorAccent)
	fp.Styles.DisabledFile = styleMuted()
	fp.Styles.DisabledSelected = styleMuted()
	fp.Styles.FileSize = styleMuted().Width(fp.Styles.FileSize.GetWidth()).Align(lipgloss.Right)

	// Start in the last used directory, else the user's home.
	startDir := strings.TrimSpace(m.pickerDir)
	if startDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			startDir = home
		}
	}
	if startDir == "" {
		startDir = "."
	}
	fp.CurrentDirectory = startDir

	m.picker = fp
	m.modal = modalPickFile
	m.modalFor = ref
	return fp.Init()
}

// readUploadCmd reads the file off the UI goroutine. The result is attached
// in Update, where the state is owned.
func readUploadCmd(ref mutate.EntityRef, path string, maxBytes int64) tea.Cmd {
	up := mutate.Upload{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
	return func() tea.Msg {
		var results []mutate.UploadResult
		err := mutate.ReadUploads(context.Background(), []mutate.Upload{up}, maxBytes, func(r mutate.UploadResult) {
			results = append(results, r)
		})
		return uploadDoneMsg{ref: ref, results: results, err: err}
	}
}

func (m *appModel) finishUpload(msg uploadDoneMsg) tea.Cmd {
	var failed []string
	var attached int
	for _, r := range msg.results {
		if r.Err != nil {
			m.log.Warn("upload failed", "entity", msg.ref.String(), "file", r.Name, "err", r.Err)
			failed = append(failed, r.Name+": "+r.Err.Error())
			continue
		}
		err := m.apply("file.attach", idString(msg.ref.ID), func(db *store.DB) (bool, map[string]any, error) {
			res, err := mutate.AttachFile(db, msg.ref, r.File)
			return res.Changed, res.EventPayload, err
		})
		if err != nil {
			if mutate.IsNotFound(err) {
				return m.failed(msg.ref, err)
			}
			failed = append(failed, r.Name+": "+err.Error())
			continue
		}
		attached++
	}
	if msg.err != nil && len(failed) == 0 {
		failed = append(failed, msg.err.Error())
	}
	if len(failed) > 0 {
		return m.setFlash("Failed to attach " + strings.Join(failed, "; "))
	}
	if attached > 0 {
		m.fileIndex = len(m.selectedFiles()) - 1
		return m.setFlash(fmt.Sprintf("Attached %d file(s)", attached))
	}
	return nil
}

// openFile writes the decoded file to a temp dir and hands it to the OS viewer.
func openFile(f model.File) tea.Cmd {
	return func() tea.Msg {
		_, b, err := preview.DecodeDataURL(f.Data)
		if err != nil {
			return fileOpenDoneMsg{err: err}
		}
		name := filepath.Base(strings.TrimSpace(f.Name))
		if name == "" || name == "." || name == string(filepath.Separator) {
			return fileOpenDoneMsg{err: errors.New("file has no name")}
		}
		dir, err := os.MkdirTemp("", "weekboard-open-")
		if err != nil {
			return fileOpenDoneMsg{err: err}
		}
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, b, 0o600); err != nil {
			return fileOpenDoneMsg{err: err}
		}

		var cmd *exec.Cmd
		switch runtime.GOOS {
		case "darwin":
			cmd = exec.Command("open", p)
		case "windows":
			cmd = exec.Command("cmd", "/c", "start", "", p)
		default:
			cmd = exec.Command("xdg-open", p)
		}
		cmd.Stdout = io.Discard
		cmd.Stderr = io.Discard
		if err := cmd.Start(); err != nil {
			return fileOpenDoneMsg{err: err}
		}
		return fileOpenDoneMsg{err: cmd.Wait()}
	}
}
