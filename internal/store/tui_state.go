package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const tuiStateFileName = "tui_state.json"

// TUIState restores the last screen on relaunch. It lives in the store dir,
// so each board keeps its own. Missing or invalid data yields the defaults.
type TUIState struct {
	Version int `json:"version"`

	// Tab is one of: tasks|initiatives|archives
	Tab string `json:"tab,omitempty"`

	SelectedTaskID       int64 `json:"selectedTaskId,omitempty"`
	SelectedInitiativeID int64 `json:"selectedInitiativeId,omitempty"`
	SelectedWeek         int   `json:"selectedWeek,omitempty"`
}

func (s Store) tuiStatePath() string {
	return filepath.Join(s.Dir, tuiStateFileName)
}

func (s Store) LoadTUIState() (*TUIState, error) {
	if strings.TrimSpace(s.Dir) == "" {
		return &TUIState{Version: 1}, nil
	}
	b, err := os.ReadFile(s.tuiStatePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &TUIState{Version: 1}, nil
		}
		return nil, err
	}
	var st TUIState
	if err := json.Unmarshal(b, &st); err != nil {
		s.logger().Debug("ignoring unreadable tui state", "path", s.tuiStatePath(), "err", err)
		return &TUIState{Version: 1}, nil
	}
	if st.Version == 0 {
		st.Version = 1
	}
	return &st, nil
}

func (s Store) SaveTUIState(st *TUIState) error {
	if st == nil || strings.TrimSpace(s.Dir) == "" {
		return nil
	}
	if err := s.Ensure(); err != nil {
		return err
	}
	if st.Version == 0 {
		st.Version = 1
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return WriteFileAtomic(s.Dir, tuiStateFileName+".*.tmp", s.tuiStatePath(), b, 0o644)
}
