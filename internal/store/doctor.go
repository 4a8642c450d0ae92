package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"weekboard/internal/model"
	"weekboard/internal/preview"
)

type DoctorIssueLevel string

const (
	DoctorIssueLevelError DoctorIssueLevel = "error"
	DoctorIssueLevelWarn  DoctorIssueLevel = "warn"
)

type DoctorIssue struct {
	Level   DoctorIssueLevel `json:"level"`
	Code    string           `json:"code"`
	Message string           `json:"message"`
	Key     string           `json:"key,omitempty"`

	EntityKind string `json:"entityKind,omitempty"`
	EntityID   string `json:"entityId,omitempty"`
	FileID     string `json:"fileId,omitempty"`
	Week       int    `json:"week,omitempty"`
}

type DoctorReport struct {
	Issues []DoctorIssue `json:"issues"`
}

func (r DoctorReport) HasErrors() bool {
	for _, it := range r.Issues {
		if it.Level == DoctorIssueLevelError {
			return true
		}
	}
	return false
}

// Doctor inspects the database file and the persisted blob without changing
// either. Issues that Load repairs on its own are reported as warnings.
func (s Store) Doctor(ctx context.Context) (DoctorReport, error) {
	conn, err := s.openSQLite(ctx)
	if err != nil {
		return DoctorReport{}, err
	}
	defer conn.Close()

	issues := []DoctorIssue{}

	var check string
	if err := conn.QueryRowContext(ctx, `PRAGMA quick_check`).Scan(&check); err != nil {
		return DoctorReport{}, err
	}
	if strings.TrimSpace(check) != "ok" {
		issues = append(issues, DoctorIssue{
			Level:   DoctorIssueLevelError,
			Code:    "sqlite_quick_check",
			Message: check,
		})
	}

	rows, err := conn.QueryContext(ctx, `SELECT k FROM kv WHERE k LIKE ? ORDER BY k`, StateKey+".corrupt.%")
	if err != nil {
		return DoctorReport{}, err
	}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			rows.Close()
			return DoctorReport{}, err
		}
		issues = append(issues, DoctorIssue{
			Level:   DoctorIssueLevelWarn,
			Code:    "state_backup_present",
			Message: "a malformed blob was set aside during an earlier load",
			Key:     k,
		})
	}
	if err := rows.Close(); err != nil {
		return DoctorReport{}, err
	}

	raw, ok, err := kvGet(ctx, conn, StateKey)
	if err != nil {
		return DoctorReport{}, err
	}
	if ok {
		issues = append(issues, DiagnoseState([]byte(raw))...)
	}
	return DoctorReport{Issues: issues}, nil
}

// DiagnoseState checks a serialized blob as stored, before normalization.
func DiagnoseState(raw []byte) []DoctorIssue {
	var db DB
	if err := json.Unmarshal(raw, &db); err != nil {
		return []DoctorIssue{{
			Level:   DoctorIssueLevelError,
			Code:    "state_invalid_json",
			Message: err.Error(),
			Key:     StateKey,
		}}
	}

	var issues []DoctorIssue
	add := func(level DoctorIssueLevel, code, msg string, it DoctorIssue) {
		it.Level, it.Code, it.Message = level, code, msg
		issues = append(issues, it)
	}

	seen := map[string]map[int64]bool{"task": {}, "initiative": {}}
	entity := func(kind string, id int64, name, status string, known bool, files []model.File, week int) {
		ref := DoctorIssue{EntityKind: kind, EntityID: strconv.FormatInt(id, 10), Week: week}
		switch {
		case id == 0:
			add(DoctorIssueLevelWarn, "missing_id", kind+" has no id; one is assigned on load", ref)
		case week == 0 && seen[kind][id]:
			add(DoctorIssueLevelWarn, "duplicate_id", "duplicate "+kind+" id; the later one is renumbered on load", ref)
		}
		if week == 0 {
			seen[kind][id] = true
		}
		if strings.TrimSpace(name) == "" {
			add(DoctorIssueLevelWarn, "empty_name", kind+" has an empty name", ref)
		}
		if status != "" && !known {
			add(DoctorIssueLevelWarn, "unknown_status", fmt.Sprintf("unknown status %q is kept as is", status), ref)
		}
		for _, f := range files {
			fr := ref
			fr.FileID = string(f.ID)
			if f.ID == "" {
				add(DoctorIssueLevelWarn, "file_missing_id", fmt.Sprintf("file %q has no id; one is assigned on load", f.Name), fr)
			}
			if _, _, err := preview.DecodeDataURL(f.Data); err != nil {
				add(DoctorIssueLevelError, "file_invalid_data", fmt.Sprintf("file %q: %v", f.Name, err), fr)
			}
		}
	}

	for _, t := range db.Tasks {
		entity("task", t.ID, t.Name, string(t.Status), slices.Contains(model.TaskStatuses(), t.Status), t.Files, 0)
	}
	for _, in := range db.Initiatives {
		entity("initiative", in.ID, in.Name, string(in.Status), slices.Contains(model.InitiativeStatuses(), in.Status), in.Files, 0)
	}

	for _, wk := range db.ArchivedWeekNumbers() {
		aw := db.ArchivedWeeks[wk]
		ref := DoctorIssue{Week: wk}
		if wk < 1 || wk > 54 {
			add(DoctorIssueLevelWarn, "week_out_of_range", fmt.Sprintf("archived week %d is outside 1..54", wk), ref)
		}
		if aw.Week != 0 && aw.Week != wk {
			add(DoctorIssueLevelWarn, "week_mismatch", fmt.Sprintf("archived week %d is stored under key %d", aw.Week, wk), ref)
		}
		for _, t := range aw.Tasks {
			entity("task", t.ID, t.Name, string(t.Status), slices.Contains(model.TaskStatuses(), t.Status), t.Files, wk)
		}
	}
	return issues
}
