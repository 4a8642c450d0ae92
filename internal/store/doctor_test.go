package store

import (
	"context"
	"testing"
)

func issueCodes(issues []DoctorIssue) map[string]int {
	out := map[string]int{}
	for _, it := range issues {
		out[it.Code]++
	}
	return out
}

func TestDiagnoseState_ReportsRepairableAndBrokenRecords(t *testing.T) {
	raw := `{
		"tasks": [
			{"id": 1, "name": "a", "status": "done", "files": [{"id": "f1", "name": "x.txt", "type": "text/plain", "data": "data:text/plain;base64,aGk="}]},
			{"id": 1, "name": " ", "status": "paused", "files": [{"name": "bad.bin", "data": "not a data url"}]},
			{"name": "no id"}
		],
		"initiatives": [{"id": 1, "name": "same id as a task", "status": "purple"}],
		"archivedWeeks": {"60": {"week": 59, "tasks": [{"id": 1, "name": "old", "status": "done"}]}}
	}`

	issues := DiagnoseState([]byte(raw))
	got := issueCodes(issues)
	want := map[string]int{
		"duplicate_id":      1,
		"empty_name":        1,
		"unknown_status":    2,
		"file_missing_id":   1,
		"file_invalid_data": 1,
		"missing_id":        1,
		"week_out_of_range": 1,
		"week_mismatch":     1,
	}
	for code, n := range want {
		if got[code] != n {
			t.Fatalf("expected %d %s issue(s), got %d in %#v", n, code, got[code], issues)
		}
	}
	if len(issues) != 9 {
		t.Fatalf("expected 9 issues, got %d: %#v", len(issues), issues)
	}
	if !(DoctorReport{Issues: issues}).HasErrors() {
		t.Fatalf("expected an error-level issue for the bad data url")
	}
}

func TestDiagnoseState_InvalidJSON(t *testing.T) {
	issues := DiagnoseState([]byte(`{"tasks":`))
	if len(issues) != 1 || issues[0].Code != "state_invalid_json" || issues[0].Level != DoctorIssueLevelError {
		t.Fatalf("unexpected issues: %#v", issues)
	}
}

func TestDoctor_CleanStoreAndCorruptBackup(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	if err := s.Save(NewDB()); err != nil {
		t.Fatalf("save: %v", err)
	}
	r, err := s.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if len(r.Issues) != 0 {
		t.Fatalf("expected a clean report, got %#v", r.Issues)
	}

	if err := s.PutRawState("{broken"); err != nil {
		t.Fatalf("put: %v", err)
	}
	r, err = s.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if got := issueCodes(r.Issues); got["state_invalid_json"] != 1 {
		t.Fatalf("expected invalid json issue, got %#v", r.Issues)
	}

	// Load sets the blob aside; doctor then points at the backup.
	if _, err := s.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := s.Save(NewDB()); err != nil {
		t.Fatalf("save: %v", err)
	}
	r, err = s.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if got := issueCodes(r.Issues); got["state_backup_present"] != 1 || len(r.Issues) != 1 {
		t.Fatalf("expected only the backup warning, got %#v", r.Issues)
	}
	if r.HasErrors() {
		t.Fatalf("backup warning must not count as an error")
	}
}
