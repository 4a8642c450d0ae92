package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"weekboard/internal/store"
	"weekboard/internal/week"

	"gopkg.in/yaml.v3"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()
	return runCLIWithInput(t, "", args)
}

func runCLIWithInput(t *testing.T, stdin string, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

// isolate keeps tests away from ~/.weekboard and stray env.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("WEEKBOARD_CONFIG_DIR", t.TempDir())
	t.Setenv("WEEKBOARD_DIR", "")
	t.Setenv("WEEKBOARD_FORMAT", "")
	return t.TempDir()
}

func mustEnvelope(t *testing.T, args ...string) map[string]any {
	t.Helper()
	stdout, stderr, err := runCLI(t, args)
	if err != nil {
		t.Fatalf("weekboard %v failed: %v\nstderr:\n%s\nstdout:\n%s", args, err, stderr, stdout)
	}
	var env map[string]any
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("unmarshal envelope: %v\nstdout:\n%s", err, stdout)
	}
	if _, ok := env["data"]; !ok {
		t.Fatalf("expected data key, got %v", env)
	}
	return env
}

func dataMap(t *testing.T, env map[string]any) map[string]any {
	t.Helper()
	m, ok := env["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %#v", env["data"])
	}
	return m
}

func idOf(t *testing.T, env map[string]any) string {
	t.Helper()
	id, ok := dataMap(t, env)["id"].(float64)
	if !ok || id <= 0 {
		t.Fatalf("expected numeric id, got %#v", env["data"])
	}
	return strconv.FormatInt(int64(id), 10)
}

func TestTasks_AddSetShowDelete(t *testing.T) {
	dir := isolate(t)

	added := mustEnvelope(t, "--dir", dir, "tasks", "add", "Draft", "spec")
	id := idOf(t, added)
	if got := dataMap(t, added)["status"]; got != "not-started" {
		t.Fatalf("expected default status, got %v", got)
	}
	if hints, _ := added["_hints"].([]any); len(hints) == 0 {
		t.Fatalf("expected hints on add")
	}

	set := mustEnvelope(t, "--dir", dir, "tasks", "set", id, "--status", "In Progress", "--notes-md", "**bold** move")
	d := dataMap(t, set)
	if d["status"] != "in-progress" || d["statusLabel"] != "in progress" {
		t.Fatalf("unexpected status after set: %v", d)
	}
	if notes, _ := d["notes"].(string); !strings.Contains(notes, "<strong>bold</strong>") {
		t.Fatalf("expected markdown notes rendered, got %q", notes)
	}

	// Same values again: nothing changes, no second event.
	again := mustEnvelope(t, "--dir", dir, "tasks", "set", id, "--status", "in-progress")
	if changed := again["meta"].(map[string]any)["changed"]; changed != false {
		t.Fatalf("expected idempotent set, got changed=%v", changed)
	}

	shown := mustEnvelope(t, "--dir", dir, "tasks", "show", id)
	if dataMap(t, shown)["name"] != "Draft spec" {
		t.Fatalf("unexpected show: %v", shown["data"])
	}

	// Declined prompt keeps the task.
	stdout, _, err := runCLIWithInput(t, "n\n", []string{"--dir", dir, "tasks", "delete", id})
	if err != nil {
		t.Fatalf("delete (declined): %v", err)
	}
	if !strings.Contains(string(stdout), `"deleted":false`) {
		t.Fatalf("expected deleted=false, got %s", stdout)
	}

	stdout, _, err = runCLIWithInput(t, "y\n", []string{"--dir", dir, "tasks", "delete", id})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !strings.Contains(string(stdout), `"deleted":true`) {
		t.Fatalf("expected deleted=true, got %s", stdout)
	}

	if _, _, err := runCLI(t, []string{"--dir", dir, "tasks", "show", id}); err == nil {
		t.Fatalf("expected show of deleted task to fail")
	}

	evs := mustEnvelope(t, "--dir", dir, "events", "list", "--entity", id)
	list, _ := evs["data"].([]any)
	var types []string
	for _, e := range list {
		types = append(types, e.(map[string]any)["type"].(string))
	}
	if strings.Join(types, ",") != "task.add,task.set,task.delete" {
		t.Fatalf("unexpected event types: %v", types)
	}
}

func TestTasks_AddBlankNameIsNoop(t *testing.T) {
	dir := isolate(t)
	env := mustEnvelope(t, "--dir", dir, "tasks", "add", "   ")
	if env["data"] != nil {
		t.Fatalf("expected null data, got %v", env["data"])
	}
	list := mustEnvelope(t, "--dir", dir, "tasks", "list")
	if xs, _ := list["data"].([]any); len(xs) != 0 {
		t.Fatalf("expected no tasks, got %v", xs)
	}
}

func TestTasks_InvalidStatusRejected(t *testing.T) {
	dir := isolate(t)
	id := idOf(t, mustEnvelope(t, "--dir", dir, "tasks", "add", "x"))
	_, stderr, err := runCLI(t, []string{"--dir", dir, "tasks", "set", id, "--status", "paused"})
	if err == nil {
		t.Fatalf("expected error for invalid status")
	}
	if !strings.Contains(string(stderr), "invalid status") {
		t.Fatalf("expected invalid status message, got %s", stderr)
	}
}

func TestInitiatives_DefaultsAndListFilter(t *testing.T) {
	dir := isolate(t)
	a := idOf(t, mustEnvelope(t, "--dir", dir, "initiatives", "add", "Launch"))
	mustEnvelope(t, "--dir", dir, "initiatives", "add", "Hiring")
	mustEnvelope(t, "--dir", dir, "initiatives", "set", a, "--status", "green", "--content", "<p>on track</p>")

	green := mustEnvelope(t, "--dir", dir, "initiatives", "list", "--status", "green")
	xs, _ := green["data"].([]any)
	if len(xs) != 1 {
		t.Fatalf("expected one green initiative, got %v", xs)
	}
	first := xs[0].(map[string]any)
	if first["glyph"] != "🟢" || first["content"] != "<p>on track</p>" {
		t.Fatalf("unexpected initiative: %v", first)
	}

	all := mustEnvelope(t, "--dir", dir, "initiatives", "list")
	xs, _ = all["data"].([]any)
	if len(xs) != 2 || xs[1].(map[string]any)["status"] != "yellow" {
		t.Fatalf("expected insertion order with yellow default, got %v", xs)
	}
}

func TestFiles_AttachListPreviewExportDelete(t *testing.T) {
	dir := isolate(t)
	id := idOf(t, mustEnvelope(t, "--dir", dir, "tasks", "add", "with files"))

	src := t.TempDir()
	txt := filepath.Join(src, "notes.txt")
	if err := os.WriteFile(txt, []byte("hello world"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	doc := filepath.Join(src, "plan.docx")
	if err := os.WriteFile(doc, []byte("PK\x03\x04fake"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	env := mustEnvelope(t, "--dir", dir, "files", "attach", "task", id, txt, doc)
	attached, _ := dataMap(t, env)["attached"].([]any)
	if len(attached) != 2 {
		t.Fatalf("expected two attached files, got %v", env["data"])
	}

	list := mustEnvelope(t, "--dir", dir, "files", "list", "tasks", id)
	files, _ := list["data"].([]any)
	if len(files) != 2 {
		t.Fatalf("expected two files, got %v", files)
	}
	var txtID, docID string
	for _, f := range files {
		m := f.(map[string]any)
		switch m["name"] {
		case "notes.txt":
			txtID = m["id"].(string)
			if m["kind"] != "text" || m["size"].(float64) != 11 {
				t.Fatalf("unexpected text file summary: %v", m)
			}
		case "plan.docx":
			docID = m["id"].(string)
		}
	}

	pv := mustEnvelope(t, "--dir", dir, "files", "preview", "task", id, txtID)
	if dataMap(t, pv)["text"] != "hello world" {
		t.Fatalf("expected text preview, got %v", pv["data"])
	}
	pv = mustEnvelope(t, "--dir", dir, "files", "preview", "task", id, docID)
	if dataMap(t, pv)["message"] != "Office documents require download to view properly." || dataMap(t, pv)["downloadOnly"] != true {
		t.Fatalf("expected office fallback, got %v", pv["data"])
	}

	out := filepath.Join(t.TempDir(), "copy.txt")
	mustEnvelope(t, "--dir", dir, "files", "export", "task", id, txtID, "--out", out)
	b, err := os.ReadFile(out)
	if err != nil || string(b) != "hello world" {
		t.Fatalf("expected exported bytes, got %q (%v)", b, err)
	}

	mustEnvelope(t, "--dir", dir, "files", "delete", "task", id, txtID)
	list = mustEnvelope(t, "--dir", dir, "files", "list", "task", id)
	if files, _ := list["data"].([]any); len(files) != 1 {
		t.Fatalf("expected one file left, got %v", files)
	}
}

func TestFiles_AttachReportsFailures(t *testing.T) {
	dir := isolate(t)
	id := idOf(t, mustEnvelope(t, "--dir", dir, "tasks", "add", "x"))

	good := filepath.Join(t.TempDir(), "ok.md")
	if err := os.WriteFile(good, []byte("# hi"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	stdout, _, err := runCLI(t, []string{"--dir", dir, "files", "attach", "task", id, good, filepath.Join(t.TempDir(), "nope.pdf")})
	if err == nil {
		t.Fatalf("expected error when a file fails")
	}
	var env map[string]any
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, stdout)
	}
	d := dataMap(t, env)
	if a, _ := d["attached"].([]any); len(a) != 1 {
		t.Fatalf("expected the good file attached, got %v", d)
	}
	if f, _ := d["failed"].([]any); len(f) != 1 || f[0].(map[string]any)["name"] != "nope.pdf" {
		t.Fatalf("expected the missing file reported, got %v", d)
	}
}

func TestWeeks_ArchiveListShow(t *testing.T) {
	dir := isolate(t)
	mustEnvelope(t, "--dir", dir, "tasks", "add", "ship it")

	arch := mustEnvelope(t, "--dir", dir, "weeks", "archive", "--week", "12")
	if d := dataMap(t, arch); d["replaced"] != false || d["tasks"].(float64) != 1 {
		t.Fatalf("unexpected archive result: %v", d)
	}
	arch = mustEnvelope(t, "--dir", dir, "weeks", "archive", "--week", "12")
	if dataMap(t, arch)["replaced"] != true {
		t.Fatalf("expected second archive to replace")
	}

	list := mustEnvelope(t, "--dir", dir, "weeks", "list")
	if xs, _ := list["data"].([]any); len(xs) != 1 {
		t.Fatalf("expected one archived week, got %v", xs)
	}

	show := mustEnvelope(t, "--dir", dir, "weeks", "show", "12")
	tasks, _ := dataMap(t, show)["tasks"].([]any)
	if len(tasks) != 1 || tasks[0].(map[string]any)["name"] != "ship it" {
		t.Fatalf("unexpected archived tasks: %v", show["data"])
	}

	empty := mustEnvelope(t, "--dir", dir, "weeks", "show", "3")
	hints, _ := empty["_hints"].([]any)
	if len(hints) != 1 || hints[0] != "No tasks found for Week 3" {
		t.Fatalf("expected empty-week hint, got %v", empty["_hints"])
	}

	// Live tasks survive archiving.
	live := mustEnvelope(t, "--dir", dir, "tasks", "list")
	if xs, _ := live["data"].([]any); len(xs) != 1 {
		t.Fatalf("expected live task kept, got %v", xs)
	}

	if _, _, err := runCLI(t, []string{"--dir", dir, "weeks", "archive", "--week", "99"}); err == nil {
		t.Fatalf("expected out-of-range week to fail")
	}
}

func TestWeeks_Current(t *testing.T) {
	isolate(t)
	env := mustEnvelope(t, "weeks", "current")
	d := dataMap(t, env)
	if int(d["week"].(float64)) <= 0 || !strings.HasPrefix(d["label"].(string), "(") {
		t.Fatalf("unexpected current week: %v", d)
	}
}

func TestData_ExportImportRoundTrip(t *testing.T) {
	src := isolate(t)
	mustEnvelope(t, "--dir", src, "tasks", "add", "carry me")
	mustEnvelope(t, "--dir", src, "initiatives", "add", "and me")

	blob, _, err := runCLI(t, []string{"--dir", src, "data", "export"})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(string(blob), `"archivedWeeks"`) {
		t.Fatalf("expected raw blob, got %s", blob)
	}
	path := filepath.Join(t.TempDir(), "export.json")
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	dst := t.TempDir()
	env := mustEnvelope(t, "--dir", dst, "data", "import", path, "--yes")
	if d := dataMap(t, env); d["tasks"].(float64) != 1 || d["initiatives"].(float64) != 1 {
		t.Fatalf("unexpected import counts: %v", d)
	}
	list := mustEnvelope(t, "--dir", dst, "tasks", "list")
	xs, _ := list["data"].([]any)
	if len(xs) != 1 || xs[0].(map[string]any)["name"] != "carry me" {
		t.Fatalf("expected imported task, got %v", xs)
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("{nope"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := runCLI(t, []string{"--dir", dst, "data", "import", bad, "--yes"}); err == nil {
		t.Fatalf("expected malformed import to fail")
	}
	list = mustEnvelope(t, "--dir", dst, "tasks", "list")
	if xs, _ := list["data"].([]any); len(xs) != 1 {
		t.Fatalf("expected state untouched after failed import, got %v", xs)
	}

	if _, _, err := runCLI(t, []string{"--dir", dst, "data", "import", "-"}); err == nil {
		t.Fatalf("expected stdin import without --yes to fail")
	}
}

func TestRender_PrintsMarkup(t *testing.T) {
	dir := isolate(t)

	stdout, _, err := runCLI(t, []string{"--dir", dir, "render", "tasks"})
	if err != nil {
		t.Fatalf("render tasks: %v", err)
	}
	if !strings.Contains(string(stdout), "No tasks yet") {
		t.Fatalf("expected empty state markup, got %s", stdout)
	}

	mustEnvelope(t, "--dir", dir, "tasks", "add", "<b>escaped</b>")
	stdout, _, err = runCLI(t, []string{"--dir", dir, "render", "page", "--tab", "tasks"})
	if err != nil {
		t.Fatalf("render page: %v", err)
	}
	if !strings.Contains(string(stdout), "&lt;b&gt;escaped&lt;/b&gt;") {
		t.Fatalf("expected escaped task name, got %s", stdout)
	}
	want := `<span id="week-number">` + strconv.Itoa(week.Number(time.Now())) + `</span>`
	if !strings.Contains(string(stdout), want) {
		t.Fatalf("expected %s in page", want)
	}
}

func TestFormat_YAMLAndConfigDefault(t *testing.T) {
	dir := isolate(t)
	mustEnvelope(t, "--dir", dir, "tasks", "add", "yaml me")

	stdout, _, err := runCLI(t, []string{"--dir", dir, "--format", "yaml", "tasks", "list"})
	if err != nil {
		t.Fatalf("list yaml: %v", err)
	}
	var env map[string][]map[string]any
	if err := yaml.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("yaml: %v\n%s", err, stdout)
	}
	if len(env["data"]) != 1 || env["data"][0]["name"] != "yaml me" {
		t.Fatalf("unexpected yaml output: %s", stdout)
	}

	mustEnvelope(t, "config", "set", "format", "yaml")
	stdout, _, err = runCLI(t, []string{"--dir", dir, "tasks", "list"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if strings.HasPrefix(strings.TrimSpace(string(stdout)), "{") {
		t.Fatalf("expected config default format yaml, got %s", stdout)
	}
}

func TestConfig_DirUsedWhenNoFlag(t *testing.T) {
	dir := isolate(t)
	stdout, _, err := runCLI(t, []string{"config", "set", "dir", dir})
	if err != nil {
		t.Fatalf("config set: %v\n%s", err, stdout)
	}
	mustEnvelope(t, "tasks", "add", "in config dir")

	db, err := (store.Store{Dir: dir}).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(db.Tasks) != 1 || db.Tasks[0].Name != "in config dir" {
		t.Fatalf("expected task in configured dir, got %+v", db.Tasks)
	}

	if _, _, err := runCLI(t, []string{"config", "set", "colour", "red"}); err == nil {
		t.Fatalf("expected unknown key to fail")
	}
}

func TestData_Doctor(t *testing.T) {
	dir := isolate(t)
	mustEnvelope(t, "--dir", dir, "tasks", "add", "fine")

	env := mustEnvelope(t, "--dir", dir, "data", "doctor")
	issues, _ := dataMap(t, env)["issues"].([]any)
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues)
	}

	if err := (store.Store{Dir: dir}).PutRawState(`{"tasks":[{"id":1,"name":"x","status":"done","files":[{"id":"f","name":"a","data":"nope"}]}]}`); err != nil {
		t.Fatalf("put: %v", err)
	}
	stdout, _, err := runCLI(t, []string{"--dir", dir, "data", "doctor"})
	if err == nil {
		t.Fatalf("expected doctor to fail on a broken file")
	}
	if !strings.Contains(string(stdout), "file_invalid_data") {
		t.Fatalf("expected file_invalid_data issue, got %s", stdout)
	}
}

func TestWeeks_PublishAndRenderMarkdown(t *testing.T) {
	dir := isolate(t)
	id := idOf(t, mustEnvelope(t, "--dir", dir, "tasks", "add", "report me"))
	mustEnvelope(t, "--dir", dir, "tasks", "set", id, "--status", "done", "--notes-md", "all good")
	mustEnvelope(t, "--dir", dir, "weeks", "archive", "--week", "5")

	stdout, _, err := runCLI(t, []string{"--dir", dir, "render", "markdown"})
	if err != nil {
		t.Fatalf("render markdown: %v", err)
	}
	if !strings.Contains(string(stdout), "- [x] report me\n  all good") {
		t.Fatalf("unexpected markdown:\n%s", stdout)
	}

	stdout, _, err = runCLI(t, []string{"--dir", dir, "render", "markdown", "--week", "5"})
	if err != nil || !strings.Contains(string(stdout), "# Week 5") {
		t.Fatalf("archived markdown: %v\n%s", err, stdout)
	}

	to := t.TempDir()
	env := mustEnvelope(t, "--dir", dir, "weeks", "publish", "--to", to, "--archived")
	written, _ := dataMap(t, env)["written"].([]any)
	if len(written) != 2 {
		t.Fatalf("expected board and archive reports, got %v", written)
	}
	if _, err := os.Stat(filepath.Join(to, "archive", "week-05.md")); err != nil {
		t.Fatalf("stat archived report: %v", err)
	}
}

func TestDocs(t *testing.T) {
	isolate(t)
	env := mustEnvelope(t, "docs")
	topics, _ := dataMap(t, env)["topics"].([]any)
	if len(topics) == 0 {
		t.Fatalf("expected topics, got %v", env["data"])
	}

	stdout, _, err := runCLI(t, []string{"docs", "weeks", "--raw"})
	if err != nil || !strings.HasPrefix(string(stdout), "# Weeks") {
		t.Fatalf("docs --raw: %v\n%s", err, stdout)
	}

	t.Setenv("WEEKBOARD_MD_STYLE", "ascii")
	stdout, _, err = runCLI(t, []string{"docs", "weeks", "--term"})
	if err != nil || !strings.Contains(string(stdout), "Weeks") {
		t.Fatalf("docs --term: %v\n%s", err, stdout)
	}

	if _, _, err := runCLI(t, []string{"docs", "nope"}); err == nil {
		t.Fatalf("expected unknown topic to fail")
	}
}

func TestTasks_CycleAndRename(t *testing.T) {
	dir := isolate(t)
	id := idOf(t, mustEnvelope(t, "--dir", dir, "tasks", "add", "cycle me"))

	env := mustEnvelope(t, "--dir", dir, "tasks", "cycle", id)
	if dataMap(t, env)["status"] != "in-progress" {
		t.Fatalf("expected in-progress, got %v", env["data"])
	}
	env = mustEnvelope(t, "--dir", dir, "tasks", "cycle", id, "--back", "--pretty")
	env = mustEnvelope(t, "--dir", dir, "tasks", "cycle", id, "--back")
	if dataMap(t, env)["status"] != "done" {
		t.Fatalf("expected wrap back to done, got %v", env["data"])
	}

	env = mustEnvelope(t, "--dir", dir, "tasks", "rename", id, "renamed", "task")
	if dataMap(t, env)["name"] != "renamed task" {
		t.Fatalf("unexpected rename: %v", env["data"])
	}
	if _, _, err := runCLI(t, []string{"--dir", dir, "initiatives", "cycle", id}); err == nil {
		t.Fatalf("expected a task id to be unknown as an initiative")
	}
}
