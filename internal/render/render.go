// Package render turns store state into HTML markup. Every function here is
// pure: same state in, same markup out.
package render

import (
	"embed"
	"html/template"
	"io"
	"strings"
	"time"

	"weekboard/internal/model"
	"weekboard/internal/preview"
	"weekboard/internal/store"
	"weekboard/internal/week"

	"github.com/microcosm-cc/bluemonday"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	TabTasks       = "tasks"
	TabInitiatives = "initiatives"
	TabArchives    = "archives"
)

type Renderer struct {
	tmpl   *template.Template
	policy *bluemonday.Policy
}

func New() (*Renderer, error) {
	r := &Renderer{policy: bluemonday.UGCPolicy()}
	tmpl, err := template.New("base").Funcs(template.FuncMap{
		"trim":       strings.TrimSpace,
		"safe":       r.SafeHTML,
		"taskLabel":  TaskStatusLabel,
		"glyph":      InitiativeGlyph,
		"fileIcon":   func(f model.File) string { return preview.Icon(f.Type, f.Name) },
		"emptyWeek":  EmptyArchiveWeek,
		"confirmMsg": ConfirmDelete,
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	r.tmpl = tmpl
	return r, nil
}

// SafeHTML sanitizes user rich text before it is trusted as markup.
func (r *Renderer) SafeHTML(s string) template.HTML {
	return template.HTML(r.policy.Sanitize(s))
}

// Sanitize is SafeHTML as a plain string.
func (r *Renderer) Sanitize(s string) string {
	return r.policy.Sanitize(s)
}

type taskListVM struct {
	Tasks []model.Task
}

type initiativeListVM struct {
	Initiatives []model.Initiative
}

type fileListVM struct {
	Kind  string
	ID    int64
	Files []model.File
}

type archiveVM struct {
	Weeks    []int
	Selected int
	Tasks    []model.Task
	Found    bool
}

type taskDetailVM struct {
	Task     model.Task
	Statuses []model.TaskStatus
	Files    fileListVM
}

type initiativeDetailVM struct {
	Initiative model.Initiative
	Statuses   []model.InitiativeStatus
	Files      fileListVM
}

type previewVM struct {
	Kind string
	ID   int64
	P    preview.Preview
}

type confirmVM struct {
	Kind string
	ID   int64
	Name string
}

// PageData is everything the full page needs besides the store.
type PageData struct {
	Tab          string
	Now          time.Time
	SelectedWeek int
	// Modal is pre-rendered markup shown over the page (detail, preview, confirm).
	Modal template.HTML
	// Flash is a one-line notice, for example an upload failure.
	Flash string
}

type pageVM struct {
	Tab         string
	WeekNumber  int
	WeekLabel   string
	Tasks       taskListVM
	Initiatives initiativeListVM
	Archive     archiveVM
	Modal       template.HTML
	Flash       string
}

func (r *Renderer) Tasks(w io.Writer, tasks []model.Task) error {
	return r.tmpl.ExecuteTemplate(w, "task_list", taskListVM{Tasks: tasks})
}

func (r *Renderer) Initiatives(w io.Writer, initiatives []model.Initiative) error {
	return r.tmpl.ExecuteTemplate(w, "initiative_list", initiativeListVM{Initiatives: initiatives})
}

// Files renders the file list of one entity. kind is "tasks" or "initiatives".
func (r *Renderer) Files(w io.Writer, kind string, id int64, files []model.File) error {
	return r.tmpl.ExecuteTemplate(w, "file_list", fileListVM{Kind: kind, ID: id, Files: files})
}

// Archive renders the archived-week view. week <= 0 means nothing is selected.
func (r *Renderer) Archive(w io.Writer, db *store.DB, selected int) error {
	return r.tmpl.ExecuteTemplate(w, "archive_view", archiveViewModel(db, selected))
}

func (r *Renderer) TaskDetail(w io.Writer, t model.Task) error {
	return r.tmpl.ExecuteTemplate(w, "task_detail", taskDetailVM{
		Task:     t,
		Statuses: model.TaskStatuses(),
		Files:    fileListVM{Kind: TabTasks, ID: t.ID, Files: t.Files},
	})
}

func (r *Renderer) InitiativeDetail(w io.Writer, in model.Initiative) error {
	return r.tmpl.ExecuteTemplate(w, "initiative_detail", initiativeDetailVM{
		Initiative: in,
		Statuses:   model.InitiativeStatuses(),
		Files:      fileListVM{Kind: TabInitiatives, ID: in.ID, Files: in.Files},
	})
}

func (r *Renderer) Preview(w io.Writer, kind string, id int64, p preview.Preview) error {
	return r.tmpl.ExecuteTemplate(w, "file_preview", previewVM{Kind: kind, ID: id, P: p})
}

// ConfirmDelete renders the delete confirmation for one entity.
func (r *Renderer) ConfirmDelete(w io.Writer, kind string, id int64, name string) error {
	return r.tmpl.ExecuteTemplate(w, "confirm_delete", confirmVM{Kind: kind, ID: id, Name: name})
}

func (r *Renderer) Page(w io.Writer, db *store.DB, pd PageData) error {
	if db == nil {
		db = store.NewDB()
	}
	tab := pd.Tab
	switch tab {
	case TabTasks, TabInitiatives, TabArchives:
	default:
		tab = TabTasks
	}
	now := pd.Now
	if now.IsZero() {
		now = time.Now()
	}
	return r.tmpl.ExecuteTemplate(w, "page", pageVM{
		Tab:         tab,
		WeekNumber:  week.Number(now),
		WeekLabel:   week.Label(now),
		Tasks:       taskListVM{Tasks: db.Tasks},
		Initiatives: initiativeListVM{Initiatives: db.Initiatives},
		Archive:     archiveViewModel(db, pd.SelectedWeek),
		Modal:       pd.Modal,
		Flash:       pd.Flash,
	})
}

// String runs one render call into a string.
func String(fn func(io.Writer) error) (string, error) {
	var b strings.Builder
	if err := fn(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func archiveViewModel(db *store.DB, selected int) archiveVM {
	vm := archiveVM{Selected: selected}
	if db == nil {
		return vm
	}
	vm.Weeks = db.ArchivedWeekNumbers()
	if selected <= 0 {
		return vm
	}
	if aw, ok := db.ArchivedWeeks[selected]; ok && len(aw.Tasks) > 0 {
		vm.Tasks = aw.Tasks
		vm.Found = true
	}
	return vm
}
