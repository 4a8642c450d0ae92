package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"weekboard/internal/model"
	"weekboard/internal/mutate"
	"weekboard/internal/render"
	"weekboard/internal/store"
	"weekboard/internal/week"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type boardTab int

const (
	tabTasks boardTab = iota
	tabInitiatives
	tabArchives
)

const tabCount = 3

var tabKeys = [tabCount]string{"tasks", "initiatives", "archives"}

func (t boardTab) key() string {
	return tabKeys[t]
}

func parseTab(s string) (boardTab, bool) {
	for i, k := range tabKeys {
		if k == s {
			return boardTab(i), true
		}
	}
	return tabTasks, false
}

func (t boardTab) title() string {
	switch t {
	case tabInitiatives:
		return "Initiatives"
	case tabArchives:
		return "Archives"
	default:
		return "Tasks"
	}
}

type modalKind int

const (
	modalNone modalKind = iota
	modalAdd
	modalRename
	modalNotes
	modalConfirmDelete
	modalConfirmDeleteFile
	modalPickFile
)

type reloadTickMsg struct{}

type flashClearMsg struct {
	seq int
}

type appModel struct {
	dir                string
	store              store.Store
	db                 *store.DB
	log                *slog.Logger
	now                func() time.Time
	maxAttachmentBytes int64

	width  int
	height int
	tab    boardTab

	tasksList       list.Model
	initiativesList list.Model
	weeksList       list.Model
	// fileIndex is the highlighted file in the detail pane.
	fileIndex int

	modal        modalKind
	modalFor     mutate.EntityRef
	modalName    string
	modalFileID  model.FileID
	confirmFocus confirmModalFocus
	input        textinput.Model
	textarea     textarea.Model
	notesPrefill string
	picker       filepicker.Model
	pickerDir    string

	flash       string
	flashSeq    int
	lastModTime time.Time
}

func newAppModel(dir string, db *store.DB, opts Options) appModel {
	if db == nil {
		db = store.NewDB()
	}
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	m := appModel{
		dir:                dir,
		store:              store.Store{Dir: dir, Log: log},
		db:                 db,
		log:                log,
		now:                now,
		maxAttachmentBytes: opts.MaxAttachmentBytes,
		width:              100,
		height:             30,
	}
	m.tasksList = newList("Tasks", nil)
	m.initiativesList = newList("Initiatives", nil)
	m.weeksList = newList("Archived weeks", nil)
	m.weeksList.SetFilteringEnabled(false)

	m.input = textinput.New()
	m.input.CharLimit = 200
	m.textarea = textarea.New()
	m.textarea.ShowLineNumbers = false
	// Notes are edited whole; a limit would truncate them on save.
	m.textarea.CharLimit = 0
	m.textarea.MaxHeight = 0

	m.refreshLists()
	m.restoreState()
	m.resizeLists()
	m.lastModTime = m.store.ModTime()
	return m
}

// restoreState reselects the tab and rows saved on the last quit.
func (m *appModel) restoreState() {
	st, err := m.store.LoadTUIState()
	if err != nil {
		m.log.Debug("tui state unavailable", "err", err)
		return
	}
	if tab, ok := parseTab(st.Tab); ok {
		m.tab = tab
	}
	selectByID(&m.tasksList, st.SelectedTaskID)
	selectByID(&m.initiativesList, st.SelectedInitiativeID)
	selectByID(&m.weeksList, int64(st.SelectedWeek))
}

func (m appModel) saveState() {
	st := &store.TUIState{
		Tab:                  m.tab.key(),
		SelectedTaskID:       selectedID(m.tasksList),
		SelectedInitiativeID: selectedID(m.initiativesList),
		SelectedWeek:         int(selectedID(m.weeksList)),
	}
	if err := m.store.SaveTUIState(st); err != nil {
		m.log.Warn("save tui state failed", "err", err)
	}
}

func (m appModel) quit() (tea.Model, tea.Cmd) {
	m.saveState()
	return m, tea.Quit
}

func (m appModel) Init() tea.Cmd {
	return tickReload()
}

func tickReload() tea.Cmd {
	return tea.Tick(750*time.Millisecond, func(time.Time) tea.Msg { return reloadTickMsg{} })
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case reloadTickMsg:
		// Another process (the web server, a CLI call) may have written the store.
		if m.modal == modalNone && m.storeChanged() {
			if err := m.reloadFromDisk(); err != nil {
				return m, tea.Batch(m.setFlash("Reload failed: "+err.Error()), tickReload())
			}
		}
		return m, tickReload()

	case flashClearMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
		}
		return m, nil

	case uploadDoneMsg:
		return m, m.finishUpload(msg)

	case fileOpenDoneMsg:
		if msg.err != nil {
			return m, m.setFlash("Open failed: " + msg.err.Error())
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		if m.modal != modalNone {
			return m.updateModal(msg)
		}
		return m.updateBoard(msg)
	}

	// The file picker reads directories asynchronously.
	if m.modal == modalPickFile {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m appModel) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	l := m.activeList()
	if l.FilterState() == list.Filtering {
		var cmd tea.Cmd
		*l, cmd = l.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m.quit()
	case "tab", "right", "l":
		m.switchTab((m.tab + 1) % tabCount)
		return m, nil
	case "shift+tab", "left", "h":
		m.switchTab((m.tab + tabCount - 1) % tabCount)
		return m, nil
	case "1":
		m.switchTab(tabTasks)
		return m, nil
	case "2":
		m.switchTab(tabInitiatives)
		return m, nil
	case "3":
		m.switchTab(tabArchives)
		return m, nil
	case "r":
		if err := m.reloadFromDisk(); err != nil {
			return m, m.setFlash("Reload failed: " + err.Error())
		}
		return m, m.setFlash("Reloaded")
	case "w":
		return m, m.archiveCurrentWeek()
	}

	if m.tab != tabArchives {
		switch msg.String() {
		case "a":
			m.openInput(modalAdd, mutate.EntityRef{Kind: m.activeKind()}, "")
			return m, textinput.Blink
		case "e":
			ref, name, ok := m.selectedRef()
			if !ok {
				return m, nil
			}
			m.openInput(modalRename, ref, name)
			return m, textinput.Blink
		case "s", " ":
			return m, m.cycleStatus(1)
		case "S":
			return m, m.cycleStatus(-1)
		case "n":
			return m, m.openNotes()
		case "f":
			return m, m.openFilePicker()
		case "d", "delete":
			ref, name, ok := m.selectedRef()
			if !ok {
				return m, nil
			}
			m.modal = modalConfirmDelete
			m.modalFor = ref
			m.modalName = name
			m.confirmFocus = confirmFocusCancel
			return m, nil
		case "]":
			m.moveFileCursor(1)
			return m, nil
		case "[":
			m.moveFileCursor(-1)
			return m, nil
		case "o":
			f, ok := m.selectedFile()
			if !ok {
				return m, nil
			}
			return m, openFile(f)
		case "x":
			f, ok := m.selectedFile()
			if !ok {
				return m, nil
			}
			ref, _, _ := m.selectedRef()
			m.modal = modalConfirmDeleteFile
			m.modalFor = ref
			m.modalName = f.Name
			m.modalFileID = f.ID
			m.confirmFocus = confirmFocusCancel
			return m, nil
		}
	}

	before := selectedID(*l)
	var cmd tea.Cmd
	*l, cmd = l.Update(msg)
	if selectedID(*l) != before {
		m.fileIndex = 0
	}
	return m, cmd
}

func (m appModel) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalAdd, modalRename:
		switch msg.String() {
		case "esc", "ctrl+g":
			m.closeModal()
			return m, nil
		case "enter":
			cmd := m.submitInput()
			m.closeModal()
			return m, cmd
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case modalNotes:
		switch msg.String() {
		case "esc", "ctrl+g":
			m.closeModal()
			return m, nil
		case "ctrl+s":
			cmd := m.saveNotes(m.textarea.Value())
			m.closeModal()
			return m, cmd
		}
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd

	case modalConfirmDelete, modalConfirmDeleteFile:
		switch msg.String() {
		case "esc", "ctrl+g", "n":
			m.closeModal()
			return m, nil
		case "tab", "shift+tab", "left", "right", "h", "l":
			m.confirmFocus = m.confirmFocus.toggle()
			return m, nil
		case "y":
			m.confirmFocus = confirmFocusConfirm
			fallthrough
		case "enter":
			var cmd tea.Cmd
			if m.confirmFocus == confirmFocusConfirm {
				if m.modal == modalConfirmDelete {
					cmd = m.deleteEntity(m.modalFor)
				} else {
					cmd = m.deleteFile(m.modalFor, m.modalFileID)
				}
			}
			m.closeModal()
			return m, cmd
		}
		return m, nil

	case modalPickFile:
		if msg.String() == "esc" || msg.String() == "ctrl+g" {
			m.closeModal()
			return m, nil
		}
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		if ok, path := m.picker.DidSelectFile(msg); ok {
			m.pickerDir = m.picker.CurrentDirectory
			ref := m.modalFor
			m.closeModal()
			return m, readUploadCmd(ref, path, m.maxAttachmentBytes)
		}
		return m, cmd
	}
	return m, nil
}

func (m *appModel) closeModal() {
	m.modal = modalNone
	m.modalFor = mutate.EntityRef{}
	m.modalName = ""
	m.modalFileID = ""
	m.notesPrefill = ""
	m.input.Blur()
	m.textarea.Blur()
}

func (m *appModel) openInput(kind modalKind, ref mutate.EntityRef, value string) {
	m.modal = kind
	m.modalFor = ref
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Width = modalBodyWidth(m.width) - 2
	if kind == modalAdd {
		m.input.Placeholder = "Enter " + string(ref.Kind) + " name..."
	} else {
		m.input.Placeholder = ""
	}
	m.input.Focus()
}

func (m *appModel) switchTab(t boardTab) {
	m.tab = t
	m.fileIndex = 0
}

func (m *appModel) activeList() *list.Model {
	switch m.tab {
	case tabInitiatives:
		return &m.initiativesList
	case tabArchives:
		return &m.weeksList
	default:
		return &m.tasksList
	}
}

func (m appModel) activeKind() mutate.EntityKind {
	if m.tab == tabInitiatives {
		return mutate.KindInitiative
	}
	return mutate.KindTask
}

func (m appModel) selectedRef() (mutate.EntityRef, string, bool) {
	switch m.tab {
	case tabTasks:
		if it, ok := m.tasksList.SelectedItem().(taskItem); ok {
			return mutate.EntityRef{Kind: mutate.KindTask, ID: it.task.ID}, it.task.Name, true
		}
	case tabInitiatives:
		if it, ok := m.initiativesList.SelectedItem().(initiativeItem); ok {
			return mutate.EntityRef{Kind: mutate.KindInitiative, ID: it.initiative.ID}, it.initiative.Name, true
		}
	}
	return mutate.EntityRef{}, "", false
}

func (m appModel) selectedFiles() []model.File {
	ref, _, ok := m.selectedRef()
	if !ok {
		return nil
	}
	files, err := mutate.ListFiles(m.db, ref)
	if err != nil {
		return nil
	}
	return files
}

func (m appModel) selectedFile() (model.File, bool) {
	files := m.selectedFiles()
	if len(files) == 0 {
		return model.File{}, false
	}
	i := min(max(m.fileIndex, 0), len(files)-1)
	return files[i], true
}

func (m *appModel) moveFileCursor(step int) {
	n := len(m.selectedFiles())
	if n == 0 {
		m.fileIndex = 0
		return
	}
	m.fileIndex = (m.fileIndex + step + n) % n
}

func selectedID(l list.Model) int64 {
	switch it := l.SelectedItem().(type) {
	case taskItem:
		return it.task.ID
	case initiativeItem:
		return it.initiative.ID
	case weekItem:
		return int64(it.week)
	}
	return 0
}

// apply runs one mutation against the in-memory state, then saves the whole
// state and appends the event. A failed save reloads from disk so the board
// never shows state that was not persisted.
func (m *appModel) apply(typ, entityID string, fn func(db *store.DB) (bool, map[string]any, error)) error {
	changed, payload, err := fn(m.db)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	if err := m.store.Save(m.db); err != nil {
		if db, lerr := m.store.Load(); lerr == nil {
			m.db = db
		}
		m.refreshLists()
		return err
	}
	if entityID == "" {
		if v, ok := payload["id"]; ok {
			entityID = fmt.Sprint(v)
		}
	}
	if err := m.store.AppendEvent(typ, entityID, payload); err != nil {
		m.log.Warn("append event failed", "type", typ, "entity", entityID, "err", err)
	}
	m.lastModTime = m.store.ModTime()
	m.refreshLists()
	return nil
}

func (m *appModel) submitInput() tea.Cmd {
	value := m.input.Value()
	ref := m.modalFor
	var newID int64
	var err error
	switch m.modal {
	case modalAdd:
		err = m.apply(string(ref.Kind)+".add", "", func(db *store.DB) (bool, map[string]any, error) {
			if ref.Kind == mutate.KindInitiative {
				res, err := mutate.AddInitiative(db, value, m.now())
				if res.Initiative != nil {
					newID = res.Initiative.ID
				}
				return res.Changed, res.EventPayload, err
			}
			res, err := mutate.AddTask(db, value, m.now())
			if res.Task != nil {
				newID = res.Task.ID
			}
			return res.Changed, res.EventPayload, err
		})
	case modalRename:
		err = m.apply(string(ref.Kind)+".rename", idString(ref.ID), func(db *store.DB) (bool, map[string]any, error) {
			if ref.Kind == mutate.KindInitiative {
				res, err := mutate.RenameInitiative(db, ref.ID, value)
				return res.Changed, res.EventPayload, err
			}
			res, err := mutate.RenameTask(db, ref.ID, value)
			return res.Changed, res.EventPayload, err
		})
	}
	if err != nil {
		return m.failed(ref, err)
	}
	if newID != 0 {
		selectByID(m.activeList(), newID)
	}
	return nil
}

func (m *appModel) cycleStatus(step int) tea.Cmd {
	ref, _, ok := m.selectedRef()
	if !ok {
		return nil
	}
	err := m.apply(string(ref.Kind)+".set", idString(ref.ID), func(db *store.DB) (bool, map[string]any, error) {
		res, err := mutate.CycleStatus(db, ref, step)
		return res.Changed, res.EventPayload, err
	})
	if err != nil {
		return m.failed(ref, err)
	}
	return nil
}

func (m *appModel) openNotes() tea.Cmd {
	ref, name, ok := m.selectedRef()
	if !ok {
		return nil
	}
	var current string
	if ref.Kind == mutate.KindInitiative {
		if in, ok := m.db.FindInitiative(ref.ID); ok {
			current = in.Content
		}
	} else if t, ok := m.db.FindTask(ref.ID); ok {
		current = t.Notes
	}
	m.modal = modalNotes
	m.modalFor = ref
	m.modalName = name
	m.textarea.SetWidth(modalBodyWidth(m.width))
	m.textarea.SetHeight(max(m.height/3, 5))
	m.notesPrefill = render.HTMLToMarkdown(current)
	m.textarea.SetValue(m.notesPrefill)
	return m.textarea.Focus()
}

// saveNotes stores text as the entity's rich text. Text is read as markdown.
// Unedited text is not written back, so the stored HTML stays as it was.
func (m *appModel) saveNotes(text string) tea.Cmd {
	ref := m.modalFor
	if text == m.notesPrefill {
		return nil
	}
	rich := ""
	if strings.TrimSpace(text) != "" {
		rich = strings.TrimSpace(render.MarkdownToHTML(text))
	}
	err := m.apply(string(ref.Kind)+".set", idString(ref.ID), func(db *store.DB) (bool, map[string]any, error) {
		if ref.Kind == mutate.KindInitiative {
			in, ok := db.FindInitiative(ref.ID)
			if !ok {
				return false, nil, mutate.NotFoundError{Kind: string(ref.Kind), ID: idString(ref.ID)}
			}
			res, err := mutate.SetInitiativeDetail(db, ref.ID, in.Status, rich)
			return res.Changed, res.EventPayload, err
		}
		t, ok := db.FindTask(ref.ID)
		if !ok {
			return false, nil, mutate.NotFoundError{Kind: string(ref.Kind), ID: idString(ref.ID)}
		}
		res, err := mutate.SetTaskDetail(db, ref.ID, t.Status, rich)
		return res.Changed, res.EventPayload, err
	})
	if err != nil {
		return m.failed(ref, err)
	}
	return nil
}

func (m *appModel) deleteEntity(ref mutate.EntityRef) tea.Cmd {
	err := m.apply(string(ref.Kind)+".delete", idString(ref.ID), func(db *store.DB) (bool, map[string]any, error) {
		if ref.Kind == mutate.KindInitiative {
			res, err := mutate.DeleteInitiative(db, ref.ID)
			return res.Changed, res.EventPayload, err
		}
		res, err := mutate.DeleteTask(db, ref.ID)
		return res.Changed, res.EventPayload, err
	})
	if err != nil {
		return m.failed(ref, err)
	}
	m.fileIndex = 0
	return nil
}

func (m *appModel) deleteFile(ref mutate.EntityRef, fileID model.FileID) tea.Cmd {
	err := m.apply("file.delete", idString(ref.ID), func(db *store.DB) (bool, map[string]any, error) {
		res, err := mutate.DeleteFile(db, ref, fileID)
		return res.Changed, res.EventPayload, err
	})
	if err != nil {
		return m.failed(ref, err)
	}
	m.moveFileCursor(0)
	return nil
}

func (m *appModel) archiveCurrentWeek() tea.Cmd {
	now := m.now()
	wk := week.Number(now)
	var replaced bool
	err := m.apply("week.archive", fmt.Sprint(wk), func(db *store.DB) (bool, map[string]any, error) {
		res, err := mutate.ArchiveWeek(db, wk, now)
		replaced = res.Replaced
		return res.Changed, res.EventPayload, err
	})
	if err != nil {
		return m.setFlash("Archive failed: " + err.Error())
	}
	selectByID(&m.weeksList, int64(wk))
	if replaced {
		return m.setFlash(fmt.Sprintf("Week %d archive replaced", wk))
	}
	return m.setFlash(fmt.Sprintf("Week %d archived", wk))
}

// failed reports a mutation error. A missing entity was removed elsewhere,
// so it is logged and the board simply refreshes.
func (m *appModel) failed(ref mutate.EntityRef, err error) tea.Cmd {
	if mutate.IsNotFound(err) {
		m.log.Warn("entity lookup failed", "entity", ref.String(), "err", err)
		m.refreshLists()
		return nil
	}
	return m.setFlash(err.Error())
}

func (m *appModel) setFlash(s string) tea.Cmd {
	m.flashSeq++
	m.flash = s
	seq := m.flashSeq
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg { return flashClearMsg{seq: seq} })
}

func (m *appModel) storeChanged() bool {
	return m.store.ModTime().After(m.lastModTime)
}

func (m *appModel) reloadFromDisk() error {
	db, err := m.store.Load()
	if err != nil {
		return err
	}
	m.db = db
	m.lastModTime = m.store.ModTime()
	m.refreshLists()
	return nil
}

func (m *appModel) refreshLists() {
	taskSel := selectedID(m.tasksList)
	items := make([]list.Item, 0, len(m.db.Tasks))
	for _, t := range m.db.Tasks {
		items = append(items, taskItem{task: t})
	}
	m.tasksList.SetItems(items)
	selectByID(&m.tasksList, taskSel)
	clampSelection(&m.tasksList)

	initSel := selectedID(m.initiativesList)
	items = make([]list.Item, 0, len(m.db.Initiatives))
	for _, in := range m.db.Initiatives {
		items = append(items, initiativeItem{initiative: in})
	}
	m.initiativesList.SetItems(items)
	selectByID(&m.initiativesList, initSel)
	clampSelection(&m.initiativesList)

	weekSel := selectedID(m.weeksList)
	weeks := m.db.ArchivedWeekNumbers()
	items = make([]list.Item, 0, len(weeks))
	for _, wk := range weeks {
		items = append(items, weekItem{week: wk, tasks: len(m.db.ArchivedWeeks[wk].Tasks)})
	}
	m.weeksList.SetItems(items)
	selectByID(&m.weeksList, weekSel)
	clampSelection(&m.weeksList)
}

func clampSelection(l *list.Model) {
	if n := len(l.Items()); n > 0 && l.Index() >= n {
		l.Select(n - 1)
	}
}

func (m *appModel) resizeLists() {
	h := max(m.height-6, 8)
	w := max(m.listWidth(), 20)
	m.tasksList.SetSize(w, h)
	m.initiativesList.SetSize(w, h)
	m.weeksList.SetSize(w, h)
}

func (m appModel) listWidth() int {
	return m.width / 2
}

func (m appModel) View() string {
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Bold(true).Render("Weekboard  "+week.Header(m.now())),
		"   ",
		m.renderTabs(),
	)

	body := m.renderBody()
	if m.modal != modalNone {
		body = lipgloss.Place(max(m.width, 40), max(m.height-4, 10), lipgloss.Center, lipgloss.Center, m.renderModal())
	}

	footer := styleMuted().Render(m.footerHelp())
	if m.flash != "" {
		footer = styleFlash().Render(m.flash) + "  " + footer
	}
	return strings.Join([]string{header, body, footer}, "\n\n")
}

func (m appModel) renderTabs() string {
	var parts []string
	for t := boardTab(0); t < tabCount; t++ {
		parts = append(parts, styleTab(t == m.tab).Render(fmt.Sprintf("%d %s", int(t)+1, t.title())))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m appModel) renderBody() string {
	h := max(m.height-6, 8)
	leftW := max(m.listWidth(), 20)
	rightW := max(m.width-leftW-2, 20)

	var left, right string
	switch m.tab {
	case tabTasks:
		left = m.tasksList.View()
		if len(m.db.Tasks) == 0 {
			left = emptyState(render.EmptyTasks, "Press a to add a task.")
		}
		if it, ok := m.tasksList.SelectedItem().(taskItem); ok {
			right = renderTaskDetail(it.task, m.fileIndex, rightW)
		}
	case tabInitiatives:
		left = m.initiativesList.View()
		if len(m.db.Initiatives) == 0 {
			left = emptyState(render.EmptyInitiatives, "Press a to add an initiative.")
		}
		if it, ok := m.initiativesList.SelectedItem().(initiativeItem); ok {
			right = renderInitiativeDetail(it.initiative, m.fileIndex, rightW)
		}
	case tabArchives:
		left = m.weeksList.View()
		if len(m.weeksList.Items()) == 0 {
			left = emptyState("No archived weeks", "Press w to archive this week.")
		}
		if it, ok := m.weeksList.SelectedItem().(weekItem); ok {
			right = renderArchivedWeek(m.db, it.week, rightW)
		} else {
			right = styleMuted().Render(render.EmptyArchiveSelect)
		}
	}
	left = lipgloss.NewStyle().Width(leftW).Height(h).Render(left)
	right = lipgloss.NewStyle().Width(rightW).Height(h).PaddingLeft(2).Render(right)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func emptyState(title, hint string) string {
	return lipgloss.NewStyle().Bold(true).Render(title) + "\n" + styleMuted().Render(hint)
}

func (m appModel) renderModal() string {
	switch m.modal {
	case modalAdd:
		return renderInputModal(m.width, "Add "+string(m.modalFor.Kind), m.input.View())
	case modalRename:
		return renderInputModal(m.width, "Rename "+string(m.modalFor.Kind), m.input.View())
	case modalNotes:
		title := "Notes: " + m.modalName
		if m.modalFor.Kind == mutate.KindInitiative {
			title = "Content: " + m.modalName
		}
		help := styleMuted().Render("markdown   ctrl+s: save   esc: cancel")
		return renderModalBox(m.width, title, m.textarea.View()+"\n\n"+help)
	case modalConfirmDelete:
		body := render.ConfirmDelete(string(m.modalFor.Kind)) + "\n\n" + m.modalName
		return renderConfirmModal(m.width, "Delete "+string(m.modalFor.Kind), body, "Delete", "Cancel", m.confirmFocus)
	case modalConfirmDeleteFile:
		return renderConfirmModal(m.width, "Delete file", "Remove "+m.modalName+"?", "Delete", "Cancel", m.confirmFocus)
	case modalPickFile:
		help := styleMuted().Render("enter: attach   esc: cancel")
		return renderModalBox(m.width, "Attach file", m.picker.CurrentDirectory+"\n\n"+m.picker.View()+"\n"+help)
	}
	return ""
}

func (m appModel) footerHelp() string {
	switch m.tab {
	case tabArchives:
		return "w: archive this week  tab: switch  r: reload  q: quit"
	default:
		return "a: add  e: rename  s: status  n: notes  f: attach  [/]: file  o: open  x: remove file  d: delete  w: archive week  /: filter  q: quit"
	}
}
