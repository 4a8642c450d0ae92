package tui

import (
	"fmt"
	"strconv"
	"strings"

	"weekboard/internal/model"
	"weekboard/internal/preview"
	"weekboard/internal/render"
	"weekboard/internal/store"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}

func renderTaskDetail(t model.Task, fileIndex, width int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Width(width).Render(t.Name))
	b.WriteString("\n")
	b.WriteString(statusBadge(t.Status))
	b.WriteString("\n\n")
	b.WriteString(renderNotes("Notes", t.Notes, width))
	b.WriteString("\n\n")
	b.WriteString(renderFiles(t.Files, fileIndex, width))
	return b.String()
}

func renderInitiativeDetail(in model.Initiative, fileIndex, width int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Width(width).Render(in.Name))
	b.WriteString("\n")
	b.WriteString(render.InitiativeGlyph(in.Status) + " " + string(in.Status))
	b.WriteString("\n\n")
	b.WriteString(renderNotes("Content", in.Content, width))
	b.WriteString("\n\n")
	b.WriteString(renderFiles(in.Files, fileIndex, width))
	return b.String()
}

func renderNotes(label, rich string, width int) string {
	head := styleMuted().Render(label)
	text := render.PlainText(rich)
	if text == "" {
		return head + "\n" + styleMuted().Render("(empty, press n to edit)")
	}
	return head + "\n" + lipgloss.NewStyle().Width(width).Render(text)
}

func renderFiles(files []model.File, selected, width int) string {
	head := styleMuted().Render(fmt.Sprintf("Files (%d)", len(files)))
	if len(files) == 0 {
		return head + "\n" + styleMuted().Render("(none, press f to attach)")
	}
	lines := []string{head}
	for i, f := range files {
		p := preview.Build(f)
		line := fmt.Sprintf("%s %s  %s", p.Icon, f.Name, styleMuted().Render(p.TypeName+" · "+p.HumanSz))
		if xansi.StringWidth(line)+2 > width {
			line = xansi.Truncate(line, max(width-2, 1), "…")
		}
		if i == selected {
			line = styleSelectedRow().Render("› " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func renderArchivedWeek(db *store.DB, wk, width int) string {
	aw, ok := db.ArchivedWeeks[wk]
	if !ok || len(aw.Tasks) == 0 {
		return styleMuted().Render(render.EmptyArchiveWeek(wk))
	}
	lines := []string{lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("Week %d", wk))}
	if !aw.ArchivedAt.IsZero() {
		lines = append(lines, styleMuted().Render("archived "+aw.ArchivedAt.Local().Format("2006-01-02 15:04")))
	}
	lines = append(lines, "")
	for _, t := range aw.Tasks {
		line := statusBadge(t.Status) + "  " + t.Name
		if xansi.StringWidth(line) > width {
			line = xansi.Truncate(line, width, "…")
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
