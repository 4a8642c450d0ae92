package publish

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"time"

	"weekboard/internal/model"
	"weekboard/internal/preview"
	"weekboard/internal/render"
	"weekboard/internal/store"
	"weekboard/internal/week"
)

type RenderOptions struct {
	// IncludeNotes adds task notes and initiative content as indented plain text.
	IncludeNotes bool
	// IncludeFiles lists attached files under each entry.
	IncludeFiles bool
}

// RenderBoardMarkdown renders the live board as a weekly status report.
func RenderBoardMarkdown(db *store.DB, now time.Time, opt RenderOptions) (string, error) {
	if db == nil {
		return "", fmt.Errorf("missing db")
	}

	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + week.Header(now))
	writeLn("")
	writeLn("## Tasks")
	writeLn("")
	writeTasks(&buf, db.Tasks, opt)

	writeLn("## Initiatives")
	writeLn("")
	if len(db.Initiatives) == 0 {
		writeLn("_" + render.EmptyInitiatives + "_")
		writeLn("")
	}
	for _, in := range db.Initiatives {
		writeLn("- " + render.InitiativeGlyph(in.Status) + " " + strings.TrimSpace(in.Name))
		writeDetail(&buf, in.Content, in.Files, opt)
	}
	if len(db.Initiatives) > 0 {
		writeLn("")
	}
	return strings.TrimRight(buf.String(), "\n") + "\n", nil
}

// RenderWeekMarkdown renders one archived week.
func RenderWeekMarkdown(db *store.DB, wk int, opt RenderOptions) (string, error) {
	if db == nil {
		return "", fmt.Errorf("missing db")
	}
	aw, ok := db.ArchivedWeeks[wk]
	if !ok {
		return "", fmt.Errorf("week %d is not archived", wk)
	}

	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("# Week %d\n\n", wk))
	if !aw.ArchivedAt.IsZero() {
		buf.WriteString("Archived " + aw.ArchivedAt.UTC().Format("2006-01-02 15:04 UTC") + "\n\n")
	}
	buf.WriteString("## Tasks\n\n")
	if len(aw.Tasks) == 0 {
		buf.WriteString("_" + render.EmptyArchiveWeek(wk) + "_\n")
		return buf.String(), nil
	}
	writeTasks(&buf, aw.Tasks, opt)
	return strings.TrimRight(buf.String(), "\n") + "\n", nil
}

// writeTasks groups tasks by status in display order. Unknown statuses
// come last, each in its own group.
func writeTasks(buf *bytes.Buffer, tasks []model.Task, opt RenderOptions) {
	if len(tasks) == 0 {
		buf.WriteString("_" + render.EmptyTasks + "_\n\n")
		return
	}

	order := model.TaskStatuses()
	groups := map[model.TaskStatus][]model.Task{}
	for _, t := range tasks {
		if !slices.Contains(order, t.Status) && len(groups[t.Status]) == 0 {
			order = append(order, t.Status)
		}
		groups[t.Status] = append(groups[t.Status], t)
	}

	for _, st := range order {
		ts := groups[st]
		if len(ts) == 0 {
			continue
		}
		fmt.Fprintf(buf, "### %s (%d)\n\n", capitalize(render.TaskStatusLabel(st)), len(ts))
		for _, t := range ts {
			box := " "
			if t.Status == model.TaskDone {
				box = "x"
			}
			fmt.Fprintf(buf, "- [%s] %s\n", box, strings.TrimSpace(t.Name))
			writeDetail(buf, t.Notes, t.Files, opt)
		}
		buf.WriteString("\n")
	}
}

func writeDetail(buf *bytes.Buffer, rich string, files []model.File, opt RenderOptions) {
	if opt.IncludeNotes {
		if text := render.PlainText(rich); text != "" {
			for _, ln := range strings.Split(text, "\n") {
				if ln == "" {
					buf.WriteString("\n")
					continue
				}
				buf.WriteString("  " + ln + "\n")
			}
		}
	}
	if opt.IncludeFiles {
		for _, f := range files {
			p := preview.Build(f)
			fmt.Fprintf(buf, "  - %s %s (%s)\n", p.Icon, strings.TrimSpace(f.Name), p.HumanSz)
		}
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
