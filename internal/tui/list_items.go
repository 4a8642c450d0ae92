package tui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"weekboard/internal/model"
	"weekboard/internal/render"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type taskItem struct {
	task model.Task
}

func (i taskItem) FilterValue() string { return i.task.Name }
func (i taskItem) Title() string {
	return fmt.Sprintf("%s  %s%s", statusBadge(i.task.Status), i.task.Name, fileCount(len(i.task.Files)))
}

type initiativeItem struct {
	initiative model.Initiative
}

func (i initiativeItem) FilterValue() string { return i.initiative.Name }
func (i initiativeItem) Title() string {
	return fmt.Sprintf("%s %s%s", render.InitiativeGlyph(i.initiative.Status), i.initiative.Name, fileCount(len(i.initiative.Files)))
}

type weekItem struct {
	week  int
	tasks int
}

func (i weekItem) FilterValue() string { return strconv.Itoa(i.week) }
func (i weekItem) Title() string {
	return fmt.Sprintf("Week %d  %s", i.week, styleMuted().Render(fmt.Sprintf("(%d tasks)", i.tasks)))
}

func fileCount(n int) string {
	if n == 0 {
		return ""
	}
	return styleMuted().Render(fmt.Sprintf("  📎%d", n))
}

func statusBadge(st model.TaskStatus) string {
	c := colorNotStarted
	switch st {
	case model.TaskInProgress:
		c = colorInProgress
	case model.TaskBlocked:
		c = colorBlocked
	case model.TaskDone:
		c = colorDone
	}
	label := strings.ToUpper(render.TaskStatusLabel(st))
	return lipgloss.NewStyle().Foreground(c).Bold(true).Width(12).Render(label)
}

// compactItemDelegate renders one row per item, padded or cut to the list width.
type compactItemDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
}

func newCompactItemDelegate() compactItemDelegate {
	return compactItemDelegate{
		normal:   lipgloss.NewStyle(),
		selected: styleSelectedRow(),
	}
}

func (d compactItemDelegate) Height() int  { return 1 }
func (d compactItemDelegate) Spacing() int { return 0 }
func (d compactItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d compactItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		return
	}
	style := d.normal
	prefix := "  "
	if index == m.Index() {
		style = d.selected
		prefix = "› "
	}

	txt := ""
	if t, ok := item.(interface{ Title() string }); ok {
		txt = t.Title()
	} else {
		txt = fmt.Sprint(item)
	}

	line := prefix + txt
	lineW := xansi.StringWidth(line)
	if lineW < contentW {
		line += strings.Repeat(" ", contentW-lineW)
	} else if lineW > contentW {
		line = xansi.Truncate(line, contentW, "…")
	}
	fmt.Fprint(w, style.Render(line))
}

func newList(title string, items []list.Item) list.Model {
	l := list.New(items, newCompactItemDelegate(), 0, 0)
	l.Title = title
	// The board renders its own header and footer.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName("item", "items")
	// Esc is "back/cancel" on the board, never quit.
	l.KeyMap.Quit.SetKeys("q")
	// Emacs-style navigation aliases.
	up := append([]string{}, l.KeyMap.CursorUp.Keys()...)
	l.KeyMap.CursorUp.SetKeys(append(up, "ctrl+p")...)
	down := append([]string{}, l.KeyMap.CursorDown.Keys()...)
	l.KeyMap.CursorDown.SetKeys(append(down, "ctrl+n")...)
	return l
}

// selectByID keeps the cursor on the same entity across refreshes.
func selectByID(l *list.Model, id int64) {
	for i, it := range l.Items() {
		switch v := it.(type) {
		case taskItem:
			if v.task.ID == id {
				l.Select(i)
				return
			}
		case initiativeItem:
			if v.initiative.ID == id {
				l.Select(i)
				return
			}
		case weekItem:
			if int64(v.week) == id {
				l.Select(i)
				return
			}
		}
	}
}
