package render

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	termRendererMu sync.Mutex
	// Keyed by style and wrap width. WithAutoStyle is avoided: its terminal
	// queries can block.
	termRenderers = map[string]*glamour.TermRenderer{}
)

// TerminalMarkdown renders Markdown with ANSI styling wrapped to width.
// Rendering failures return the input unchanged.
func TerminalMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}

	style := TerminalStyle()
	key := style + ":" + strconv.Itoa(width)

	termRendererMu.Lock()
	r := termRenderers[key]
	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
			glamour.WithEmoji(),
		)
		if err != nil {
			termRendererMu.Unlock()
			return md
		}
		termRenderers[key] = rr
		r = rr
	}
	termRendererMu.Unlock()

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n") + "\n"
}

// TerminalStyle picks a glamour standard style: WEEKBOARD_MD_STYLE wins,
// NO_COLOR selects notty, then COLORFGBG and the detected background decide.
func TerminalStyle() string {
	switch v := strings.ToLower(strings.TrimSpace(os.Getenv("WEEKBOARD_MD_STYLE"))); v {
	case "dark", "light", "ascii", "notty":
		return v
	}
	if os.Getenv("NO_COLOR") != "" {
		return "notty"
	}
	// COLORFGBG is "fg;bg"; xterm palette 7-15 are light backgrounds.
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			if bg >= 7 {
				return "light"
			}
			return "dark"
		}
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}
