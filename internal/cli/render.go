package cli

import (
	"io"
	"time"

	"weekboard/internal/publish"
	"weekboard/internal/render"
	"weekboard/internal/store"

	"github.com/spf13/cobra"
)

func newRenderCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the HTML markup the web UI serves",
	}

	view := func(use, short string, fn func(r *render.Renderer, db *store.DB, w io.Writer) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				db, _, err := loadDB(app)
				if err != nil {
					return writeErr(cmd, err)
				}
				r, err := render.New()
				if err != nil {
					return writeErr(cmd, err)
				}
				if err := fn(r, db, cmd.OutOrStdout()); err != nil {
					return writeErr(cmd, err)
				}
				return nil
			},
		}
	}

	cmd.AddCommand(view("tasks", "Task list markup", func(r *render.Renderer, db *store.DB, w io.Writer) error {
		return r.Tasks(w, db.Tasks)
	}))
	cmd.AddCommand(view("initiatives", "Initiative list markup", func(r *render.Renderer, db *store.DB, w io.Writer) error {
		return r.Initiatives(w, db.Initiatives)
	}))

	var archiveWeek int
	archives := view("archives", "Archived-week view markup", func(r *render.Renderer, db *store.DB, w io.Writer) error {
		return r.Archive(w, db, archiveWeek)
	})
	archives.Flags().IntVar(&archiveWeek, "week", 0, "Selected week (0 = none)")
	cmd.AddCommand(archives)

	var tab string
	var pageWeek int
	page := view("page", "Full page markup", func(r *render.Renderer, db *store.DB, w io.Writer) error {
		return r.Page(w, db, render.PageData{Tab: tab, Now: time.Now(), SelectedWeek: pageWeek})
	})
	page.Flags().StringVar(&tab, "tab", render.TabTasks, "Active tab (tasks|initiatives|archives)")
	page.Flags().IntVar(&pageWeek, "week", 0, "Selected archived week")
	cmd.AddCommand(page)

	var mdWeek int
	var mdNotes bool
	var mdTerm bool
	markdown := &cobra.Command{
		Use:   "markdown",
		Short: "Weekly status report as Markdown (current board, or an archived --week)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			opt := publish.RenderOptions{IncludeNotes: mdNotes, IncludeFiles: true}
			var md string
			if mdWeek > 0 {
				md, err = publish.RenderWeekMarkdown(db, mdWeek, opt)
			} else {
				md, err = publish.RenderBoardMarkdown(db, time.Now(), opt)
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			if mdTerm {
				md = render.TerminalMarkdown(md, 100)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), md)
			return err
		},
	}
	markdown.Flags().IntVar(&mdWeek, "week", 0, "Archived week to render (0 = current board)")
	markdown.Flags().BoolVar(&mdNotes, "notes", true, "Include notes and content")
	markdown.Flags().BoolVar(&mdTerm, "term", false, "Style the report for the terminal")
	cmd.AddCommand(markdown)

	return cmd
}
