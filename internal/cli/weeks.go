package cli

import (
	"fmt"
	"strconv"
	"time"

	"weekboard/internal/mutate"
	"weekboard/internal/publish"
	"weekboard/internal/render"
	"weekboard/internal/week"

	"github.com/spf13/cobra"
)

type weekOut struct {
	Week       int       `json:"week"`
	ArchivedAt time.Time `json:"archivedAt,omitzero"`
	Tasks      []taskOut `json:"tasks"`
}

func newWeeksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weeks",
		Short: "Week numbers and archived weeks",
	}
	cmd.AddCommand(newWeeksCurrentCmd(app))
	cmd.AddCommand(newWeeksArchiveCmd(app))
	cmd.AddCommand(newWeeksListCmd(app))
	cmd.AddCommand(newWeeksShowCmd(app))
	cmd.AddCommand(newWeeksPublishCmd(app))
	return cmd
}

func newWeeksCurrentCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the current week number and its Monday",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"week":   week.Number(now),
				"label":  week.Label(now),
				"header": week.Header(now),
				"monday": week.Monday(now).Format("2006-01-02"),
			}})
		},
	}
}

func newWeeksArchiveCmd(app *App) *cobra.Command {
	var wk int

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Snapshot the current task list into an archived week",
		Long:  "Snapshots the live task list under the current week number (or --week), replacing an earlier snapshot of the same week. Live tasks are left untouched.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			now := time.Now()
			if !cmd.Flags().Changed("week") {
				wk = week.Number(now)
			}
			res, err := mutate.ArchiveWeek(db, wk, now)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := commit(app, s, db, "week.archive", strconv.Itoa(wk), res.EventPayload); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"week":       res.Week.Week,
					"archivedAt": res.Week.ArchivedAt,
					"tasks":      len(res.Week.Tasks),
					"replaced":   res.Replaced,
				},
				"_hints": []string{fmt.Sprintf("weekboard weeks show %d", wk)},
			})
		},
	}
	cmd.Flags().IntVar(&wk, "week", 0, "Week number to archive under (default: current week)")
	return cmd
}

func newWeeksListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List archived weeks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			out := []map[string]any{}
			for _, wk := range db.ArchivedWeekNumbers() {
				aw := db.ArchivedWeeks[wk]
				out = append(out, map[string]any{
					"week":       wk,
					"archivedAt": aw.ArchivedAt,
					"tasks":      len(aw.Tasks),
				})
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
}

func newWeeksShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <week>",
		Short: "Show the tasks archived for a week",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wk, err := strconv.Atoi(args[0])
			if err != nil || wk <= 0 {
				return writeErr(cmd, fmt.Errorf("invalid week %q", args[0]))
			}
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			out := weekOut{Week: wk, Tasks: []taskOut{}}
			aw, ok := mutate.ArchivedWeek(db, wk)
			if ok {
				out.ArchivedAt = aw.ArchivedAt
				for _, t := range aw.Tasks {
					out.Tasks = append(out.Tasks, taskView(t))
				}
			}
			env := map[string]any{"data": out}
			if len(out.Tasks) == 0 {
				env["_hints"] = []string{render.EmptyArchiveWeek(wk)}
			}
			return writeOut(cmd, app, env)
		},
	}
}

func newWeeksPublishCmd(app *App) *cobra.Command {
	var (
		to        string
		archived  bool
		overwrite bool
		notes     bool
		files     bool
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Write Markdown status reports for the current week (and archived weeks)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := publish.WriteReports(db, time.Now(), to, publish.WriteOptions{
				RenderOptions: publish.RenderOptions{IncludeNotes: notes, IncludeFiles: files},
				Archived:      archived,
				Overwrite:     overwrite,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Output directory")
	cmd.Flags().BoolVar(&archived, "archived", false, "Also write every archived week under archive/")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing report files")
	cmd.Flags().BoolVar(&notes, "notes", false, "Include task notes and initiative content")
	cmd.Flags().BoolVar(&files, "files", false, "List attached files")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
