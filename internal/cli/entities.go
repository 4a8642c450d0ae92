package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"weekboard/internal/model"
	"weekboard/internal/mutate"
	"weekboard/internal/render"
	"weekboard/internal/store"

	"github.com/spf13/cobra"
)

// entityCmdSpec describes the differences between the tasks and
// initiatives command trees.
type entityCmdSpec struct {
	kind mutate.EntityKind
	// body is the name of the rich-text field: notes or content.
	body     string
	statuses string
}

var (
	entityTask       = entityCmdSpec{kind: mutate.KindTask, body: "notes", statuses: "not-started|in-progress|blocked|done"}
	entityInitiative = entityCmdSpec{kind: mutate.KindInitiative, body: "content", statuses: "red|yellow|green"}
)

type taskOut struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Status      model.TaskStatus `json:"status"`
	StatusLabel string           `json:"statusLabel"`
	Notes       string           `json:"notes"`
	Files       []fileOut        `json:"files"`
}

type initiativeOut struct {
	ID      int64                  `json:"id"`
	Name    string                 `json:"name"`
	Status  model.InitiativeStatus `json:"status"`
	Glyph   string                 `json:"glyph"`
	Content string                 `json:"content"`
	Files   []fileOut              `json:"files"`
}

func taskView(t model.Task) taskOut {
	return taskOut{
		ID:          t.ID,
		Name:        t.Name,
		Status:      t.Status,
		StatusLabel: render.TaskStatusLabel(t.Status),
		Notes:       t.Notes,
		Files:       filesView(t.Files),
	}
}

func initiativeView(in model.Initiative) initiativeOut {
	return initiativeOut{
		ID:      in.ID,
		Name:    in.Name,
		Status:  in.Status,
		Glyph:   render.InitiativeGlyph(in.Status),
		Content: in.Content,
		Files:   filesView(in.Files),
	}
}

func entityView(db *store.DB, ref mutate.EntityRef) (any, error) {
	if ref.Kind == mutate.KindInitiative {
		in, ok := db.FindInitiative(ref.ID)
		if !ok {
			return nil, mutate.NotFoundError{Kind: string(ref.Kind), ID: idString(ref.ID)}
		}
		return initiativeView(*in), nil
	}
	t, ok := db.FindTask(ref.ID)
	if !ok {
		return nil, mutate.NotFoundError{Kind: string(ref.Kind), ID: idString(ref.ID)}
	}
	return taskView(*t), nil
}

func newEntityCmd(app *App, spec entityCmdSpec) *cobra.Command {
	cmd := &cobra.Command{
		Use:   spec.kind.Plural(),
		Short: strings.ToUpper(spec.kind.Plural()[:1]) + spec.kind.Plural()[1:] + " commands",
	}
	cmd.AddCommand(newEntityAddCmd(app, spec))
	cmd.AddCommand(newEntityListCmd(app, spec))
	cmd.AddCommand(newEntityShowCmd(app, spec))
	cmd.AddCommand(newEntitySetCmd(app, spec))
	cmd.AddCommand(newEntityCycleCmd(app, spec))
	cmd.AddCommand(newEntityRenameCmd(app, spec))
	cmd.AddCommand(newEntityDeleteCmd(app, spec))
	return cmd
}

func newEntityAddCmd(app *App, spec entityCmdSpec) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add a " + string(spec.kind),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			name := strings.Join(args, " ")

			var (
				id      int64
				view    any
				changed bool
				payload map[string]any
			)
			if spec.kind == mutate.KindInitiative {
				res, err := mutate.AddInitiative(db, name, time.Now())
				if err != nil {
					return writeErr(cmd, err)
				}
				changed, payload = res.Changed, res.EventPayload
				if res.Initiative != nil {
					id, view = res.Initiative.ID, initiativeView(*res.Initiative)
				}
			} else {
				res, err := mutate.AddTask(db, name, time.Now())
				if err != nil {
					return writeErr(cmd, err)
				}
				changed, payload = res.Changed, res.EventPayload
				if res.Task != nil {
					id, view = res.Task.ID, taskView(*res.Task)
				}
			}
			if !changed {
				app.logger().Debug("empty name; nothing added", "kind", spec.kind)
				return writeOut(cmd, app, map[string]any{"data": nil, "_hints": []string{"name is empty; nothing was added"}})
			}
			if err := commit(app, s, db, string(spec.kind)+".add", idString(id), payload); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": view,
				"_hints": []string{
					fmt.Sprintf("weekboard %s set %d --status <%s>", spec.kind.Plural(), id, spec.statuses),
					fmt.Sprintf("weekboard files attach %s %d <path>", spec.kind, id),
				},
			})
		},
	}
}

func newEntityListCmd(app *App, spec entityCmdSpec) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + spec.kind.Plural() + " in insertion order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			status = strings.TrimSpace(status)

			if spec.kind == mutate.KindInitiative {
				var want model.InitiativeStatus
				if status != "" {
					if want, err = model.ParseInitiativeStatus(status); err != nil {
						return writeErr(cmd, err)
					}
				}
				out := make([]initiativeOut, 0, len(db.Initiatives))
				for _, in := range db.Initiatives {
					if want == "" || in.Status == want {
						out = append(out, initiativeView(in))
					}
				}
				return writeOut(cmd, app, map[string]any{"data": out})
			}

			var want model.TaskStatus
			if status != "" {
				if want, err = model.ParseTaskStatus(status); err != nil {
					return writeErr(cmd, err)
				}
			}
			out := make([]taskOut, 0, len(db.Tasks))
			for _, t := range db.Tasks {
				if want == "" || t.Status == want {
					out = append(out, taskView(t))
				}
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Only list this status ("+spec.statuses+")")
	return cmd
}

func newEntityShowCmd(app *App, spec entityCmdSpec) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one " + string(spec.kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, err := mutate.ParseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			view, err := entityView(db, mutate.EntityRef{Kind: spec.kind, ID: id})
			if err != nil {
				return lookupFailed(cmd, app, err)
			}
			return writeOut(cmd, app, map[string]any{"data": view})
		},
	}
}

func newEntitySetCmd(app *App, spec entityCmdSpec) *cobra.Command {
	var (
		status   string
		body     string
		bodyMD   string
		bodyFile string
	)

	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Set a " + string(spec.kind) + "'s status and " + spec.body,
		Long: strings.TrimSpace(`
Flags that are not given keep their current value.

--` + spec.body + ` takes rich text (HTML), --` + spec.body + `-md takes Markdown and
--` + spec.body + `-file reads Markdown from a file ("-" for stdin).
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := mutate.ParseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ref := mutate.EntityRef{Kind: spec.kind, ID: id}

			newBody, bodySet, err := readBodyFlags(cmd, spec.body, body, bodyMD, bodyFile)
			if err != nil {
				return writeErr(cmd, err)
			}

			var (
				changed bool
				payload map[string]any
			)
			if spec.kind == mutate.KindInitiative {
				in, ok := db.FindInitiative(id)
				if !ok {
					return lookupFailed(cmd, app, mutate.NotFoundError{Kind: string(spec.kind), ID: idString(id)})
				}
				st := in.Status
				if cmd.Flags().Changed("status") {
					if st, err = model.ParseInitiativeStatus(status); err != nil {
						return writeErr(cmd, err)
					}
				}
				content := in.Content
				if bodySet {
					content = newBody
				}
				res, err := mutate.SetInitiativeDetail(db, id, st, content)
				if err != nil {
					return lookupFailed(cmd, app, err)
				}
				changed, payload = res.Changed, res.EventPayload
			} else {
				t, ok := db.FindTask(id)
				if !ok {
					return lookupFailed(cmd, app, mutate.NotFoundError{Kind: string(spec.kind), ID: idString(id)})
				}
				st := t.Status
				if cmd.Flags().Changed("status") {
					if st, err = model.ParseTaskStatus(status); err != nil {
						return writeErr(cmd, err)
					}
				}
				notes := t.Notes
				if bodySet {
					notes = newBody
				}
				res, err := mutate.SetTaskDetail(db, id, st, notes)
				if err != nil {
					return lookupFailed(cmd, app, err)
				}
				changed, payload = res.Changed, res.EventPayload
			}

			if changed {
				if err := commit(app, s, db, string(spec.kind)+".set", idString(id), payload); err != nil {
					return writeErr(cmd, err)
				}
			}
			view, err := entityView(db, ref)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": view, "meta": map[string]any{"changed": changed}})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Status ("+spec.statuses+")")
	cmd.Flags().StringVar(&body, spec.body, "", "Rich text (HTML)")
	cmd.Flags().StringVar(&bodyMD, spec.body+"-md", "", "Markdown, converted to rich text")
	cmd.Flags().StringVar(&bodyFile, spec.body+"-file", "", "Read Markdown from a file (- for stdin)")
	cmd.MarkFlagsMutuallyExclusive(spec.body, spec.body+"-md", spec.body+"-file")
	return cmd
}

// readBodyFlags returns the new rich text and whether any body flag was given.
func readBodyFlags(cmd *cobra.Command, name, html, md, file string) (string, bool, error) {
	switch {
	case cmd.Flags().Changed(name):
		return html, true, nil
	case cmd.Flags().Changed(name + "-md"):
		return markdownBody(md), true, nil
	case cmd.Flags().Changed(name + "-file"):
		var b []byte
		var err error
		if strings.TrimSpace(file) == "-" {
			b, err = readAllLimited(cmd.InOrStdin())
		} else {
			b, err = os.ReadFile(file)
		}
		if err != nil {
			return "", false, err
		}
		return markdownBody(string(b)), true, nil
	}
	return "", false, nil
}

func markdownBody(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	return strings.TrimSpace(render.MarkdownToHTML(md))
}

func newEntityCycleCmd(app *App, spec entityCmdSpec) *cobra.Command {
	var back bool

	cmd := &cobra.Command{
		Use:   "cycle <id>",
		Short: "Move a " + string(spec.kind) + " to the next status (" + spec.statuses + ", wrapping)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := mutate.ParseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ref := mutate.EntityRef{Kind: spec.kind, ID: id}
			step := 1
			if back {
				step = -1
			}
			res, err := mutate.CycleStatus(db, ref, step)
			if err != nil {
				return lookupFailed(cmd, app, err)
			}
			if res.Changed {
				if err := commit(app, s, db, string(spec.kind)+".set", idString(id), res.EventPayload); err != nil {
					return writeErr(cmd, err)
				}
			}
			view, err := entityView(db, ref)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": view, "meta": map[string]any{"changed": res.Changed}})
		},
	}
	cmd.Flags().BoolVar(&back, "back", false, "Step to the previous status instead")
	return cmd
}

func newEntityRenameCmd(app *App, spec entityCmdSpec) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a " + string(spec.kind),
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := mutate.ParseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			name := strings.Join(args[1:], " ")

			var (
				changed bool
				payload map[string]any
			)
			if spec.kind == mutate.KindInitiative {
				res, err := mutate.RenameInitiative(db, id, name)
				if err != nil {
					return lookupFailed(cmd, app, err)
				}
				changed, payload = res.Changed, res.EventPayload
			} else {
				res, err := mutate.RenameTask(db, id, name)
				if err != nil {
					return lookupFailed(cmd, app, err)
				}
				changed, payload = res.Changed, res.EventPayload
			}
			if changed {
				if err := commit(app, s, db, string(spec.kind)+".rename", idString(id), payload); err != nil {
					return writeErr(cmd, err)
				}
			}
			view, err := entityView(db, mutate.EntityRef{Kind: spec.kind, ID: id})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": view, "meta": map[string]any{"changed": changed}})
		},
	}
}

func newEntityDeleteCmd(app *App, spec entityCmdSpec) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + string(spec.kind) + " (asks for confirmation)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := mutate.ParseID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ref := mutate.EntityRef{Kind: spec.kind, ID: id}
			if _, err := entityView(db, ref); err != nil {
				return lookupFailed(cmd, app, err)
			}

			if !yes {
				ok, err := confirm(cmd, render.ConfirmDelete(string(spec.kind)))
				if err != nil {
					return writeErr(cmd, err)
				}
				if !ok {
					return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": id, "deleted": false}})
				}
			}

			var res mutate.DeleteResult
			if spec.kind == mutate.KindInitiative {
				res, err = mutate.DeleteInitiative(db, id)
			} else {
				res, err = mutate.DeleteTask(db, id)
			}
			if err != nil {
				return lookupFailed(cmd, app, err)
			}
			if err := commit(app, s, db, string(spec.kind)+".delete", idString(id), res.EventPayload); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": id, "deleted": true}})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// lookupFailed logs a missing entity or file and reports it on stderr.
func lookupFailed(cmd *cobra.Command, app *App, err error) error {
	if mutate.IsNotFound(err) {
		app.logger().Debug("lookup failed", "err", err)
	}
	return writeErr(cmd, err)
}
