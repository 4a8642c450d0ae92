package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"weekboard/internal/store"

	"github.com/spf13/cobra"
)

func newDataCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Export or import the whole state blob",
	}
	cmd.AddCommand(newDataExportCmd(app))
	cmd.AddCommand(newDataImportCmd(app))
	cmd.AddCommand(newDataDoctorCmd(app))
	return cmd
}

func newDataExportCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the state blob as JSON (stdout or --out)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			path := strings.TrimSpace(out)
			if path == "" || path == "-" {
				return store.ExportJSON(cmd.OutOrStdout(), db, app.PrettyJSON)
			}
			var buf bytes.Buffer
			if err := store.ExportJSON(&buf, db, true); err != nil {
				return writeErr(cmd, err)
			}
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"path":        path,
				"tasks":       len(db.Tasks),
				"initiatives": len(db.Initiatives),
				"weeks":       len(db.ArchivedWeeks),
			}})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Destination file (default: stdout)")
	return cmd
}

func newDataImportCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "import <path|->",
		Short: "Replace the whole state with an exported blob",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveDir(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			s := store.Store{Dir: dir, Log: app.logger()}

			fromStdin := strings.TrimSpace(args[0]) == "-"
			if fromStdin && !yes {
				return writeErr(cmd, errors.New("import from stdin needs --yes (stdin cannot also answer the prompt)"))
			}

			var b []byte
			if fromStdin {
				b, err = readAllLimited(cmd.InOrStdin())
			} else {
				b, err = os.ReadFile(args[0])
			}
			if err != nil {
				return writeErr(cmd, err)
			}

			if !yes {
				ok, err := confirm(cmd, "Replace all tasks, initiatives and archived weeks?")
				if err != nil {
					return writeErr(cmd, err)
				}
				if !ok {
					return writeOut(cmd, app, map[string]any{"data": map[string]any{"imported": false}})
				}
			}

			db, err := s.ImportJSON(bytes.NewReader(b))
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.AppendEvent("data.import", "state", map[string]any{
				"tasks":       len(db.Tasks),
				"initiatives": len(db.Initiatives),
				"weeks":       len(db.ArchivedWeeks),
			}); err != nil {
				app.logger().Warn("append event failed", "type", "data.import", "err", err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"imported":    true,
				"tasks":       len(db.Tasks),
				"initiatives": len(db.Initiatives),
				"weeks":       len(db.ArchivedWeeks),
			}})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newDataDoctorCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the store for malformed or repairable records",
		Long:  "Reports problems in the database file and the persisted blob without changing either. Warnings are repaired by the next load; errors need attention. Exits non-zero when there are errors.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveDir(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			s := store.Store{Dir: dir, Log: app.logger()}
			r, err := s.Doctor(context.Background())
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := writeOut(cmd, app, map[string]any{"data": r}); err != nil {
				return err
			}
			if r.HasErrors() {
				return writeErr(cmd, fmt.Errorf("doctor found %d issue(s)", len(r.Issues)))
			}
			return nil
		},
	}
}
