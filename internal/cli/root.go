package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"weekboard/internal/format"
	"weekboard/internal/store"
	"weekboard/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	PrettyJSON bool
	Format     string
	Verbose    bool

	log *slog.Logger
	cfg *store.GlobalConfig
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "weekboard",
		Short:        "Weekly tasks and initiatives (local-first CLI + TUI + web)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive board
  weekboard

  # Scriptable commands
  weekboard tasks add "Draft spec"
  weekboard tasks set 1712345678901 --status in-progress

  # Direct lookup (shortcut for: weekboard tasks show <id>)
  weekboard task:1712345678901

  # Serve the web UI
  weekboard web
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		app.log = newLogger(cmd.ErrOrStderr(), app.Verbose)
		cfg, err := store.LoadConfig()
		if err != nil {
			app.log.Warn("config unreadable; using defaults", "err", err)
			cfg = &store.GlobalConfig{}
		}
		app.cfg = cfg
		if !cmd.Flags().Changed("format") && os.Getenv("WEEKBOARD_FORMAT") == "" && cfg.Format != "" {
			app.Format = cfg.Format
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("WEEKBOARD_DIR", ""), "Path to store dir (default: config dir, else ~/.weekboard/data)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("WEEKBOARD_FORMAT", "json"), "Output format (json|yaml)")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Log debug diagnostics to stderr")

	cmd.AddCommand(newEntityCmd(app, entityTask))
	cmd.AddCommand(newEntityCmd(app, entityInitiative))
	cmd.AddCommand(newFilesCmd(app))
	cmd.AddCommand(newWeeksCmd(app))
	cmd.AddCommand(newDataCmd(app))
	cmd.AddCommand(newEventsCmd(app))
	cmd.AddCommand(newRenderCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newWebCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func runTUI(app *App) error {
	db, s, err := loadDB(app)
	if err != nil {
		return err
	}
	return tui.Run(s.Dir, db, tui.Options{
		MaxAttachmentBytes: app.maxAttachmentBytes(),
		Log:                app.logger(),
	})
}

// resolveDir picks the store dir: --dir / WEEKBOARD_DIR, then the config
// file, then ~/.weekboard/data.
func resolveDir(app *App) (string, error) {
	if d := strings.TrimSpace(app.Dir); d != "" {
		return d, nil
	}
	if app.cfg != nil && strings.TrimSpace(app.cfg.Dir) != "" {
		app.Dir = strings.TrimSpace(app.cfg.Dir)
		return app.Dir, nil
	}
	d, err := store.DefaultDir()
	if err != nil {
		return "", err
	}
	app.Dir = d
	return d, nil
}

func loadDB(app *App) (*store.DB, store.Store, error) {
	dir, err := resolveDir(app)
	if err != nil {
		return nil, store.Store{}, err
	}
	s := store.Store{Dir: dir, Log: app.logger()}
	db, err := s.Load()
	if err != nil {
		return nil, store.Store{}, err
	}
	app.logger().Debug("store loaded", "dir", dir, "tasks", len(db.Tasks), "initiatives", len(db.Initiatives))
	return db, s, nil
}

// commit saves db and records one event. The save comes first: an event
// must never describe state that was not persisted.
func commit(app *App, s store.Store, db *store.DB, typ, entityID string, payload any) error {
	if err := s.Save(db); err != nil {
		return err
	}
	if err := s.AppendEvent(typ, entityID, payload); err != nil {
		app.logger().Warn("append event failed", "type", typ, "entity", entityID, "err", err)
	}
	return nil
}

func (app *App) logger() *slog.Logger {
	if app.log != nil {
		return app.log
	}
	return slog.Default()
}

func (app *App) maxAttachmentBytes() int64 {
	return app.cfg.MaxAttachmentBytes()
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
