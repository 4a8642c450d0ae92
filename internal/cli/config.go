package cli

import (
	"fmt"
	"strconv"
	"strings"

	"weekboard/internal/store"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the global config (~/.weekboard/config.json)",
	}
	cmd.AddCommand(newConfigShowCmd(app))
	cmd.AddCommand(newConfigSetCmd(app))
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the config file and the resolved store dir",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := store.ConfigPath()
			if err != nil {
				return writeErr(cmd, err)
			}
			dir, err := resolveDir(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"path":               path,
					"config":             app.cfg,
					"dir":                dir,
					"maxAttachmentBytes": app.maxAttachmentBytes(),
				},
				"_hints": []string{"weekboard config set <dir|webAddr|maxAttachmentMB|format> <value>"},
			})
		},
	}
}

func newConfigSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set one config key (dir, webAddr, maxAttachmentMB, format); an empty value clears it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			key := strings.TrimSpace(args[0])
			val := strings.TrimSpace(args[1])
			switch strings.ToLower(key) {
			case "dir":
				cfg.Dir = val
			case "webaddr":
				cfg.WebAddr = val
			case "maxattachmentmb":
				if val == "" {
					cfg.MaxAttachmentMB = 0
					break
				}
				n, err := strconv.ParseInt(val, 10, 64)
				if err != nil || n < 0 {
					return writeErr(cmd, fmt.Errorf("invalid maxAttachmentMB %q", val))
				}
				cfg.MaxAttachmentMB = n
			case "format":
				switch val {
				case "", "json", "yaml":
				default:
					return writeErr(cmd, fmt.Errorf("invalid format %q (expected json|yaml)", val))
				}
				cfg.Format = val
			default:
				return writeErr(cmd, fmt.Errorf("unknown config key %q", key))
			}
			if err := store.SaveConfig(cfg); err != nil {
				return writeErr(cmd, err)
			}
			app.cfg = cfg
			return writeOut(cmd, app, map[string]any{"data": cfg})
		},
	}
}
