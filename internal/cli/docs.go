package cli

import (
	"fmt"

	"weekboard/internal/docs"
	"weekboard/internal/render"

	"github.com/spf13/cobra"
)

func newDocsCmd(app *App) *cobra.Command {
	var raw bool
	var term bool
	var width int

	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Show built-in documentation topics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"topics": docs.Topics()}})
			}

			topic := args[0]
			body, ok := docs.Get(topic)
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown docs topic: %q (run `weekboard docs` to list topics)", topic))
			}

			switch {
			case term:
				_, err := fmt.Fprint(cmd.OutOrStdout(), render.TerminalMarkdown(body, width))
				return err
			case raw:
				_, err := fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"topic": topic, "markdown": body}})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print raw markdown (no envelope)")
	cmd.Flags().BoolVar(&term, "term", false, "Print markdown styled for the terminal")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width for --term")
	cmd.MarkFlagsMutuallyExclusive("raw", "term")
	return cmd
}
