package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func newEventsCmd(app *App) *cobra.Command {
	var limit int
	var entity string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect the local activity log",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List events (oldest-first)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			entity = strings.TrimSpace(entity)
			if entity != "" {
				evs, err := s.ReadEventsForEntity(entity, limit)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{"data": evs})
			}
			evs, err := s.ReadEvents(limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": evs})
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 200, "Max events to return (0 = all)")
	listCmd.Flags().StringVar(&entity, "entity", "", "Only events for this entity id (task/initiative id or week number)")

	cmd.AddCommand(listCmd)
	return cmd
}
