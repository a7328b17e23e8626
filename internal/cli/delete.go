package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tracker/pkg/tracker"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <kind> <id>",
		Short: "Remove a record; removing an epic also removes its subtasks",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id, err := parseKindID(args)
			if err != nil {
				return err
			}
			return a.withStore(func(tm *tracker.Store) error {
				if err := tm.Remove(id, kind); err != nil {
					return err
				}
				if !a.jsonMode {
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %d\n", kind, id)
				}
				return nil
			})
		},
	}
}

func newClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <kind>",
		Short: "Remove every record of a kind",
		Long: "Clearing epics also removes every subtask. Clearing subtasks\n" +
			"resets every epic to NEW.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := types.ParseKind(args[0])
			if err != nil {
				return err
			}
			return a.withStore(func(tm *tracker.Store) error {
				if err := tm.Clear(kind); err != nil {
					return err
				}
				if !a.jsonMode {
					fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s records\n", kind)
				}
				return nil
			})
		},
	}
}
