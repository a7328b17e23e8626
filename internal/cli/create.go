package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tracker/pkg/tracker"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

func newCreateCmd(a *app) *cobra.Command {
	var (
		summary     string
		description string
		epicID      int
	)
	cmd := &cobra.Command{
		Use:   "create <task|epic|subtask>",
		Short: "Create a record and print it",
		Example: "  tracker create epic --summary \"Move\"\n" +
			"  tracker create subtask --summary \"Pack\" --epic 1",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := types.ParseKind(args[0])
			if err != nil {
				return err
			}
			if err := a.checkSingleLine(summary, description); err != nil {
				return err
			}

			var rec types.Record
			switch kind {
			case types.KindTask:
				rec = types.NewTask(summary, description)
			case types.KindEpic:
				rec = types.NewEpic(summary, description)
			case types.KindSubtask:
				if !cmd.Flags().Changed("epic") {
					return errors.New("create subtask: --epic is required")
				}
				rec = types.NewSubtask(summary, description, epicID)
			}

			return a.withStore(func(tm *tracker.Store) error {
				if _, err := tm.Add(rec); err != nil {
					return fmt.Errorf("create %s: %w", kind, err)
				}
				return a.printRecord(cmd.OutOrStdout(), rec)
			})
		},
	}
	cmd.Flags().StringVar(&summary, "summary", "", "short summary")
	cmd.Flags().StringVar(&description, "description", "", "longer description")
	cmd.Flags().IntVar(&epicID, "epic", 0, "parent epic id (subtasks only)")
	return cmd
}
