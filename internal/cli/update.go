package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tracker/pkg/tracker"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

func newUpdateCmd(a *app) *cobra.Command {
	var (
		summary     string
		description string
		status      string
	)
	cmd := &cobra.Command{
		Use:   "update <kind> <id>",
		Short: "Change a record's summary, description or status",
		Long: "Flags that are not given keep their current value. An epic's\n" +
			"status is derived from its subtasks and cannot be set.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id, err := parseKindID(args)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if err := a.checkSingleLine(summary, description); err != nil {
				return err
			}
			if kind == types.KindEpic && flags.Changed("status") {
				return fmt.Errorf("update epic %d: status is derived from subtasks", id)
			}

			return a.withStore(func(tm *tracker.Store) error {
				current, err := lookup(tm, id, kind)
				if err != nil {
					return err
				}

				patch := types.NewRecord(kind)
				*patch.Base() = *current.Base()
				base := patch.Base()
				if flags.Changed("summary") {
					base.Summary = summary
				}
				if flags.Changed("description") {
					base.Description = description
				}
				if flags.Changed("status") {
					st, err := types.ParseStatus(status)
					if err != nil {
						return err
					}
					base.Status = st
				}

				updated, err := tm.Update(id, patch)
				if err != nil {
					return fmt.Errorf("update %s %d: %w", kind, id, err)
				}
				return a.printRecord(cmd.OutOrStdout(), updated)
			})
		},
	}
	cmd.Flags().StringVar(&summary, "summary", "", "new summary")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&status, "status", "", "new status: NEW, IN_PROGRESS, DONE")
	return cmd
}

// lookup finds a record through List so that reading it does not count as
// a view.
func lookup(tm types.TaskManager, id int, kind types.Kind) (types.Record, error) {
	records, err := tm.List(kind)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.Base().ID == id {
			return rec, nil
		}
	}
	return nil, fmt.Errorf("%s %d: %w", kind, id, types.ErrNotFound)
}
