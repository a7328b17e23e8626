package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tracker/pkg/tracker"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <kind> <id>",
		Short: "Show one record and record the view in the history",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id, err := parseKindID(args)
			if err != nil {
				return err
			}
			return a.withStore(func(tm *tracker.Store) error {
				rec, err := tm.Get(id, kind)
				if err != nil {
					return err
				}
				return a.printRecord(cmd.OutOrStdout(), rec)
			})
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <kind>",
		Short: "List every record of a kind in insertion order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := types.ParseKind(args[0])
			if err != nil {
				return err
			}
			return a.withStore(func(tm *tracker.Store) error {
				records, err := tm.List(kind)
				if err != nil {
					return err
				}
				return a.printRecords(cmd.OutOrStdout(), records)
			})
		},
	}
}

// historyEntry is the --json view of one history element.
type historyEntry struct {
	Key    string     `json:"key"`
	Record jsonRecord `json:"record"`
}

func newHistoryCmd(a *app) *cobra.Command {
	var views []string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently viewed records, least recent first",
		Long: "History is kept in memory only and starts with the loaded records\n" +
			"in save order. Use --view kind:id (repeatable) to view records in\n" +
			"this invocation before the history is printed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(tm *tracker.Store) error {
				for _, v := range views {
					kind, id, err := parseView(v)
					if err != nil {
						return err
					}
					if _, err := tm.Get(id, kind); err != nil {
						return err
					}
				}

				entries := tm.History()
				w := cmd.OutOrStdout()
				if a.jsonMode {
					out := make([]historyEntry, 0, len(entries))
					for _, e := range entries {
						out = append(out, historyEntry{Key: e.Key.String(), Record: jsonRecordOf(e.Record)})
					}
					return writeJSON(w, out)
				}
				for _, e := range entries {
					fmt.Fprintf(w, "%s\t", e.Key)
					if err := a.printRecords(w, []types.Record{e.Record}); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVar(&views, "view", nil, "record to view first, as kind:id")
	return cmd
}

// parseView splits a "kind:id" argument.
func parseView(s string) (types.Kind, int, error) {
	kind, id, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid view %q: want kind:id", s)
	}
	return parseKindID([]string{kind, id})
}
