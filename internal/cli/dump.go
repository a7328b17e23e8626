package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tracker/internal/codec"
	"github.com/mesh-intelligence/tracker/pkg/tracker"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

func newDumpCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print every record in save order",
		Long: "Print epics, then subtasks, then tasks, one encoded record per\n" +
			"line. The output can be used as a file-backend data file.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = a.cfg.Format
			}
			enc, err := codec.ForFormat(format)
			if err != nil {
				return err
			}
			return a.withStore(func(tm *tracker.Store) error {
				w := cmd.OutOrStdout()
				for _, kind := range types.SaveOrder {
					records, err := tm.List(kind)
					if err != nil {
						return err
					}
					for _, rec := range records {
						line, err := enc.Encode(rec)
						if err != nil {
							return fmt.Errorf("encode %s %d: %w", kind, rec.Base().ID, err)
						}
						fmt.Fprintln(w, line)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "line or jsonl (default: configured format)")
	return cmd
}
