package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tracker/internal/paths"
	"github.com/mesh-intelligence/tracker/pkg/tracker"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize tracker storage",
		Long: "Create the configuration and data directories, write a default\n" +
			"config.yaml if none exists, and create an empty store.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wrote, err := writeConfigIfMissing(a.configDir, a.cfg.DataDir)
			if err != nil {
				return fmt.Errorf("%w: %w", errSystem, err)
			}
			if wrote {
				a.logger.Info("wrote default config", "dir", a.configDir)
			}
			if err := os.MkdirAll(a.cfg.DataDir, 0o755); err != nil {
				return fmt.Errorf("create data directory: %w: %w", errSystem, err)
			}

			err = a.withStore(func(tm *tracker.Store) error {
				return tm.Save()
			})
			if err != nil {
				return fmt.Errorf("initialize storage: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Tracker initialized at %s\n",
				paths.DataFile(a.cfg.DataDir, a.cfg.FileName))
			return nil
		},
	}
}
