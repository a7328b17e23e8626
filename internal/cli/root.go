// Package cli implements the tracker command-line interface. Commands map
// one-to-one onto TaskManager operations; configuration comes from
// config.yaml (via Viper), environment variables and global flags.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/tracker/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// app carries global flag values and per-invocation state shared by the
// subcommands.
type app struct {
	configDir string
	dataDir   string
	jsonMode  bool
	logLevel  string

	cfg    types.Config
	level  string
	logger *slog.Logger
}

// NewRootCmd creates the top-level "tracker" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "tracker",
		Short: "Track tasks, epics and subtasks",
		Long: "Tracker keeps tasks, epics and their subtasks in a local store.\n" +
			"An epic's status is derived from its subtasks.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "data directory (default: $(CWD)/.tracker)")
	root.PersistentFlags().BoolVar(&a.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newConfigCmd(a),
		newCreateCmd(a),
		newGetCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newListCmd(a),
		newClearCmd(a),
		newHistoryCmd(a),
		newDumpCmd(a),
	)
	return root
}

// setup loads configuration and builds the logger before any subcommand
// runs.
func (a *app) setup(cmd *cobra.Command) error {
	if cmd.Name() == "version" {
		return nil
	}
	cfg, level, err := a.loadConfig()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		level = a.logLevel
	}
	a.cfg = cfg
	a.level = level
	a.logger = newLogger(cmd.ErrOrStderr(), level)
	return nil
}

// Execute runs the root command and exits with the matching code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "tracker:", err)
		os.Exit(exitCode(err))
	}
	os.Exit(exitSuccess)
}

// exitCode maps an error to a process exit code: caller mistakes exit 1,
// environment and storage failures exit 2.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, types.ErrPersistence),
		errors.Is(err, types.ErrBackendEmpty),
		errors.Is(err, types.ErrBackendUnknown),
		errors.Is(err, types.ErrFormatUnknown),
		errors.Is(err, errSystem):
		return exitSysError
	default:
		return exitUserError
	}
}

// errSystem marks failures outside the caller's control.
var errSystem = errors.New("system error")
