// Package cmd provides the CLI commands for envdoctor.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/envdoctor/internal/config"
	"github.com/Aman-CERP/envdoctor/internal/doctor"
	derrors "github.com/Aman-CERP/envdoctor/internal/errors"
	"github.com/Aman-CERP/envdoctor/internal/logging"
	"github.com/Aman-CERP/envdoctor/internal/profiling"
	"github.com/Aman-CERP/envdoctor/pkg/version"
)

// loggingAnnotation selects how a command sets up logging.
const (
	loggingAnnotation = "envdoctor/logging"
	loggingMCP        = "mcp"
)

// rootOptions holds the persistent flags and per-invocation state shared by
// every subcommand.
type rootOptions struct {
	debug   bool
	noColor bool
	root    string
	profile profiling.Targets

	// doctorOpts are passed to every doctor.New call.
	doctorOpts []doctor.Option

	loggingCleanup func()
	profiler       *profiling.Session
}

// NewRootCmd creates the root command for the envdoctor CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&rootOptions{})
}

func newRootCmd(ro *rootOptions) *cobra.Command {
	var check checkOptions

	cmd := &cobra.Command{
		Use:   "envdoctor",
		Short: "Check that a workspace is ready for development",
		Long: `envdoctor runs a fixed battery of checks against a pnpm monorepo:
toolchain, project files, dependencies, workspace packages, type checking,
linting, environment files, IDE settings and git.

Run 'envdoctor' in the workspace to get a readiness verdict.`,
		Version:       version.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, ro, check)
		},
	}

	cmd.SetVersionTemplate("envdoctor version {{.Version}}\n")
	check.bind(cmd)

	cmd.PersistentFlags().BoolVar(&ro.debug, "debug", false, "Enable debug logging to ~/.envdoctor/logs/")
	cmd.PersistentFlags().BoolVar(&ro.noColor, "no-color", false, "Disable colored output")
	cmd.PersistentFlags().StringVar(&ro.root, "root", "", "Workspace root (default: detected from the current directory)")
	cmd.PersistentFlags().StringVar(&ro.profile.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&ro.profile.Heap, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&ro.profile.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentPreRunE = ro.before
	cmd.PersistentPostRunE = ro.after

	cmd.AddCommand(newCheckCmd(ro))
	cmd.AddCommand(newWatchCmd(ro))
	cmd.AddCommand(newMCPCmd(ro))
	cmd.AddCommand(newConfigCmd(ro))
	cmd.AddCommand(newLogsCmd(ro))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// before starts logging and profiling.
func (ro *rootOptions) before(cmd *cobra.Command, _ []string) error {
	switch {
	case cmd.Annotations[loggingAnnotation] == loggingMCP:
		cleanup, err := logging.SetupMCPMode(ro.debug)
		if err != nil {
			return fmt.Errorf("failed to setup MCP logging: %w", err)
		}
		ro.loggingCleanup = cleanup
	case ro.debug:
		cleanup, err := logging.SetupDefault(logging.DebugConfig())
		if err != nil {
			return fmt.Errorf("failed to setup debug logging: %w", err)
		}
		ro.loggingCleanup = cleanup
		slog.Info("debug_logging_enabled",
			slog.String("log_file", logging.DefaultLogPath()),
			slog.String("version", version.Version),
			slog.String("command", cmd.CommandPath()))
	default:
		logging.SetupQuiet(cmd.ErrOrStderr())
	}

	if ro.profile.Enabled() {
		s, err := profiling.Start(ro.profile)
		if err != nil {
			return err
		}
		ro.profiler = s
	}
	return nil
}

// after stops profiling and flushes the log file.
func (ro *rootOptions) after(_ *cobra.Command, _ []string) error {
	err := ro.profiler.Stop()
	ro.profiler = nil

	if ro.loggingCleanup != nil {
		slog.Debug("debug_logging_stopped")
		ro.loggingCleanup()
		ro.loggingCleanup = nil
	}
	return err
}

// resolveRoot returns --root when set, otherwise the workspace root found
// by walking up from the current directory.
func (ro *rootOptions) resolveRoot() (string, error) {
	if ro.root != "" {
		abs, err := filepath.Abs(ro.root)
		if err != nil {
			return "", fmt.Errorf("failed to resolve --root: %w", err)
		}
		info, err := os.Stat(abs)
		switch {
		case os.IsNotExist(err):
			return "", derrors.New(derrors.ErrCodePathNotFound, "workspace root does not exist: "+abs, err).
				WithSuggestion("Pass an existing directory to --root")
		case err != nil:
			return "", derrors.New(derrors.ErrCodePathAccess, "cannot access workspace root: "+abs, err)
		case !info.IsDir():
			return "", derrors.New(derrors.ErrCodeInvalidInput, "workspace root is not a directory: "+abs, nil).
				WithSuggestion("Pass the directory holding package.json to --root")
		}
		return abs, nil
	}
	return config.FindProjectRoot(".")
}

// newDoctor loads configuration and prepares a run for the workspace.
func (ro *rootOptions) newDoctor() (*doctor.Doctor, error) {
	root, err := ro.resolveRoot()
	if err != nil {
		return nil, err
	}
	return doctor.New(root, ro.doctorOpts...)
}

// workspace returns a source that reloads configuration per run.
func (ro *rootOptions) workspace() (doctor.Workspace, error) {
	root, err := ro.resolveRoot()
	if err != nil {
		return doctor.Workspace{}, err
	}
	return doctor.Workspace{Root: root, Opts: ro.doctorOpts}, nil
}

// Exit codes returned by Execute.
const (
	ExitOK    = 0
	ExitError = 1
	// ExitFatal marks internal failures, as opposed to errors the user can fix.
	ExitFatal = 2
)

// Execute runs the root command, reports any error and returns the exit code.
func Execute() int {
	return execute(NewRootCmd())
}

func execute(root *cobra.Command) int {
	c, err := root.ExecuteC()
	if err == nil {
		return ExitOK
	}
	if c == nil {
		c = root
	}
	reportError(c, err)
	if derrors.IsFatal(err) {
		return ExitFatal
	}
	return ExitError
}

// reportError prints err as JSON on stdout when the failed command was asked
// for JSON, and for the terminal on stderr otherwise.
func reportError(c *cobra.Command, err error) {
	slog.Debug("command_failed", derrors.FormatForLog(err)...)

	if f := c.Flags().Lookup("json"); f != nil && f.Value.String() == "true" {
		if data, jerr := derrors.FormatJSON(err); jerr == nil {
			_, _ = fmt.Fprintln(c.OutOrStdout(), string(data))
			return
		}
	}
	_, _ = fmt.Fprint(c.ErrOrStderr(), derrors.FormatForCLI(err))
}
