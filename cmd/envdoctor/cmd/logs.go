package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/spf13/cobra"

	derrors "github.com/Aman-CERP/envdoctor/internal/errors"
	"github.com/Aman-CERP/envdoctor/internal/logging"
)

type logsOptions struct {
	follow  bool
	lines   int
	level   string
	filter  string
	logFile string
}

// newLogsCmd creates the logs command.
func newLogsCmd(ro *rootOptions) *cobra.Command {
	var opts logsOptions

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "View envdoctor logs",
		Long: `Show the envdoctor log file with filtering and follow support.

Logs are written by runs with --debug and by the MCP server.

Examples:
  envdoctor logs               # last 50 lines
  envdoctor logs -f            # follow
  envdoctor logs --level warn  # warnings and errors only
  envdoctor logs --filter probe`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogs(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, ro.noColor)
		},
	}

	cmd.Flags().BoolVarP(&opts.follow, "follow", "f", false, "Follow log output (like tail -f)")
	cmd.Flags().IntVarP(&opts.lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().StringVar(&opts.level, "level", "", "Filter by minimum level (debug|info|warn|error)")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "Filter by pattern (regex)")
	cmd.Flags().StringVar(&opts.logFile, "file", "", "Path to log file")

	return cmd
}

func runLogs(ctx context.Context, stdout, stderr io.Writer, opts logsOptions, noColor bool) error {
	if opts.lines < 0 {
		return derrors.New(derrors.ErrCodeInvalidInput, fmt.Sprintf("invalid --lines %d: must not be negative", opts.lines), nil)
	}
	switch opts.level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return derrors.New(derrors.ErrCodeInvalidInput, fmt.Sprintf("invalid --level %q", opts.level), nil).
			WithSuggestion("Use one of debug, info, warn or error")
	}

	var pattern *regexp.Regexp
	if opts.filter != "" {
		var err error
		pattern, err = regexp.Compile(opts.filter)
		if err != nil {
			return derrors.New(derrors.ErrCodeInvalidInput, "invalid filter pattern: "+err.Error(), err)
		}
	}

	path, err := logging.FindLogFile(opts.logFile)
	if err != nil {
		return err
	}

	viewer := logging.NewViewer(logging.ViewerConfig{
		Level:   opts.level,
		Pattern: pattern,
		NoColor: noColor,
	}, stdout)

	_, _ = fmt.Fprintf(stderr, "Log file: %s\n", path)
	if opts.follow {
		_, _ = fmt.Fprintln(stderr, "Following... (Ctrl+C to stop)")
	}
	_, _ = fmt.Fprintln(stderr, "---")

	if opts.follow {
		return followLogs(ctx, stdout, stderr, viewer, path)
	}

	entries, err := viewer.Tail(path, opts.lines)
	if err != nil {
		return err
	}
	viewer.Print(entries)
	return nil
}

func followLogs(ctx context.Context, stdout, stderr io.Writer, viewer *logging.Viewer, path string) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	entries := make(chan logging.LogEntry, 100)
	errCh := make(chan error, 1)

	go func() {
		errCh <- viewer.Follow(ctx, path, entries)
	}()

	for {
		select {
		case entry := <-entries:
			_, _ = fmt.Fprintln(stdout, viewer.FormatEntry(entry))
		case err := <-errCh:
			return err
		case <-ctx.Done():
			_, _ = fmt.Fprintln(stderr, "\n---\nStopped.")
			return nil
		}
	}
}
