package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/envdoctor/internal/ui"
	"github.com/Aman-CERP/envdoctor/internal/watcher"
)

// clearScreen moves the cursor home and clears the terminal.
const clearScreen = "\x1b[H\x1b[2J"

// newWatchCmd creates the watch command.
func newWatchCmd(ro *rootOptions) *cobra.Command {
	var opts checkOptions

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the checks whenever the workspace changes",
		Long: `Run the checks once, then again after every batch of changes to the
workspace root, its packages directory or the package manifests.

Edits to .envdoctor.yaml are picked up on the next run. Press Ctrl+C to stop.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, ro, opts)
		},
	}

	opts.bind(cmd)
	return cmd
}

func runWatch(cmd *cobra.Command, ro *rootOptions, opts checkOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, err := ro.resolveRoot()
	if err != nil {
		return err
	}

	d, err := ro.newDoctor()
	if err != nil {
		return err
	}
	debounce, err := d.Config().WatchDebounce()
	if err != nil {
		return err
	}

	w, err := watcher.New(watcher.Options{DebounceWindow: debounce})
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = w.Stop() }()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Start(gctx, root)
	})
	g.Go(func() error {
		defer func() { _ = w.Stop() }()
		return watchLoop(gctx, cmd, ro, w, opts)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// watchLoop runs the checks once and then once per change batch.
func watchLoop(ctx context.Context, cmd *cobra.Command, ro *rootOptions, w *watcher.Watcher, opts checkOptions) error {
	if err := watchRun(ctx, cmd, ro, opts, nil); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case batch, ok := <-w.Events():
			if !ok {
				return nil
			}
			slog.Debug("watch_batch",
				slog.Int("events", len(batch)),
				slog.Bool("config_changed", watcher.ConfigChanged(batch)))
			if err := watchRun(ctx, cmd, ro, opts, batch); err != nil {
				return err
			}
		case err, ok := <-w.Errors():
			if !ok {
				continue
			}
			slog.Warn("watch_error", slog.String("error", err.Error()))
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)
		}
	}
}

// watchRun performs one check with freshly loaded configuration. An invalid
// configuration is reported and the watch continues.
func watchRun(ctx context.Context, cmd *cobra.Command, ro *rootOptions, opts checkOptions, batch []watcher.FileEvent) error {
	out := cmd.OutOrStdout()

	d, err := ro.newDoctor()
	if err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "configuration error: %v\n", err)
		return nil
	}

	rep, err := runWithProgress(ctx, cmd, ro, d, opts)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	if !opts.json && ui.IsTTY(out) {
		_, _ = io.WriteString(out, clearScreen)
	}
	if err := writeReport(out, d, rep, opts, ro.noColor); err != nil {
		return err
	}
	if !opts.json {
		_, _ = fmt.Fprintf(out, "\n%s Watching %s for changes (Ctrl+C to stop)\n",
			time.Now().Format("15:04:05"), describeBatch(batch))
	}
	return nil
}

// describeBatch names what triggered a run.
func describeBatch(batch []watcher.FileEvent) string {
	switch {
	case len(batch) == 0:
		return "workspace"
	case watcher.ConfigChanged(batch):
		return "workspace (configuration reloaded)"
	case len(batch) == 1:
		return fmt.Sprintf("workspace (after %s %s)", batch[0].Operation, batch[0].Path)
	default:
		return fmt.Sprintf("workspace (after %d changes)", len(batch))
	}
}
