package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/envdoctor/internal/doctor"
	"github.com/Aman-CERP/envdoctor/internal/output"
	"github.com/Aman-CERP/envdoctor/internal/report"
	"github.com/Aman-CERP/envdoctor/internal/ui"
)

// checkOptions are the flags shared by the root, check and watch commands.
type checkOptions struct {
	json    bool
	verbose bool
	plain   bool
	quiet   bool
}

func (o *checkOptions) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.json, "json", false, "Output the report as JSON")
	cmd.Flags().BoolVarP(&o.verbose, "verbose", "v", false, "Show details for passing checks")
	cmd.Flags().BoolVar(&o.plain, "plain", false, "Plain progress lines instead of the interactive display")
	cmd.Flags().BoolVarP(&o.quiet, "quiet", "q", false, "Hide progress, print only the report")
}

// newCheckCmd creates the check command.
func newCheckCmd(ro *rootOptions) *cobra.Command {
	var opts checkOptions

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run every environment check once",
		Long: `Run the check battery against the workspace and print a report.

Groups run in order. A missing runtime or package manager aborts the run
after the toolchain group; the report then says so and the verdict is
blocked. The exit status is 0 whatever the verdict; use --json and read
summary.verdict to gate scripts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, ro, opts)
		},
	}

	opts.bind(cmd)
	return cmd
}

func runCheck(cmd *cobra.Command, ro *rootOptions, opts checkOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := ro.newDoctor()
	if err != nil {
		return err
	}

	rep, err := runWithProgress(ctx, cmd, ro, d, opts)
	if err != nil {
		return fmt.Errorf("check interrupted: %w", err)
	}
	return writeReport(cmd.OutOrStdout(), d, rep, opts, ro.noColor)
}

// runWithProgress runs d, showing progress on stderr unless the output is
// JSON or progress is disabled.
func runWithProgress(ctx context.Context, cmd *cobra.Command, ro *rootOptions, d *doctor.Doctor, opts checkOptions) (report.Report, error) {
	if opts.json || opts.quiet {
		return d.Run(ctx, nil)
	}

	r := ui.NewRenderer(ui.NewConfig(cmd.ErrOrStderr(),
		ui.WithForcePlain(opts.plain),
		ui.WithNoColor(ro.noColor || ui.DetectNoColor()),
		ui.WithProjectDir(d.Root()),
		ui.WithTotal(d.Groups()),
	))
	if err := r.Start(ctx); err != nil {
		slog.Warn("progress_display_unavailable", slog.String("error", err.Error()))
		return d.Run(ctx, nil)
	}

	rep, err := d.Run(ctx, r)
	if stopErr := r.Stop(); stopErr != nil {
		slog.Debug("progress_display_stop_failed", slog.String("error", stopErr.Error()))
	}
	return rep, err
}

// writeReport prints rep as JSON or as the human-readable report.
func writeReport(w io.Writer, d *doctor.Doctor, rep report.Report, opts checkOptions, noColor bool) error {
	if opts.json {
		return rep.JSON(w)
	}

	noColor = noColor || ui.DetectNoColor() || !ui.IsTTY(w)
	out := output.New(w, output.WithTheme(ui.GetStyles(noColor).Theme()))

	ropts := d.Config().ReportOptions()
	ropts.Verbose = opts.verbose
	rep.Render(out, ropts)
	return nil
}
