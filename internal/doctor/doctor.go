// Package doctor ties configuration, the check plan and reporting together
// into one run over a workspace. The CLI commands and the MCP server all go
// through it.
package doctor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Aman-CERP/envdoctor/internal/config"
	derrors "github.com/Aman-CERP/envdoctor/internal/errors"
	"github.com/Aman-CERP/envdoctor/internal/preflight"
	"github.com/Aman-CERP/envdoctor/internal/report"
)

// Doctor is a prepared run: configuration loaded, plan built.
type Doctor struct {
	root   string
	cfg    *config.Config
	layout preflight.Layout
	groups []preflight.CheckGroup
	exec   preflight.Executor
}

// Option configures a Doctor.
type Option func(*Doctor)

// WithConfig uses cfg instead of loading configuration from disk.
func WithConfig(cfg *config.Config) Option {
	return func(d *Doctor) {
		d.cfg = cfg
	}
}

// WithExecutor replaces the subprocess executor.
func WithExecutor(x preflight.Executor) Option {
	return func(d *Doctor) {
		d.exec = x
	}
}

// New loads configuration for root and builds the check plan.
func New(root string, opts ...Option) (*Doctor, error) {
	d := &Doctor{root: root}
	for _, opt := range opts {
		opt(d)
	}

	if d.cfg == nil {
		cfg, err := config.Load(root)
		if err != nil {
			return nil, derrors.ConfigError(err.Error(), err).
				WithDetail("root", root).
				WithSuggestion("Fix " + config.ProjectConfigFile + " or run 'envdoctor config show' to inspect the effective settings")
		}
		d.cfg = cfg
	}

	d.layout = d.cfg.Layout(root)
	d.groups = preflight.Plan(d.layout)
	if d.exec == nil {
		d.exec = preflight.NewExecExecutor(d.layout.SearchDirs()...)
	}
	return d, nil
}

// Root returns the workspace root.
func (d *Doctor) Root() string {
	return d.root
}

// Config returns the effective configuration.
func (d *Doctor) Config() *config.Config {
	return d.cfg
}

// Groups returns the number of check groups a run executes at most.
func (d *Doctor) Groups() int {
	return len(d.groups)
}

// Run executes the plan and builds the report. A missing foundational tool
// is not an error here: the report is marked aborted and blocked. Only a
// cancelled ctx is returned as an error, together with the partial report.
func (d *Doctor) Run(ctx context.Context, obs preflight.Observer) (report.Report, error) {
	opts := []preflight.Option{preflight.WithExecutor(d.exec)}
	if obs != nil {
		opts = append(opts, preflight.WithObserver(obs))
	}

	start := time.Now()
	res, err := preflight.NewOrchestrator(opts...).Run(ctx, d.groups)
	rep := report.New(d.root, res, d.cfg.ReportOptions())

	if err != nil && !errors.Is(err, preflight.ErrFoundationalMissing) {
		return rep, err
	}
	if res.Aborted {
		slog.Info("check_aborted", slog.String("root", d.root))
	}

	slog.Debug("check_complete",
		slog.String("root", d.root),
		slog.String("verdict", string(rep.Summary.Verdict)),
		slog.Int("pass", rep.Summary.Pass),
		slog.Int("warn", rep.Summary.Warn),
		slog.Int("fail", rep.Summary.Fail),
		slog.Duration("duration", time.Since(start)))
	return rep, nil
}

// Workspace runs a fresh Doctor per call so configuration edits are picked
// up between runs.
type Workspace struct {
	Root string
	Opts []Option
}

// Check loads configuration and runs every check.
func (w Workspace) Check(ctx context.Context) (report.Report, error) {
	d, err := New(w.Root, w.Opts...)
	if err != nil {
		return report.Report{}, err
	}
	return d.Run(ctx, nil)
}

// Config loads the effective configuration.
func (w Workspace) Config() (*config.Config, error) {
	d, err := New(w.Root, w.Opts...)
	if err != nil {
		return nil, err
	}
	return d.Config(), nil
}
