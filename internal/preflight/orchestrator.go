package preflight

import (
	"context"
	"log/slog"
	"strings"
	"time"

	derrors "github.com/Aman-CERP/envdoctor/internal/errors"
)

// ErrFoundationalMissing is returned (matched by errors.Is) when a
// foundational tool is missing and the run stopped after the first group.
var ErrFoundationalMissing = derrors.New(derrors.ErrCodeToolMissing, "foundational tool missing", nil)

// Observer is notified about run progress. Calls for outcomes of the same
// group may arrive from several goroutines.
type Observer interface {
	GroupStarted(name string, probes int)
	OutcomeRecorded(o Outcome)
	GroupFinished(result GroupResult)
}

// Result is everything a run produced.
type Result struct {
	Log     *ResultLog
	Groups  []GroupResult
	Aborted bool
}

// Orchestrator runs check groups in order.
type Orchestrator struct {
	exec     Executor
	observer Observer
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithExecutor sets the executor used by command and shell probes.
func WithExecutor(x Executor) Option {
	return func(o *Orchestrator) {
		o.exec = x
	}
}

// WithObserver sets a progress observer.
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) {
		o.observer = obs
	}
}

// NewOrchestrator creates an Orchestrator with the given options.
func NewOrchestrator(opts ...Option) *Orchestrator {
	o := &Orchestrator{}
	for _, opt := range opts {
		opt(o)
	}
	if o.exec == nil {
		o.exec = NewExecExecutor()
	}
	return o
}

// Run executes groups in order on a fresh ResultLog. Each group is a join
// point: the next group starts only after every probe of the current one
// recorded its outcome.
//
// When a foundational group records a failure, Run stops and returns the
// partial result together with an error matching ErrFoundationalMissing.
// A cancelled ctx stops the run between groups.
func (o *Orchestrator) Run(ctx context.Context, groups []CheckGroup) (*Result, error) {
	res := &Result{Log: NewResultLog()}

	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		start := time.Now()
		mark := res.Log.Len()
		if o.observer != nil {
			o.observer.GroupStarted(g.Name, g.size())
		}

		rec := groupRecorder{group: g.Name, next: res.Log}
		if o.observer != nil {
			rec.onAdd = o.observer.OutcomeRecorded
		}
		g.Run(ctx, o.exec, rec)

		outcomes := res.Log.Since(mark)
		gr := g.Evaluate(outcomes)
		res.Groups = append(res.Groups, gr)
		if o.observer != nil {
			o.observer.GroupFinished(gr)
		}

		slog.Debug("group_complete",
			slog.String("group", g.Name),
			slog.String("status", gr.Status.String()),
			slog.Int("outcomes", len(outcomes)),
			slog.Duration("duration", time.Since(start)))

		if g.Foundational {
			if missing := failedNames(outcomes); len(missing) > 0 {
				res.Aborted = true
				slog.Debug("run_aborted", slog.String("missing", strings.Join(missing, ", ")))
				return res, derrors.New(derrors.ErrCodeToolMissing,
					"missing foundational tools: "+strings.Join(missing, ", "), nil).
					WithSuggestion("Install the missing tools and run envdoctor again")
			}
		}
	}

	return res, nil
}

func failedNames(outcomes []Outcome) []string {
	var names []string
	for _, o := range outcomes {
		if o.Status == StatusFail {
			names = append(names, o.Name)
		}
	}
	return names
}
