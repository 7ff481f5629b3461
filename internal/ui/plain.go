package ui

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/Aman-CERP/envdoctor/internal/output"
	"github.com/Aman-CERP/envdoctor/internal/preflight"
)

// PlainRenderer outputs plain text progress (for CI/pipes).
type PlainRenderer struct {
	mu      sync.Mutex
	out     io.Writer
	tracker *ProgressTracker
}

// NewPlainRenderer creates a plain text renderer.
func NewPlainRenderer(cfg Config) *PlainRenderer {
	return &PlainRenderer{
		out:     cfg.Output,
		tracker: NewProgressTracker(cfg.Total),
	}
}

// Start implements Renderer.
func (r *PlainRenderer) Start(ctx context.Context) error {
	return nil
}

// GroupStarted implements preflight.Observer.
func (r *PlainRenderer) GroupStarted(name string, probes int) {
	r.tracker.StartGroup(name, probes)
}

// OutcomeRecorded implements preflight.Observer.
func (r *PlainRenderer) OutcomeRecorded(o preflight.Outcome) {
	r.tracker.Record(o)
}

// GroupFinished implements preflight.Observer.
// Format: [index/total] name: status (n checks)
func (r *PlainRenderer) GroupFinished(res preflight.GroupResult) {
	r.tracker.FinishGroup(res)
	stats := r.tracker.Stats()

	r.mu.Lock()
	defer r.mu.Unlock()

	line := fmt.Sprintf("[%d/%d] %s: %s (%s)",
		stats.GroupIndex, stats.TotalGroups, res.Name, res.Status, plural(res.Outcomes, "check"))
	if !res.Satisfied {
		line += ", unsatisfied"
	}
	_, _ = fmt.Fprintln(r.out, output.SanitizeLine(line))
}

// Stop implements Renderer.
func (r *PlainRenderer) Stop() error {
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
