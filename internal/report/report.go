// Package report turns a finished run into counts, a verdict, and a
// rendered report.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Aman-CERP/envdoctor/internal/output"
	"github.com/Aman-CERP/envdoctor/internal/preflight"
)

// DefaultReadyWarnThreshold is the largest number of warnings a run may
// record and still be ready.
const DefaultReadyWarnThreshold = 2

// Verdict is the overall readiness of a workspace.
type Verdict string

const (
	// VerdictReady means no failures and few warnings.
	VerdictReady Verdict = "ready"
	// VerdictUsable means no failures but more warnings than the threshold.
	VerdictUsable Verdict = "usable"
	// VerdictBlocked means at least one failure, or an aborted run.
	VerdictBlocked Verdict = "blocked"
)

// Options configures aggregation and rendering.
type Options struct {
	// ReadyWarnThreshold defaults to DefaultReadyWarnThreshold when negative.
	ReadyWarnThreshold int

	// Verbose prints details for passing outcomes too.
	Verbose bool
}

// DefaultOptions returns the default reporting options.
func DefaultOptions() Options {
	return Options{ReadyWarnThreshold: DefaultReadyWarnThreshold}
}

// Summary is the aggregate view of a run.
type Summary struct {
	Pass  int `json:"pass"`
	Warn  int `json:"warn"`
	Fail  int `json:"fail"`
	Total int `json:"total"`

	Verdict Verdict `json:"verdict"`
	Aborted bool    `json:"aborted"`

	// Critical holds failed outcomes flagged critical, in log order.
	Critical []preflight.Outcome `json:"critical,omitempty"`
}

// Summarize partitions outcomes by status and derives the verdict.
func Summarize(outcomes []preflight.Outcome, aborted bool, opts Options) Summary {
	threshold := opts.ReadyWarnThreshold
	if threshold < 0 {
		threshold = DefaultReadyWarnThreshold
	}

	s := Summary{Total: len(outcomes), Aborted: aborted}
	for _, o := range outcomes {
		switch o.Status {
		case preflight.StatusPass:
			s.Pass++
		case preflight.StatusWarn:
			s.Warn++
		default:
			s.Fail++
		}
		if o.IsCritical() {
			s.Critical = append(s.Critical, o)
		}
	}

	switch {
	case s.Fail > 0 || aborted:
		s.Verdict = VerdictBlocked
	case s.Warn <= threshold:
		s.Verdict = VerdictReady
	default:
		s.Verdict = VerdictUsable
	}
	return s
}

// Report is the complete, serialisable result of a run.
type Report struct {
	Root     string                  `json:"root,omitempty"`
	Summary  Summary                 `json:"summary"`
	Groups   []preflight.GroupResult `json:"groups"`
	Outcomes []preflight.Outcome     `json:"outcomes"`
}

// New builds a Report from an orchestrator result.
func New(root string, res *preflight.Result, opts Options) Report {
	outcomes := res.Log.Entries()
	return Report{
		Root:     root,
		Summary:  Summarize(outcomes, res.Aborted, opts),
		Groups:   res.Groups,
		Outcomes: outcomes,
	}
}

// JSON writes the report as indented JSON.
func (r Report) JSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Render writes the human-readable report: one section per group, one line
// per outcome, then the summary block.
func (r Report) Render(w *output.Writer, opts Options) {
	w.Rule("Environment Check")
	if r.Root != "" {
		w.Status("", "Workspace: "+r.Root)
	}

	group := ""
	for _, o := range r.Outcomes {
		if o.Group != group {
			group = o.Group
			w.Newline()
			w.Header(r.groupTitle(group))
		}
		line := fmt.Sprintf("%s: %s", o.Name, o.Message)
		switch o.Status {
		case preflight.StatusPass:
			w.Success(line)
			if opts.Verbose {
				w.Detail(o.Details)
			}
		case preflight.StatusWarn:
			w.Warning(line)
			w.Detail(o.Details)
		default:
			w.Error(line)
			w.Detail(o.Details)
		}
	}

	r.renderSummary(w)
}

// groupTitle annotates a group heading with its satisfaction.
func (r Report) groupTitle(name string) string {
	for _, g := range r.Groups {
		if g.Name == name && !g.Satisfied {
			return name + " (unsatisfied)"
		}
	}
	return name
}

func (r Report) renderSummary(w *output.Writer) {
	s := r.Summary

	w.Newline()
	w.Rule("Summary")
	w.Status("", fmt.Sprintf("Passed: %d  Warnings: %d  Failed: %d  Total: %d", s.Pass, s.Warn, s.Fail, s.Total))
	w.Newline()

	switch s.Verdict {
	case VerdictReady:
		w.Success("Status: " + strings.ToUpper(string(s.Verdict)))
		w.Status("", "Your environment is ready for development.")
	case VerdictUsable:
		w.Warning("Status: " + strings.ToUpper(string(s.Verdict)))
		w.Status("", "Your environment works, but some optional pieces are missing.")
		w.Status("", "Review the warnings above when you have a moment.")
	default:
		w.Error("Status: " + strings.ToUpper(string(s.Verdict)))
		if s.Aborted {
			w.Status("", "Foundational tools are missing; remaining checks were skipped.")
		}
		if len(s.Critical) > 0 {
			w.Newline()
			w.Header("Critical failures:")
			for i, o := range s.Critical {
				w.Item(i+1, fmt.Sprintf("%s: %s", o.Name, o.Message))
			}
		}
		w.Newline()
		w.Status("", "Fix the failures above, then run envdoctor again.")
	}
}
