package preflight

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Predicate classifies the output of a shell query.
// It returns whether the condition holds and a short message.
type Predicate func(output string) (ok bool, message string)

// ShellQueryProbe evaluates a shell expression and classifies its output.
// Execution errors downgrade to StatusWarn: no clean signal does not prove
// the condition is false.
type ShellQueryProbe struct {
	Name       string
	Expression string
	Dir        string
	Predicate  Predicate

	// Shell defaults to sh.
	Shell string

	// Timeout defaults to DefaultCommandTimeout.
	Timeout time.Duration
}

// Run implements Probe.
func (p ShellQueryProbe) Run(ctx context.Context, x Executor) Outcome {
	o := Outcome{Name: p.Name}

	shell := p.Shell
	if shell == "" {
		shell = "sh"
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := x.Output(runCtx, p.Dir, shell, "-c", p.Expression)
	if err != nil {
		o.Status = StatusWarn
		o.Message = "query failed"
		if runCtx.Err() != nil {
			o.Message = fmt.Sprintf("query timed out after %s", timeout)
		}
		o.Details = fmt.Sprintf("%s: %v", p.Expression, err)
		return o
	}

	if p.Predicate == nil {
		o.Status = StatusPass
		o.Message = firstLine(out)
		return o
	}

	ok, msg := p.Predicate(out)
	o.Message = msg
	if ok {
		o.Status = StatusPass
	} else {
		o.Status = StatusWarn
	}
	return o
}

// CountAtLeast builds a Predicate that parses an integer count and requires
// it to be at least min. noun names what was counted.
func CountAtLeast(min int, noun string) Predicate {
	return func(output string) (bool, string) {
		n, err := strconv.Atoi(strings.TrimSpace(output))
		if err != nil {
			return false, fmt.Sprintf("unexpected output %q", firstLine(output))
		}
		if n < min {
			return false, fmt.Sprintf("%d %s (expected at least %d)", n, noun, min)
		}
		return true, fmt.Sprintf("%d %s", n, noun)
	}
}
