package preflight

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// CommandProbe checks that a command resolves and reads its version string.
type CommandProbe struct {
	Name    string
	Command string

	// VersionArgs defaults to --version.
	VersionArgs []string

	// Required turns a missing or unresponsive command into a failure
	// instead of a warning.
	Required bool
	Critical bool

	// Timeout defaults to DefaultCommandTimeout.
	Timeout time.Duration

	// Hint is shown as details when the command cannot be found.
	Hint string
}

// Run implements Probe.
func (p CommandProbe) Run(ctx context.Context, x Executor) Outcome {
	o := Outcome{Name: p.Name, Critical: p.Critical}

	path, err := x.LookPath(p.Command)
	if err != nil {
		o.Status = missingStatus(p.Required)
		o.Message = fmt.Sprintf("%s not found", p.Command)
		o.Details = p.hint()
		slog.Debug("command_missing", slog.String("command", p.Command), slog.String("error", err.Error()))
		return o
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	args := p.VersionArgs
	if len(args) == 0 {
		args = []string{"--version"}
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := x.Output(runCtx, "", path, args...)
	// A hung tool fails even when its absence would only warn.
	if runCtx.Err() != nil {
		o.Status = StatusFail
		o.Message = fmt.Sprintf("timed out after %s", timeout)
		o.Details = fmt.Sprintf("%s did not answer %v", path, args)
		return o
	}

	o.Status = StatusPass
	o.Message = "installed"
	version := firstLine(out)
	if err != nil || version == "" {
		version = "version unavailable"
	}
	o.Details = fmt.Sprintf("%s (%s)", version, path)
	return o
}

func (p CommandProbe) hint() string {
	if p.Hint != "" {
		return p.Hint
	}
	return fmt.Sprintf("Install %s and make sure it is on your PATH", p.Command)
}
