package preflight

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DefaultCommandTimeout bounds every subprocess a probe starts.
const DefaultCommandTimeout = 5 * time.Second

// Probe inspects one fact about the environment and produces one Outcome.
//
// The set of probes is closed: CommandProbe, FileProbe, BuildArtifactProbe
// and ShellQueryProbe. Run never returns an error; every failure mode of a
// probe maps to a Status.
type Probe interface {
	Run(ctx context.Context, x Executor) Outcome
	probe()
}

// Executor abstracts command resolution and execution so probes can be
// exercised without touching the host toolchain.
type Executor interface {
	// LookPath resolves a command name to an executable path.
	LookPath(name string) (string, error)

	// Output runs name with args in dir and returns its standard output.
	// Implementations must honour ctx cancellation.
	Output(ctx context.Context, dir, name string, args ...string) (string, error)
}

func (CommandProbe) probe()       {}
func (FileProbe) probe()          {}
func (BuildArtifactProbe) probe() {}
func (ShellQueryProbe) probe()    {}

// missingStatus maps the required flag of a probe to the status of an absent fact.
func missingStatus(required bool) Status {
	if required {
		return StatusFail
	}
	return StatusWarn
}

// firstLine returns the first non-empty line of s, trimmed and capped at 120 runes.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if r := []rune(line); len(r) > 120 {
			return string(r[:117]) + "..."
		}
		return line
	}
	return ""
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}
