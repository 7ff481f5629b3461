package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/envdoctor/internal/output"
	"github.com/Aman-CERP/envdoctor/internal/preflight"
)

func outcomes(statuses ...preflight.Status) []preflight.Outcome {
	out := make([]preflight.Outcome, len(statuses))
	for i, s := range statuses {
		out[i] = preflight.Outcome{Name: s.String(), Status: s}
	}
	return out
}

func TestSummarize_Verdict(t *testing.T) {
	const (
		pass = preflight.StatusPass
		warn = preflight.StatusWarn
		fail = preflight.StatusFail
	)

	tests := []struct {
		name     string
		statuses []preflight.Status
		aborted  bool
		want     Verdict
	}{
		{"all pass", []preflight.Status{pass, pass, pass}, false, VerdictReady},
		{"two warnings", []preflight.Status{pass, warn, warn}, false, VerdictReady},
		{"three warnings", []preflight.Status{warn, warn, warn}, false, VerdictUsable},
		{"one failure", []preflight.Status{pass, fail}, false, VerdictBlocked},
		{"failure beats warnings", []preflight.Status{warn, warn, warn, fail}, false, VerdictBlocked},
		{"aborted", []preflight.Status{pass, pass}, true, VerdictBlocked},
		{"empty", nil, false, VerdictReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summarize(outcomes(tt.statuses...), tt.aborted, DefaultOptions())
			assert.Equal(t, tt.want, s.Verdict)
		})
	}
}

func TestSummarize_PartitionIsTotal(t *testing.T) {
	in := outcomes(
		preflight.StatusPass, preflight.StatusWarn, preflight.StatusFail,
		preflight.StatusPass, preflight.StatusWarn,
	)

	s := Summarize(in, false, DefaultOptions())

	assert.Equal(t, 2, s.Pass)
	assert.Equal(t, 2, s.Warn)
	assert.Equal(t, 1, s.Fail)
	assert.Equal(t, len(in), s.Total)
	assert.Equal(t, s.Total, s.Pass+s.Warn+s.Fail)
}

func TestSummarize_Threshold(t *testing.T) {
	in := outcomes(preflight.StatusWarn, preflight.StatusWarn, preflight.StatusWarn)

	assert.Equal(t, VerdictReady, Summarize(in, false, Options{ReadyWarnThreshold: 3}).Verdict)
	assert.Equal(t, VerdictUsable, Summarize(in, false, Options{ReadyWarnThreshold: 0}).Verdict)
	assert.Equal(t, VerdictUsable, Summarize(in, false, Options{ReadyWarnThreshold: -1}).Verdict)
}

func TestSummarize_CriticalSet(t *testing.T) {
	// Given: critical and non-critical failures plus a critical outcome that passed
	in := []preflight.Outcome{
		{Name: "node installed", Status: preflight.StatusPass, Critical: true},
		{Name: "package.json", Status: preflight.StatusFail, Critical: true},
		{Name: "tsconfig.json", Status: preflight.StatusFail},
		{Name: "packages/web", Status: preflight.StatusWarn},
		{Name: "core package build", Status: preflight.StatusFail, Critical: true},
	}

	// When: summarising
	s := Summarize(in, false, DefaultOptions())

	// Then: only flagged failures are critical, in log order
	require.Len(t, s.Critical, 2)
	assert.Equal(t, "package.json", s.Critical[0].Name)
	assert.Equal(t, "core package build", s.Critical[1].Name)
}

func sampleReport() Report {
	entries := []preflight.Outcome{
		{Name: "node installed", Status: preflight.StatusPass, Message: "installed", Details: "v20.11.0 (/usr/bin/node)", Group: preflight.GroupFoundational, Critical: true},
		{Name: "pnpm installed", Status: preflight.StatusFail, Message: "pnpm not found", Details: "corepack enable", Group: preflight.GroupFoundational, Critical: true},
	}
	return Report{
		Root:     "/ws",
		Summary:  Summarize(entries, true, DefaultOptions()),
		Groups:   []preflight.GroupResult{{Name: preflight.GroupFoundational, Status: preflight.StatusFail, Outcomes: 2}},
		Outcomes: entries,
	}
}

func TestReport_RenderBlocked(t *testing.T) {
	// Given: an aborted run
	r := sampleReport()
	buf := &bytes.Buffer{}

	// When: rendering
	r.Render(output.New(buf), DefaultOptions())

	// Then: lines, summary and the critical list are present
	out := buf.String()
	assert.Contains(t, out, "Foundational tools (unsatisfied)")
	assert.Contains(t, out, output.GlyphPass+" node installed: installed")
	assert.Contains(t, out, output.GlyphFail+" pnpm installed: pnpm not found")
	assert.Contains(t, out, "      corepack enable")
	assert.NotContains(t, out, "v20.11.0", "pass details only in verbose mode")
	assert.Contains(t, out, "Passed: 1  Warnings: 0  Failed: 1  Total: 2")
	assert.Contains(t, out, "Status: BLOCKED")
	assert.Contains(t, out, "remaining checks were skipped")
	assert.Contains(t, out, "  1. pnpm installed: pnpm not found")
}

func TestReport_RenderVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	sampleReport().Render(output.New(buf), Options{Verbose: true})

	assert.Contains(t, buf.String(), "      v20.11.0 (/usr/bin/node)")
}

func TestReport_RenderReady(t *testing.T) {
	entries := []preflight.Outcome{
		{Name: ".env", Status: preflight.StatusWarn, Message: "not found", Details: "/ws/.env (optional)", Group: preflight.GroupEnvironment},
	}
	r := Report{Summary: Summarize(entries, false, DefaultOptions()), Outcomes: entries,
		Groups: []preflight.GroupResult{{Name: preflight.GroupEnvironment, Status: preflight.StatusWarn, Satisfied: true}}}
	buf := &bytes.Buffer{}

	r.Render(output.New(buf), DefaultOptions())

	out := buf.String()
	assert.Contains(t, out, "Status: READY")
	assert.NotContains(t, out, "unsatisfied")
	assert.NotContains(t, out, "Critical failures")
	// One section header for the group; the report title also contains the word.
	assert.Equal(t, 1, strings.Count(out, "\n"+preflight.GroupEnvironment+"\n"))
}

func TestReport_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, sampleReport().JSON(buf))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	summary := decoded["summary"].(map[string]any)
	assert.Equal(t, "blocked", summary["verdict"])
	assert.Equal(t, true, summary["aborted"])

	first := decoded["outcomes"].([]any)[0].(map[string]any)
	assert.Equal(t, "pass", first["status"])
	assert.Equal(t, preflight.GroupFoundational, first["group"])
}
