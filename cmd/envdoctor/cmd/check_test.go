package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/envdoctor/internal/config"
	derrors "github.com/Aman-CERP/envdoctor/internal/errors"
	"github.com/Aman-CERP/envdoctor/internal/preflight/preflighttest"
)

type jsonReport struct {
	Root    string `json:"root"`
	Summary struct {
		Pass     int    `json:"pass"`
		Warn     int    `json:"warn"`
		Fail     int    `json:"fail"`
		Verdict  string `json:"verdict"`
		Aborted  bool   `json:"aborted"`
		Critical []struct {
			Name string `json:"name"`
		} `json:"critical"`
	} `json:"summary"`
}

func TestCheckCmd_JSON(t *testing.T) {
	tests := []struct {
		name        string
		prepare     func(t *testing.T, root string)
		x           *preflighttest.Executor
		wantVerdict string
		wantAborted bool
	}{
		{
			name:        "healthy workspace is ready",
			prepare:     func(*testing.T, string) {},
			x:           preflighttest.Healthy(),
			wantVerdict: "ready",
		},
		{
			name: "missing root manifest is blocked",
			prepare: func(t *testing.T, root string) {
				preflighttest.Remove(t, root, "package.json")
			},
			x:           preflighttest.Healthy(),
			wantVerdict: "blocked",
		},
		{
			name:        "missing runtime aborts",
			prepare:     func(*testing.T, string) {},
			x:           preflighttest.Healthy().WithoutTool("node"),
			wantVerdict: "blocked",
			wantAborted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a workspace in the described state
			ws := preflighttest.WriteWorkspace(t)
			tt.prepare(t, ws)
			cmd, stdout, _ := newTestRoot(t, tt.x)
			cmd.SetArgs([]string{"check", "--root", ws, "--json"})

			// When: running check --json
			err := cmd.Execute()

			// Then: the command succeeds and the verdict matches
			require.NoError(t, err)
			var rep jsonReport
			require.NoError(t, json.Unmarshal(stdout.Bytes(), &rep))
			assert.Equal(t, tt.wantVerdict, rep.Summary.Verdict)
			assert.Equal(t, tt.wantAborted, rep.Summary.Aborted)
			assert.Equal(t, ws, rep.Root)
		})
	}
}

func TestCheckCmd_AbortedRendersCriticalList(t *testing.T) {
	// Given: pnpm is missing
	ws := preflighttest.WriteWorkspace(t)
	cmd, stdout, _ := newTestRoot(t, preflighttest.Healthy().WithoutTool("pnpm"))
	cmd.SetArgs([]string{"check", "--root", ws, "--quiet"})

	// When: running check
	require.NoError(t, cmd.Execute())

	// Then: the report explains the abort and lists the critical failure
	out := stdout.String()
	assert.Contains(t, out, "Status: BLOCKED")
	assert.Contains(t, out, "Foundational tools are missing")
	assert.Contains(t, out, "Critical failures:")
	assert.Contains(t, out, "pnpm installed")
}

func TestCheckCmd_PlainProgress(t *testing.T) {
	// Given: a healthy workspace and --plain
	ws := preflighttest.WriteWorkspace(t)
	cmd, stdout, stderr := newTestRoot(t, preflighttest.Healthy())
	cmd.SetArgs([]string{"check", "--root", ws, "--plain"})

	// When: running check
	require.NoError(t, cmd.Execute())

	// Then: progress lines go to stderr and the report to stdout
	assert.Contains(t, stderr.String(), "[1/")
	assert.NotContains(t, stdout.String(), "[1/")
	assert.Contains(t, stdout.String(), "Summary")
}

func TestCheckCmd_VerboseShowsPassDetails(t *testing.T) {
	ws := preflighttest.WriteWorkspace(t)

	run := func(args ...string) string {
		cmd, stdout, _ := newTestRoot(t, preflighttest.Healthy())
		cmd.SetArgs(append([]string{"check", "--root", ws, "--quiet"}, args...))
		require.NoError(t, cmd.Execute())
		return stdout.String()
	}

	assert.Greater(t, len(run("--verbose")), len(run()))
}

func TestCheckCmd_InvalidConfig(t *testing.T) {
	// Given: a project config with a bad timeout
	ws := preflighttest.WriteWorkspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(ws, config.ProjectConfigFile),
		[]byte("tools:\n  command_timeout: later\n"), 0o644))
	cmd, _, _ := newTestRoot(t, preflighttest.Healthy())
	cmd.SetArgs([]string{"check", "--root", ws})

	// When: running check
	err := cmd.Execute()

	// Then: a configuration error is returned
	require.Error(t, err)
	assert.Equal(t, derrors.CategoryConfig, derrors.GetCategory(err))
}
