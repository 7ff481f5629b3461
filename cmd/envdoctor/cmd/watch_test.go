package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/envdoctor/internal/config"
	"github.com/Aman-CERP/envdoctor/internal/preflight/preflighttest"
	"github.com/Aman-CERP/envdoctor/internal/watcher"
)

func TestDescribeBatch(t *testing.T) {
	tests := []struct {
		name  string
		batch []watcher.FileEvent
		want  string
	}{
		{"initial run", nil, "workspace"},
		{"config edit", []watcher.FileEvent{{Path: ".envdoctor.yaml", Operation: watcher.OpConfigChange}}, "configuration reloaded"},
		{"single change", []watcher.FileEvent{{Path: ".env", Operation: watcher.OpDelete}}, ".env"},
		{"many changes", []watcher.FileEvent{{Path: "a"}, {Path: "b"}}, "2 changes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, describeBatch(tt.batch), tt.want)
		})
	}
}

func TestWatchCmd_RunsUntilCancelled(t *testing.T) {
	// Given: a healthy workspace with a short debounce
	ws := preflighttest.WriteWorkspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(ws, config.ProjectConfigFile),
		[]byte("watch:\n  debounce: 50ms\n"), 0o644))
	cmd, stdout, _ := newTestRoot(t, preflighttest.Healthy())
	cmd.SetArgs([]string{"watch", "--root", ws, "--quiet"})

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	// When: watching until the context ends
	err := cmd.ExecuteContext(ctx)

	// Then: the initial report was printed and the watch ended cleanly
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Status: READY")
	assert.Contains(t, stdout.String(), "Watching workspace")
}

func TestWatchRun_InvalidConfigKeepsWatching(t *testing.T) {
	// Given: a workspace whose config became invalid
	ws := preflighttest.WriteWorkspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(ws, config.ProjectConfigFile),
		[]byte("tools:\n  command_timeout: never\n"), 0o644))
	cmd, stdout, stderr := newTestRoot(t, preflighttest.Healthy())
	ro := &rootOptions{root: ws}

	// When: a run is triggered
	err := watchRun(context.Background(), cmd, ro, checkOptions{quiet: true}, nil)

	// Then: the error is reported without stopping the watch
	require.NoError(t, err)
	assert.Contains(t, stderr.String(), "configuration error")
	assert.Empty(t, stdout.String())
}
