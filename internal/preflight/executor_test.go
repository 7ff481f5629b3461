package preflight

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "github.com/Aman-CERP/envdoctor/internal/errors"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestExecExecutor_LookPathSearchDirs(t *testing.T) {
	skipWithoutShell(t)

	// Given: a workspace-local binary that is not on PATH
	bin := t.TempDir()
	tool := filepath.Join(bin, "envdoctor-fake-tsc")
	require.NoError(t, os.WriteFile(tool, []byte("#!/bin/sh\necho 'Version 5.4.5'\n"), 0o755))
	x := NewExecExecutor(bin)

	// When: resolving it
	path, err := x.LookPath("envdoctor-fake-tsc")

	// Then: the search dir is used
	require.NoError(t, err)
	assert.Equal(t, tool, path)

	out, err := x.Output(context.Background(), "", path, "--version")
	require.NoError(t, err)
	assert.Equal(t, "Version 5.4.5", firstLine(out))
}

func TestExecExecutor_LookPathMissing(t *testing.T) {
	x := NewExecExecutor(t.TempDir())

	_, err := x.LookPath("envdoctor-definitely-missing")

	require.Error(t, err)
	assert.Equal(t, derrors.ErrCodeToolMissing, derrors.GetCode(err))

	// Cached results keep the same answer.
	_, again := x.LookPath("envdoctor-definitely-missing")
	assert.Equal(t, err, again)
}

func TestExecExecutor_NonExecutableIgnored(t *testing.T) {
	skipWithoutShell(t)

	bin := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(bin, "envdoctor-plain"), []byte("data"), 0o644))

	_, err := NewExecExecutor(bin).LookPath("envdoctor-plain")
	assert.Error(t, err)
}

func TestExecExecutor_Output(t *testing.T) {
	skipWithoutShell(t)
	x := NewExecExecutor()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules", "a"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules", "b"), 0o755))

	t.Run("runs in dir", func(t *testing.T) {
		out, err := x.Output(context.Background(), dir, "sh", "-c", "ls -1 node_modules | wc -l")
		require.NoError(t, err)
		assert.Equal(t, "2", firstLine(out))
	})

	t.Run("stderr fallback", func(t *testing.T) {
		out, err := x.Output(context.Background(), dir, "sh", "-c", "echo v1.0.0 >&2")
		require.NoError(t, err)
		assert.Equal(t, "v1.0.0", firstLine(out))
	})

	t.Run("failure", func(t *testing.T) {
		_, err := x.Output(context.Background(), dir, "sh", "-c", "echo boom >&2; exit 3")
		require.Error(t, err)
		assert.Equal(t, derrors.ErrCodeCommandFailed, derrors.GetCode(err))
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("deadline", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		start := time.Now()
		_, err := x.Output(ctx, dir, "sh", "-c", "sleep 5")

		require.Error(t, err)
		assert.Equal(t, derrors.ErrCodeCommandTimeout, derrors.GetCode(err))
		assert.Less(t, time.Since(start), 3*time.Second)
	})
}
