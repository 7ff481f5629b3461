package cmd

import (
	"bytes"
	"os"
	"testing"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/envdoctor/internal/doctor"
	"github.com/Aman-CERP/envdoctor/internal/preflight"
)

// isolate keeps user config and env overrides out of the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")
	for _, v := range []string{
		"ENVDOCTOR_COMMAND_TIMEOUT", "ENVDOCTOR_WARN_THRESHOLD",
		"ENVDOCTOR_PACKAGE_MANAGER", "ENVDOCTOR_CORE_PACKAGE",
	} {
		t.Setenv(v, "")
		_ = os.Unsetenv(v)
	}
}

// newTestRoot returns a root command whose runs use x instead of real
// subprocesses, with stdout and stderr captured.
func newTestRoot(t *testing.T, x preflight.Executor) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	isolate(t)

	cmd := newRootCmd(&rootOptions{doctorOpts: []doctor.Option{doctor.WithExecutor(x)}})
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd, stdout, stderr
}
