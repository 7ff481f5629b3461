package preflight

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	derrors "github.com/Aman-CERP/envdoctor/internal/errors"
)

// lookupCacheSize bounds the number of resolved command names kept per executor.
const lookupCacheSize = 64

// waitDelay is how long a cancelled subprocess may keep its pipes open
// before they are closed forcibly.
const waitDelay = 500 * time.Millisecond

type lookup struct {
	path string
	err  error
}

// ExecExecutor runs commands on the host with os/exec.
//
// Command names are resolved on PATH first, then in the extra search
// directories (for example a workspace's node_modules/.bin). Resolutions
// are cached for the lifetime of the executor.
type ExecExecutor struct {
	searchDirs []string
	cache      *lru.Cache[string, lookup]
}

// NewExecExecutor creates an executor. searchDirs are consulted, in order,
// when a command is not on PATH.
func NewExecExecutor(searchDirs ...string) *ExecExecutor {
	cache, _ := lru.New[string, lookup](lookupCacheSize) // only fails for size <= 0
	return &ExecExecutor{
		searchDirs: searchDirs,
		cache:      cache,
	}
}

// LookPath implements Executor.
func (e *ExecExecutor) LookPath(name string) (string, error) {
	if cached, ok := e.cache.Get(name); ok {
		return cached.path, cached.err
	}

	path, err := exec.LookPath(name)
	if err != nil {
		for _, dir := range e.searchDirs {
			candidate := filepath.Join(dir, name)
			if isExecutable(candidate) {
				path, err = candidate, nil
				break
			}
		}
	}
	if err != nil {
		err = derrors.New(derrors.ErrCodeToolMissing, fmt.Sprintf("%s not found", name), err).
			WithDetail("command", name)
	}

	e.cache.Add(name, lookup{path: path, err: err})
	return path, err
}

// Output implements Executor.
func (e *ExecExecutor) Output(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", derrors.New(derrors.ErrCodeCommandTimeout,
				fmt.Sprintf("%s did not finish: %v", filepath.Base(name), ctxErr), ctxErr)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return stdout.String(), derrors.New(derrors.ErrCodeCommandFailed,
			fmt.Sprintf("%s failed: %s", filepath.Base(name), firstLine(msg)), err)
	}

	// Some tools print their version on stderr.
	if stdout.Len() == 0 {
		return stderr.String(), nil
	}
	return stdout.String(), nil
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0o111 != 0
}
