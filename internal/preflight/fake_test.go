package preflight

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// fakeExecutor resolves commands from a map and answers Output from canned
// responses keyed by "name args...".
type fakeExecutor struct {
	mu sync.Mutex

	paths   map[string]string
	outputs map[string]string
	errs    map[string]error

	// hang makes Output block until ctx is done for the given keys.
	hang map[string]bool

	calls []string
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{
		paths:   map[string]string{},
		outputs: map[string]string{},
		errs:    map[string]error{},
		hang:    map[string]bool{},
	}
}

// withTool registers a command on the fake PATH with a version string.
func (f *fakeExecutor) withTool(name, version string) *fakeExecutor {
	path := "/usr/bin/" + name
	f.paths[name] = path
	f.outputs[path+" --version"] = version + "\n"
	return f
}

// withShell registers the output of sh -c expr.
func (f *fakeExecutor) withShell(expr, out string) *fakeExecutor {
	f.outputs["sh -c "+expr] = out
	return f
}

func (f *fakeExecutor) LookPath(name string) (string, error) {
	if p, ok := f.paths[name]; ok {
		return p, nil
	}
	return "", errors.New("executable file not found in $PATH")
}

func (f *fakeExecutor) Output(ctx context.Context, _ string, name string, args ...string) (string, error) {
	key := strings.Join(append([]string{name}, args...), " ")

	f.mu.Lock()
	f.calls = append(f.calls, key)
	hang := f.hang[key]
	out, ok := f.outputs[key]
	err := f.errs[key]
	f.mu.Unlock()

	if hang {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.New("unexpected command: " + key)
	}
	return out, nil
}

func (f *fakeExecutor) called(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == key {
			return true
		}
	}
	return false
}
