// Package preflighttest provides a scripted Executor and workspace fixtures
// for tests of packages built on preflight.
package preflighttest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// Executor resolves commands from a map and answers Output from canned
// responses keyed by "name args...".
type Executor struct {
	mu      sync.Mutex
	paths   map[string]string
	outputs map[string]string
	hung    map[string]bool
	calls   int
}

// NewExecutor returns an executor that knows no commands.
func NewExecutor() *Executor {
	return &Executor{
		paths:   map[string]string{},
		outputs: map[string]string{},
		hung:    map[string]bool{},
	}
}

// Healthy returns an executor answering every command of the default plan.
func Healthy() *Executor {
	return NewExecutor().
		WithTool("node", "v20.11.0").
		WithTool("pnpm", "9.1.0").
		WithTool("git", "git version 2.45.0").
		WithTool("tsc", "Version 5.4.5").
		WithTool("eslint", "v8.57.0").
		WithShell("ls -1 node_modules | wc -l", "1\n")
}

// WithTool registers a command with the output of its --version call.
func (e *Executor) WithTool(name, version string) *Executor {
	e.mu.Lock()
	defer e.mu.Unlock()
	path := "/usr/bin/" + name
	e.paths[name] = path
	e.outputs[path+" --version"] = version + "\n"
	return e
}

// WithHungTool registers a command whose --version call blocks until its
// context ends.
func (e *Executor) WithHungTool(name string) *Executor {
	e.mu.Lock()
	defer e.mu.Unlock()
	path := "/usr/bin/" + name
	e.paths[name] = path
	e.hung[path+" --version"] = true
	return e
}

// WithoutTool removes a command.
func (e *Executor) WithoutTool(name string) *Executor {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.paths, name)
	return e
}

// WithShell registers the output of sh -c expr.
func (e *Executor) WithShell(expr, out string) *Executor {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.outputs["sh -c "+expr] = out
	return e
}

// Calls returns the number of Output calls made.
func (e *Executor) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// LookPath implements preflight.Executor.
func (e *Executor) LookPath(name string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if p, ok := e.paths[name]; ok {
		return p, nil
	}
	return "", errors.New("executable file not found in $PATH")
}

// Output implements preflight.Executor.
func (e *Executor) Output(ctx context.Context, _ string, name string, args ...string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := strings.Join(append([]string{name}, args...), " ")

	e.mu.Lock()
	e.calls++
	hung := e.hung[key]
	e.mu.Unlock()
	if hung {
		<-ctx.Done()
		return "", ctx.Err()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if out, ok := e.outputs[key]; ok {
		return out, nil
	}
	return "", errors.New("exit status 127")
}

// Packages are the workspace packages of the default layout.
var Packages = []string{"core", "shared", "cli", "web"}

// WriteWorkspace creates a fully provisioned default workspace in a
// temporary directory and returns its root.
func WriteWorkspace(t testing.TB) string {
	t.Helper()
	root := t.TempDir()

	files := []string{
		"package.json",
		"tsconfig.json",
		".eslintrc.json",
		".prettierrc",
		".env",
		".env.example",
		".vscode/settings.json",
		".vscode/extensions.json",
	}
	dirs := []string{"node_modules/typescript", ".idea", ".git", ".husky"}
	for _, pkg := range Packages {
		files = append(files, filepath.Join("packages", pkg, "package.json"))
		dirs = append(dirs, filepath.Join("packages", pkg, "dist"))
	}

	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	for _, f := range files {
		Touch(t, root, f)
	}
	return root
}

// Touch creates rel under root with placeholder content.
func Touch(t testing.TB, root, rel string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

// Remove deletes rel under root.
func Remove(t testing.TB, root, rel string) {
	t.Helper()
	if err := os.RemoveAll(filepath.Join(root, rel)); err != nil {
		t.Fatal(err)
	}
}
