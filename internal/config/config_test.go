package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/envdoctor/internal/preflight"
	"github.com/Aman-CERP/envdoctor/internal/report"
)

// isolate points the user config at an empty directory and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	for _, k := range []string{
		"ENVDOCTOR_COMMAND_TIMEOUT",
		"ENVDOCTOR_WARN_THRESHOLD",
		"ENVDOCTOR_PACKAGE_MANAGER",
		"ENVDOCTOR_CORE_PACKAGE",
	} {
		t.Setenv(k, "")
	}
	return xdg
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewConfig_ReturnsDefaults(t *testing.T) {
	// Given: no configuration file exists
	cfg := NewConfig()

	// Then: all defaults should be applied
	require.NotNil(t, cfg)
	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "node", cfg.Tools.Runtime)
	assert.Equal(t, "pnpm", cfg.Tools.PackageManager)
	assert.Equal(t, "git", cfg.Tools.VCS)
	assert.Equal(t, "tsc", cfg.Tools.TypeChecker)
	assert.Equal(t, "eslint", cfg.Tools.Linter)
	assert.Equal(t, "5s", cfg.Tools.CommandTimeout)
	assert.Equal(t, "package.json", cfg.Project.Manifest)
	assert.Equal(t, []string{"core", "shared", "cli", "web"}, cfg.Packages.Names)
	assert.Equal(t, "core", cfg.Packages.Core)
	assert.Equal(t, report.DefaultReadyWarnThreshold, cfg.Report.ReadyWarnThreshold)
	assert.Equal(t, "500ms", cfg.Watch.Debounce)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_NoFilesUsesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, NewConfig(), cfg)
}

func TestLoad_ProjectConfigOverridesUserConfig(t *testing.T) {
	// Given: a user config and a project config
	xdg := isolate(t)
	writeFile(t, filepath.Join(xdg, "envdoctor", "config.yaml"), `
tools:
  package_manager: yarn
  command_timeout: 10s
report:
  ready_warn_threshold: 4
`)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ProjectConfigFile), `
tools:
  package_manager: npm
packages:
  names: [api, ui]
  core: api
`)

	// When: loading
	cfg, err := Load(dir)

	// Then: project wins, user fills gaps, defaults fill the rest
	require.NoError(t, err)
	assert.Equal(t, "npm", cfg.Tools.PackageManager)
	assert.Equal(t, "10s", cfg.Tools.CommandTimeout)
	assert.Equal(t, 4, cfg.Report.ReadyWarnThreshold)
	assert.Equal(t, []string{"api", "ui"}, cfg.Packages.Names)
	assert.Equal(t, "api", cfg.Packages.Core)
	assert.Equal(t, "node", cfg.Tools.Runtime)
}

func TestLoad_ExplicitZeroThreshold(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ProjectConfigFileAlt), "report:\n  ready_warn_threshold: 0\n")

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Report.ReadyWarnThreshold)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("ENVDOCTOR_COMMAND_TIMEOUT", "2s")
	t.Setenv("ENVDOCTOR_WARN_THRESHOLD", "0")
	t.Setenv("ENVDOCTOR_PACKAGE_MANAGER", "bun")
	t.Setenv("ENVDOCTOR_CORE_PACKAGE", "shared")
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ProjectConfigFile), "tools:\n  package_manager: npm\n")

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, "2s", cfg.Tools.CommandTimeout)
	assert.Equal(t, 0, cfg.Report.ReadyWarnThreshold)
	assert.Equal(t, "bun", cfg.Tools.PackageManager)
	assert.Equal(t, "shared", cfg.Packages.Core)
}

func TestLoad_InvalidWarnThresholdEnvIgnored(t *testing.T) {
	isolate(t)
	t.Setenv("ENVDOCTOR_WARN_THRESHOLD", "lots")

	cfg, err := Load(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, report.DefaultReadyWarnThreshold, cfg.Report.ReadyWarnThreshold)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"malformed yaml", "tools: [", "failed to parse config file"},
		{"bad timeout", "tools:\n  command_timeout: soon\n", "tools.command_timeout"},
		{"negative timeout", "tools:\n  command_timeout: -1s\n", "tools.command_timeout"},
		{"bad debounce", "watch:\n  debounce: later\n", "watch.debounce"},
		{"nested package name", "packages:\n  names: [apps/web]\n", "packages.names"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, ProjectConfigFile), tt.content)

			_, err := Load(dir)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_RequiredFields(t *testing.T) {
	cfg := NewConfig()
	cfg.Tools.Runtime = " "

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "tools.runtime must not be empty")
}

func TestGetUserConfigPath_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "envdoctor", "config.yaml"), GetUserConfigPath())
}

func TestConfig_Layout(t *testing.T) {
	// Given: a config with a custom package manager and timeout
	cfg := NewConfig()
	cfg.Tools.PackageManager = "yarn"
	cfg.Tools.CommandTimeout = "750ms"
	cfg.Packages.Names = []string{"api"}

	// When: converting to a layout
	l := cfg.Layout("/ws")

	// Then: the layout reflects the config
	assert.Equal(t, "/ws", l.Root)
	assert.Equal(t, "yarn", l.PackageManager.Command)
	assert.Empty(t, l.PackageManager.Hint)
	assert.Equal(t, preflight.DefaultLayout("/ws").Runtime, l.Runtime)
	assert.Equal(t, 750*time.Millisecond, l.CommandTimeout)
	assert.Equal(t, []string{"api"}, l.Packages)

	groups := preflight.Plan(l)
	require.Len(t, groups, 8)
}

func TestConfig_ReportOptions(t *testing.T) {
	cfg := NewConfig()
	cfg.Report.ReadyWarnThreshold = 5

	assert.Equal(t, 5, cfg.ReportOptions().ReadyWarnThreshold)
}

func TestConfig_WriteYAML(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, NewConfig().WriteYAML(buf))

	out := buf.String()
	assert.Contains(t, out, "package_manager: pnpm")
	assert.Contains(t, out, "ready_warn_threshold: 2")
}

func TestFindProjectRoot(t *testing.T) {
	tests := []struct {
		name   string
		marker string
		isDir  bool
	}{
		{"pnpm workspace", WorkspaceFile, false},
		{"project config", ProjectConfigFile, false},
		{"git directory", ".git", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a marker at the root and a nested start directory
			root := t.TempDir()
			if tt.isDir {
				require.NoError(t, os.MkdirAll(filepath.Join(root, tt.marker), 0o755))
			} else {
				writeFile(t, filepath.Join(root, tt.marker), "")
			}
			nested := filepath.Join(root, "packages", "core", "src")
			require.NoError(t, os.MkdirAll(nested, 0o755))

			// When: searching upwards
			got, err := FindProjectRoot(nested)

			// Then: the marked directory is found
			require.NoError(t, err)
			want, _ := filepath.EvalSymlinks(root)
			gotResolved, _ := filepath.EvalSymlinks(got)
			assert.Equal(t, want, gotResolved)
		})
	}
}

func TestDiscoverPackages(t *testing.T) {
	// Given: a workspace file and three package directories
	root := t.TempDir()
	writeFile(t, filepath.Join(root, WorkspaceFile), `
packages:
  - "packages/*"
  - "!packages/legacy"
  - "tools/*"
`)
	for _, d := range []string{"packages/web", "packages/core", "packages/legacy", "tools/scripts"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0o755))
	}
	writeFile(t, filepath.Join(root, "packages", "README.md"), "")

	// When: discovering packages under packages/
	names := DiscoverPackages(root, "packages")

	// Then: included directories under packages/ are listed, sorted
	assert.Equal(t, []string{"core", "web"}, names)
}

func TestDiscoverPackages_NoWorkspaceFile(t *testing.T) {
	assert.Nil(t, DiscoverPackages(t.TempDir(), "packages"))
}

func TestConfig_LayoutDiscover(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, WorkspaceFile), "packages:\n  - packages/*\n")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "packages", "api"), 0o755))

	cfg := NewConfig()
	cfg.Packages.Discover = true

	assert.Equal(t, []string{"api"}, cfg.Layout(root).Packages)
}
