package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/envdoctor/internal/preflight"
	"github.com/Aman-CERP/envdoctor/internal/report"
)

// Project configuration file names, in lookup order.
const (
	ProjectConfigFile    = ".envdoctor.yaml"
	ProjectConfigFileAlt = ".envdoctor.yml"
	WorkspaceFile        = "pnpm-workspace.yaml"
)

// Config represents the complete envdoctor configuration.
type Config struct {
	Version      int                `yaml:"version" json:"version"`
	Tools        ToolsConfig        `yaml:"tools" json:"tools"`
	Project      ProjectConfig      `yaml:"project" json:"project"`
	Dependencies DependenciesConfig `yaml:"dependencies" json:"dependencies"`
	Packages     PackagesConfig     `yaml:"packages" json:"packages"`
	Environment  EnvironmentConfig  `yaml:"environment" json:"environment"`
	IDE          IDEConfig          `yaml:"ide" json:"ide"`
	Git          GitConfig          `yaml:"git" json:"git"`
	Report       ReportConfig       `yaml:"report" json:"report"`
	Watch        WatchConfig        `yaml:"watch" json:"watch"`
}

// ToolsConfig names the commands the environment must provide.
type ToolsConfig struct {
	Runtime        string `yaml:"runtime" json:"runtime"`
	PackageManager string `yaml:"package_manager" json:"package_manager"`
	VCS            string `yaml:"vcs" json:"vcs"`
	TypeChecker    string `yaml:"type_checker" json:"type_checker"`
	Linter         string `yaml:"linter" json:"linter"`

	// CommandTimeout bounds every version query and shell query (e.g. "5s").
	CommandTimeout string `yaml:"command_timeout" json:"command_timeout"`
}

// ProjectConfig names root-level project files.
type ProjectConfig struct {
	Manifest     string `yaml:"manifest" json:"manifest"`
	TypeConfig   string `yaml:"type_config" json:"type_config"`
	LintConfig   string `yaml:"lint_config" json:"lint_config"`
	FormatConfig string `yaml:"format_config" json:"format_config"`
}

// DependenciesConfig locates installed dependencies.
type DependenciesConfig struct {
	Root  string `yaml:"root" json:"root"`
	Query string `yaml:"query" json:"query"`
}

// PackagesConfig describes the workspace packages.
type PackagesConfig struct {
	Dir       string   `yaml:"dir" json:"dir"`
	Names     []string `yaml:"names" json:"names"`
	Core      string   `yaml:"core" json:"core"`
	Manifest  string   `yaml:"manifest" json:"manifest"`
	BuildDirs []string `yaml:"build_dirs" json:"build_dirs"`

	// Discover replaces Names with the packages matched by the workspace file.
	Discover bool `yaml:"discover" json:"discover"`
}

// EnvironmentConfig names the live environment file and its template.
type EnvironmentConfig struct {
	File     string `yaml:"file" json:"file"`
	Template string `yaml:"template" json:"template"`
}

// IDEConfig lists editor configuration paths; any one is enough.
type IDEConfig struct {
	Files []string `yaml:"files" json:"files"`
}

// GitConfig names the repository metadata and hook-manager directories.
type GitConfig struct {
	Dir   string `yaml:"dir" json:"dir"`
	Hooks string `yaml:"hooks" json:"hooks"`
}

// ReportConfig tunes the verdict.
type ReportConfig struct {
	// ReadyWarnThreshold is the largest warning count that is still ready.
	ReadyWarnThreshold int `yaml:"ready_warn_threshold" json:"ready_warn_threshold"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	Debounce string `yaml:"debounce" json:"debounce"`
}

// NewConfig returns a Config with defaults for a pnpm TypeScript monorepo.
func NewConfig() *Config {
	l := preflight.DefaultLayout("")
	return &Config{
		Version: 1,
		Tools: ToolsConfig{
			Runtime:        l.Runtime.Command,
			PackageManager: l.PackageManager.Command,
			VCS:            l.VCS.Command,
			TypeChecker:    l.TypeChecker.Command,
			Linter:         l.Linter.Command,
			CommandTimeout: l.CommandTimeout.String(),
		},
		Project: ProjectConfig{
			Manifest:     l.Manifest,
			TypeConfig:   l.TypeConfig,
			LintConfig:   l.LintConfig,
			FormatConfig: l.FormatConfig,
		},
		Dependencies: DependenciesConfig{
			Root:  l.DependencyRoot,
			Query: l.DependencyQuery,
		},
		Packages: PackagesConfig{
			Dir:       l.PackagesDir,
			Names:     l.Packages,
			Core:      l.CorePackage,
			Manifest:  l.PackageManifest,
			BuildDirs: l.BuildDirs,
		},
		Environment: EnvironmentConfig{
			File:     l.EnvFile,
			Template: l.EnvTemplate,
		},
		IDE: IDEConfig{Files: l.IDEFiles},
		Git: GitConfig{
			Dir:   l.GitDir,
			Hooks: l.HooksDir,
		},
		Report: ReportConfig{ReadyWarnThreshold: report.DefaultReadyWarnThreshold},
		Watch:  WatchConfig{Debounce: "500ms"},
	}
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/envdoctor/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/envdoctor/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "envdoctor", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "envdoctor", "config.yaml")
	}
	return filepath.Join(home, ".config", "envdoctor", "config.yaml")
}

func loadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()
	if !fileExists(configPath) {
		return nil, nil // No user config is fine
	}

	cfg := &Config{}
	if err := cfg.loadYAML(configPath); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", configPath, err)
	}
	return cfg, nil
}

// Load loads configuration for the workspace in dir.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/envdoctor/config.yaml)
//  3. Project config (.envdoctor.yaml in the workspace root)
//  4. Environment variables (ENVDOCTOR_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, err
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFromFile(dir string) error {
	for _, name := range []string{ProjectConfigFile, ProjectConfigFileAlt} {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			parsed := &Config{}
			if err := parsed.loadYAML(path); err != nil {
				return err
			}
			c.mergeWith(parsed)
			return nil
		}
	}
	return nil
}

// loadYAML parses path into c. The threshold starts negative so an explicit
// zero in the file can be told apart from an absent key.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	c.Report.ReadyWarnThreshold = -1
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// mergeWith merges set values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	setString(&c.Tools.Runtime, other.Tools.Runtime)
	setString(&c.Tools.PackageManager, other.Tools.PackageManager)
	setString(&c.Tools.VCS, other.Tools.VCS)
	setString(&c.Tools.TypeChecker, other.Tools.TypeChecker)
	setString(&c.Tools.Linter, other.Tools.Linter)
	setString(&c.Tools.CommandTimeout, other.Tools.CommandTimeout)

	setString(&c.Project.Manifest, other.Project.Manifest)
	setString(&c.Project.TypeConfig, other.Project.TypeConfig)
	setString(&c.Project.LintConfig, other.Project.LintConfig)
	setString(&c.Project.FormatConfig, other.Project.FormatConfig)

	setString(&c.Dependencies.Root, other.Dependencies.Root)
	setString(&c.Dependencies.Query, other.Dependencies.Query)

	setString(&c.Packages.Dir, other.Packages.Dir)
	setString(&c.Packages.Core, other.Packages.Core)
	setString(&c.Packages.Manifest, other.Packages.Manifest)
	if len(other.Packages.Names) > 0 {
		c.Packages.Names = other.Packages.Names
	}
	if len(other.Packages.BuildDirs) > 0 {
		c.Packages.BuildDirs = other.Packages.BuildDirs
	}
	if other.Packages.Discover {
		c.Packages.Discover = true
	}

	setString(&c.Environment.File, other.Environment.File)
	setString(&c.Environment.Template, other.Environment.Template)

	if len(other.IDE.Files) > 0 {
		c.IDE.Files = other.IDE.Files
	}

	setString(&c.Git.Dir, other.Git.Dir)
	setString(&c.Git.Hooks, other.Git.Hooks)

	if other.Report.ReadyWarnThreshold >= 0 {
		c.Report.ReadyWarnThreshold = other.Report.ReadyWarnThreshold
	}

	setString(&c.Watch.Debounce, other.Watch.Debounce)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("ENVDOCTOR_COMMAND_TIMEOUT"); v != "" {
		c.Tools.CommandTimeout = v
	}
	// Explicit zero is allowed: a strict workspace may want no warnings at all.
	if v := os.Getenv("ENVDOCTOR_WARN_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 0 {
			c.Report.ReadyWarnThreshold = n
		}
	}
	if v := os.Getenv("ENVDOCTOR_PACKAGE_MANAGER"); v != "" {
		c.Tools.PackageManager = v
	}
	if v := os.Getenv("ENVDOCTOR_CORE_PACKAGE"); v != "" {
		c.Packages.Core = v
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if _, err := c.CommandTimeout(); err != nil {
		return err
	}
	if _, err := c.WatchDebounce(); err != nil {
		return err
	}
	if c.Report.ReadyWarnThreshold < 0 {
		return fmt.Errorf("report.ready_warn_threshold must be non-negative, got %d", c.Report.ReadyWarnThreshold)
	}

	required := map[string]string{
		"tools.runtime":         c.Tools.Runtime,
		"tools.package_manager": c.Tools.PackageManager,
		"tools.vcs":             c.Tools.VCS,
		"project.manifest":      c.Project.Manifest,
		"packages.dir":          c.Packages.Dir,
		"packages.core":         c.Packages.Core,
		"git.dir":               c.Git.Dir,
	}
	keys := make([]string, 0, len(required))
	for k := range required {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.TrimSpace(required[k]) == "" {
			return fmt.Errorf("%s must not be empty", k)
		}
	}

	for _, name := range c.Packages.Names {
		if name == "" || strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("packages.names entries must be plain directory names, got %q", name)
		}
	}
	return nil
}

// CommandTimeout returns the parsed subprocess deadline.
func (c *Config) CommandTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Tools.CommandTimeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("tools.command_timeout must be a positive duration, got %q", c.Tools.CommandTimeout)
	}
	return d, nil
}

// WatchDebounce returns the parsed watch debounce interval.
func (c *Config) WatchDebounce() (time.Duration, error) {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("watch.debounce must be a non-negative duration, got %q", c.Watch.Debounce)
	}
	return d, nil
}

// ReportOptions returns the reporting options the configuration selects.
func (c *Config) ReportOptions() report.Options {
	return report.Options{ReadyWarnThreshold: c.Report.ReadyWarnThreshold}
}

// Layout converts the configuration into a preflight layout for root.
// Call Validate first; an unparsable timeout falls back to the default.
func (c *Config) Layout(root string) preflight.Layout {
	l := preflight.DefaultLayout(root)

	l.Runtime = tool(l.Runtime, c.Tools.Runtime)
	l.PackageManager = tool(l.PackageManager, c.Tools.PackageManager)
	l.VCS = tool(l.VCS, c.Tools.VCS)
	l.TypeChecker = tool(l.TypeChecker, c.Tools.TypeChecker)
	l.Linter = tool(l.Linter, c.Tools.Linter)
	if d, err := c.CommandTimeout(); err == nil {
		l.CommandTimeout = d
	}

	l.Manifest = c.Project.Manifest
	l.TypeConfig = c.Project.TypeConfig
	l.LintConfig = c.Project.LintConfig
	l.FormatConfig = c.Project.FormatConfig

	l.DependencyRoot = c.Dependencies.Root
	l.DependencyQuery = c.Dependencies.Query

	l.PackagesDir = c.Packages.Dir
	l.Packages = c.Packages.Names
	if c.Packages.Discover {
		if found := DiscoverPackages(root, c.Packages.Dir); len(found) > 0 {
			l.Packages = found
		}
	}
	l.CorePackage = c.Packages.Core
	l.PackageManifest = c.Packages.Manifest
	l.BuildDirs = c.Packages.BuildDirs

	l.EnvFile = c.Environment.File
	l.EnvTemplate = c.Environment.Template
	l.IDEFiles = c.IDE.Files
	l.GitDir = c.Git.Dir
	l.HooksDir = c.Git.Hooks
	return l
}

// tool keeps the default hint only when the command is unchanged.
func tool(def preflight.Tool, command string) preflight.Tool {
	if command == "" || command == def.Command {
		return def
	}
	return preflight.Tool{Command: command}
}

// WriteYAML writes the configuration as YAML.
func (c *Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return enc.Close()
}

// FindProjectRoot finds the workspace root directory.
// It walks up from startDir looking for a pnpm workspace file, a project
// config file or a .git directory.
func FindProjectRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	currentDir := absDir
	for {
		if fileExists(filepath.Join(currentDir, WorkspaceFile)) ||
			fileExists(filepath.Join(currentDir, ProjectConfigFile)) ||
			fileExists(filepath.Join(currentDir, ProjectConfigFileAlt)) ||
			dirExists(filepath.Join(currentDir, ".git")) {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root, return original directory
			return absDir, nil
		}
		currentDir = parentDir
	}
}

// DiscoverPackages lists the package names under packagesDir that the pnpm
// workspace file includes, honouring "!" exclusions. It returns nil when the
// file is missing or unreadable.
func DiscoverPackages(root, packagesDir string) []string {
	data, err := os.ReadFile(filepath.Join(root, WorkspaceFile))
	if err != nil {
		return nil
	}

	var ws struct {
		Packages []string `yaml:"packages"`
	}
	if err := yaml.Unmarshal(data, &ws); err != nil {
		return nil
	}

	glob := func(pattern string) []string {
		matches, _ := filepath.Glob(filepath.Join(root, filepath.FromSlash(pattern)))
		return matches
	}

	excluded := map[string]bool{}
	for _, pattern := range ws.Packages {
		if rest, ok := strings.CutPrefix(pattern, "!"); ok {
			for _, m := range glob(rest) {
				excluded[m] = true
			}
		}
	}

	parent := filepath.Join(root, packagesDir)
	seen := map[string]bool{}
	var names []string
	for _, pattern := range ws.Packages {
		if strings.HasPrefix(pattern, "!") {
			continue
		}
		for _, m := range glob(pattern) {
			if excluded[m] || filepath.Dir(m) != parent || !dirExists(m) {
				continue
			}
			name := filepath.Base(m)
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// dirExists checks if a directory exists.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
