package preflight

import (
	"fmt"
	"path/filepath"
	"time"
)

// Group names, in run order.
const (
	GroupFoundational = "Foundational tools"
	GroupStructure    = "Project structure"
	GroupDependencies = "Dependencies"
	GroupPackages     = "Package builds"
	GroupBuildSystem  = "Build system"
	GroupEnvironment  = "Environment"
	GroupIDE          = "IDE configuration"
	GroupGitHooks     = "Git hooks"
)

// Tool names a command checked by a CommandProbe.
type Tool struct {
	Command string
	Hint    string
}

// Layout describes the workspace being inspected: which tools it needs and
// where its files are expected. Relative paths are resolved against Root.
type Layout struct {
	Root string

	Runtime        Tool
	PackageManager Tool
	VCS            Tool
	TypeChecker    Tool
	Linter         Tool

	Manifest     string
	TypeConfig   string
	LintConfig   string
	FormatConfig string

	DependencyRoot  string
	DependencyQuery string

	PackagesDir     string
	Packages        []string
	CorePackage     string
	PackageManifest string
	BuildDirs       []string

	EnvFile     string
	EnvTemplate string

	IDEFiles []string

	GitDir   string
	HooksDir string

	CommandTimeout time.Duration
}

// DefaultLayout returns the layout of a pnpm TypeScript monorepo rooted at root.
func DefaultLayout(root string) Layout {
	return Layout{
		Root: root,

		Runtime:        Tool{Command: "node", Hint: "Install Node.js 20+ from https://nodejs.org or with a version manager"},
		PackageManager: Tool{Command: "pnpm", Hint: "Install pnpm with 'corepack enable' or 'npm install -g pnpm'"},
		VCS:            Tool{Command: "git", Hint: "Install git from https://git-scm.com"},
		TypeChecker:    Tool{Command: "tsc", Hint: "Run 'pnpm install' to install typescript"},
		Linter:         Tool{Command: "eslint", Hint: "Run 'pnpm install' to install eslint"},

		Manifest:     "package.json",
		TypeConfig:   "tsconfig.json",
		LintConfig:   ".eslintrc.json",
		FormatConfig: ".prettierrc",

		DependencyRoot:  "node_modules",
		DependencyQuery: "ls -1 node_modules | wc -l",

		PackagesDir:     "packages",
		Packages:        []string{"core", "shared", "cli", "web"},
		CorePackage:     "core",
		PackageManifest: DefaultPackageManifest,
		BuildDirs:       DefaultBuildDirs,

		EnvFile:     ".env",
		EnvTemplate: ".env.example",

		IDEFiles: []string{".vscode/settings.json", ".vscode/extensions.json", ".idea"},

		GitDir:   ".git",
		HooksDir: ".husky",

		CommandTimeout: DefaultCommandTimeout,
	}
}

// path resolves a workspace-relative path.
func (l Layout) path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(l.Root, filepath.FromSlash(rel))
}

// SearchDirs returns extra directories where workspace-local tools live.
func (l Layout) SearchDirs() []string {
	return []string{l.path(filepath.Join(l.DependencyRoot, ".bin"))}
}

func (l Layout) command(name string, t Tool, required bool) CommandProbe {
	return CommandProbe{
		Name:     name,
		Command:  t.Command,
		Required: required,
		Critical: required,
		Timeout:  l.CommandTimeout,
		Hint:     t.Hint,
	}
}

func (l Layout) packageProbe(name, pkg string, distinguished bool) BuildArtifactProbe {
	return BuildArtifactProbe{
		Name:          name,
		Package:       pkg,
		Dir:           l.path(filepath.Join(l.PackagesDir, pkg)),
		Manifest:      l.PackageManifest,
		BuildDirs:     l.BuildDirs,
		Distinguished: distinguished,
	}
}

// Plan builds the check groups for a layout in their required run order.
func Plan(l Layout) []CheckGroup {
	foundational := CheckGroup{
		Name:         GroupFoundational,
		Foundational: true,
		Members: Steps(
			l.command(l.Runtime.Command+" installed", l.Runtime, true),
			l.command(l.PackageManager.Command+" installed", l.PackageManager, true),
			l.command(l.VCS.Command+" installed", l.VCS, true),
		),
	}

	structure := CheckGroup{
		Name: GroupStructure,
		Members: Steps(
			FileProbe{Name: l.Manifest, Path: l.path(l.Manifest), Required: true, Critical: true},
			FileProbe{Name: l.TypeConfig, Path: l.path(l.TypeConfig), Required: true},
			FileProbe{Name: l.LintConfig, Path: l.path(l.LintConfig)},
			FileProbe{Name: l.FormatConfig, Path: l.path(l.FormatConfig)},
		),
	}

	dependencies := CheckGroup{
		Name: GroupDependencies,
		Members: []Member{
			Step(
				FileProbe{Name: l.DependencyRoot, Path: l.path(l.DependencyRoot), Required: true},
				ShellQueryProbe{
					Name:       "installed dependencies",
					Expression: l.DependencyQuery,
					Dir:        l.Root,
					Predicate:  CountAtLeast(1, "entries"),
					Timeout:    l.CommandTimeout,
				},
			),
		},
	}

	packages := CheckGroup{Name: GroupPackages}
	for _, pkg := range l.Packages {
		name := fmt.Sprintf("%s/%s", l.PackagesDir, pkg)
		packages.Members = append(packages.Members, Step(l.packageProbe(name, pkg, false)))
	}

	buildSystem := CheckGroup{
		Name: GroupBuildSystem,
		Members: Steps(
			l.command(l.TypeChecker.Command+" available", l.TypeChecker, false),
			l.command(l.Linter.Command+" available", l.Linter, false),
			l.packageProbe(l.CorePackage+" package build", l.CorePackage, true),
		),
	}

	environment := CheckGroup{
		Name: GroupEnvironment,
		Members: Steps(
			FileProbe{Name: l.EnvFile, Path: l.path(l.EnvFile)},
			FileProbe{Name: l.EnvTemplate, Path: l.path(l.EnvTemplate)},
		),
	}

	ide := CheckGroup{Name: GroupIDE, Mode: AnyOf}
	for _, f := range l.IDEFiles {
		ide.Members = append(ide.Members, Step(FileProbe{Name: f, Path: l.path(f)}))
	}

	hooks := CheckGroup{
		Name: GroupGitHooks,
		Members: []Member{
			Step(
				FileProbe{Name: l.GitDir, Path: l.path(l.GitDir), Required: true},
				FileProbe{Name: l.HooksDir, Path: l.path(l.HooksDir)},
			),
		},
	}

	return []CheckGroup{
		foundational,
		structure,
		dependencies,
		packages,
		buildSystem,
		environment,
		ide,
		hooks,
	}
}
