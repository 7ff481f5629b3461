package preflight

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultBuildDirs are the directory names recognised as build output.
var DefaultBuildDirs = []string{"dist", "build", "lib", ".next", "out"}

// DefaultPackageManifest is the manifest file expected in every package.
const DefaultPackageManifest = "package.json"

// BuildArtifactProbe checks that a workspace package has a manifest and
// at least one build output directory.
//
// A missing package directory is reported as a structural failure named
// "<Name> directory" instead of a package-level result.
type BuildArtifactProbe struct {
	Name      string
	Package   string
	Dir       string
	Manifest  string
	BuildDirs []string

	// Distinguished packages fail instead of warn when unbuilt, and all of
	// their failures are critical.
	Distinguished bool
}

// Run implements Probe.
func (p BuildArtifactProbe) Run(ctx context.Context, x Executor) Outcome {
	dir := FileProbe{
		Name:     p.Name + " directory",
		Path:     p.Dir,
		Required: true,
		Critical: p.Distinguished,
	}.Run(ctx, x)
	if dir.Status != StatusPass {
		return dir
	}

	manifestName := p.Manifest
	if manifestName == "" {
		manifestName = DefaultPackageManifest
	}
	manifest := FileProbe{
		Name:     p.Name,
		Path:     filepath.Join(p.Dir, manifestName),
		Required: true,
		Critical: p.Distinguished,
	}.Run(ctx, x)
	if manifest.Status != StatusPass {
		manifest.Message = fmt.Sprintf("%s missing", manifestName)
		return manifest
	}

	buildDirs := p.BuildDirs
	if len(buildDirs) == 0 {
		buildDirs = DefaultBuildDirs
	}
	for _, name := range buildDirs {
		if isDir(filepath.Join(p.Dir, name)) {
			return Outcome{
				Name:     p.Name,
				Status:   StatusPass,
				Message:  fmt.Sprintf("built (%s/)", name),
				Details:  filepath.Join(p.Dir, name),
				Critical: p.Distinguished,
			}
		}
	}

	status := StatusWarn
	if p.Distinguished {
		status = StatusFail
	}
	return Outcome{
		Name:     p.Name,
		Status:   status,
		Message:  "not built",
		Details:  fmt.Sprintf("no build output in %s (looked for %s); build package %s", p.Dir, strings.Join(buildDirs, ", "), p.Package),
		Critical: p.Distinguished,
	}
}
