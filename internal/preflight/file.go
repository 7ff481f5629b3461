package preflight

import (
	"context"
	"fmt"
	"os"
)

// FileProbe checks that a file or directory exists.
type FileProbe struct {
	Name     string
	Path     string
	Required bool
	Critical bool
}

// Run implements Probe.
func (p FileProbe) Run(_ context.Context, _ Executor) Outcome {
	o := Outcome{Name: p.Name, Critical: p.Critical}

	info, err := os.Stat(p.Path)
	if err != nil {
		o.Status = missingStatus(p.Required)
		if os.IsNotExist(err) {
			o.Message = "not found"
		} else {
			o.Message = fmt.Sprintf("cannot access: %v", err)
		}
		o.Details = p.Path
		if !p.Required {
			o.Details += " (optional)"
		}
		return o
	}

	o.Status = StatusPass
	o.Message = "found"
	o.Details = describe(p.Path, info)
	return o
}

// describe reports the kind and size of a filesystem entry.
func describe(path string, info os.FileInfo) string {
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return "directory"
		}
		return fmt.Sprintf("directory, %d entries", len(entries))
	}
	return fmt.Sprintf("file, %s", formatBytes(info.Size()))
}

// isDir reports whether path exists and is a directory.
func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
