package mcp

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// ProjectInfo identifies the inspected workspace.
type ProjectInfo struct {
	Name     string `json:"name" jsonschema:"workspace name from the root manifest, or the directory name"`
	RootPath string `json:"root_path" jsonschema:"absolute workspace root"`
}

// detectProject reads the workspace name from the root manifest. Scoped
// names lose their scope; without a readable name the directory name is
// used.
func detectProject(root, manifest string) ProjectInfo {
	info := ProjectInfo{RootPath: root, Name: filepath.Base(root)}

	data, err := os.ReadFile(filepath.Join(root, manifest))
	if err != nil {
		return info
	}
	var pkg struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil || pkg.Name == "" {
		return info
	}

	name := pkg.Name
	if strings.HasPrefix(name, "@") {
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
	}
	info.Name = name
	return info
}
