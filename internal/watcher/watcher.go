package watcher

import (
	"path/filepath"
	"strings"
	"time"
)

// Operation represents a file system operation type.
type Operation int

const (
	// OpCreate indicates a new file or directory was created.
	OpCreate Operation = iota
	// OpModify indicates an existing file was modified.
	OpModify
	// OpDelete indicates a file or directory was deleted.
	OpDelete
	// OpRename indicates a file or directory was renamed away.
	OpRename
	// OpConfigChange indicates a project config file changed.
	OpConfigChange
)

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	case OpRename:
		return "RENAME"
	case OpConfigChange:
		return "CONFIG_CHANGE"
	default:
		return "UNKNOWN"
	}
}

// FileEvent represents a file system event.
type FileEvent struct {
	// Path is relative to the watched root, slash separated.
	Path      string
	Operation Operation
	IsDir     bool
	Timestamp time.Time
}

// ConfigChanged reports whether a batch contains a config file change.
func ConfigChanged(batch []FileEvent) bool {
	for _, ev := range batch {
		if ev.Operation == OpConfigChange {
			return true
		}
	}
	return false
}

// Options configures the watcher behavior.
type Options struct {
	// DebounceWindow is the quiet period before a batch is emitted.
	// Default: 500ms
	DebounceWindow time.Duration

	// PollInterval is the interval for polling mode (fallback).
	// Default: 2s
	PollInterval time.Duration

	// MaxDepth is the deepest directory level watched below the root.
	// Default: 2
	MaxDepth int

	// EventBufferSize is the number of batches buffered for the consumer.
	// Default: 16
	EventBufferSize int

	// IgnoreDirs are directory names whose contents are never watched.
	// Default: node_modules, .git
	IgnoreDirs []string

	// ConfigFiles are root-level file names reported as OpConfigChange.
	ConfigFiles []string
}

// DefaultOptions returns the default watcher options.
func DefaultOptions() Options {
	return Options{
		DebounceWindow:  500 * time.Millisecond,
		PollInterval:    2 * time.Second,
		MaxDepth:        2,
		EventBufferSize: 16,
		IgnoreDirs:      []string{"node_modules", ".git"},
		ConfigFiles:     []string{".envdoctor.yaml", ".envdoctor.yml"},
	}
}

// WithDefaults returns a copy of the options with zero values replaced by
// defaults.
func (o Options) WithDefaults() Options {
	defaults := DefaultOptions()

	if o.DebounceWindow <= 0 {
		o.DebounceWindow = defaults.DebounceWindow
	}
	if o.PollInterval <= 0 {
		o.PollInterval = defaults.PollInterval
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = defaults.MaxDepth
	}
	if o.EventBufferSize <= 0 {
		o.EventBufferSize = defaults.EventBufferSize
	}
	if o.IgnoreDirs == nil {
		o.IgnoreDirs = defaults.IgnoreDirs
	}
	if o.ConfigFiles == nil {
		o.ConfigFiles = defaults.ConfigFiles
	}
	return o
}

// scope decides which directories are watched and which events matter.
type scope struct {
	maxDepth int
	ignore   map[string]bool
	config   map[string]bool
}

func newScope(opts Options) scope {
	s := scope{
		maxDepth: opts.MaxDepth,
		ignore:   make(map[string]bool, len(opts.IgnoreDirs)),
		config:   make(map[string]bool, len(opts.ConfigFiles)),
	}
	for _, d := range opts.IgnoreDirs {
		s.ignore[d] = true
	}
	for _, f := range opts.ConfigFiles {
		s.config[f] = true
	}
	return s
}

func split(rel string) []string {
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == "" {
		return nil
	}
	return strings.Split(rel, "/")
}

// watchDir reports whether the directory at rel should be watched.
func (s scope) watchDir(rel string) bool {
	parts := split(rel)
	if len(parts) > s.maxDepth {
		return false
	}
	for _, p := range parts {
		if s.ignore[p] {
			return false
		}
	}
	return true
}

// relevant reports whether an event for rel should be delivered: its
// parent directory must be watched.
func (s scope) relevant(rel string) bool {
	parts := split(rel)
	if len(parts) == 0 {
		return false
	}
	return s.watchDir(strings.Join(parts[:len(parts)-1], "/"))
}

// isConfig reports whether rel is a root-level config file.
func (s scope) isConfig(rel string) bool {
	parts := split(rel)
	return len(parts) == 1 && s.config[parts[0]]
}
