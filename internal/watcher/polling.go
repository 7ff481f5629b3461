package watcher

import (
	"context"
	"io/fs"
	"path/filepath"
	"time"
)

type fileSnapshot struct {
	modTime time.Time
	size    int64
	isDir   bool
}

// poller detects changes by periodically listing the watched directories.
// Used when fsnotify is not available.
type poller struct {
	root     string
	scope    scope
	interval time.Duration
	state    map[string]fileSnapshot
}

func newPoller(root string, sc scope, interval time.Duration) *poller {
	return &poller{root: root, scope: sc, interval: interval}
}

// run polls until ctx is done, passing every change to emit.
func (p *poller) run(ctx context.Context, emit func(FileEvent)) error {
	p.state = p.snapshot()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for _, ev := range p.diff(p.snapshot()) {
				emit(ev)
			}
		}
	}
}

// snapshot lists the entries of every watched directory.
func (p *poller) snapshot() map[string]fileSnapshot {
	state := make(map[string]fileSnapshot)
	_ = filepath.WalkDir(p.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(p.root, path)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if !p.scope.relevant(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		state[rel] = fileSnapshot{modTime: info.ModTime(), size: info.Size(), isDir: d.IsDir()}
		if d.IsDir() && !p.scope.watchDir(rel) {
			return filepath.SkipDir
		}
		return nil
	})
	return state
}

// diff compares next against the previous snapshot and stores next.
func (p *poller) diff(next map[string]fileSnapshot) []FileEvent {
	now := time.Now()
	var events []FileEvent

	for rel, snap := range next {
		prev, ok := p.state[rel]
		switch {
		case !ok:
			events = append(events, FileEvent{Path: rel, Operation: OpCreate, IsDir: snap.isDir, Timestamp: now})
		case !snap.isDir && (prev.modTime != snap.modTime || prev.size != snap.size):
			events = append(events, FileEvent{Path: rel, Operation: OpModify, Timestamp: now})
		}
	}
	for rel, snap := range p.state {
		if _, ok := next[rel]; !ok {
			events = append(events, FileEvent{Path: rel, Operation: OpDelete, IsDir: snap.isDir, Timestamp: now})
		}
	}

	p.state = next
	return events
}
