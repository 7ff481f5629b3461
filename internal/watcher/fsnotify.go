package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a workspace and emits debounced batches of changes.
type Watcher struct {
	opts      Options
	scope     scope
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	errors    chan error
	mu        sync.Mutex
	root      string
	cancel    context.CancelFunc
	done      chan struct{}
	stopped   bool
}

// New creates a watcher. fsnotify is used when available, polling
// otherwise.
func New(opts Options) (*Watcher, error) {
	opts = opts.WithDefaults()

	w := &Watcher{
		opts:      opts,
		scope:     newScope(opts),
		debouncer: NewDebouncer(opts.DebounceWindow),
		errors:    make(chan error, 10),
		done:      make(chan struct{}),
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("fsnotify unavailable, falling back to polling", slog.String("error", err.Error()))
	} else {
		w.fsWatcher = fsw
	}
	return w, nil
}

// Mode returns "fsnotify" or "polling".
func (w *Watcher) Mode() string {
	if w.fsWatcher != nil {
		return "fsnotify"
	}
	return "polling"
}

// Start watches root until ctx is cancelled or Stop is called.
// It blocks; run it in its own goroutine.
func (w *Watcher) Start(ctx context.Context, root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve absolute path: %w", err)
	}

	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.root = abs
	ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()
	defer close(w.done)

	slog.Debug("watch_started", slog.String("root", abs), slog.String("mode", w.Mode()))

	if w.fsWatcher == nil {
		return newPoller(abs, w.scope, w.opts.PollInterval).run(ctx, w.add)
	}

	if err := w.addTree(abs); err != nil {
		return fmt.Errorf("add directories to watcher: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.emitError(err)
		}
	}
}

// addTree registers dir and its watched subdirectories.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		rel, _ := filepath.Rel(w.root, path)
		if !w.scope.watchDir(rel) {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

func (w *Watcher) handle(event fsnotify.Event) {
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	if !w.scope.relevant(rel) {
		return
	}

	isDir, present := exists(event.Name)

	var op Operation
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
		if isDir && w.scope.watchDir(rel) {
			if err := w.addTree(event.Name); err != nil {
				w.emitError(err)
			}
		}
	case event.Has(fsnotify.Write):
		op = OpModify
	case event.Has(fsnotify.Remove):
		op = OpDelete
	case event.Has(fsnotify.Rename):
		op = OpRename
	default:
		// chmod
		return
	}

	if !present && op == OpModify {
		return
	}
	w.add(FileEvent{Path: rel, Operation: op, IsDir: isDir, Timestamp: time.Now()})
}

// add classifies config files and queues the event.
func (w *Watcher) add(ev FileEvent) {
	if w.scope.isConfig(ev.Path) {
		ev.Operation = OpConfigChange
	}
	w.debouncer.Add(ev)
}

func (w *Watcher) emitError(err error) {
	select {
	case w.errors <- err:
	default:
	}
}

// Events returns the channel of debounced batches. It is closed by Stop.
func (w *Watcher) Events() <-chan []FileEvent {
	return w.debouncer.Output()
}

// Errors returns non-fatal watcher errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Stop stops watching and closes the events channel.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	cancel := w.cancel
	w.mu.Unlock()

	if cancel != nil {
		cancel()
		<-w.done
	}
	w.debouncer.Stop()
	if w.fsWatcher != nil {
		return w.fsWatcher.Close()
	}
	return nil
}

// exists reports whether path exists.
func exists(path string) (isDir, ok bool) {
	info, err := os.Stat(path)
	if err != nil {
		return false, false
	}
	return info.IsDir(), true
}
