package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/gofrs/flock"
)

// RotatingWriter is an io.Writer over a log file that rolls over to
// <path>.1, <path>.2, ... once the file reaches its size limit.
//
// Several envdoctor processes (a watch session and a one-off check, say) may
// share one log file. Rotation takes a cross-process lock on <path>.lock and
// skips the renames when another process already rotated.
type RotatingWriter struct {
	path     string
	maxSize  int64
	maxFiles int
	lock     *flock.Flock

	mu      sync.Mutex
	file    *os.File
	written int64
}

// NewRotatingWriter opens path for appending. A size of 0 MB rotates on
// every write.
func NewRotatingWriter(path string, maxSizeMB, maxFiles int) (*RotatingWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	w := &RotatingWriter{
		path:     path,
		maxSize:  int64(maxSizeMB) << 20,
		maxFiles: maxFiles,
		lock:     flock.New(path + ".lock"),
	}
	if err := w.reopen(); err != nil {
		return nil, err
	}
	return w, nil
}

// Write appends p and syncs, so `envdoctor logs -f` sees each record as it
// lands. A failed rotation is reported on stderr and the write still goes
// to path.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.written+int64(len(p)) > w.maxSize {
		if err := w.rotate(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
		}
	}
	if w.file == nil {
		if err := w.reopen(); err != nil {
			return 0, err
		}
	}

	n, err := w.file.Write(p)
	w.written += int64(n)
	if err != nil {
		return n, err
	}
	_ = w.file.Sync()
	return n, nil
}

// Close closes the log file.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeFile()
}

// Sync flushes the log file to disk.
func (w *RotatingWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	return w.file.Sync()
}

func (w *RotatingWriter) closeFile() error {
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// reopen opens path and resumes the size count from its current length.
func (w *RotatingWriter) reopen() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	w.file = f
	w.written = info.Size()
	return nil
}

func (w *RotatingWriter) rotate() error {
	if err := w.lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock log file: %w", err)
	}
	defer func() { _ = w.lock.Unlock() }()

	if w.rotatedElsewhere() {
		_ = w.closeFile()
		return w.reopen()
	}

	if err := w.closeFile(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	if err := w.shiftBackups(); err != nil {
		return err
	}
	if _, err := os.Stat(w.path); err == nil {
		if err := os.Rename(w.path, w.path+".1"); err != nil {
			return fmt.Errorf("failed to rotate log file: %w", err)
		}
	}
	return w.reopen()
}

// shiftBackups renames <path>.N to <path>.N+1, highest first, and removes
// backups that would exceed maxFiles.
func (w *RotatingWriter) shiftBackups() error {
	backups, err := w.backups()
	if err != nil {
		return err
	}
	for _, n := range backups {
		old := w.backupPath(n)
		if n >= w.maxFiles {
			_ = os.Remove(old)
			continue
		}
		_ = os.Rename(old, w.backupPath(n+1))
	}
	return nil
}

// backups returns the numeric suffixes of existing backups, descending.
func (w *RotatingWriter) backups() ([]int, error) {
	matches, err := filepath.Glob(w.path + ".*")
	if err != nil {
		return nil, fmt.Errorf("failed to find rotated files: %w", err)
	}
	prefix := filepath.Base(w.path) + "."
	var nums []int
	for _, m := range matches {
		n, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(m), prefix))
		if err != nil {
			continue // .lock
		}
		nums = append(nums, n)
	}
	slices.Sort(nums)
	slices.Reverse(nums)
	return nums, nil
}

func (w *RotatingWriter) backupPath(n int) string {
	return w.path + "." + strconv.Itoa(n)
}

// rotatedElsewhere reports whether the file at path is no longer the one
// this writer holds open.
func (w *RotatingWriter) rotatedElsewhere() bool {
	if w.file == nil {
		return false
	}
	held, err := w.file.Stat()
	if err != nil {
		return false
	}
	current, err := os.Stat(w.path)
	if err != nil {
		return false
	}
	return !os.SameFile(held, current)
}
