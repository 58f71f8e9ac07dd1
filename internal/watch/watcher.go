// Package watch re-runs a scan whenever the watched tree changes.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/harrison/namecheck/internal/logger"
	"github.com/harrison/namecheck/internal/walker"
)

// DefaultDebounce is the quiet period that must pass after the last event
// before a re-scan starts
const DefaultDebounce = 250 * time.Millisecond

// ScanFunc runs one scan. A returned error ends the watch.
type ScanFunc func(ctx context.Context) error

// Watcher watches a directory tree and triggers scans on change
type Watcher struct {
	fsw           *fsnotify.Watcher
	root          string
	includeHidden bool
	debounce      time.Duration
	logger        logger.Logger

	mu      sync.Mutex
	watched map[string]bool

	// paths namecheck writes itself; changes there never trigger a scan
	ignoredPaths    []string
	ignoredPrefixes []string
}

// New watches root and every directory below it. Hidden directories are
// left out unless includeHidden is set. debounce <= 0 uses DefaultDebounce.
func New(root string, includeHidden bool, debounce time.Duration, log logger.Logger) (*Watcher, error) {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &walker.NotFoundError{Path: root}
		}
		return nil, fmt.Errorf("failed to access %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("cannot watch %s: not a directory", root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		fsw:           fsw,
		root:          filepath.Clean(root),
		includeHidden: includeHidden,
		debounce:      debounce,
		logger:        log,
		watched:       make(map[string]bool),
	}

	if err := w.addRecursive(w.root); err != nil {
		fsw.Close()
		return nil, err
	}

	return w, nil
}

// WatchedCount returns the number of directories being watched
func (w *Watcher) WatchedCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.watched)
}

// addRecursive adds dir and its non-pruned subdirectories to the watch set
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// vanished or unreadable directories are picked up by the next scan
			if path == dir && !os.IsNotExist(err) && !os.IsPermission(err) {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && !w.includeHidden && walker.IsHidden(d.Name()) {
			return filepath.SkipDir
		}

		w.mu.Lock()
		defer w.mu.Unlock()
		if w.watched[path] {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.LogDebug(fmt.Sprintf("cannot watch %s: %v", path, err))
			return nil
		}
		w.watched[path] = true
		return nil
	})
}

// IgnorePath drops events for path and anything below it
func (w *Watcher) IgnorePath(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ignoredPaths = append(w.ignoredPaths, absPath(path))
}

// IgnorePrefix drops events for every path starting with prefix, such as a
// database and its -wal and -shm files
func (w *Watcher) IgnorePrefix(prefix string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ignoredPrefixes = append(w.ignoredPrefixes, absPath(prefix))
}

func (w *Watcher) ignored(path string) bool {
	if !w.includeHidden && path != w.root && walker.IsHidden(filepath.Base(path)) {
		return true
	}

	abs := absPath(path)
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range w.ignoredPaths {
		if abs == p || strings.HasPrefix(abs, p+string(filepath.Separator)) {
			return true
		}
	}
	for _, p := range w.ignoredPrefixes {
		if strings.HasPrefix(abs, p) {
			return true
		}
	}
	return false
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Run blocks until ctx is done, calling scan once per burst of changes.
// It closes the underlying watcher on return.
func (w *Watcher) Run(ctx context.Context, scan ScanFunc) error {
	defer w.fsw.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.ignored(event.Name) {
				continue
			}
			w.logger.LogTrace(fmt.Sprintf("change: %s %s", event.Op, event.Name))

			if event.Has(fsnotify.Create) {
				if info, err := os.Lstat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						w.logger.LogWarn(fmt.Sprintf("cannot watch %s: %v", event.Name, err))
					}
				}
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.mu.Lock()
				delete(w.watched, event.Name)
				w.mu.Unlock()
			}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.LogWarn(fmt.Sprintf("watch error: %v", err))

		case <-fire:
			fire = nil
			w.logger.LogDebug("changes settled, re-scanning " + w.root)
			if err := scan(ctx); err != nil {
				return err
			}
		}
	}
}

// Close stops watching without waiting for Run
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
