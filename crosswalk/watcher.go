package crosswalk

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"
)

// RebuildFunc is called after watched inputs change. changed lists the
// absolute paths that were created, modified or removed since the last call.
type RebuildFunc func(ctx context.Context, changed []string) error

// Watcher watches a directory tree and calls a RebuildFunc once the input
// files matching its patterns have been quiet for the debounce period.
type Watcher struct {
	dir      string
	patterns []string
	debounce time.Duration
	rebuild  RebuildFunc
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	excludes map[string]bool
	ignored  map[string]bool

	// Owned by the event goroutine.
	pending map[string]fsnotify.Op
	hashes  map[string]uint64

	done     chan struct{}
	rebuilds atomic.Int64
	failures atomic.Int64
}

// NewWatcher creates a watcher over dir. Patterns are doublestar globs
// relative to dir.
func NewWatcher(dir string, patterns []string, debounce time.Duration, rebuild RebuildFunc, logger *slog.Logger) (*Watcher, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	return &Watcher{
		dir:      absDir,
		patterns: patterns,
		debounce: debounce,
		rebuild:  rebuild,
		watcher:  fsw,
		logger:   logger,
		excludes: map[string]bool{".git": true, "node_modules": true, "vendor": true},
		ignored:  make(map[string]bool),
		pending:  make(map[string]fsnotify.Op),
		hashes:   make(map[string]uint64),
		done:     make(chan struct{}),
	}, nil
}

// Ignore excludes files from triggering rebuilds, typically the pipeline's
// own output. Call it before Start.
func (w *Watcher) Ignore(paths ...string) {
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			w.ignored[abs] = true
		}
	}
}

// Start adds watches below the directory, records the current content of the
// matching files and begins processing events.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addWatchesRecursive(w.dir, true); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("Watcher started",
		"dir", w.dir,
		"debounce", w.debounce,
		"patterns", w.patterns)

	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// Done is closed when the event goroutine exits.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

// Rebuilds returns the number of RebuildFunc calls so far.
func (w *Watcher) Rebuilds() int64 {
	return w.rebuilds.Load()
}

// Failures returns the number of RebuildFunc calls that returned an error.
func (w *Watcher) Failures() int64 {
	return w.failures.Load()
}

// addWatchesRecursive adds watches to all directories. Matching files found
// on the way are hashed on the initial walk and marked pending afterwards.
func (w *Watcher) addWatchesRecursive(root string, initial bool) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			if !w.matches(path) {
				return nil
			}
			if !initial {
				w.pending[path] |= fsnotify.Create
			} else if sum, ok := hashFile(path); ok {
				w.hashes[path] = sum
			}
			return nil
		}

		// Skip excluded and hidden directories
		base := filepath.Base(path)
		if path != root && (w.excludes[base] || strings.HasPrefix(base, ".")) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory",
				"path", path,
				"error", err)
		} else {
			w.logger.Debug("Watching directory", "path", path)
		}

		return nil
	})
}

func (w *Watcher) matches(path string) bool {
	return !w.ignored[path] && MatchesAny(w.patterns, w.dir, path)
}

// processEvents handles fsnotify events with debouncing.
func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.done)
	defer w.watcher.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.handleFSEvent(event) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-timer.C:
			w.flushPending(ctx)
		}
	}
}

// handleFSEvent records a change to a matching file. It reports whether the
// event was recorded.
func (w *Watcher) handleFSEvent(event fsnotify.Event) bool {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return w.handleNewDirectory(path)
		}
	}
	if !w.matches(path) {
		return false
	}

	w.pending[path] |= event.Op
	w.logger.Debug("Input change detected",
		"path", path,
		"op", event.Op.String())
	return true
}

// handleNewDirectory adds watches below a newly created directory. It
// reports whether matching files were already inside.
func (w *Watcher) handleNewDirectory(path string) bool {
	base := filepath.Base(path)
	if w.excludes[base] || strings.HasPrefix(base, ".") {
		return false
	}

	before := len(w.pending)
	if err := w.addWatchesRecursive(path, false); err != nil {
		w.logger.Warn("Failed to watch new directory",
			"path", path,
			"error", err)
	}
	return len(w.pending) > before
}

// flushPending calls the RebuildFunc when a pending file really changed.
func (w *Watcher) flushPending(ctx context.Context) {
	if len(w.pending) == 0 {
		return
	}

	var changed []string
	for path := range w.pending {
		sum, ok := hashFile(path)
		old, had := w.hashes[path]
		switch {
		case !ok && had:
			delete(w.hashes, path)
			changed = append(changed, path)
		case ok && (!had || old != sum):
			w.hashes[path] = sum
			changed = append(changed, path)
		}
	}
	clear(w.pending)

	if len(changed) == 0 {
		return
	}
	slices.Sort(changed)

	w.rebuilds.Add(1)
	if err := w.rebuild(ctx, changed); err != nil {
		w.failures.Add(1)
		if !errors.Is(err, context.Canceled) {
			w.logger.Error("Rebuild failed", "changed", changed, "error", err)
		}
		return
	}
	w.logger.Info("Rebuilt", "changed", len(changed))
}

// hashFile returns the xxhash of a file's content, or false when it cannot
// be read.
func hashFile(path string) (uint64, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	return xxhash.Sum64(data), true
}
