package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docloader/internal/logger"
)

// DefaultDebounce is how long the watcher collects events before emitting a change.
const DefaultDebounce = 500 * time.Millisecond

// Change is a debounced set of modified paths.
type Change struct {
	// Paths are the changed files, sorted.
	Paths []string
}

// Watcher reports debounced changes beneath a set of roots on the OS filesystem.
// Hidden files and directories are ignored.
type Watcher struct {
	roots    []string
	debounce time.Duration
	watcher  *fsnotify.Watcher

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	events chan Change
}

// WatcherOption configures the watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the debounce window.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewWatcher creates a watcher for the given roots.
func NewWatcher(roots []string, opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		roots:    append([]string(nil), roots...),
		debounce: DefaultDebounce,
		watcher:  fsw,
		pending:  make(map[string]fsnotify.Op),
		events:   make(chan Change, 16),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Events returns the channel of debounced changes.
// It is closed when the watcher stops.
func (w *Watcher) Events() <-chan Change {
	return w.events
}

// Start adds watches for every root and begins processing events until ctx
// is cancelled or Close is called.
func (w *Watcher) Start(ctx context.Context) error {
	for _, root := range w.roots {
		info, err := os.Stat(root)
		if err != nil {
			return fmt.Errorf("watch %s: %w", root, err)
		}
		if !info.IsDir() {
			if err := w.watcher.Add(filepath.Dir(root)); err != nil {
				return fmt.Errorf("watch %s: %w", root, err)
			}
			continue
		}
		if err := w.addRecursive(root); err != nil {
			return fmt.Errorf("watch %s: %w", root, err)
		}
	}

	go w.run(ctx)
	return nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if p != root && isHidden(info.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			logger.Warn("failed to watch %s: %v", p, err)
			return nil
		}
		logger.Trace("watching %s", p)
		return nil
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.events)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error: %v", err)

		case <-ticker.C:
			if change, ok := w.flush(); ok {
				select {
				case w.events <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// handleEvent records a relevant event. It reports whether the event was kept.
func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	if isHidden(filepath.Base(event.Name)) {
		return false
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				logger.Warn("failed to watch new directory %s: %v", event.Name, err)
			}
		}
	}

	w.pendingMu.Lock()
	w.pending[event.Name] |= event.Op
	w.pendingMu.Unlock()

	logger.Debug("change detected: %s %s", event.Op, event.Name)
	return true
}

// flush drains the pending set into a Change.
func (w *Watcher) flush() (Change, bool) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	if len(w.pending) == 0 {
		return Change{}, false
	}

	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	w.pending = make(map[string]fsnotify.Op)
	return Change{Paths: paths}, true
}
