// Package watch reacts to updates of the query cache file.
//
// The watch command keeps reports on screen and re-renders them when
// another process (a cron-driven fetch, a colleague's run against a
// shared cache) refreshes the cached query results.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/0xfelis/gerrit-stats/pkg/logger"
)

// Config contains watcher configuration.
type Config struct {
	// Path is the file to watch. Its parent directory must exist; the
	// file itself may be created later.
	Path string

	// DebounceInterval collapses bursts of filesystem events into one
	// notification. Default: 500ms.
	DebounceInterval time.Duration
}

// Watcher notifies a callback when the watched file changes.
type Watcher interface {
	// Run invokes fn once for every (debounced) change of the watched
	// file until the context is canceled.
	//
	// Returns nil on context cancellation and an error when the
	// underlying filesystem watch fails.
	Run(ctx context.Context, fn func()) error

	// Close releases the filesystem watch.
	Close() error
}

// watcher implements the Watcher interface using fsnotify.
type watcher struct {
	fsw    *fsnotify.Watcher
	config Config
	logger logger.Logger

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a watcher for the given file.
//
// Parameters:
//   - cfg: Watcher configuration
//   - log: Logger instance
//
// Returns an error when the parent directory cannot be watched.
func New(cfg Config, log logger.Logger) (Watcher, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("watch path is required")
	}
	if cfg.DebounceInterval == 0 {
		cfg.DebounceInterval = 500 * time.Millisecond
	}

	dir := filepath.Dir(cfg.Path)
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("cannot watch %s: %w", dir, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	// Watch the directory rather than the file: database rewrites can
	// replace the inode, which would silently drop a file watch.
	if err := fsw.Add(dir); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			log.Error("failed to close watcher", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	log.Debug("watching for cache updates", "path", cfg.Path)

	return &watcher{
		fsw:    fsw,
		config: cfg,
		logger: log,
	}, nil
}

// Run implements Watcher.Run.
func (w *watcher) Run(ctx context.Context, fn func()) error {
	notify := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("filesystem watch closed")
			}
			if !w.concerns(event) {
				continue
			}
			w.debounce(notify)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("filesystem watch closed")
			}
			w.logger.Warn("filesystem watch error", "error", err)

		case <-notify:
			w.logger.Debug("cache updated", "path", w.config.Path)
			fn()
		}
	}
}

// concerns reports whether an event touches the watched file.
func (w *watcher) concerns(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(w.config.Path) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Rename)
}

// debounce schedules one notification after the debounce interval,
// restarting the clock on every new event.
func (w *watcher) debounce(notify chan<- struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.config.DebounceInterval, func() {
		select {
		case notify <- struct{}{}:
		default:
		}
	})
}

// Close implements Watcher.Close.
func (w *watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fsw.Close()
}
