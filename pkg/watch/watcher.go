package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Config controls what the watcher observes and how eagerly it fires.
type Config struct {
	// Path is the feed file or a directory of feeds.
	Path string

	// Debounce is the quiet period after the last event before the
	// callback fires. Editors and upload jobs produce event bursts; one
	// validation per burst is enough.
	Debounce time.Duration

	// Extensions limits events to matching files, ".xml" when empty.
	Extensions []string
}

// Watcher re-validates feeds when they change on disk.
type Watcher struct {
	cfg      Config
	logger   *slog.Logger
	notify   *fsnotify.Watcher
	debounce *debouncer

	// file is non-empty when Path names a single feed rather than a
	// directory; events for other files in its directory are ignored.
	file string

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New builds a watcher for cfg.Path. The path must exist.
func New(cfg Config, logger *slog.Logger) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("watch path cannot be empty")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = []string{".xml"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	notify, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		cfg:      cfg,
		logger:   logger,
		notify:   notify,
		debounce: newDebouncer(cfg.Debounce),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Run blocks, invoking onChange with the changed feed path after each
// debounced burst of events, until the context is cancelled or Stop is
// called. Callback errors are logged; the watch continues.
func (w *Watcher) Run(ctx context.Context, onChange func(path string) error) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	if err := w.addPath(); err != nil {
		return err
	}

	w.logger.Info("feed watcher started",
		"path", w.cfg.Path,
		"debounce", w.cfg.Debounce,
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("feed watcher stopped", "reason", "context cancelled")
			return nil

		case <-w.stopCh:
			w.logger.Info("feed watcher stopped")
			return nil

		case event, ok := <-w.notify.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("feed changed", "path", event.Name, "op", event.Op.String())

			changed := event.Name
			w.debounce.trigger(func() {
				w.logger.Info("revalidating feed", "path", changed)
				if err := onChange(changed); err != nil {
					w.logger.Error("feed validation failed", "path", changed, "error", err)
				}
			})

		case err, ok := <-w.notify.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("feed watcher error", "error", err)
		}
	}
}

// Stop ends a running watch and releases the fsnotify handle.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.notify.Close()
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.debounce.stop()
	if err := w.notify.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// addPath registers cfg.Path with fsnotify. A single file is watched
// through its parent directory so atomic replace-on-save is observed.
func (w *Watcher) addPath() error {
	info, err := os.Stat(w.cfg.Path)
	if err != nil {
		return fmt.Errorf("cannot watch %s: %w", w.cfg.Path, err)
	}
	if info.IsDir() {
		if err := w.notify.Add(w.cfg.Path); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", w.cfg.Path, err)
		}
		return nil
	}

	w.file = filepath.Base(w.cfg.Path)
	dir := filepath.Dir(w.cfg.Path)
	if err := w.notify.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}
	return nil
}

// relevant filters out chmods, hidden files, other extensions, and,
// when a single file is watched, its siblings.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if w.file != "" {
		return base == w.file
	}

	ext := strings.ToLower(filepath.Ext(event.Name))
	for _, want := range w.cfg.Extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}

// debouncer collapses a burst of events into one callback after a quiet
// interval.
type debouncer struct {
	interval time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	callback func()
	stopped  bool
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{interval: interval}
}

// trigger arms the timer with a fresh callback, replacing any pending
// one.
func (d *debouncer) trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		cb := d.callback
		stopped := d.stopped
		d.mu.Unlock()
		if cb != nil && !stopped {
			cb()
		}
	})
}

// stop cancels any pending callback.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
