package session

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/ruminaider/toolkit/internal/profiles"
	"go.uber.org/zap"
)

// Watcher applies external edits of the registry file and the
// active-profile file to a running program.
type Watcher struct {
	mu           sync.Mutex
	watcher      *fsnotify.Watcher
	registry     *profiles.Registry
	store        *Store
	active       *ActiveFile
	activePath   string
	registryPath string
	onChange     func()
	logger       *zap.Logger
	stopCh       chan struct{}
	doneCh       chan struct{}
	running      bool
	closed       bool
}

// NewWatcher creates a watcher for registry and, when store and active
// are both non-nil, for the active-profile file feeding store. Pass the
// same ActiveFile given to Persist so this process's own writes are not
// applied twice. Nothing is watched until Start.
func NewWatcher(registry *profiles.Registry, store *Store, active *ActiveFile, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	w := &Watcher{
		watcher:      fw,
		registry:     registry,
		registryPath: filepath.Clean(registry.Path()),
		logger:       logger,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}
	if store != nil && active != nil {
		w.store = store
		w.active = active
		w.activePath = filepath.Clean(active.Path())
	}
	return w, nil
}

// OnChange sets the callback run after an external change was applied.
// It runs on the watcher goroutine. Set it before Start.
func (w *Watcher) OnChange(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start begins watching. It is non-blocking and a no-op when already running.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running || w.closed {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	dirs := []string{filepath.Dir(w.registryPath)}
	if w.active != nil {
		if activeDir := filepath.Dir(w.activePath); activeDir != dirs[0] {
			dirs = append(dirs, activeDir)
		}
	}
	for _, dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			w.mu.Lock()
			w.running = false
			w.mu.Unlock()
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		w.logger.Debug("watching directory", zap.String("dir", dir))
	}

	go w.run(ctx)
	return nil
}

// Close stops the event loop, waits for it and releases the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	running := w.running
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	if running {
		<-w.doneCh
	}
	return w.watcher.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
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
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	name := filepath.Clean(event.Name)
	switch {
	case w.active != nil && name == w.activePath:
		id, changed, err := w.active.Sync()
		if err != nil {
			w.logger.Warn("reading active profile", zap.Error(err))
			return
		}
		if !changed {
			return
		}
		w.logger.Debug("active profile changed externally", zap.String("id", id))
		w.store.SetActiveProfileID(id)
	case name == w.registryPath:
		if err := w.registry.Reload(); err != nil {
			w.logger.Warn("reloading profiles", zap.Error(err))
			return
		}
		w.logger.Debug("profiles reloaded", zap.Int("count", len(w.registry.Profiles())))
	default:
		return
	}

	w.mu.Lock()
	fn := w.onChange
	w.mu.Unlock()
	if fn != nil {
		fn()
	}
}
