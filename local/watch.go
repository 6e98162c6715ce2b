package local

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/oscrim/webasset/assetio"
)

// defaultDebounce collapses editor write bursts into one reload
const defaultDebounce = 50 * time.Millisecond

// Watcher registers an absolute path with an external filesystem
// watcher.
type Watcher interface {
	Watch(absPath string) error
}

// EventSource is the optional capability a Watcher exposes so the
// bridge can pump its change events into a reload callback.
type EventSource interface {
	Events() <-chan fsnotify.Event
	Errors() <-chan error
}

// WatchBridge resolves relative asset paths against a root and
// registers them with a watcher. Reload hints are recorded so change
// events report the path the caller wants reloaded, not necessarily
// the path that changed.
type WatchBridge struct {
	root    string
	watcher Watcher
	log     zerolog.Logger

	mu     sync.RWMutex
	reload map[string]string // absolute watched path -> reload target
}

// BridgeOption configures a WatchBridge
type BridgeOption func(*WatchBridge)

// WithBridgeLogger sets the logger for watch diagnostics
func WithBridgeLogger(log zerolog.Logger) BridgeOption {
	return func(b *WatchBridge) { b.log = log }
}

// NewWatchBridge creates a bridge over an external watcher. A nil
// watcher disables watching; registrations then succeed without effect.
func NewWatchBridge(root string, watcher Watcher, opts ...BridgeOption) *WatchBridge {
	b := &WatchBridge{
		root:    root,
		watcher: watcher,
		log:     zerolog.Nop(),
		reload:  make(map[string]string),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Watch registers path with the watcher, resolved against the root.
// A failed registration returns a WatchError carrying the absolute path.
func (b *WatchBridge) Watch(path, reloadHint string) error {
	if b.watcher == nil {
		return nil
	}

	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(b.root, path)
	}

	if err := b.watcher.Watch(abs); err != nil {
		return &assetio.WatchError{Path: abs, Err: err}
	}

	target := reloadHint
	if target == "" {
		target = path
	}

	b.mu.Lock()
	b.reload[abs] = target
	b.mu.Unlock()

	b.log.Debug().Str("path", abs).Str("reload", target).Msg("watching path")
	return nil
}

// Start wires the watcher's event stream into cfg.OnChange. Watchers
// that expose no event stream leave the hook installed but dormant.
func (b *WatchBridge) Start(cfg assetio.WatchConfig) error {
	src, ok := b.watcher.(EventSource)
	if !ok {
		return nil
	}
	go b.pump(src, cfg)
	return nil
}

// pump forwards change events, debouncing per path. Runs until the
// watcher closes its channels.
func (b *WatchBridge) pump(src EventSource, cfg assetio.WatchConfig) {
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	var mu sync.Mutex
	pending := make(map[string]*time.Timer)

	events := src.Events()
	errs := src.Errors()
	for events != nil || errs != nil {
		select {
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			name := ev.Name
			target := b.reloadTarget(name)

			mu.Lock()
			// Reset only a timer that has not fired yet; re-arming one
			// whose callback is already on its way would deliver a
			// duplicate for the same burst.
			if timer, ok := pending[name]; ok && timer.Stop() {
				timer.Reset(debounce)
				mu.Unlock()
				continue
			}
			var timer *time.Timer
			timer = time.AfterFunc(debounce, func() {
				mu.Lock()
				if pending[name] == timer {
					delete(pending, name)
				}
				mu.Unlock()
				if cfg.OnChange != nil {
					cfg.OnChange(target)
				}
			})
			pending[name] = timer
			mu.Unlock()
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			b.log.Warn().Err(err).Msg("watch error")
		}
	}
}

func (b *WatchBridge) reloadTarget(abs string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if target, ok := b.reload[abs]; ok {
		return target
	}
	return abs
}

// ChangeWatcher is the fsnotify-backed Watcher
type ChangeWatcher struct {
	w *fsnotify.Watcher
}

// NewChangeWatcher creates a filesystem watcher
func NewChangeWatcher() (*ChangeWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &ChangeWatcher{w: w}, nil
}

// Watch implements Watcher
func (cw *ChangeWatcher) Watch(absPath string) error {
	return cw.w.Add(absPath)
}

// Events implements EventSource
func (cw *ChangeWatcher) Events() <-chan fsnotify.Event {
	return cw.w.Events
}

// Errors implements EventSource
func (cw *ChangeWatcher) Errors() <-chan error {
	return cw.w.Errors
}

// Close stops the watcher and closes its event channels
func (cw *ChangeWatcher) Close() error {
	return cw.w.Close()
}
