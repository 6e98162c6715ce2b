package local

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"

	"github.com/oscrim/webasset/assetio"
)

// recordingWatcher records registrations and can be made to fail
type recordingWatcher struct {
	paths []string
	err   error
}

func (w *recordingWatcher) Watch(absPath string) error {
	if w.err != nil {
		return w.err
	}
	w.paths = append(w.paths, absPath)
	return nil
}

func TestBridgeResolvesAgainstRoot(t *testing.T) {
	watcher := &recordingWatcher{}
	bridge := NewWatchBridge("/game", watcher)

	require.NoError(t, bridge.Watch("assets/sprite.png", ""))
	require.Equal(t, []string{filepath.Join("/game", "assets", "sprite.png")}, watcher.paths)
}

func TestBridgeKeepsAbsolutePaths(t *testing.T) {
	watcher := &recordingWatcher{}
	bridge := NewWatchBridge("/game", watcher)

	require.NoError(t, bridge.Watch("/elsewhere/a.png", ""))
	require.Equal(t, []string{"/elsewhere/a.png"}, watcher.paths)
}

func TestBridgeNilWatcherSucceeds(t *testing.T) {
	bridge := NewWatchBridge("/game", nil)
	require.NoError(t, bridge.Watch("assets/sprite.png", ""))
	require.NoError(t, bridge.Start(assetio.WatchConfig{}))
}

func TestBridgeWrapsRegistrationFailure(t *testing.T) {
	cause := errors.New("inotify limit")
	bridge := NewWatchBridge("/game", &recordingWatcher{err: cause})

	err := bridge.Watch("assets/sprite.png", "")
	require.Error(t, err)

	var watchErr *assetio.WatchError
	require.ErrorAs(t, err, &watchErr)
	require.Equal(t, filepath.Join("/game", "assets", "sprite.png"), watchErr.Path)
	require.ErrorIs(t, err, cause)
}

func TestBridgeReloadTarget(t *testing.T) {
	watcher := &recordingWatcher{}
	bridge := NewWatchBridge("/game", watcher)

	require.NoError(t, bridge.Watch("assets/sprite.png.meta", "assets/sprite.png"))

	abs := filepath.Join("/game", "assets", "sprite.png.meta")
	require.Equal(t, "assets/sprite.png", bridge.reloadTarget(abs))

	// Unregistered paths report themselves
	require.Equal(t, "/game/other.png", bridge.reloadTarget("/game/other.png"))
}

// scriptedWatcher feeds the bridge's pump from test-controlled channels
type scriptedWatcher struct {
	events chan fsnotify.Event
	errs   chan error
}

func newScriptedWatcher() *scriptedWatcher {
	return &scriptedWatcher{
		events: make(chan fsnotify.Event, 64),
		errs:   make(chan error, 1),
	}
}

func (w *scriptedWatcher) Watch(string) error            { return nil }
func (w *scriptedWatcher) Events() <-chan fsnotify.Event { return w.events }
func (w *scriptedWatcher) Errors() <-chan error          { return w.errs }

func TestBridgeCollapsesEventBursts(t *testing.T) {
	watcher := newScriptedWatcher()
	bridge := NewWatchBridge("/game", watcher)
	require.NoError(t, bridge.Watch("assets/sprite.png", ""))

	changed := make(chan string, 16)
	require.NoError(t, bridge.Start(assetio.WatchConfig{
		Debounce: 50 * time.Millisecond,
		OnChange: func(path string) { changed <- path },
	}))

	abs := filepath.Join("/game", "assets", "sprite.png")
	for i := 0; i < 10; i++ {
		watcher.events <- fsnotify.Event{Name: abs, Op: fsnotify.Write}
	}

	select {
	case path := <-changed:
		require.Equal(t, "assets/sprite.png", path)
	case <-time.After(5 * time.Second):
		t.Fatal("no change event delivered")
	}

	// The whole burst collapses into that single callback
	select {
	case path := <-changed:
		t.Fatalf("burst delivered a duplicate change for %s", path)
	case <-time.After(250 * time.Millisecond):
	}

	// A later event is a new burst and fires again
	watcher.events <- fsnotify.Event{Name: abs, Op: fsnotify.Write}
	select {
	case path := <-changed:
		require.Equal(t, "assets/sprite.png", path)
	case <-time.After(5 * time.Second):
		t.Fatal("follow-up change not delivered")
	}
}

func TestChangeWatcherDeliversEvents(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "sprite.png")
	require.NoError(t, os.WriteFile(file, []byte("v1"), 0o644))

	watcher, err := NewChangeWatcher()
	require.NoError(t, err)
	defer watcher.Close()

	bridge := NewWatchBridge(root, watcher)
	require.NoError(t, bridge.Watch("sprite.png", ""))

	changed := make(chan string, 8)
	require.NoError(t, bridge.Start(assetio.WatchConfig{
		Debounce: 20 * time.Millisecond,
		OnChange: func(path string) { changed <- path },
	}))

	require.NoError(t, os.WriteFile(file, []byte("v2"), 0o644))

	select {
	case path := <-changed:
		require.Equal(t, "sprite.png", path)
	case <-time.After(5 * time.Second):
		t.Fatal("no change event delivered")
	}
}
