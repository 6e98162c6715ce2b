// Package local provides the filesystem-backed asset backend and the
// bridge that registers change watches with a filesystem watcher.
package local

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/oscrim/webasset/assetio"
)

// Backend serves assets from a directory root. Paths resolve against
// the root and are confined to it: absolute identifiers and identifiers
// that climb out of the root load nothing.
type Backend struct {
	root    string
	watches *WatchBridge
}

// BackendOption configures a Backend
type BackendOption func(*Backend)

// WithWatchBridge routes watch registrations through the bridge
func WithWatchBridge(b *WatchBridge) BackendOption {
	return func(be *Backend) { be.watches = b }
}

// NewBackend creates a filesystem backend rooted at root
func NewBackend(root string, opts ...BackendOption) *Backend {
	b := &Backend{root: root}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Load implements assetio.Backend
func (b *Backend) Load(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full, ok := b.resolve(path)
	if !ok {
		return nil, assetio.NotFound(path)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return nil, assetio.NotFound(path)
	}
	return data, nil
}

// ReadDirectory implements assetio.Backend. Entries keep the same
// relative form as the argument, so they can be fed back into Load.
func (b *Backend) ReadDirectory(path string) ([]string, error) {
	full, ok := b.resolve(path)
	if !ok {
		return nil, assetio.NotFound(path)
	}

	entries, err := os.ReadDir(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, assetio.NotFound(path)
		}
		return nil, err
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		paths = append(paths, filepath.Join(path, entry.Name()))
	}
	return paths, nil
}

// IsDir implements assetio.Backend
func (b *Backend) IsDir(path string) bool {
	full, ok := b.resolve(path)
	if !ok {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && info.IsDir()
}

// Metadata implements assetio.Backend
func (b *Backend) Metadata(path string) (assetio.Metadata, error) {
	full, ok := b.resolve(path)
	if !ok {
		return assetio.Metadata{}, assetio.NotFound(path)
	}

	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return assetio.Metadata{}, assetio.NotFound(path)
		}
		return assetio.Metadata{}, err
	}

	ft := assetio.FileTypeFile
	if info.IsDir() {
		ft = assetio.FileTypeDir
	}
	return assetio.Metadata{
		FileType: ft,
		Size:     info.Size(),
		ModTime:  info.ModTime(),
	}, nil
}

// WatchPath implements assetio.Backend. Without a bridge, watching is
// silently disabled rather than an error.
func (b *Backend) WatchPath(path, reloadHint string) error {
	if b.watches == nil {
		return nil
	}
	return b.watches.Watch(path, reloadHint)
}

// Watch implements assetio.Backend
func (b *Backend) Watch(cfg assetio.WatchConfig) error {
	if b.watches == nil {
		return nil
	}
	return b.watches.Start(cfg)
}

// resolve confines path to the backend root. Absolute identifiers and
// identifiers that climb out of the root resolve to nothing.
func (b *Backend) resolve(path string) (string, bool) {
	if filepath.IsAbs(path) {
		return "", false
	}

	full := filepath.Join(b.root, path)
	rel, err := filepath.Rel(b.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return full, true
}
