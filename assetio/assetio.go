// Package assetio defines the storage-backend contract for asset loading
// and the router that dispatches each path to a local or remote backend.
package assetio

import (
	"context"
	"strings"
	"time"
)

// FileType classifies a local path's metadata
type FileType int

const (
	FileTypeFile FileType = iota
	FileTypeDir
)

// Metadata describes a local asset path
type Metadata struct {
	FileType FileType
	Size     int64
	ModTime  time.Time
}

// IsDir reports whether the metadata describes a directory
func (m Metadata) IsDir() bool {
	return m.FileType == FileTypeDir
}

// WatchConfig configures the global change-watch hook.
// OnChange receives the path to reload; bursts of events for the same
// path within Debounce collapse into one callback.
type WatchConfig struct {
	Debounce time.Duration
	OnChange func(path string)
}

// Backend is the operation set a storage backend must support.
// The Router implements it as well, so a router can wrap another backend.
type Backend interface {
	// Load returns the raw bytes for a path, or ErrNotFound
	Load(ctx context.Context, path string) ([]byte, error)

	// ReadDirectory lists the entries of a directory path
	ReadDirectory(path string) ([]string, error)

	// IsDir reports whether the path is a directory
	IsDir(path string) bool

	// Metadata returns metadata for a path
	Metadata(path string) (Metadata, error)

	// WatchPath registers a change watch for a single path.
	// reloadHint names the path to reload when a change fires; empty
	// means the watched path itself.
	WatchPath(path, reloadHint string) error

	// Watch installs the global change-watch hook
	Watch(cfg WatchConfig) error
}

// Fetcher turns a remote URI into bytes
type Fetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// PathWatcher registers change watches for local paths
type PathWatcher interface {
	Watch(path, reloadHint string) error
}

// IsRemote reports whether a path identifier names an HTTP resource.
// Classification is a pure function of the identifier's prefix.
func IsRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}
