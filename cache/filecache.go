package cache

import (
	"errors"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// FileCache implements the httpcache.Cache interface using filesystem
// storage. It is the cache primitive for runtimes that provide none of
// their own. Write failures are logged and swallowed, matching the
// primitive's no-error contract.
type FileCache struct {
	dir string
	log zerolog.Logger
}

// FileCacheOption configures a FileCache
type FileCacheOption func(*FileCache)

// WithFileCacheLogger sets the logger used to report swallowed write errors
func WithFileCacheLogger(log zerolog.Logger) FileCacheOption {
	return func(fc *FileCache) { fc.log = log }
}

// NewFileCache creates a file-based cache rooted at dir.
// If dir is empty, a default directory under the user's home is used.
func NewFileCache(dir string, opts ...FileCacheOption) (*FileCache, error) {
	if dir == "" {
		usr, err := user.Current()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(usr.HomeDir, ".webasset_cache")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}

	fc := &FileCache{dir: dir, log: zerolog.Nop()}
	for _, o := range opts {
		o(fc)
	}
	return fc, nil
}

// Get retrieves the bytes stored under key, if any
func (fc *FileCache) Get(key string) ([]byte, bool) {
	data, err := os.ReadFile(fc.path(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores bytes under key. Write to a temporary file first, then
// rename (atomic operation), so readers never observe a torn entry.
func (fc *FileCache) Set(key string, data []byte) {
	path := fc.path(key)

	tmpPath := path + ".tmp." + uuid.NewString()
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		fc.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
		return
	}

	if err := os.Rename(tmpPath, path); err != nil {
		fc.log.Warn().Err(err).Str("key", key).Msg("cache rename failed")
		_ = os.Remove(tmpPath)
	}
}

// Delete removes the entry stored under key
func (fc *FileCache) Delete(key string) {
	if err := os.Remove(fc.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fc.log.Warn().Err(err).Str("key", key).Msg("cache delete failed")
	}
}

// path generates the full filesystem path for a cache key
func (fc *FileCache) path(key string) string {
	return filepath.Join(fc.dir, sanitizeKey(key))
}
