package assetio

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a path cannot be loaded, whatever
	// the underlying cause: a missing local file, a transport failure,
	// or a 304 response with no cached body to back it.
	ErrNotFound = errors.New("asset not found")
)

// NotFound wraps ErrNotFound with the failing path for diagnostics
func NotFound(path string) error {
	return fmt.Errorf("%s: %w", path, ErrNotFound)
}

// WatchError reports a failed filesystem-watch registration.
// Path is the absolute path whose registration failed.
type WatchError struct {
	Path string
	Err  error
}

func (e *WatchError) Error() string {
	return fmt.Sprintf("watch %s: %v", e.Path, e.Err)
}

func (e *WatchError) Unwrap() error {
	return e.Err
}
