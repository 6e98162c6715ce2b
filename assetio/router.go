package assetio

import "context"

// Router dispatches asset operations between a remote fetcher and a
// local backend based on each path's classification. It implements
// Backend itself, so callers use one uniform contract regardless of
// which side serves a request.
type Router struct {
	local   Backend
	remote  Fetcher
	watches PathWatcher
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithPathWatcher routes local watch registrations through w instead of
// the local backend's own WatchPath
func WithPathWatcher(w PathWatcher) RouterOption {
	return func(r *Router) { r.watches = w }
}

// NewRouter creates a router over a local backend and a remote fetcher
func NewRouter(local Backend, remote Fetcher, opts ...RouterOption) *Router {
	r := &Router{local: local, remote: remote}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Load returns the bytes for a path, fetching remote identifiers over
// HTTP and delegating everything else to the local backend
func (r *Router) Load(ctx context.Context, path string) ([]byte, error) {
	if IsRemote(path) {
		return r.remote.Fetch(ctx, path)
	}
	return r.local.Load(ctx, path)
}

// ReadDirectory always delegates to the local backend; directory
// listing over HTTP is undefined
func (r *Router) ReadDirectory(path string) ([]string, error) {
	return r.local.ReadDirectory(path)
}

// IsDir reports false for remote paths; an HTTP resource is never a
// directory in this model
func (r *Router) IsDir(path string) bool {
	if IsRemote(path) {
		return false
	}
	return r.local.IsDir(path)
}

// Metadata always delegates to the local backend
func (r *Router) Metadata(path string) (Metadata, error) {
	return r.local.Metadata(path)
}

// WatchPath registers a change watch for local paths. Remote paths
// report success without installing anything; callers must not assume
// liveness of remote change notifications.
func (r *Router) WatchPath(path, reloadHint string) error {
	if IsRemote(path) {
		return nil
	}
	if r.watches != nil {
		return r.watches.Watch(path, reloadHint)
	}
	return r.local.WatchPath(path, reloadHint)
}

// Watch installs the global change-watch hook on the local backend
// only; no remote polling is installed
func (r *Router) Watch(cfg WatchConfig) error {
	return r.local.Watch(cfg)
}
