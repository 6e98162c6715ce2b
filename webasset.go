// Package webasset assembles an asset-IO router that loads assets
// transparently from local storage or remote HTTP origins. Remote
// loads apply a shared header registry and revalidate cached bodies
// by ETag; local loads, listing, metadata, and change watching go to
// the filesystem backend.
package webasset

import (
	"net/http"

	"github.com/gregjones/httpcache"
	"github.com/rs/zerolog"

	"github.com/oscrim/webasset/assetio"
	"github.com/oscrim/webasset/cache"
	"github.com/oscrim/webasset/fetch"
	"github.com/oscrim/webasset/local"
)

// DefaultRoot is the directory local asset paths resolve against
const DefaultRoot = "assets"

// DefaultCacheNamespace isolates this system's cache entries
const DefaultCacheNamespace = "webasset"

// AssetIO is the assembled router plus the mutable header registry
// exposed to the host for configuring global request headers.
type AssetIO struct {
	*assetio.Router
	Headers *fetch.Headers
}

type config struct {
	root       string
	namespace  string
	cacheDir   string
	cache      httpcache.Cache
	noCache    bool
	httpClient *http.Client
	watcher    local.Watcher
	headers    *fetch.Headers
	log        zerolog.Logger
}

// Option configures the assembly
type Option func(*config)

// WithRoot sets the directory local paths resolve against
func WithRoot(root string) Option {
	return func(c *config) { c.root = root }
}

// WithCacheNamespace sets the cache namespace name
func WithCacheNamespace(name string) Option {
	return func(c *config) { c.namespace = name }
}

// WithCacheDir sets where the default file cache stores entries
func WithCacheDir(dir string) Option {
	return func(c *config) { c.cacheDir = dir }
}

// WithCache uses the given platform cache primitive instead of the
// default file cache
func WithCache(cache httpcache.Cache) Option {
	return func(c *config) { c.cache = cache }
}

// WithoutCache selects the pass-through fetch strategy: every remote
// load issues a plain GET with no conditional headers and no
// persistence across requests
func WithoutCache() Option {
	return func(c *config) { c.noCache = true }
}

// WithHTTPClient sets the HTTP client used for remote loads
func WithHTTPClient(h *http.Client) Option {
	return func(c *config) { c.httpClient = h }
}

// WithWatcher enables local change watching through the given watcher
func WithWatcher(w local.Watcher) Option {
	return func(c *config) { c.watcher = w }
}

// WithHeaders shares an existing header registry with the router
func WithHeaders(h *fetch.Headers) Option {
	return func(c *config) { c.headers = h }
}

// WithLogger sets the logger for all components
func WithLogger(log zerolog.Logger) Option {
	return func(c *config) { c.log = log }
}

// New assembles the router. The fetch strategy is fixed here: caching
// when a cache is available, pass-through otherwise.
func New(opts ...Option) (*AssetIO, error) {
	cfg := config{
		root:      DefaultRoot,
		namespace: DefaultCacheNamespace,
		log:       zerolog.Nop(),
	}
	for _, o := range opts {
		o(&cfg)
	}

	headers := cfg.headers
	if headers == nil {
		headers = fetch.NewHeaders()
	}

	var bridge *local.WatchBridge
	backendOpts := []local.BackendOption{}
	if cfg.watcher != nil {
		bridge = local.NewWatchBridge(cfg.root, cfg.watcher, local.WithBridgeLogger(cfg.log))
		backendOpts = append(backendOpts, local.WithWatchBridge(bridge))
	}
	backend := local.NewBackend(cfg.root, backendOpts...)

	fetchOpts := []fetch.Option{fetch.WithLogger(cfg.log)}
	if cfg.httpClient != nil {
		fetchOpts = append(fetchOpts, fetch.WithHTTPClient(cfg.httpClient))
	}

	var fetcher assetio.Fetcher
	if cfg.noCache {
		fetcher = fetch.NewPlain(headers, fetchOpts...)
	} else {
		backing := cfg.cache
		if backing == nil {
			fc, err := cache.NewFileCache(cfg.cacheDir, cache.WithFileCacheLogger(cfg.log))
			if err != nil {
				return nil, err
			}
			backing = fc
		}
		store := cache.NewNamespace(backing, cfg.namespace, cache.WithLogger(cfg.log))
		fetcher = fetch.NewCaching(headers, store, fetchOpts...)
	}

	routerOpts := []assetio.RouterOption{}
	if bridge != nil {
		routerOpts = append(routerOpts, assetio.WithPathWatcher(bridge))
	}

	return &AssetIO{
		Router:  assetio.NewRouter(backend, fetcher, routerOpts...),
		Headers: headers,
	}, nil
}
