package fetch

import (
	"context"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/oscrim/webasset/assetio"
	"github.com/oscrim/webasset/cache"
)

// Plain and Caching are the two fetch strategies. Both satisfy
// assetio.Fetcher; which one a router uses is decided at construction
// time, not by branching inside the fetch path.

type options struct {
	http *http.Client
	log  zerolog.Logger
}

// Option configures a fetcher
type Option func(*options)

// WithHTTPClient sets the HTTP client used for remote loads
func WithHTTPClient(h *http.Client) Option {
	return func(o *options) { o.http = h }
}

// WithLogger sets the logger for fetch diagnostics
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

func buildOptions(opts []Option) options {
	o := options{
		http: http.DefaultClient,
		log:  zerolog.Nop(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// Plain issues one GET per load with the merged headers and no
// caching; every load returns whatever the origin sends back.
type Plain struct {
	http    *http.Client
	headers *Headers
	log     zerolog.Logger
}

// NewPlain creates a pass-through fetcher
func NewPlain(headers *Headers, opts ...Option) *Plain {
	o := buildOptions(opts)
	return &Plain{http: o.http, headers: headers, log: o.log}
}

// Fetch implements assetio.Fetcher
func (f *Plain) Fetch(ctx context.Context, uri string) ([]byte, error) {
	req, err := newRequest(ctx, uri, f.headers)
	if err != nil {
		return nil, assetio.NotFound(uri)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		f.log.Warn().Err(err).Str("uri", uri).Msg("fetch failed")
		return nil, assetio.NotFound(uri)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		f.log.Debug().Int("status", resp.StatusCode).Str("uri", uri).Msg("fetch rejected")
		return nil, assetio.NotFound(uri)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, assetio.NotFound(uri)
	}
	return body, nil
}

// Caching fetches with ETag-based conditional revalidation against a
// cache store. A 304 from the origin resolves to the cached body; any
// other success overwrites the cache entry, best-effort.
type Caching struct {
	http    *http.Client
	headers *Headers
	store   cache.Store
	log     zerolog.Logger
}

// NewCaching creates a revalidating fetcher over a cache store
func NewCaching(headers *Headers, store cache.Store, opts ...Option) *Caching {
	o := buildOptions(opts)
	return &Caching{http: o.http, headers: headers, store: store, log: o.log}
}

// Fetch implements assetio.Fetcher
func (f *Caching) Fetch(ctx context.Context, uri string) ([]byte, error) {
	req, err := newRequest(ctx, uri, f.headers)
	if err != nil {
		return nil, assetio.NotFound(uri)
	}

	// Sets If-None-Match when a revalidatable entry exists
	cached, hit := f.store.Prepare(req)

	resp, err := f.http.Do(req)
	if err != nil {
		f.log.Warn().Err(err).Str("uri", uri).Msg("fetch failed")
		return nil, assetio.NotFound(uri)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		if !hit {
			// A 304 with nothing cached is a protocol error from the
			// origin; there are no bytes to resolve it with.
			f.log.Warn().Str("uri", uri).Msg("304 with no cached body")
			return nil, assetio.NotFound(uri)
		}
		return cached.Body, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		f.log.Debug().Int("status", resp.StatusCode).Str("uri", uri).Msg("fetch rejected")
		return nil, assetio.NotFound(uri)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, assetio.NotFound(uri)
	}

	f.store.Write(req, resp.Header.Get("ETag"), body)
	return body, nil
}

// newRequest builds the GET with a snapshot of the current headers;
// registry mutations made after this point do not affect the request
func newRequest(ctx context.Context, uri string, headers *Headers) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	if headers != nil {
		for name, value := range headers.Snapshot() {
			req.Header.Set(name, value)
		}
	}
	return req, nil
}
