// Package cache provides the response cache backing ETag-based
// conditional revalidation of remote asset loads.
//
// The platform cache primitive is the httpcache.Cache interface:
// lookup-by-key, put-by-key, with no error channel on writes. Caching
// is strictly best-effort; a cache failure never fails a load.
package cache

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/rs/zerolog"
)

// Entry is a cached response body with the ETag the origin supplied
// for it, if any. Entries without an ETag can never be revalidated.
type Entry struct {
	ETag      string    `json:"etag,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
	Body      []byte    `json:"body"`
}

// Store prepares conditional requests from prior responses and records
// new ones. Write deliberately has no error return: by the time it
// runs the load has already succeeded, and the contract makes the
// swallowed failure explicit rather than hidden at call sites.
type Store interface {
	// Prepare looks up the entry for the request URI. If one exists
	// and carries an ETag, it installs If-None-Match on the request
	// and returns the entry. Otherwise the request goes out
	// unconditional and Prepare returns nothing.
	Prepare(req *http.Request) (*Entry, bool)

	// Write stores or overwrites the entry for the request URI
	Write(req *http.Request, etag string, body []byte)
}

// Namespace is a Store scoped to a named partition of a platform
// cache, isolating this system's entries from other users of the
// same backing cache.
type Namespace struct {
	backend httpcache.Cache
	name    string
	log     zerolog.Logger
}

// NamespaceOption configures a Namespace
type NamespaceOption func(*Namespace)

// WithLogger sets the logger used to report swallowed cache failures
func WithLogger(log zerolog.Logger) NamespaceOption {
	return func(n *Namespace) { n.log = log }
}

// NewNamespace creates a Store over a platform cache primitive
func NewNamespace(backend httpcache.Cache, name string, opts ...NamespaceOption) *Namespace {
	n := &Namespace{
		backend: backend,
		name:    name,
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Prepare implements Store
func (n *Namespace) Prepare(req *http.Request) (*Entry, bool) {
	data, ok := n.backend.Get(n.key(req))
	if !ok {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		n.log.Warn().Err(err).Str("uri", req.URL.String()).Msg("dropping undecodable cache entry")
		n.backend.Delete(n.key(req))
		return nil, false
	}

	if entry.ETag == "" {
		// Nothing to revalidate against; send unconditionally
		return nil, false
	}

	req.Header.Set("If-None-Match", entry.ETag)
	return &entry, true
}

// Write implements Store
func (n *Namespace) Write(req *http.Request, etag string, body []byte) {
	entry := Entry{
		ETag:      etag,
		FetchedAt: time.Now(),
		Body:      body,
	}

	data, err := json.Marshal(&entry)
	if err != nil {
		n.log.Warn().Err(err).Str("uri", req.URL.String()).Msg("skipping cache write")
		return
	}

	n.backend.Set(n.key(req), data)
}

// key partitions entries by namespace; the request URI is the cache key
func (n *Namespace) key(req *http.Request) string {
	return n.name + "::" + req.URL.String()
}
