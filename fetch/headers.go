// Package fetch loads remote assets over HTTP, merging in globally
// configured request headers and revalidating cached responses by ETag.
package fetch

import "sync"

// Headers is the shared mutable set of headers applied to every
// outgoing remote load. It is safe for concurrent use: many readers,
// exclusive writer. Each Set/Delete is independent; there is no
// atomicity across multiple calls.
type Headers struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewHeaders creates an empty header registry
func NewHeaders() *Headers {
	return &Headers{m: make(map[string]string)}
}

// Set inserts or overwrites a header
func (h *Headers) Set(name, value string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.m[name] = value
}

// Delete removes a header
func (h *Headers) Delete(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.m, name)
}

// Get returns the value for a header name, if set
func (h *Headers) Get(name string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	v, ok := h.m[name]
	return v, ok
}

// Snapshot returns a copy of the current mapping for one in-flight
// fetch; later mutations do not affect fetches already in progress
func (h *Headers) Snapshot() map[string]string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	snap := make(map[string]string, len(h.m))
	for k, v := range h.m {
		snap[k] = v
	}
	return snap
}
