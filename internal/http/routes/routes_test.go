package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gregjones/httpcache"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/oscrim/webasset"
)

func newServer(t *testing.T) *Server {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0o644))

	assets, err := webasset.New(
		webasset.WithRoot(root),
		webasset.WithCache(httpcache.NewMemoryCache()),
	)
	require.NoError(t, err)

	return New(ServerOptions{Assets: assets, Log: zerolog.Nop()})
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	rec := get(t, newServer(t), "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestServeLocalAsset(t *testing.T) {
	s := newServer(t)

	rec := get(t, s, "/assets/a.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "hello", rec.Body.String())

	rec = get(t, s, "/assets/missing.txt")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeRemoteAssetViaQuery(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("remote body"))
	}))
	defer origin.Close()

	s := newServer(t)

	rec := get(t, s, "/assets/ignored?path="+origin.URL+"/a.png")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "remote body", rec.Body.String())
}

func TestLocalPathsCannotEscapeRoot(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "assets")
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "secret.txt"), []byte("top-secret"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0o644))

	assets, err := webasset.New(
		webasset.WithRoot(root),
		webasset.WithCache(httpcache.NewMemoryCache()),
	)
	require.NoError(t, err)
	s := New(ServerOptions{Assets: assets, Log: zerolog.Nop()})

	// The query form is remote-only; host paths are rejected outright
	rec := get(t, s, "/assets/x?path="+url.QueryEscape(filepath.Join(base, "secret.txt")))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, s, "/assets/x?path="+url.QueryEscape("../secret.txt"))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Traversal through the wildcard resolves to nothing
	rec = get(t, s, "/assets/../secret.txt")
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Dir and meta lookups are confined the same way
	rec = get(t, s, "/meta?path="+url.QueryEscape(filepath.Join(base, "secret.txt")))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, s, "/dir?path=..")
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Assets under the root are untouched by the confinement
	rec = get(t, s, "/assets/a.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "hello", rec.Body.String())
}

func TestDirAndMeta(t *testing.T) {
	s := newServer(t)

	rec := get(t, s, "/dir?path=.")
	require.Equal(t, http.StatusOK, rec.Code)
	var dir struct {
		Entries []string `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dir))
	require.Contains(t, dir.Entries, "a.txt")

	rec = get(t, s, "/meta?path=a.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	var meta metadataResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meta))
	require.False(t, meta.IsDir)
	require.Equal(t, int64(len("hello")), meta.Size)

	rec = get(t, s, "/meta?path=missing.txt")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHeaderEndpoints(t *testing.T) {
	s := newServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/headers", strings.NewReader(`{"name":"X-Test","value":"1"}`))
	s.Router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	v, ok := s.Assets.Headers.Get("X-Test")
	require.True(t, ok)
	require.Equal(t, "1", v)

	rec = httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/headers/X-Test", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	_, ok = s.Assets.Headers.Get("X-Test")
	require.False(t, ok)
}
