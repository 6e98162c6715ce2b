// Package routes exposes the asset router over HTTP for the proxy command
package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/oscrim/webasset"
	"github.com/oscrim/webasset/assetio"
)

type Server struct {
	Router *chi.Mux
	Assets *webasset.AssetIO
	Log    zerolog.Logger
}

type ServerOptions struct {
	Assets *webasset.AssetIO
	Log    zerolog.Logger
}

func New(opts ServerOptions) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	s := &Server{Router: r, Assets: opts.Assets, Log: opts.Log}

	r.Get("/healthz", s.handleHealth)
	r.Get("/assets/*", s.handleAsset)
	r.Get("/dir", s.handleDir)
	r.Get("/meta", s.handleMeta)
	r.Post("/headers", s.handleSetHeader)
	r.Delete("/headers/{name}", s.handleDeleteHeader)

	return s
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleAsset serves one asset through the router. Local paths come
// from the wildcard; remote URIs (which cannot appear in a URL path
// unescaped) come from the path query parameter. The query form is
// remote-only so it cannot name host files outside the asset root.
func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "*")
	if q := r.URL.Query().Get("path"); q != "" {
		if !assetio.IsRemote(q) {
			http.Error(w, "path query must be a remote URI", http.StatusBadRequest)
			return
		}
		path = q
	}
	if path == "" {
		http.Error(w, "missing asset path", http.StatusBadRequest)
		return
	}

	data, err := s.Assets.Load(r.Context(), path)
	if err != nil {
		if errors.Is(err, assetio.ErrNotFound) {
			http.Error(w, "asset not found", http.StatusNotFound)
			return
		}
		s.Log.Error().Err(err).Str("path", path).Msg("asset load failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	_, _ = w.Write(data)
}

func (s *Server) handleDir(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		path = "."
	}

	entries, err := s.Assets.ReadDirectory(path)
	if err != nil {
		if errors.Is(err, assetio.ErrNotFound) {
			http.Error(w, "directory not found", http.StatusNotFound)
			return
		}
		s.Log.Error().Err(err).Str("path", path).Msg("directory listing failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"path": path, "entries": entries})
}

func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "missing asset path", http.StatusBadRequest)
		return
	}

	md, err := s.Assets.Metadata(path)
	if err != nil {
		if errors.Is(err, assetio.ErrNotFound) {
			http.Error(w, "asset not found", http.StatusNotFound)
			return
		}
		s.Log.Error().Err(err).Str("path", path).Msg("metadata lookup failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, metadataResponse{
		Path:    path,
		IsDir:   md.IsDir(),
		Size:    md.Size,
		ModTime: md.ModTime,
	})
}

// handleSetHeader mutates the global header registry; the new header
// applies to every subsequent remote load
func (s *Server) handleSetHeader(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		http.Error(w, "expected {name, value}", http.StatusBadRequest)
		return
	}

	s.Assets.Headers.Set(body.Name, body.Value)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteHeader(w http.ResponseWriter, r *http.Request) {
	s.Assets.Headers.Delete(chi.URLParam(r, "name"))
	w.WriteHeader(http.StatusNoContent)
}

type metadataResponse struct {
	Path    string    `json:"path"`
	IsDir   bool      `json:"is_dir"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
