// cmd/assetproxy/main.go
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/oscrim/webasset"
	"github.com/oscrim/webasset/assetio"
	"github.com/oscrim/webasset/internal/config"
	"github.com/oscrim/webasset/internal/http/routes"
	"github.com/oscrim/webasset/local"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run keeps deferred cleanup working; log.Fatal in main would skip it
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	opts := []webasset.Option{
		webasset.WithRoot(cfg.AssetRoot),
		webasset.WithCacheNamespace(cfg.CacheNamespace),
		webasset.WithCacheDir(cfg.CacheDir),
		webasset.WithHTTPClient(&http.Client{Timeout: cfg.UpstreamTimeout}),
		webasset.WithLogger(logger),
	}
	if cfg.DisableCache {
		opts = append(opts, webasset.WithoutCache())
	}

	if cfg.WatchAssets {
		watcher, err := local.NewChangeWatcher()
		if err != nil {
			return fmt.Errorf("watcher error: %w", err)
		}
		defer watcher.Close()
		opts = append(opts, webasset.WithWatcher(watcher))
	}

	assets, err := webasset.New(opts...)
	if err != nil {
		return fmt.Errorf("assembly error: %w", err)
	}

	for name, value := range cfg.RequestHeaders {
		assets.Headers.Set(name, value)
	}

	if cfg.WatchAssets {
		err := assets.Watch(assetio.WatchConfig{
			OnChange: func(path string) {
				logger.Info().Str("path", path).Msg("asset changed")
			},
		})
		if err != nil {
			return fmt.Errorf("watch error: %w", err)
		}
	}

	s := routes.New(routes.ServerOptions{Assets: assets, Log: logger})
	h := hlog.NewHandler(logger)(s.Router)

	logger.Info().Str("addr", cfg.ListenAddr).Str("root", cfg.AssetRoot).Msg("starting asset proxy")
	srv := &http.Server{Addr: cfg.ListenAddr, Handler: h}
	return srv.ListenAndServe()
}
