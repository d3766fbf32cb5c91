// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

// Command server runs the feed synchronization server: the websocket
// hub, the REST surface and the snapshot flusher, under one
// supervision tree.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/reliva-app/reliva-feed/internal/api"
	"github.com/reliva-app/reliva-feed/internal/config"
	"github.com/reliva-app/reliva-feed/internal/feed"
	"github.com/reliva-app/reliva-feed/internal/logging"
	"github.com/reliva-app/reliva-feed/internal/session"
	"github.com/reliva-app/reliva-feed/internal/supervisor"
	"github.com/reliva-app/reliva-feed/internal/supervisor/services"
	ws "github.com/reliva-app/reliva-feed/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("addr", cfg.Addr()).
		Str("store_path", cfg.Store.Path).
		Str("environment", cfg.Server.Environment).
		Msg("starting reliva-feed")

	snapshots, err := session.OpenBadger(cfg.Store.Path)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open snapshot store")
	}
	defer func() {
		if err := snapshots.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing snapshot store")
		}
	}()

	users := feed.NewRegistry()
	store := feed.NewStore(users)

	// Warm the authoritative store from the last flushed snapshot.
	if posts, ok, err := snapshots.Load(); err != nil {
		logging.Warn().Err(err).Msg("snapshot restore failed, starting empty")
	} else if ok {
		store.ReplaceAll(posts)
		logging.Info().Int("posts", store.Len()).Msg("restored feed from snapshot")
	}

	if cfg.Store.SeedMockData && store.Len() == 0 {
		seedMockData(store, users)
		logging.Info().Int("posts", store.Len()).Msg("seeded mock data")
	}

	hub := ws.NewHub(store)
	handler := api.NewHandler(hub, cfg)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler.NewRouter(),
		ReadHeaderTimeout: cfg.Server.Timeout,
		WriteTimeout:      0, // long-lived websocket responses
		IdleTimeout:       cfg.Server.Timeout,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.Timeout
	tree := supervisor.NewTree(logging.NewSlogLogger(), treeCfg)

	tree.AddDataService(services.NewSnapshotService(store, snapshots, cfg.Store.FlushInterval))
	tree.AddMessagingService(services.NewHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Timeout))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := tree.ServeBackground(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor exited with error")
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor exited unexpectedly")
		}
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("service did not stop in time")
		}
	}

	logging.Info().Msg("shutdown complete")
}
