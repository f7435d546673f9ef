// Filmatlas - Film Photography Catalogue Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmatlas

// Command server runs the Filmatlas map service: it mirrors the film
// catalogue's geotagged photos, clusters them for map display, and
// drives connected renderer surfaces over the bridge protocol.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/filmatlas/internal/api"
	"github.com/tomtom215/filmatlas/internal/config"
	"github.com/tomtom215/filmatlas/internal/eventbus"
	"github.com/tomtom215/filmatlas/internal/geocode"
	"github.com/tomtom215/filmatlas/internal/geostore"
	"github.com/tomtom215/filmatlas/internal/logging"
	"github.com/tomtom215/filmatlas/internal/supervisor"
	"github.com/tomtom215/filmatlas/internal/supervisor/services"
	"github.com/tomtom215/filmatlas/internal/websocket"
	"github.com/tomtom215/filmatlas/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("backend", cfg.Backend.URL).
		Int("port", cfg.Server.Port).
		Msg("Starting Filmatlas")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus := eventbus.New(eventbus.NewLoggerAdapter())
	defer bus.Close()

	client := geostore.NewCatalogueClient(geostore.ClientConfig{
		BaseURL:        cfg.Backend.URL,
		UploadBase:     cfg.UploadBaseOrDefault(),
		Timeout:        cfg.Backend.Timeout,
		FetchPerMinute: cfg.Backend.FetchPerMinute,
	})

	var fetcher geostore.Fetcher = client
	if cfg.Geocode.Enabled {
		db, err := geocode.OpenCache(cfg.Geocode.CachePath)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to open geocode cache")
		}
		defer db.Close()

		resolver := geocode.NewResolver(
			geocode.NewNominatimClient(cfg.Geocode.URL, cfg.Geocode.Timeout),
			db,
			cfg.Geocode.CacheTTL,
		)
		fetcher = geocode.NewEnrichingFetcher(client, resolver)
		logging.Info().Str("url", cfg.Geocode.URL).Msg("Reverse geocoding enabled")
	}

	store := geostore.NewStore(fetcher, bus)
	hub := websocket.NewHub(store, bus)

	handlers := api.NewHandlers(store, hub, client, store, api.MapDefaults{
		InitialLat: cfg.Map.InitialLat,
		InitialLng: cfg.Map.InitialLng,
	})
	router := api.NewRouter(api.RouterConfig{
		Handlers: handlers,
		Middleware: api.NewMiddleware(api.MiddlewareConfig{
			CORSAllowedOrigins: cfg.Security.CORSOrigins,
			RateLimitRequests:  cfg.Security.RateLimitReqs,
			RateLimitWindow:    cfg.Security.RateLimitWindow,
			RateLimitDisabled:  cfg.Security.RateLimitDisabled,
		}),
		WebSocketHandler: websocket.Handler(hub, store, bus, websocket.SessionConfig{
			ReadyTimeout: cfg.Map.ReadyTimeout,
		}),
		StaticHandler:  web.Handler(),
		RequestTimeout: cfg.Server.Timeout,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddMessagingService(services.NewHubService(hub))
	tree.AddMessagingService(services.NewRefreshService(store, cfg.Map.RefreshInterval))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	logging.Info().Str("addr", server.Addr).Msg("Supervisor tree starting")
	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree exited")
		os.Exit(1)
	}

	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", fmt.Sprintf("%v", svc.Service)).Msg("Service did not stop in time")
		}
	}
	logging.Info().Msg("Filmatlas stopped")
}
