// Filmatlas - Film Photography Catalogue Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmatlas

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig collects everything the router mounts.
type RouterConfig struct {
	Handlers   *Handlers
	Middleware *Middleware

	// WebSocketHandler upgrades renderer connections. Mounted under
	// /api/v1/map/ws.
	WebSocketHandler http.HandlerFunc

	// StaticHandler serves the embedded map page at /. Optional.
	StaticHandler http.Handler

	RequestTimeout time.Duration
}

// NewRouter assembles the Chi router.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r.Use(RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(SecurityHeaders)
	r.Use(RequestLogger)
	r.Use(cfg.Middleware.CORS())

	// Health gets its own generous limiter and no request timeout
	// coupling with the API budget.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(cfg.Middleware.HealthRateLimit())
		r.Get("/", cfg.Handlers.Health)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cfg.Middleware.RateLimit())
		r.Use(PrometheusMetrics)
		r.Use(chimiddleware.Timeout(timeout))

		r.Get("/photos", cfg.Handlers.Photos)
		r.Get("/clusters", cfg.Handlers.Clusters)
		r.Post("/refresh", cfg.Handlers.Refresh)

		r.Route("/map", func(r chi.Router) {
			r.Get("/config", cfg.Handlers.MapConfig)
			r.Post("/center", cfg.Handlers.CenterMap)
		})
	})

	// The websocket endpoint skips the timeout middleware: the
	// connection is long-lived by design.
	if cfg.WebSocketHandler != nil {
		r.Route("/api/v1/map/ws", func(r chi.Router) {
			r.Use(cfg.Middleware.RateLimit())
			r.Get("/", cfg.WebSocketHandler)
		})
	}

	r.Handle("/metrics", promhttp.Handler())

	if cfg.StaticHandler != nil {
		r.Handle("/*", cfg.StaticHandler)
	}

	return r
}
