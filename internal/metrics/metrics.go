// Filmatlas - Film Photography Catalogue Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmatlas

// Package metrics provides Prometheus instrumentation for the geo-map
// subsystem: catalogue fetches, clustering, the renderer bridge and the
// HTTP API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Photo store metrics
	PhotosLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filmatlas_geo_photos",
			Help: "Number of geotagged photos currently held by the store",
		},
	)

	PhotosSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmatlas_geo_photos_skipped_total",
			Help: "Photo records excluded during normalization",
		},
		[]string{"reason"}, // "bad_latitude", "bad_longitude"
	)

	BackendFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "filmatlas_backend_fetch_duration_seconds",
			Help:    "Duration of catalogue backend photo fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	BackendFetchErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filmatlas_backend_fetch_errors_total",
			Help: "Total catalogue backend fetch failures",
		},
	)

	// Circuit breaker metrics for the catalogue client
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "filmatlas_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmatlas_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Clustering metrics
	ClusterComputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "filmatlas_cluster_compute_duration_seconds",
			Help:    "Duration of a full cluster recompute in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	ClusterCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filmatlas_clusters",
			Help: "Cluster count produced by the most recent recompute",
		},
	)

	// Bridge metrics
	BridgeMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmatlas_bridge_messages_sent_total",
			Help: "Outbound bridge messages delivered to renderer surfaces",
		},
		[]string{"type"},
	)

	BridgeMessagesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmatlas_bridge_messages_dropped_total",
			Help: "Outbound bridge messages dropped before delivery",
		},
		[]string{"type", "reason"}, // "not_ready", "channel_full"
	)

	BridgeMessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmatlas_bridge_messages_received_total",
			Help: "Inbound renderer messages by type",
		},
		[]string{"type"},
	)

	BridgeProtocolErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filmatlas_bridge_protocol_errors_total",
			Help: "Malformed inbound renderer messages (logged and ignored)",
		},
	)

	RendererSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filmatlas_renderer_sessions",
			Help: "Connected renderer surfaces",
		},
	)

	// Geocode cache metrics
	GeocodeCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filmatlas_geocode_cache_hits_total",
			Help: "Reverse-geocode lookups served from cache",
		},
	)

	GeocodeCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filmatlas_geocode_cache_misses_total",
			Help: "Reverse-geocode lookups that required a backend fetch",
		},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmatlas_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filmatlas_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)
)
