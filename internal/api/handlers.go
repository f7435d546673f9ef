// Filmatlas - Film Photography Catalogue Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmatlas

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/filmatlas/internal/bridge"
	"github.com/tomtom215/filmatlas/internal/cluster"
	"github.com/tomtom215/filmatlas/internal/models"
	"github.com/tomtom215/filmatlas/internal/mosaic"

	"github.com/goccy/go-json"
)

// PhotoStore is the read surface the handlers need from the geo store.
type PhotoStore interface {
	Photos() []models.GeoPhoto
	Count() int
	UpdatedAt() time.Time
}

// Broadcaster recenters connected renderer surfaces and tracks their
// reported viewports.
type Broadcaster interface {
	BroadcastCenter(lat, lng float64, zoom int)
	ClientCount() int
	LastViewport() (models.Viewport, bool)
}

// BreakerReporter exposes backend circuit state for health output.
type BreakerReporter interface {
	BreakerState() string
}

// MapDefaults parameterize the static renderer page.
type MapDefaults struct {
	InitialLat float64 `json:"initial_lat"`
	InitialLng float64 `json:"initial_lng"`
	MinZoom    int     `json:"min_zoom"`
	MaxZoom    int     `json:"max_zoom"`
}

// Refresher triggers an immediate photo set refetch.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Handlers carries the API dependencies.
type Handlers struct {
	store     PhotoStore
	hub       Broadcaster
	breaker   BreakerReporter
	refresher Refresher
	defaults  MapDefaults
}

// NewHandlers wires the handler set. refresher may be nil; the refresh
// endpoint then answers 503.
func NewHandlers(store PhotoStore, hub Broadcaster, breaker BreakerReporter, refresher Refresher, defaults MapDefaults) *Handlers {
	defaults.MinZoom = bridge.MinZoom
	defaults.MaxZoom = bridge.MaxZoom
	return &Handlers{store: store, hub: hub, breaker: breaker, refresher: refresher, defaults: defaults}
}

type healthResponse struct {
	Status           string    `json:"status"`
	Photos           int       `json:"photos"`
	PhotosUpdatedAt  time.Time `json:"photos_updated_at,omitempty"`
	BackendBreaker   string    `json:"backend_breaker"`
	RendererSessions int       `json:"renderer_sessions"`
}

// Health reports service liveness plus backend reachability. The
// service stays "ok" with an open breaker: the map keeps serving
// whatever set it has.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:           "ok",
		Photos:           h.store.Count(),
		BackendBreaker:   h.breaker.BreakerState(),
		RendererSessions: h.hub.ClientCount(),
	}
	if updated := h.store.UpdatedAt(); !updated.IsZero() {
		resp.PhotosUpdatedAt = updated
	}
	if resp.BackendBreaker == "open" {
		resp.Status = "degraded"
	}
	respondJSON(w, http.StatusOK, resp)
}

// Photos returns the full normalized photo set.
func (h *Handlers) Photos(w http.ResponseWriter, r *http.Request) {
	photos := h.store.Photos()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"photos": photos,
		"count":  len(photos),
	})
}

// Clusters computes the cluster set for the viewport given in query
// parameters and returns it with render-ready mosaic descriptors.
// Without a lat_delta parameter the most recent renderer-reported
// viewport is used; lacking both, the request fails.
func (h *Handlers) Clusters(w http.ResponseWriter, r *http.Request) {
	vp, explicit, err := viewportFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !explicit {
		last, ok := h.hub.LastViewport()
		if !ok {
			respondError(w, http.StatusBadRequest, (&queryError{"lat_delta", "is required"}).Error())
			return
		}
		vp = last
	}

	clusters := cluster.Compute(h.store.Photos(), vp)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"clusters": clusters,
		"markers":  mosaic.BuildAll(clusters),
		"radius":   cluster.RadiusForLatDelta(vp.LatDelta),
	})
}

// viewportFromQuery parses viewport query parameters. explicit reports
// whether the caller supplied lat_delta, the parameter that selects the
// clustering radius.
func viewportFromQuery(r *http.Request) (vp models.Viewport, explicit bool, err error) {
	q := r.URL.Query()

	fields := []struct {
		name string
		dst  *float64
	}{
		{"center_lat", &vp.CenterLat},
		{"center_lng", &vp.CenterLng},
		{"lat_delta", &vp.LatDelta},
		{"lng_delta", &vp.LngDelta},
	}
	for _, f := range fields {
		raw := q.Get(f.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return vp, false, &queryError{f.name, "must be a number"}
		}
		*f.dst = v
		if f.name == "lat_delta" {
			explicit = true
		}
	}
	if explicit && vp.LatDelta < 0 {
		return vp, false, &queryError{"lat_delta", "must not be negative"}
	}
	return vp, explicit, nil
}

type queryError struct {
	field  string
	reason string
}

func (e *queryError) Error() string {
	return "query parameter " + e.field + " " + e.reason
}

// MapConfig returns the static parameters the renderer page loads
// before any websocket traffic.
func (h *Handlers) MapConfig(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.defaults)
}

type centerRequest struct {
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	Zoom     *int     `json:"zoom,omitempty"`
	LngDelta *float64 `json:"lng_delta,omitempty"`
}

// CenterMap recenters every connected renderer. Zoom may be given
// directly or derived from a longitude delta; absent both, the command
// carries MinZoom.
func (h *Handlers) CenterMap(w http.ResponseWriter, r *http.Request) {
	var req centerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Lat < -90 || req.Lat > 90 {
		respondError(w, http.StatusBadRequest, "lat out of range [-90, 90]")
		return
	}
	if req.Lng < -180 || req.Lng > 180 {
		respondError(w, http.StatusBadRequest, "lng out of range [-180, 180]")
		return
	}

	zoom := bridge.MinZoom
	switch {
	case req.Zoom != nil:
		zoom = *req.Zoom
		if zoom < bridge.MinZoom {
			zoom = bridge.MinZoom
		}
		if zoom > bridge.MaxZoom {
			zoom = bridge.MaxZoom
		}
	case req.LngDelta != nil:
		zoom = bridge.ZoomForLngDelta(*req.LngDelta)
	}

	h.hub.BroadcastCenter(req.Lat, req.Lng, zoom)
	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"lat":  req.Lat,
		"lng":  req.Lng,
		"zoom": zoom,
	})
}

// Refresh forces an immediate refetch of the photo set from the
// catalogue backend.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.refresher == nil {
		respondError(w, http.StatusServiceUnavailable, "refresh not available")
		return
	}
	if err := h.refresher.Refresh(r.Context()); err != nil {
		respondError(w, http.StatusBadGateway, "backend fetch failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"photos": h.store.Count(),
	})
}
