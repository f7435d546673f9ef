// Filmatlas - Film Photography Catalogue Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmatlas

// Package geostore fetches, normalizes and holds the geotagged photo
// set sourced from the film-catalogue backend.
package geostore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/filmatlas/internal/logging"
	"github.com/tomtom215/filmatlas/internal/metrics"
	"github.com/tomtom215/filmatlas/internal/models"
)

const (
	geoEndpoint  = "/api/photos/geo"
	breakerName  = "catalogue"
	maxBodyBytes = 32 << 20 // 32 MiB response cap
)

// ClientConfig configures the catalogue client.
type ClientConfig struct {
	// BaseURL is the catalogue API base, e.g. http://filmgallery:8080.
	BaseURL string

	// UploadBase prefixes relative thumbnail paths.
	UploadBase string

	Timeout time.Duration

	// FetchPerMinute bounds request rate to the backend. Zero disables
	// rate limiting.
	FetchPerMinute int
}

// CatalogueClient talks to the film-catalogue backend. All fetches run
// through a circuit breaker so a failing backend is backed off from
// instead of being hammered on every refresh tick.
type CatalogueClient struct {
	baseURL    string
	uploadBase string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]models.GeoPhoto]
	limiter    *rate.Limiter
}

// NewCatalogueClient creates a client for cfg.
func NewCatalogueClient(cfg ClientConfig) *CatalogueClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	uploadBase := strings.TrimSuffix(cfg.UploadBase, "/")
	if uploadBase == "" {
		uploadBase = strings.TrimSuffix(cfg.BaseURL, "/")
	}

	settings := gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state change")
		},
	}

	var limiter *rate.Limiter
	if cfg.FetchPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.FetchPerMinute)/60.0), 1)
	}

	return &CatalogueClient{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		uploadBase: uploadBase,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    gobreaker.NewCircuitBreaker[[]models.GeoPhoto](settings),
		limiter:    limiter,
	}
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}

// FetchGeoPhotos retrieves the geotagged photo set from the backend,
// normalized for map display. Records with missing or non-finite
// coordinates are skipped, not errors.
func (c *CatalogueClient) FetchGeoPhotos(ctx context.Context) ([]models.GeoPhoto, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	photos, err := c.breaker.Execute(func() ([]models.GeoPhoto, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		metrics.BackendFetchErrors.Inc()
		return nil, err
	}
	return photos, nil
}

func (c *CatalogueClient) fetch(ctx context.Context) ([]models.GeoPhoto, error) {
	start := time.Now()
	defer func() {
		metrics.BackendFetchDuration.Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+geoEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch geo photos: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck
		return nil, fmt.Errorf("fetch geo photos: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	records, err := decodeGeoPayload(body)
	if err != nil {
		return nil, err
	}
	return c.normalize(records), nil
}

// geoPhotoRecord is the backend's wire shape. IDs arrive as strings or
// numbers; coordinates as numbers or numeric strings.
type geoPhotoRecord struct {
	ID                   models.FlexID    `json:"id"`
	Latitude             models.FlexFloat `json:"latitude"`
	Longitude            models.FlexFloat `json:"longitude"`
	ThumbRelPath         string           `json:"thumb_rel_path"`
	PositiveThumbRelPath string           `json:"positive_thumb_rel_path"`
	LocationName         string           `json:"location_name"`
}

// decodeGeoPayload accepts either a raw JSON array or an object with a
// "photos" key, which older catalogue versions emit.
func decodeGeoPayload(body []byte) ([]geoPhotoRecord, error) {
	var records []geoPhotoRecord
	if err := json.Unmarshal(body, &records); err == nil {
		return records, nil
	}

	var wrapped struct {
		Photos []geoPhotoRecord `json:"photos"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode geo photos: %w", err)
	}
	return wrapped.Photos, nil
}

func (c *CatalogueClient) normalize(records []geoPhotoRecord) []models.GeoPhoto {
	photos := make([]models.GeoPhoto, 0, len(records))
	for _, rec := range records {
		if !rec.Latitude.Finite() {
			metrics.PhotosSkipped.WithLabelValues("bad_latitude").Inc()
			logging.Debug().Str("photo_id", string(rec.ID)).Msg("Skipping photo with unusable latitude")
			continue
		}
		if !rec.Longitude.Finite() {
			metrics.PhotosSkipped.WithLabelValues("bad_longitude").Inc()
			logging.Debug().Str("photo_id", string(rec.ID)).Msg("Skipping photo with unusable longitude")
			continue
		}

		photos = append(photos, models.GeoPhoto{
			ID:           string(rec.ID),
			Latitude:     rec.Latitude.Value,
			Longitude:    rec.Longitude.Value,
			ThumbnailURL: c.resolveThumbnail(rec),
			LocationName: rec.LocationName,
		})
	}
	return photos
}

// resolveThumbnail picks the positive (inverted-negative) thumbnail
// when present, falling back to the plain thumbnail, and turns relative
// catalogue paths into absolute URLs.
func (c *CatalogueClient) resolveThumbnail(rec geoPhotoRecord) string {
	path := rec.PositiveThumbRelPath
	if path == "" {
		path = rec.ThumbRelPath
	}
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if strings.HasPrefix(path, "/uploads/") {
		return c.uploadBase + path
	}
	return c.uploadBase + "/uploads/" + strings.TrimPrefix(path, "/")
}

// BreakerState reports the circuit breaker state for health output.
func (c *CatalogueClient) BreakerState() string {
	return c.breaker.State().String()
}
