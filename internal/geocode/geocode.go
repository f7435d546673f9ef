// Filmatlas - Film Photography Catalogue Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmatlas

// Package geocode resolves coordinates to place names with two cache
// tiers: an in-memory map for the hot path and BadgerDB for restarts.
// Lookups for the same cell are deduplicated in flight so a burst of
// photos from one location costs a single backend call.
package geocode

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/filmatlas/internal/logging"
	"github.com/tomtom215/filmatlas/internal/metrics"
)

const geocodeKeyPrefix = "geocode:"

// Lookup performs the actual reverse geocode. Satisfied by
// *NominatimClient.
type Lookup interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}

// Resolver memoizes reverse-geocode lookups.
type Resolver struct {
	lookup Lookup
	db     *badger.DB // nil disables persistence
	ttl    time.Duration

	mu       sync.Mutex
	values   map[string]string
	inflight map[string]*call
}

type call struct {
	done chan struct{}
	name string
	err  error
}

// NewResolver creates a resolver. db may be nil for memory-only
// operation; ttl bounds persisted entry lifetime.
func NewResolver(lookup Lookup, db *badger.DB, ttl time.Duration) *Resolver {
	return &Resolver{
		lookup:   lookup,
		db:       db,
		ttl:      ttl,
		values:   make(map[string]string),
		inflight: make(map[string]*call),
	}
}

// cacheKey buckets coordinates to three decimals (~110 m), so photos
// from one street corner share an entry.
func cacheKey(lat, lng float64) string {
	return strconv.FormatFloat(round3(lat), 'f', 3, 64) + "," + strconv.FormatFloat(round3(lng), 'f', 3, 64)
}

func round3(v float64) float64 {
	if v < 0 {
		return float64(int64(v*1000-0.5)) / 1000
	}
	return float64(int64(v*1000+0.5)) / 1000
}

// Resolve returns the place name for the coordinates. Errors are never
// cached: the next Resolve for the same cell retries the backend.
func (r *Resolver) Resolve(ctx context.Context, lat, lng float64) (string, error) {
	key := cacheKey(lat, lng)

	r.mu.Lock()
	if name, ok := r.values[key]; ok {
		r.mu.Unlock()
		metrics.GeocodeCacheHits.Inc()
		return name, nil
	}
	if c, ok := r.inflight[key]; ok {
		r.mu.Unlock()
		select {
		case <-c.done:
			return c.name, c.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	c := &call{done: make(chan struct{})}
	r.inflight[key] = c
	r.mu.Unlock()

	c.name, c.err = r.resolveUncached(ctx, key, lat, lng)
	close(c.done)

	r.mu.Lock()
	delete(r.inflight, key)
	if c.err == nil {
		r.values[key] = c.name
	}
	r.mu.Unlock()

	return c.name, c.err
}

func (r *Resolver) resolveUncached(ctx context.Context, key string, lat, lng float64) (string, error) {
	if name, ok := r.loadPersisted(key); ok {
		metrics.GeocodeCacheHits.Inc()
		return name, nil
	}

	metrics.GeocodeCacheMisses.Inc()
	name, err := r.lookup.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		return "", fmt.Errorf("reverse geocode %s: %w", key, err)
	}
	r.persist(key, name)
	return name, nil
}

func (r *Resolver) loadPersisted(key string) (string, bool) {
	if r.db == nil {
		return "", false
	}
	var name string
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(geocodeKeyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			name = string(val)
			return nil
		})
	})
	if err != nil {
		return "", false
	}
	return name, true
}

func (r *Resolver) persist(key, name string) {
	if r.db == nil {
		return
	}
	err := r.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(geocodeKeyPrefix+key), []byte(name))
		if r.ttl > 0 {
			entry = entry.WithTTL(r.ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		logging.Err(err).Str("key", key).Msg("failed to persist geocode entry")
	}
}

// NominatimClient queries a Nominatim-compatible reverse geocoding
// endpoint.
type NominatimClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewNominatimClient creates a client for a Nominatim-style API base
// URL.
func NewNominatimClient(baseURL string, timeout time.Duration) *NominatimClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NominatimClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ReverseGeocode resolves a display name for the coordinates.
func (c *NominatimClient) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', 6, 64))
	q.Set("format", "jsonv2")
	q.Set("zoom", "14")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "filmatlas")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocode: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var payload struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return payload.DisplayName, nil
}

// OpenCache opens (or creates) the badger-backed persistent cache.
func OpenCache(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open geocode cache: %w", err)
	}
	return db, nil
}
