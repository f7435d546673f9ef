// Filmatlas - Film Photography Catalogue Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmatlas

package geostore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/filmatlas/internal/eventbus"
	"github.com/tomtom215/filmatlas/internal/logging"
	"github.com/tomtom215/filmatlas/internal/metrics"
	"github.com/tomtom215/filmatlas/internal/models"
)

// Fetcher supplies the normalized photo set. Satisfied by
// *CatalogueClient.
type Fetcher interface {
	FetchGeoPhotos(ctx context.Context) ([]models.GeoPhoto, error)
}

// Store holds the current geotagged photo set. Reads are cheap
// snapshot copies; Refresh replaces the whole set atomically.
type Store struct {
	mu        sync.RWMutex
	photos    []models.GeoPhoto
	updatedAt time.Time

	fetcher Fetcher
	bus     *eventbus.Bus
}

// NewStore creates an empty store. bus may be nil in tests; no update
// notifications are published then.
func NewStore(fetcher Fetcher, bus *eventbus.Bus) *Store {
	return &Store{fetcher: fetcher, bus: bus}
}

// Photos returns a copy of the current set.
func (s *Store) Photos() []models.GeoPhoto {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.GeoPhoto, len(s.photos))
	copy(out, s.photos)
	return out
}

// Count returns the number of held photos.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.photos)
}

// UpdatedAt returns when the set was last replaced. Zero when no
// refresh has succeeded yet.
func (s *Store) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// Replace swaps in a new photo set and notifies subscribers.
func (s *Store) Replace(photos []models.GeoPhoto) {
	s.mu.Lock()
	s.photos = photos
	s.updatedAt = time.Now()
	s.mu.Unlock()

	metrics.PhotosLoaded.Set(float64(len(photos)))
	s.notify()
}

// Refresh refetches the photo set from the backend. A fetch failure
// empties the store rather than keeping stale photos on the map, and
// the error is returned for the caller to log.
func (s *Store) Refresh(ctx context.Context) error {
	photos, err := s.fetcher.FetchGeoPhotos(ctx)
	if err != nil {
		s.Replace([]models.GeoPhoto{})
		return fmt.Errorf("refresh photo set: %w", err)
	}

	logging.Info().Int("photos", len(photos)).Msg("Photo set refreshed")
	s.Replace(photos)
	return nil
}

func (s *Store) notify() {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(eventbus.TopicPhotosUpdated, nil); err != nil {
		logging.Err(err).Msg("Failed to publish photo update notification")
	}
}
