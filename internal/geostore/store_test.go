// Filmatlas - Film Photography Catalogue Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmatlas

package geostore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/filmatlas/internal/eventbus"
	"github.com/tomtom215/filmatlas/internal/models"
)

type stubFetcher struct {
	photos []models.GeoPhoto
	err    error
}

func (f *stubFetcher) FetchGeoPhotos(ctx context.Context) ([]models.GeoPhoto, error) {
	return f.photos, f.err
}

func TestStorePhotosReturnsCopy(t *testing.T) {
	store := NewStore(&stubFetcher{}, nil)
	store.Replace([]models.GeoPhoto{{ID: "a"}, {ID: "b"}})

	snapshot := store.Photos()
	snapshot[0].ID = "mutated"

	if store.Photos()[0].ID != "a" {
		t.Error("mutating the snapshot must not affect the store")
	}
}

func TestStoreRefreshSuccess(t *testing.T) {
	fetcher := &stubFetcher{photos: []models.GeoPhoto{{ID: "a"}, {ID: "b"}}}
	store := NewStore(fetcher, nil)

	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if store.Count() != 2 {
		t.Errorf("count = %d, want 2", store.Count())
	}
	if store.UpdatedAt().IsZero() {
		t.Error("UpdatedAt should be set after a successful refresh")
	}
}

func TestStoreRefreshFailureEmptiesSet(t *testing.T) {
	fetcher := &stubFetcher{photos: []models.GeoPhoto{{ID: "a"}}}
	store := NewStore(fetcher, nil)
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	fetcher.photos = nil
	fetcher.err = errors.New("backend down")
	if err := store.Refresh(context.Background()); err == nil {
		t.Fatal("expected error from failed refresh")
	}
	// A failed reload clears the map rather than showing stale photos.
	if store.Count() != 0 {
		t.Errorf("count = %d, want 0 after failed refresh", store.Count())
	}
}

func TestStoreReplacePublishesNotification(t *testing.T) {
	bus := eventbus.New(nil)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := bus.Subscribe(ctx, eventbus.TopicPhotosUpdated)
	if err != nil {
		t.Fatal(err)
	}

	store := NewStore(&stubFetcher{}, bus)
	store.Replace([]models.GeoPhoto{{ID: "a"}})

	select {
	case msg := <-ch:
		msg.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("expected photos.updated notification")
	}
}
