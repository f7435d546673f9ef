// Filmatlas - Film Photography Catalogue Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmatlas

package geocode

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/filmatlas/internal/models"
)

type stubFetcher struct {
	photos []models.GeoPhoto
	err    error
}

func (f *stubFetcher) FetchGeoPhotos(ctx context.Context) ([]models.GeoPhoto, error) {
	return f.photos, f.err
}

func TestEnrichingFetcherBackfillsMissingNames(t *testing.T) {
	fetcher := &stubFetcher{photos: []models.GeoPhoto{
		{ID: "a", Latitude: 48.85, Longitude: 2.35},
		{ID: "b", Latitude: 51.5, Longitude: -0.12, LocationName: "London"},
	}}
	lookup := &countingLookup{name: "Paris"}
	enriched := NewEnrichingFetcher(fetcher, NewResolver(lookup, nil, 0))

	photos, err := enriched.FetchGeoPhotos(context.Background())
	if err != nil {
		t.Fatalf("FetchGeoPhotos() error = %v", err)
	}
	if photos[0].LocationName != "Paris" {
		t.Errorf("photo a name = %q, want backfilled", photos[0].LocationName)
	}
	if photos[1].LocationName != "London" {
		t.Errorf("photo b name = %q, existing names must be kept", photos[1].LocationName)
	}
	if n := lookup.calls.Load(); n != 1 {
		t.Errorf("lookup called %d times, want 1 (only missing names)", n)
	}
}

func TestEnrichingFetcherToleratesLookupFailure(t *testing.T) {
	fetcher := &stubFetcher{photos: []models.GeoPhoto{{ID: "a", Latitude: 1, Longitude: 2}}}
	lookup := &countingLookup{err: errors.New("unavailable")}
	enriched := NewEnrichingFetcher(fetcher, NewResolver(lookup, nil, 0))

	photos, err := enriched.FetchGeoPhotos(context.Background())
	if err != nil {
		t.Fatalf("FetchGeoPhotos() error = %v, lookup failures must not fail the fetch", err)
	}
	if photos[0].LocationName != "" {
		t.Errorf("name = %q, want empty on lookup failure", photos[0].LocationName)
	}
}

func TestEnrichingFetcherPropagatesFetchError(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("backend down")}
	enriched := NewEnrichingFetcher(fetcher, NewResolver(&countingLookup{}, nil, 0))

	if _, err := enriched.FetchGeoPhotos(context.Background()); err == nil {
		t.Fatal("expected fetch error to propagate")
	}
}
