// Filmatlas - Film Photography Catalogue Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmatlas

package geocode

import (
	"context"

	"github.com/tomtom215/filmatlas/internal/logging"
	"github.com/tomtom215/filmatlas/internal/models"
)

// PhotoFetcher matches the catalogue client's fetch method.
type PhotoFetcher interface {
	FetchGeoPhotos(ctx context.Context) ([]models.GeoPhoto, error)
}

// EnrichingFetcher decorates a photo fetcher, backfilling missing
// location names from the resolver. Lookup failures leave the name
// empty; the photo set is never held hostage by the geocoder.
type EnrichingFetcher struct {
	next     PhotoFetcher
	resolver *Resolver
}

// NewEnrichingFetcher wraps next with location-name backfill.
func NewEnrichingFetcher(next PhotoFetcher, resolver *Resolver) *EnrichingFetcher {
	return &EnrichingFetcher{next: next, resolver: resolver}
}

// FetchGeoPhotos fetches and enriches the photo set.
func (f *EnrichingFetcher) FetchGeoPhotos(ctx context.Context) ([]models.GeoPhoto, error) {
	photos, err := f.next.FetchGeoPhotos(ctx)
	if err != nil {
		return nil, err
	}

	for i := range photos {
		if photos[i].LocationName != "" {
			continue
		}
		name, err := f.resolver.Resolve(ctx, photos[i].Latitude, photos[i].Longitude)
		if err != nil {
			logging.Debug().Err(err).Str("photo_id", photos[i].ID).Msg("location name lookup failed")
			continue
		}
		photos[i].LocationName = name
	}
	return photos, nil
}
