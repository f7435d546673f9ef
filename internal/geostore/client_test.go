// Filmatlas - Film Photography Catalogue Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmatlas

package geostore

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tomtom215/filmatlas/internal/logging"
)

func init() {
	logging.Init(logging.Config{Level: "disabled", Format: "json", Output: io.Discard})
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *CatalogueClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewCatalogueClient(ClientConfig{BaseURL: srv.URL})
}

func TestFetchGeoPhotosRawArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/photos/geo" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"id": 12, "latitude": 48.85, "longitude": 2.35, "thumb_rel_path": "thumbs/12.jpg"},
			{"id": "p13", "latitude": "51.5", "longitude": "-0.12", "positive_thumb_rel_path": "/uploads/pos/13.jpg"}
		]`)
	})

	photos, err := client.FetchGeoPhotos(context.Background())
	if err != nil {
		t.Fatalf("FetchGeoPhotos() error = %v", err)
	}
	if len(photos) != 2 {
		t.Fatalf("got %d photos, want 2", len(photos))
	}
	if photos[0].ID != "12" || photos[0].Latitude != 48.85 {
		t.Errorf("numeric id/coords not normalized: %+v", photos[0])
	}
	if photos[1].ID != "p13" || photos[1].Latitude != 51.5 || photos[1].Longitude != -0.12 {
		t.Errorf("string coords not normalized: %+v", photos[1])
	}
}

func TestFetchGeoPhotosWrappedObject(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"photos": [{"id": 1, "latitude": 0, "longitude": 0, "thumb_rel_path": "t.jpg"}]}`)
	})

	photos, err := client.FetchGeoPhotos(context.Background())
	if err != nil {
		t.Fatalf("FetchGeoPhotos() error = %v", err)
	}
	if len(photos) != 1 {
		t.Fatalf("got %d photos, want 1", len(photos))
	}
}

func TestFetchGeoPhotosSkipsBadCoordinates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[
			{"id": 1, "latitude": 10, "longitude": 20, "thumb_rel_path": "a.jpg"},
			{"id": 2, "longitude": 20, "thumb_rel_path": "b.jpg"},
			{"id": 3, "latitude": "not-a-number", "longitude": 20, "thumb_rel_path": "c.jpg"},
			{"id": 4, "latitude": 10, "longitude": null, "thumb_rel_path": "d.jpg"}
		]`)
	})

	photos, err := client.FetchGeoPhotos(context.Background())
	if err != nil {
		t.Fatalf("FetchGeoPhotos() error = %v", err)
	}
	if len(photos) != 1 || photos[0].ID != "1" {
		t.Errorf("expected only the valid record to survive, got %+v", photos)
	}
}

func TestFetchGeoPhotosErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	if _, err := client.FetchGeoPhotos(context.Background()); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestResolveThumbnail(t *testing.T) {
	client := NewCatalogueClient(ClientConfig{
		BaseURL:    "http://backend:8080",
		UploadBase: "http://cdn:9000",
	})

	tests := []struct {
		name string
		rec  geoPhotoRecord
		want string
	}{
		{
			"absolute url passes through",
			geoPhotoRecord{ThumbRelPath: "https://cdn.example.org/t.jpg"},
			"https://cdn.example.org/t.jpg",
		},
		{
			"uploads-rooted path gets base",
			geoPhotoRecord{ThumbRelPath: "/uploads/thumbs/1.jpg"},
			"http://cdn:9000/uploads/thumbs/1.jpg",
		},
		{
			"bare relative path gets uploads prefix",
			geoPhotoRecord{ThumbRelPath: "thumbs/1.jpg"},
			"http://cdn:9000/uploads/thumbs/1.jpg",
		},
		{
			"positive thumbnail preferred",
			geoPhotoRecord{ThumbRelPath: "thumbs/neg.jpg", PositiveThumbRelPath: "thumbs/pos.jpg"},
			"http://cdn:9000/uploads/thumbs/pos.jpg",
		},
		{
			"no thumbnail",
			geoPhotoRecord{},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := client.resolveThumbnail(tt.rec); got != tt.want {
				t.Errorf("resolveThumbnail() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUploadBaseFallsBackToBaseURL(t *testing.T) {
	client := NewCatalogueClient(ClientConfig{BaseURL: "http://backend:8080/"})
	got := client.resolveThumbnail(geoPhotoRecord{ThumbRelPath: "t.jpg"})
	if got != "http://backend:8080/uploads/t.jpg" {
		t.Errorf("got %q", got)
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})

	for i := 0; i < 6; i++ {
		client.FetchGeoPhotos(context.Background()) //nolint:errcheck
	}
	if state := client.BreakerState(); state != "open" {
		t.Errorf("breaker state = %q, want open after repeated failures", state)
	}
}
