// Filmatlas - Film Photography Catalogue Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmatlas

package models

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestUpdatePhotosMessageRoundTrip(t *testing.T) {
	photos := []GeoPhoto{
		{ID: "1", Latitude: 48.85, Longitude: 2.35, ThumbnailURL: "http://x/uploads/a.jpg"},
		{ID: "2", Latitude: 51.5, Longitude: -0.12},
	}

	msg, err := NewUpdatePhotosMessage(photos)
	if err != nil {
		t.Fatalf("NewUpdatePhotosMessage: %v", err)
	}
	if msg.Type != MessageTypeUpdatePhotos {
		t.Fatalf("type = %q, want %q", msg.Type, MessageTypeUpdatePhotos)
	}

	wire, err := msg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := DecodeBridgeMessage(wire)
	if err != nil {
		t.Fatalf("DecodeBridgeMessage: %v", err)
	}

	var got []GeoPhoto
	if err := json.Unmarshal(decoded.Payload, &got); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "2" {
		t.Errorf("payload mismatch: %+v", got)
	}
}

func TestUpdatePhotosMessageNilIsEmptyList(t *testing.T) {
	msg, err := NewUpdatePhotosMessage(nil)
	if err != nil {
		t.Fatalf("NewUpdatePhotosMessage: %v", err)
	}
	if string(msg.Payload) != "[]" {
		t.Errorf("nil photo set should encode as empty array, got %s", msg.Payload)
	}
}

func TestCenterMapMessage(t *testing.T) {
	msg, err := NewCenterMapMessage(40.7, -74.0, 12)
	if err != nil {
		t.Fatalf("NewCenterMapMessage: %v", err)
	}

	wire, err := msg.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(string(wire), `"type":"CENTER_MAP"`) {
		t.Errorf("wire form missing type tag: %s", wire)
	}

	var payload CenterPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Lat != 40.7 || payload.Lng != -74.0 || payload.Zoom != 12 {
		t.Errorf("payload mismatch: %+v", payload)
	}
}

func TestDecodeBridgeMessageMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", `{{{`},
		{"missing type", `{"payload": {}}`},
		{"empty", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeBridgeMessage([]byte(tt.input)); err == nil {
				t.Error("expected error for malformed message")
			}
		})
	}
}

func TestMarkerPressPhoto(t *testing.T) {
	wire := []byte(`{"type":"MARKER_PRESS","payload":{"id":"p9","latitude":1.5,"longitude":2.5}}`)

	msg, err := DecodeBridgeMessage(wire)
	if err != nil {
		t.Fatalf("DecodeBridgeMessage: %v", err)
	}
	photo, err := msg.MarkerPressPhoto()
	if err != nil {
		t.Fatalf("MarkerPressPhoto: %v", err)
	}
	if photo.ID != "p9" || photo.Latitude != 1.5 {
		t.Errorf("photo mismatch: %+v", photo)
	}

	// Wrong type must refuse extraction.
	other := BridgeMessage{Type: MessageTypeMapReady}
	if _, err := other.MarkerPressPhoto(); err == nil {
		t.Error("expected error extracting marker press from MAP_READY")
	}
}

func TestViewportPayload(t *testing.T) {
	wire := []byte(`{"type":"VIEWPORT","payload":{"center_lat":10,"center_lng":20,"lat_delta":0.5,"lng_delta":0.8}}`)

	msg, err := DecodeBridgeMessage(wire)
	if err != nil {
		t.Fatalf("DecodeBridgeMessage: %v", err)
	}
	vp, err := msg.ViewportPayload()
	if err != nil {
		t.Fatalf("ViewportPayload: %v", err)
	}
	if vp.CenterLat != 10 || vp.LngDelta != 0.8 {
		t.Errorf("viewport mismatch: %+v", vp)
	}
}
