// Filmatlas - Film Photography Catalogue Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmatlas

package models

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// Bridge message types exchanged with the renderer surface. Outbound
// messages flow host -> renderer, inbound renderer -> host. The wire
// form is JSON {"type": ..., "payload": ...}; evolution is additive
// only: no version field exists, and new fields must be optional.
const (
	// Outbound
	MessageTypeUpdatePhotos = "UPDATE_PHOTOS"
	MessageTypeCenterMap    = "CENTER_MAP"

	// Inbound
	MessageTypeMapReady    = "MAP_READY"
	MessageTypeMarkerPress = "MARKER_PRESS"

	// MessageTypeViewport is an additive inbound extension: the renderer
	// reports its viewport after user-driven pans and zooms so the host
	// can track the current extent.
	MessageTypeViewport = "VIEWPORT"
)

// ErrUnknownMessageType indicates an inbound message with a type the
// host does not understand.
var ErrUnknownMessageType = errors.New("unknown bridge message type")

// BridgeMessage is the tagged union exchanged with the renderer.
// Messages are ephemeral: created on a state transition, serialized,
// and discarded after delivery. Never persisted or replayed.
type BridgeMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// CenterPayload is the payload of a CENTER_MAP message. Zoom is derived
// from the viewport's longitude delta by the bridge.
type CenterPayload struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Zoom int     `json:"zoom"`
}

// NewUpdatePhotosMessage builds an UPDATE_PHOTOS message carrying the
// entire current photo list. The bridge never sends diffs.
func NewUpdatePhotosMessage(photos []GeoPhoto) (BridgeMessage, error) {
	if photos == nil {
		photos = []GeoPhoto{}
	}
	payload, err := json.Marshal(photos)
	if err != nil {
		return BridgeMessage{}, fmt.Errorf("marshal photos payload: %w", err)
	}
	return BridgeMessage{Type: MessageTypeUpdatePhotos, Payload: payload}, nil
}

// NewCenterMapMessage builds a CENTER_MAP message.
func NewCenterMapMessage(lat, lng float64, zoom int) (BridgeMessage, error) {
	payload, err := json.Marshal(CenterPayload{Lat: lat, Lng: lng, Zoom: zoom})
	if err != nil {
		return BridgeMessage{}, fmt.Errorf("marshal center payload: %w", err)
	}
	return BridgeMessage{Type: MessageTypeCenterMap, Payload: payload}, nil
}

// Encode serializes the message to its transport-neutral string form.
func (m BridgeMessage) Encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode bridge message: %w", err)
	}
	return data, nil
}

// DecodeBridgeMessage parses an inbound wire frame. Malformed JSON is
// an error for the caller to log and ignore; the bridge never crashes
// on renderer input.
func DecodeBridgeMessage(data []byte) (BridgeMessage, error) {
	var m BridgeMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return BridgeMessage{}, fmt.Errorf("decode bridge message: %w", err)
	}
	if m.Type == "" {
		return BridgeMessage{}, fmt.Errorf("decode bridge message: missing type")
	}
	return m, nil
}

// MarkerPressPhoto extracts the GeoPhoto payload of a MARKER_PRESS message.
func (m BridgeMessage) MarkerPressPhoto() (GeoPhoto, error) {
	if m.Type != MessageTypeMarkerPress {
		return GeoPhoto{}, fmt.Errorf("%w: %s", ErrUnknownMessageType, m.Type)
	}
	var photo GeoPhoto
	if err := json.Unmarshal(m.Payload, &photo); err != nil {
		return GeoPhoto{}, fmt.Errorf("decode marker press payload: %w", err)
	}
	return photo, nil
}

// ViewportPayload extracts the Viewport payload of a VIEWPORT message.
func (m BridgeMessage) ViewportPayload() (Viewport, error) {
	if m.Type != MessageTypeViewport {
		return Viewport{}, fmt.Errorf("%w: %s", ErrUnknownMessageType, m.Type)
	}
	var vp Viewport
	if err := json.Unmarshal(m.Payload, &vp); err != nil {
		return Viewport{}, fmt.Errorf("decode viewport payload: %w", err)
	}
	return vp, nil
}
