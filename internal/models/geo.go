// Filmatlas - Film Photography Catalogue Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmatlas

// Package models defines the shared data model for the geo-map subsystem:
// geotagged photos, viewports, clusters and the bridge message protocol.
package models

import (
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// GeoPhoto is a single geotagged photograph from the film catalogue.
// Latitude and Longitude are always finite; records that fail numeric
// parsing are dropped during normalization and never enter the model.
type GeoPhoto struct {
	ID           string  `json:"id"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	ThumbnailURL string  `json:"thumbnailUrl,omitempty"`
	LocationName string  `json:"locationName,omitempty"`
}

// Viewport is the visible geographic extent of the map. There is no
// explicit zoom level; LatDelta/LngDelta are the zoom proxy.
type Viewport struct {
	CenterLat float64 `json:"center_lat"`
	CenterLng float64 `json:"center_lng"`
	LatDelta  float64 `json:"lat_delta"`
	LngDelta  float64 `json:"lng_delta"`
}

// Cluster is a group of photos rendered as a single marker.
//
// Count is the size of the full underlying group and may exceed
// len(Members), which is capped at 4 for mosaic display. CenterLat/Lng
// is the arithmetic mean over the full group, not just the displayed
// members. Clusters partition their input: every photo belongs to
// exactly one cluster per computation.
type Cluster struct {
	ID             string     `json:"id"`
	CenterLat      float64    `json:"center_lat"`
	CenterLng      float64    `json:"center_lng"`
	Count          int        `json:"count"`
	Representative GeoPhoto   `json:"representative"`
	Members        []GeoPhoto `json:"members"`
}

// FlexFloat decodes a JSON value that may arrive as a number or as a
// numeric string. The catalogue backend serializes coordinates both
// ways depending on the originating client.
type FlexFloat struct {
	Value float64
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler. Non-numeric input leaves
// the value invalid rather than returning an error, so a single bad
// record does not abort decoding of the whole photo list.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	f.Valid = false

	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		return nil
	}

	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return nil
		}
		s = strings.TrimSpace(str)
		if s == "" {
			return nil
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	f.Value = v
	f.Valid = true
	return nil
}

// Finite reports whether the value parsed and is a finite number.
func (f FlexFloat) Finite() bool {
	return f.Valid && !math.IsNaN(f.Value) && !math.IsInf(f.Value, 0)
}

// FlexID decodes a JSON identifier that may arrive as a number or a string.
type FlexID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *FlexID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*id = ""
		return nil
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*id = FlexID(str)
		return nil
	}
	*id = FlexID(s)
	return nil
}

// String returns the identifier as a string.
func (id FlexID) String() string {
	return string(id)
}
