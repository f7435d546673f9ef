// Filmatlas - Film Photography Catalogue Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmatlas

// Package mosaic turns clusters into renderable marker descriptors.
// It only arranges already-resolved thumbnail URLs; no image fetching
// or caching happens here.
package mosaic

import (
	"strconv"

	"github.com/tomtom215/filmatlas/internal/cluster"
	"github.com/tomtom215/filmatlas/internal/models"
)

// GridSize is the number of cells in a mosaic grid (2×2).
const GridSize = 4

// Tile is one cell of a marker. An Empty tile is an explicit
// placeholder: the builder never repeats an image to fill the grid.
type Tile struct {
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Empty        bool   `json:"empty,omitempty"`
}

// MarkerVisual describes how a cluster renders on the map.
//
// A single-photo cluster renders as one large thumbnail with no badge.
// A multi-photo cluster renders a 2×2 grid populated left-to-right,
// top-to-bottom from the cluster's members, with a badge showing the
// true group count (which may exceed the four displayed tiles).
type MarkerVisual struct {
	ClusterID string  `json:"cluster_id"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Grid      bool    `json:"grid"`
	Tiles     []Tile  `json:"tiles"`
	Badge     string  `json:"badge,omitempty"`
}

// Build constructs the marker descriptor for a cluster.
func Build(c models.Cluster) MarkerVisual {
	visual := MarkerVisual{
		ClusterID: c.ID,
		Lat:       c.CenterLat,
		Lng:       c.CenterLng,
	}

	if c.Count == 1 {
		visual.Tiles = []Tile{{ThumbnailURL: c.Representative.ThumbnailURL}}
		return visual
	}

	visual.Grid = true
	visual.Badge = strconv.Itoa(c.Count)
	visual.Tiles = make([]Tile, GridSize)

	members := c.Members
	if len(members) > cluster.MaxMosaicMembers {
		members = members[:cluster.MaxMosaicMembers]
	}
	for i := range visual.Tiles {
		if i < len(members) {
			visual.Tiles[i] = Tile{ThumbnailURL: members[i].ThumbnailURL}
		} else {
			visual.Tiles[i] = Tile{Empty: true}
		}
	}
	return visual
}

// BuildAll constructs marker descriptors for a cluster set, preserving
// cluster order.
func BuildAll(clusters []models.Cluster) []MarkerVisual {
	visuals := make([]MarkerVisual, len(clusters))
	for i, c := range clusters {
		visuals[i] = Build(c)
	}
	return visuals
}
