// Filmatlas - Film Photography Catalogue Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmatlas

package bridge

import "math"

// Zoom bounds for the renderer's tile layer.
const (
	MinZoom = 3
	MaxZoom = 18
)

// ZoomForLngDelta converts a viewport longitude span to a tile zoom
// level: zoom = round(log2(360 / lngDelta)) + 1, clamped to
// [MinZoom, MaxZoom]. A non-positive delta means "as close as
// possible" and yields MaxZoom.
func ZoomForLngDelta(lngDelta float64) int {
	if lngDelta <= 0 {
		return MaxZoom
	}
	zoom := int(math.Round(math.Log2(360/lngDelta))) + 1
	if zoom < MinZoom {
		return MinZoom
	}
	if zoom > MaxZoom {
		return MaxZoom
	}
	return zoom
}
