// Filmatlas - Film Photography Catalogue Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmatlas

// Package cluster implements adaptive spatial grouping of geotagged
// photos. The grouping is a pure function of the photo list and the
// current viewport: same inputs always yield the same clusters, in the
// same order.
package cluster

import (
	"math"
	"time"

	"github.com/tomtom215/filmatlas/internal/metrics"
	"github.com/tomtom215/filmatlas/internal/models"
)

// MaxMosaicMembers caps how many group members a cluster exposes for
// mosaic display. Count always reflects the full group size.
const MaxMosaicMembers = 4

// radiusTier maps a latitude-delta threshold to a clustering radius in
// coordinate-degree units (1° latitude treated as 1° longitude for
// threshold purposes). Wider viewports merge photos into regional
// clusters; deep zooms keep individual photos distinct.
type radiusTier struct {
	latDeltaAbove float64
	radius        float64
}

// radiusTiers is ordered widest viewport first. The final tier is the
// floor radius applied below the smallest threshold.
var radiusTiers = []radiusTier{
	{latDeltaAbove: 5, radius: 1.0},
	{latDeltaAbove: 1, radius: 0.3},
	{latDeltaAbove: 0.3, radius: 0.08},
	{latDeltaAbove: 0.1, radius: 0.02},
	{latDeltaAbove: 0.02, radius: 0.005},
	{latDeltaAbove: 0, radius: 0.001},
}

// RadiusForLatDelta selects the clustering radius for a viewport's
// latitude delta from the fixed tier table.
func RadiusForLatDelta(latDelta float64) float64 {
	for _, tier := range radiusTiers[:len(radiusTiers)-1] {
		if latDelta > tier.latDeltaAbove {
			return tier.radius
		}
	}
	return radiusTiers[len(radiusTiers)-1].radius
}

// Compute partitions photos into clusters for the given viewport.
//
// The algorithm is a greedy single pass: photos are visited in input
// order; each unassigned photo seeds a new group and claims every later
// unassigned photo within the radius of the SEED (not of the running
// centroid). Two photos can therefore land in different clusters even
// when each is within radius of a common third photo that was assigned
// first. That asymmetry is part of the contract and covered by tests;
// do not replace it with transitive closure.
//
// Clusters are emitted in seed encounter order. The full recompute is
// O(n²) in the photo count, which is fine at personal-library scale.
func Compute(photos []models.GeoPhoto, viewport models.Viewport) []models.Cluster {
	start := time.Now()
	radius := RadiusForLatDelta(viewport.LatDelta)

	clusters := make([]models.Cluster, 0, len(photos))
	assigned := make([]bool, len(photos))

	for i := range photos {
		if assigned[i] {
			continue
		}
		assigned[i] = true
		seed := photos[i]

		group := make([]models.GeoPhoto, 1, 8)
		group[0] = seed

		for j := i + 1; j < len(photos); j++ {
			if assigned[j] {
				continue
			}
			if planarDistance(seed, photos[j]) < radius {
				assigned[j] = true
				group = append(group, photos[j])
			}
		}

		clusters = append(clusters, newCluster(group))
	}

	metrics.ClusterComputeDuration.Observe(time.Since(start).Seconds())
	metrics.ClusterCount.Set(float64(len(clusters)))
	return clusters
}

// planarDistance is the intentional planar coordinate-delta
// approximation sqrt(dLat² + dLng²); no great-circle math here.
func planarDistance(a, b models.GeoPhoto) float64 {
	dLat := a.Latitude - b.Latitude
	dLng := a.Longitude - b.Longitude
	return math.Sqrt(dLat*dLat + dLng*dLng)
}

// newCluster builds the cluster for a complete group. The cluster ID is
// derived from the seed photo so identical inputs produce identical
// output, and the center is the mean over the FULL group even when only
// the first MaxMosaicMembers are exposed for display.
func newCluster(group []models.GeoPhoto) models.Cluster {
	var sumLat, sumLng float64
	for _, p := range group {
		sumLat += p.Latitude
		sumLng += p.Longitude
	}

	members := group
	if len(members) > MaxMosaicMembers {
		members = members[:MaxMosaicMembers]
	}

	return models.Cluster{
		ID:             "cluster-" + group[0].ID,
		CenterLat:      sumLat / float64(len(group)),
		CenterLng:      sumLng / float64(len(group)),
		Count:          len(group),
		Representative: group[0],
		Members:        members,
	}
}
