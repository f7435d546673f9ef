// Filmatlas - Film Photography Catalogue Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmatlas

package cluster

import (
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/tomtom215/filmatlas/internal/models"
)

func photo(id string, lat, lng float64) models.GeoPhoto {
	return models.GeoPhoto{ID: id, Latitude: lat, Longitude: lng}
}

func viewport(latDelta float64) models.Viewport {
	return models.Viewport{CenterLat: 0, CenterLng: 0, LatDelta: latDelta, LngDelta: latDelta}
}

func TestRadiusForLatDelta(t *testing.T) {
	tests := []struct {
		latDelta float64
		want     float64
	}{
		{10, 1.0},   // widest tier
		{5.01, 1.0},
		{5, 0.3}, // thresholds are exclusive
		{2, 0.3},
		{1, 0.08},
		{0.5, 0.08},
		{0.3, 0.02},
		{0.2, 0.02},
		{0.1, 0.005},
		{0.05, 0.005},
		{0.02, 0.001},
		{0.01, 0.001}, // smallest tier
		{0, 0.001},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("latDelta=%v", tt.latDelta), func(t *testing.T) {
			if got := RadiusForLatDelta(tt.latDelta); got != tt.want {
				t.Errorf("RadiusForLatDelta(%v) = %v, want %v", tt.latDelta, got, tt.want)
			}
		})
	}
}

func TestComputePartitionsInput(t *testing.T) {
	photos := []models.GeoPhoto{
		photo("a", 48.85, 2.35),
		photo("b", 48.86, 2.36),
		photo("c", 51.50, -0.12),
		photo("d", 40.71, -74.0),
		photo("e", 40.72, -74.01),
		photo("f", -33.86, 151.2),
	}

	for _, latDelta := range []float64{10, 1, 0.1, 0.01} {
		t.Run(fmt.Sprintf("latDelta=%v", latDelta), func(t *testing.T) {
			clusters := Compute(photos, viewport(latDelta))

			total := 0
			seen := make(map[string]int)
			for _, c := range clusters {
				total += c.Count
				if c.Count < len(c.Members) {
					t.Errorf("cluster %s: count %d below member count %d", c.ID, c.Count, len(c.Members))
				}
				if len(c.Members) > MaxMosaicMembers {
					t.Errorf("cluster %s: %d members exceeds cap", c.ID, len(c.Members))
				}
				for _, m := range c.Members {
					seen[m.ID]++
				}
			}
			if total != len(photos) {
				t.Errorf("sum of counts = %d, want %d", total, len(photos))
			}
			for id, n := range seen {
				if n != 1 {
					t.Errorf("photo %s appears in %d clusters", id, n)
				}
			}
		})
	}
}

func TestComputeDeterminism(t *testing.T) {
	photos := []models.GeoPhoto{
		photo("a", 10, 10),
		photo("b", 10.001, 10.001),
		photo("c", 10.5, 10.5),
		photo("d", 11, 11),
	}
	vp := viewport(2)

	first := Compute(photos, vp)
	for i := 0; i < 10; i++ {
		again := Compute(photos, vp)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differed from first run", i)
		}
	}
}

// TestComputeSingleSeedAsymmetry pins the documented greedy single-seed
// behavior: B is within radius of both A and C, but C only gets
// compared against seed A, so C ends up alone. This must hold, not be
// "fixed" into transitive closure.
func TestComputeSingleSeedAsymmetry(t *testing.T) {
	// latDelta 2 selects radius 0.3. Colinear on the equator:
	// d(A,B)=0.2 < r, d(B,C)=0.2 < r, d(A,C)=0.4 > r.
	a := photo("a", 0, 0)
	b := photo("b", 0, 0.2)
	c := photo("c", 0, 0.4)

	clusters := Compute([]models.GeoPhoto{a, b, c}, viewport(2))

	if len(clusters) != 2 {
		t.Fatalf("got %d clusters, want 2: %+v", len(clusters), clusters)
	}
	first, second := clusters[0], clusters[1]
	if first.Count != 2 || first.Representative.ID != "a" {
		t.Errorf("first cluster should be {a,b} seeded by a, got %+v", first)
	}
	if len(first.Members) != 2 || first.Members[0].ID != "a" || first.Members[1].ID != "b" {
		t.Errorf("first cluster members = %+v, want [a b]", first.Members)
	}
	if second.Count != 1 || second.Representative.ID != "c" {
		t.Errorf("second cluster should be {c}, got %+v", second)
	}
}

func TestComputeSeedOrderPreserved(t *testing.T) {
	// Far-apart photos each form their own cluster; emission order must
	// match input order of the seeds.
	photos := []models.GeoPhoto{
		photo("z", 0, 0),
		photo("m", 20, 20),
		photo("a", -40, -40),
	}

	clusters := Compute(photos, viewport(0.01))
	want := []string{"z", "m", "a"}
	for i, c := range clusters {
		if c.Representative.ID != want[i] {
			t.Errorf("cluster %d seeded by %s, want %s", i, c.Representative.ID, want[i])
		}
	}
}

func TestComputeCenterIsFullGroupMean(t *testing.T) {
	// Six photos inside one radius; center must average all six even
	// though only four are exposed as members.
	photos := make([]models.GeoPhoto, 6)
	for i := range photos {
		photos[i] = photo(fmt.Sprintf("p%d", i), float64(i)*0.1, 0)
	}

	clusters := Compute(photos, viewport(10)) // radius 1.0 swallows all
	if len(clusters) != 1 {
		t.Fatalf("got %d clusters, want 1", len(clusters))
	}

	c := clusters[0]
	if c.Count != 6 {
		t.Errorf("count = %d, want 6", c.Count)
	}
	if len(c.Members) != 4 {
		t.Errorf("members = %d, want 4", len(c.Members))
	}
	wantLat := (0 + 0.1 + 0.2 + 0.3 + 0.4 + 0.5) / 6
	if math.Abs(c.CenterLat-wantLat) > 1e-12 {
		t.Errorf("center lat = %v, want %v (mean over full group)", c.CenterLat, wantLat)
	}
}

func TestComputeEmptyInput(t *testing.T) {
	clusters := Compute(nil, viewport(1))
	if len(clusters) != 0 {
		t.Errorf("expected no clusters for empty input, got %d", len(clusters))
	}
}

func TestComputeDistanceAgainstSeedNotCentroid(t *testing.T) {
	// With radius 0.3: seed at 0, next at 0.29 joins. A third photo at
	// 0.58 is within 0.3 of the second but not of the seed, so it must
	// NOT join: the only comparison is against the seed.
	photos := []models.GeoPhoto{
		photo("seed", 0, 0),
		photo("near", 0, 0.29),
		photo("chain", 0, 0.58),
	}

	clusters := Compute(photos, viewport(2))
	if len(clusters) != 2 {
		t.Fatalf("got %d clusters, want 2", len(clusters))
	}
	if clusters[0].Count != 2 || clusters[1].Count != 1 {
		t.Errorf("counts = [%d %d], want [2 1]", clusters[0].Count, clusters[1].Count)
	}
}

func BenchmarkCompute(b *testing.B) {
	photos := make([]models.GeoPhoto, 500)
	for i := range photos {
		photos[i] = photo(fmt.Sprintf("p%d", i), float64(i%90), float64(i%180))
	}
	vp := viewport(1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Compute(photos, vp)
	}
}
