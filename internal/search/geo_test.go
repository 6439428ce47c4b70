package search

import (
	"math"
	"testing"

	"github.com/talenthub/search-platform/internal/document"
)

func TestHaversineKnownDistances(t *testing.T) {
	cases := []struct {
		name   string
		a, b   document.Coordinates
		wantKm float64
		tolKm  float64
	}{
		{
			name:   "same point",
			a:      document.Coordinates{Lat: 30.2672, Lon: -97.7431},
			b:      document.Coordinates{Lat: 30.2672, Lon: -97.7431},
			wantKm: 0,
			tolKm:  0.001,
		},
		{
			name:   "austin to dallas",
			a:      document.Coordinates{Lat: 30.2672, Lon: -97.7431},
			b:      document.Coordinates{Lat: 32.7767, Lon: -96.7970},
			wantKm: 293,
			tolKm:  5,
		},
		{
			name:   "london to paris",
			a:      document.Coordinates{Lat: 51.5074, Lon: -0.1278},
			b:      document.Coordinates{Lat: 48.8566, Lon: 2.3522},
			wantKm: 344,
			tolKm:  5,
		},
		{
			name:   "antipodal-ish",
			a:      document.Coordinates{Lat: 0, Lon: 0},
			b:      document.Coordinates{Lat: 0, Lon: 180},
			wantKm: math.Pi * earthRadiusKm,
			tolKm:  1,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := HaversineKm(tc.a, tc.b)
			if math.Abs(got-tc.wantKm) > tc.tolKm {
				t.Errorf("HaversineKm = %.2f, want %.2f ± %.2f", got, tc.wantKm, tc.tolKm)
			}
		})
	}
}

func TestHaversineSymmetric(t *testing.T) {
	a := document.Coordinates{Lat: 40.7128, Lon: -74.0060}
	b := document.Coordinates{Lat: 34.0522, Lon: -118.2437}
	if d1, d2 := HaversineKm(a, b), HaversineKm(b, a); math.Abs(d1-d2) > 1e-9 {
		t.Errorf("distance not symmetric: %v vs %v", d1, d2)
	}
}

func TestHaversineMonotonicWithDistance(t *testing.T) {
	origin := document.Coordinates{Lat: 30.0, Lon: -97.0}
	prev := -1.0
	for _, dLon := range []float64{0.05, 0.1, 0.5, 1, 2, 5} {
		d := HaversineKm(origin, document.Coordinates{Lat: 30.0, Lon: -97.0 + dLon})
		if d <= prev {
			t.Fatalf("distance not increasing at offset %v: %v after %v", dLon, d, prev)
		}
		prev = d
	}
}
