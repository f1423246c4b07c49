package simulation

import (
	"math"
	"testing"
	"time"
)

func TestOccupancyBands(t *testing.T) {
	// 2025-07-07 is a Monday.
	at := func(day, hour int) time.Time {
		return time.Date(2025, 7, day, hour, 0, 0, 0, time.UTC)
	}

	cases := []struct {
		name string
		at   time.Time
		want float64
	}{
		{"monday midday trough", at(7, 12), 0.80},
		{"monday no band", at(7, 10), 0.82},
		{"tuesday afternoon", at(8, 15), 0.83},
		{"wednesday late night", at(9, 3), 0.80},
		{"thursday morning peak", at(10, 6), 0.95},
		{"friday evening clamps high", at(11, 18), 0.98},
		{"saturday late night clamps low", at(12, 23), 0.75},
		{"sunday morning clamps high", at(13, 8), 0.98},
		{"sunday 21h", at(13, 21), 0.90},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Occupancy(tc.at)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("Occupancy(%s) = %.4f, want %.4f", tc.at.Format(time.RFC3339), got, tc.want)
			}
		})
	}
}

func TestOccupancyAlwaysWithinClamp(t *testing.T) {
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	for h := 0; h < 24*7; h++ {
		p := Occupancy(start.Add(time.Duration(h) * time.Hour))
		if p < minLoadFactor || p > maxLoadFactor {
			t.Fatalf("hour %d: load factor %.3f outside [%.2f, %.2f]", h, p, minLoadFactor, maxLoadFactor)
		}
	}
}
