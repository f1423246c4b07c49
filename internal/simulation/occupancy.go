package simulation

import "time"

const (
	minLoadFactor = 0.75
	maxLoadFactor = 0.98
)

// OccupancyFunc maps a local departure time to the per-seat sale probability.
type OccupancyFunc func(scheduled time.Time) float64

var weekdayBase = map[time.Weekday]float64{
	time.Monday:    0.82,
	time.Tuesday:   0.83,
	time.Wednesday: 0.84,
	time.Thursday:  0.85,
	time.Friday:    0.88,
	time.Saturday:  0.78,
	time.Sunday:    0.90,
}

// Occupancy is the default load factor model: a weekday base adjusted by
// hour-of-day bands, clamped to [0.75, 0.98].
func Occupancy(scheduled time.Time) float64 {
	base := weekdayBase[scheduled.Weekday()]

	hour := scheduled.Hour()
	adj := 0.0
	if hour >= 6 && hour <= 9 {
		adj += 0.10
	}
	if hour >= 16 && hour <= 20 {
		adj += 0.10
	}
	if hour >= 11 && hour <= 14 {
		adj -= 0.02
	}
	if hour >= 22 || hour <= 5 {
		adj -= 0.04
	}

	return min(maxLoadFactor, max(minLoadFactor, base+adj))
}
