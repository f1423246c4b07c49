package simulation

import "time"

const (
	securityCutoff   = 20 * time.Minute
	securityEarliest = 4 * time.Hour
	securityFallback = 30 * time.Minute
)

// SecurityTime draws when a checked-in passenger cleared security. The draw
// lies strictly between max(checkin, scheduled-4h) and scheduled-20m. When
// that window is empty the only candidate is scheduled-30m, kept if it still
// follows check-in. ok is false when no time qualifies.
func SecurityTime(src Source, scheduled, checkin time.Time) (t time.Time, ok bool) {
	upper := scheduled.Add(-securityCutoff)
	lower := checkin
	if earliest := scheduled.Add(-securityEarliest); earliest.After(lower) {
		lower = earliest
	}

	if !lower.Before(upper) {
		candidate := scheduled.Add(-securityFallback)
		if candidate.After(checkin) {
			return candidate, true
		}
		return time.Time{}, false
	}

	span := upper.Sub(lower)
	d := time.Duration(src.Float64() * float64(span))
	// keep both ends exclusive
	if d <= 0 {
		d = 1
	}
	if d >= span {
		d = span - 1
	}
	if d <= 0 {
		// a window one nanosecond wide has no interior point
		return time.Time{}, false
	}
	return lower.Add(d), true
}
