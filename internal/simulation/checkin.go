package simulation

import (
	"time"

	"ticketsim/internal/domain/ticket"
)

const (
	onlineEarliest = 24 * time.Hour
	onlineLatest   = 2 * time.Hour

	onsiteMean        = 2 * time.Hour
	onsiteStdDev      = 40 * time.Minute
	onsiteEarliest    = 6 * time.Hour
	onsiteLatest      = 30 * time.Minute
	onsiteMaxAttempts = 10

	onlineShare = 0.75
)

func checkInType(src Source) ticket.CheckInType {
	if src.Float64() < onlineShare {
		return ticket.CheckInOnline
	}
	return ticket.CheckInOnsite
}

// CheckinTime draws when a passenger checked in for a departure at scheduled.
// Online check-in is uniform over [scheduled-24h, scheduled-2h]. Onsite
// check-in is a Gaussian lead time around 2h, redrawn up to 10 times to land
// within [30m, 6h] and clamped into that window otherwise.
func CheckinTime(src Source, scheduled time.Time, kind ticket.CheckInType) time.Time {
	if kind == ticket.CheckInOnline {
		return uniformTime(src, scheduled.Add(-onlineEarliest), scheduled.Add(-onlineLatest))
	}

	for i := 0; i < onsiteMaxAttempts; i++ {
		lead := onsiteLead(src)
		if lead >= onsiteLatest && lead <= onsiteEarliest {
			return scheduled.Add(-lead)
		}
	}
	lead := min(onsiteEarliest, max(onsiteLatest, onsiteLead(src)))
	return scheduled.Add(-lead)
}

func onsiteLead(src Source) time.Duration {
	return onsiteMean + time.Duration(src.NormFloat64()*float64(onsiteStdDev))
}

// uniformTime draws from the closed interval [lo, hi].
func uniformTime(src Source, lo, hi time.Time) time.Time {
	span := hi.Sub(lo)
	return lo.Add(time.Duration(src.Float64() * float64(span)))
}
