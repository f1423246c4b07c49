package simulation

import "time"

// TravelerState tracks the scheduled time of each traveler's most recent
// assigned flight. The zero time means the traveler has not flown yet.
// It is only meaningful when flights are visited in scheduled order.
type TravelerState struct {
	last map[string]time.Time
}

func NewTravelerState(passports []string) *TravelerState {
	last := make(map[string]time.Time, len(passports))
	for _, p := range passports {
		last[p] = time.Time{}
	}
	return &TravelerState{last: last}
}

// Eligible reports whether at least cooldown has elapsed between the
// traveler's last flight and at.
func (s *TravelerState) Eligible(passport string, at time.Time, cooldown time.Duration) bool {
	last := s.last[passport]
	if last.IsZero() {
		return true
	}
	return at.Sub(last) >= cooldown
}

func (s *TravelerState) Record(passport string, at time.Time) {
	s.last[passport] = at
}

// LastFlight returns the last assigned flight time; ok is false for
// travelers that have not flown.
func (s *TravelerState) LastFlight(passport string) (at time.Time, ok bool) {
	at = s.last[passport]
	return at, !at.IsZero()
}
