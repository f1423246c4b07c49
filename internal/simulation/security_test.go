package simulation

import (
	"testing"
	"time"
)

func TestSecurityTimeWithinWindow(t *testing.T) {
	src := NewSource(21)
	upper := departure.Add(-20 * time.Minute)

	checkins := []time.Time{
		departure.Add(-23 * time.Hour),
		departure.Add(-3 * time.Hour),
		departure.Add(-45 * time.Minute),
		departure.Add(-21 * time.Minute),
	}
	for _, checkin := range checkins {
		lower := checkin
		if e := departure.Add(-4 * time.Hour); e.After(lower) {
			lower = e
		}
		for i := 0; i < 1000; i++ {
			got, ok := SecurityTime(src, departure, checkin)
			if !ok {
				t.Fatalf("checkin %s: expected a security time", checkin)
			}
			if !got.After(checkin) || !got.Before(upper) {
				t.Fatalf("security %s not strictly between checkin %s and %s", got, checkin, upper)
			}
			if got.Before(lower) {
				t.Fatalf("security %s earlier than %s", got, lower)
			}
		}
	}
}

func TestSecurityTimeExclusiveBounds(t *testing.T) {
	checkin := departure.Add(-time.Hour)

	got, ok := SecurityTime(fixedSource{uniform: 0}, departure, checkin)
	if !ok || !got.After(checkin) {
		t.Fatalf("expected a time after check-in, got %s ok=%t", got, ok)
	}

	upper := departure.Add(-20 * time.Minute)
	got, ok = SecurityTime(fixedSource{uniform: 0.9999999999999999}, departure, checkin)
	if !ok || !got.Before(upper) {
		t.Fatalf("expected a time before %s, got %s ok=%t", upper, got, ok)
	}
}

func TestSecurityTimeDegenerateWindow(t *testing.T) {
	src := NewSource(22)

	for _, checkin := range []time.Time{
		departure.Add(-20 * time.Minute),
		departure.Add(-10 * time.Minute),
	} {
		if got, ok := SecurityTime(src, departure, checkin); ok {
			t.Fatalf("checkin %s: expected no security time, got %s", checkin, got)
		}
	}
}
