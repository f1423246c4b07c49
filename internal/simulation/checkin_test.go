package simulation

import (
	"testing"
	"time"

	"ticketsim/internal/domain/ticket"
)

var departure = time.Date(2025, 7, 14, 9, 30, 0, 0, time.UTC)

func TestCheckinTimeOnlineWindow(t *testing.T) {
	src := NewSource(11)
	earliest, latest := departure.Add(-24*time.Hour), departure.Add(-2*time.Hour)

	for i := 0; i < 5000; i++ {
		got := CheckinTime(src, departure, ticket.CheckInOnline)
		if got.Before(earliest) || got.After(latest) {
			t.Fatalf("online check-in %s outside [%s, %s]", got, earliest, latest)
		}
	}
}

func TestCheckinTimeOnsiteWindow(t *testing.T) {
	src := NewSource(12)
	earliest, latest := departure.Add(-6*time.Hour), departure.Add(-30*time.Minute)

	var total time.Duration
	const draws = 5000
	for i := 0; i < draws; i++ {
		got := CheckinTime(src, departure, ticket.CheckInOnsite)
		if got.Before(earliest) || got.After(latest) {
			t.Fatalf("onsite check-in %s outside [%s, %s]", got, earliest, latest)
		}
		total += departure.Sub(got)
	}

	mean := total / draws
	if mean < 110*time.Minute || mean > 130*time.Minute {
		t.Fatalf("mean onsite lead %s, expected close to 2h", mean)
	}
}

func TestCheckinTimeOnsiteClampsAfterRetries(t *testing.T) {
	cases := []struct {
		name   string
		normal float64
		want   time.Time
	}{
		{"too early clamps to 6h", 100, departure.Add(-6 * time.Hour)},
		{"too late clamps to 30m", -100, departure.Add(-30 * time.Minute)},
	}
	for _, tc := range cases {
		got := CheckinTime(fixedSource{normal: tc.normal}, departure, ticket.CheckInOnsite)
		if !got.Equal(tc.want) {
			t.Fatalf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestCheckInTypeShare(t *testing.T) {
	src := NewSource(13)
	online := 0
	const draws = 10000
	for i := 0; i < draws; i++ {
		if checkInType(src) == ticket.CheckInOnline {
			online++
		}
	}
	share := float64(online) / draws
	if share < 0.72 || share > 0.78 {
		t.Fatalf("online share %.3f, expected near 0.75", share)
	}
}
