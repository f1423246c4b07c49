package flight

import (
	"errors"
	"testing"
	"time"
)

func TestDeparted(t *testing.T) {
	for status, want := range map[string]bool{
		"Departed":  true,
		"departed":  true,
		" DEPARTED": true,
		"Scheduled": false,
		"Delayed":   false,
		"":          false,
	} {
		if got := (Flight{Status: status}).Departed(); got != want {
			t.Fatalf("Departed(%q) = %t, want %t", status, got, want)
		}
	}
}

func TestValidate(t *testing.T) {
	at := time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)

	if err := (Flight{TransactionID: "TX", ScheduledLocal: at, Seats: 180}).Validate(); err != nil {
		t.Fatalf("valid flight rejected: %v", err)
	}
	for _, f := range []Flight{
		{ScheduledLocal: at, Seats: 1},
		{TransactionID: "TX", Seats: 1},
		{TransactionID: "TX", ScheduledLocal: at, Seats: -1},
	} {
		if err := f.Validate(); !errors.Is(err, ErrInvalidFlight) {
			t.Fatalf("expected ErrInvalidFlight for %+v, got %v", f, err)
		}
	}
}
