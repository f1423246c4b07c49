package flight

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidFlight = errors.New("invalid flight")

const statusDeparted = "departed"

// Flight is a scheduled departure as read from the flights table joined with
// its aircraft model. ScheduledLocal is a naive local timestamp.
type Flight struct {
	TransactionID  string    `json:"transaction_id"`
	Status         string    `json:"status"`
	ScheduledLocal time.Time `json:"scheduled_local"`
	Seats          int       `json:"seats"`
}

// Departed reports whether the status denotes that the flight left the gate.
func (f Flight) Departed() bool {
	return strings.EqualFold(strings.TrimSpace(f.Status), statusDeparted)
}

func (f Flight) Validate() error {
	switch {
	case f.TransactionID == "":
		return fmt.Errorf("%w: missing transaction_id", ErrInvalidFlight)
	case f.ScheduledLocal.IsZero():
		return fmt.Errorf("%w: %s: missing scheduled_local", ErrInvalidFlight, f.TransactionID)
	case f.Seats < 0:
		return fmt.Errorf("%w: %s: negative seats %d", ErrInvalidFlight, f.TransactionID, f.Seats)
	}
	return nil
}
