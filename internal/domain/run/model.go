package run

import (
	"errors"
	"time"
)

var (
	ErrRunNotFound   = errors.New("run not found")
	ErrRunInProgress = errors.New("simulation run already in progress")
)

const (
	StatusRunning  = "RUNNING"
	StatusFinished = "FINISHED"
	StatusFailed   = "FAILED"
)

// Run records one simulation over the flight table.
type Run struct {
	ID                 string     `json:"id"`
	Status             string     `json:"status"`
	Trigger            string     `json:"trigger"`
	CooldownDays       int        `json:"cooldown_days"`
	ForceFill          bool       `json:"force_fill"`
	Seed               uint64     `json:"seed"`
	Flights            int        `json:"flights"`
	Tickets            int        `json:"tickets"`
	UnderfilledFlights int        `json:"underfilled_flights"`
	ForcedSeats        int        `json:"forced_seats"`
	Error              string     `json:"error,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	FinishedAt         *time.Time `json:"finished_at,omitempty"`
}
