package simulation

import (
	"time"

	"ticketsim/internal/domain/flight"
	"ticketsim/internal/domain/ticket"
)

// attemptsPerSeat bounds the strict pass so a cooldown-exhausted pool
// terminates.
const attemptsPerSeat = 25

// FlightOutcome summarises how a single flight was filled.
type FlightOutcome struct {
	TransactionID string  `json:"transaction_id"`
	Seats         int     `json:"seats"`
	LoadFactor    float64 `json:"load_factor"`
	SeatsSold     int     `json:"seats_sold"`
	Strict        int     `json:"strict"`
	Forced        int     `json:"forced"`
	Attempts      int     `json:"attempts"`
}

func (o FlightOutcome) Assigned() int {
	return o.Strict + o.Forced
}

// Underfilled reports whether fewer tickets than sold seats were issued.
func (o FlightOutcome) Underfilled() bool {
	return o.Assigned() < o.SeatsSold
}

// Assigner places travelers on sold seats under a cooldown between flights.
type Assigner struct {
	src       Source
	cooldown  time.Duration
	forceFill bool
}

func NewAssigner(src Source, cooldown time.Duration, forceFill bool) *Assigner {
	return &Assigner{
		src:       src,
		cooldown:  cooldown,
		forceFill: forceFill,
	}
}

// Assign issues up to seatsSold tickets for f, drawing travelers from pool
// and recording every assignment in state.
//
// The strict pass samples the pool at random, skipping travelers already on
// this flight or still inside their cooldown, and gives up after
// 25*seatsSold draws. If force fill is enabled the remaining seats then go to
// travelers not yet on the flight, or to anyone in the pool once those run
// out, regardless of cooldown.
func (a *Assigner) Assign(f flight.Flight, seatsSold int, pool []string, state *TravelerState) ([]ticket.Ticket, FlightOutcome) {
	seatsSold = max(0, min(seatsSold, f.Seats))
	outcome := FlightOutcome{
		TransactionID: f.TransactionID,
		Seats:         f.Seats,
		SeatsSold:     seatsSold,
	}
	if seatsSold == 0 || len(pool) == 0 {
		return nil, outcome
	}

	seats := seatNumbers(a.src, f.Seats, seatsSold)
	departed := f.Departed()
	chosen := make(map[string]struct{}, seatsSold)
	tickets := make([]ticket.Ticket, 0, seatsSold)

	issue := func(passport string) {
		chosen[passport] = struct{}{}
		state.Record(passport, f.ScheduledLocal)
		tickets = append(tickets, a.ticket(f, departed, seats[len(tickets)], passport))
	}

	maxAttempts := attemptsPerSeat * seatsSold
	for len(tickets) < seatsSold && outcome.Attempts < maxAttempts {
		outcome.Attempts++
		passport := pool[a.src.IntN(len(pool))]
		if _, ok := chosen[passport]; ok {
			continue
		}
		if !state.Eligible(passport, f.ScheduledLocal, a.cooldown) {
			continue
		}
		issue(passport)
	}
	outcome.Strict = len(tickets)

	if !a.forceFill || len(tickets) == seatsSold {
		return tickets, outcome
	}

	free := make([]string, 0, len(pool))
	for _, p := range pool {
		if _, ok := chosen[p]; !ok {
			free = append(free, p)
		}
	}
	for len(tickets) < seatsSold {
		var passport string
		if len(free) > 0 {
			i := a.src.IntN(len(free))
			passport = free[i]
			free[i] = free[len(free)-1]
			free = free[:len(free)-1]
		} else {
			passport = pool[a.src.IntN(len(pool))]
		}
		issue(passport)
		outcome.Forced++
	}

	return tickets, outcome
}

func (a *Assigner) ticket(f flight.Flight, departed bool, seat int, passport string) ticket.Ticket {
	kind := checkInType(a.src)
	checkin := CheckinTime(a.src, f.ScheduledLocal, kind)

	t := ticket.Ticket{
		UniqueID:       ticket.UniqueID(f.TransactionID, seat),
		TransactionID:  f.TransactionID,
		SeatNumber:     seat,
		PassportNumber: passport,
		CheckInType:    kind,
		CheckinTime:    checkin,
	}
	if departed {
		if sec, ok := SecurityTime(a.src, f.ScheduledLocal, checkin); ok {
			t.PassedSecurityTime = &sec
		}
	}
	return t
}
