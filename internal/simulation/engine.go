package simulation

import (
	"fmt"
	"slices"
	"time"

	"ticketsim/internal/domain/flight"
	"ticketsim/internal/domain/passport"
	"ticketsim/internal/domain/ticket"
)

const (
	DefaultCooldownDays = 2
	// MaxCooldownDays keeps the cooldown well inside time.Duration range.
	MaxCooldownDays = 36500
)

type Config struct {
	CooldownDays int
	ForceFill    bool
}

func DefaultConfig() Config {
	return Config{CooldownDays: DefaultCooldownDays}
}

func (c Config) Cooldown() time.Duration {
	return time.Duration(min(max(0, c.CooldownDays), MaxCooldownDays)) * 24 * time.Hour
}

// String is used in logs.
func (c Config) String() string {
	return fmt.Sprintf("cooldown=%dd force_fill=%t", c.CooldownDays, c.ForceFill)
}

type Option func(*Engine)

// WithOccupancy replaces the default load factor model.
func WithOccupancy(fn OccupancyFunc) Option {
	return func(e *Engine) {
		e.occupancy = fn
	}
}

// Engine turns flights and a traveler pool into ticket records.
// It is not safe for concurrent use: the traveler state of a run threads
// through every flight in scheduled order.
type Engine struct {
	cfg       Config
	src       Source
	occupancy OccupancyFunc
}

func NewEngine(src Source, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:       cfg,
		src:       src,
		occupancy: Occupancy,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type Result struct {
	Tickets []ticket.Ticket
	Flights []FlightOutcome
}

func (r Result) Underfilled() int {
	n := 0
	for _, f := range r.Flights {
		if f.Underfilled() {
			n++
		}
	}
	return n
}

func (r Result) ForcedSeats() int {
	n := 0
	for _, f := range r.Flights {
		n += f.Forced
	}
	return n
}

// Run simulates ticket sales for flights. Flights are processed in
// scheduled_local order regardless of the input order; ties keep their input
// order. An empty passport pool yields an empty result.
func (e *Engine) Run(flights []flight.Flight, passports []passport.Passport) (Result, error) {
	pool, err := passport.Numbers(passports)
	if err != nil {
		return Result{}, err
	}
	pool = uniq(pool)
	if len(pool) == 0 {
		return Result{}, nil
	}

	for _, f := range flights {
		if err := f.Validate(); err != nil {
			return Result{}, err
		}
	}

	ordered := slices.Clone(flights)
	slices.SortStableFunc(ordered, func(a, b flight.Flight) int {
		return a.ScheduledLocal.Compare(b.ScheduledLocal)
	})

	state := NewTravelerState(pool)
	assigner := NewAssigner(e.src, e.cfg.Cooldown(), e.cfg.ForceFill)

	var res Result
	res.Flights = make([]FlightOutcome, 0, len(ordered))
	for _, f := range ordered {
		p := e.occupancy(f.ScheduledLocal)
		sold := min(f.Seats, SeatsSold(e.src, f.Seats, p))

		tickets, outcome := assigner.Assign(f, sold, pool, state)
		outcome.LoadFactor = p
		res.Tickets = append(res.Tickets, tickets...)
		res.Flights = append(res.Flights, outcome)
	}

	res.Tickets = ticket.Dedup(res.Tickets)
	return res, nil
}

func uniq(pool []string) []string {
	seen := make(map[string]struct{}, len(pool))
	out := pool[:0]
	for _, p := range pool {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
