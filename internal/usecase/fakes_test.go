package usecase

import (
	"context"
	"errors"
	"time"

	"ticketsim/internal/domain/flight"
	"ticketsim/internal/domain/outbox"
	"ticketsim/internal/domain/passport"
	"ticketsim/internal/domain/run"
	"ticketsim/internal/domain/ticket"
)

type fakeTx struct {
	calls int
}

func (f *fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeLocker struct {
	held     bool
	acquired int
	released int
}

func (l *fakeLocker) Acquire(_ context.Context, _ string, _ time.Duration) (string, bool, error) {
	if l.held {
		return "", false, nil
	}
	l.held = true
	l.acquired++
	return "token", true, nil
}

func (l *fakeLocker) Release(_ context.Context, _, token string) error {
	if token != "token" {
		return errors.New("wrong token")
	}
	l.held = false
	l.released++
	return nil
}

type fakeFlights struct {
	flights []flight.Flight
	err     error
}

func (f fakeFlights) ListForSimulation(context.Context) ([]flight.Flight, error) {
	return f.flights, f.err
}

type fakePassports []passport.Passport

func (f fakePassports) List(context.Context) ([]passport.Passport, error) {
	return f, nil
}

type fakeTickets struct {
	written   []ticket.Ticket
	chunkSize int
	err       error
}

func (f *fakeTickets) Upsert(_ context.Context, tickets []ticket.Ticket, chunkSize int) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.written = append(f.written, tickets...)
	f.chunkSize = chunkSize
	return len(tickets), nil
}

type fakeRuns struct {
	runs map[string]run.Run
}

func newFakeRuns() *fakeRuns {
	return &fakeRuns{runs: map[string]run.Run{}}
}

func (f *fakeRuns) Create(_ context.Context, r *run.Run) error {
	f.runs[r.ID] = *r
	return nil
}

func (f *fakeRuns) Finish(_ context.Context, r *run.Run) error {
	if _, ok := f.runs[r.ID]; !ok {
		return run.ErrRunNotFound
	}
	f.runs[r.ID] = *r
	return nil
}

func (f *fakeRuns) GetByID(_ context.Context, id string) (*run.Run, error) {
	r, ok := f.runs[id]
	if !ok {
		return nil, run.ErrRunNotFound
	}
	return &r, nil
}

type fakeOutbox struct {
	events []*outbox.Event
}

func (f *fakeOutbox) Create(_ context.Context, e *outbox.Event) error {
	f.events = append(f.events, e)
	return nil
}
