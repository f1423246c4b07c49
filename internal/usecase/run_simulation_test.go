package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ticketsim/internal/config"
	"ticketsim/internal/domain/event"
	"ticketsim/internal/domain/flight"
	"ticketsim/internal/domain/passport"
	"ticketsim/internal/domain/run"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type harness struct {
	uc      *RunSimulation
	tx      *fakeTx
	locker  *fakeLocker
	tickets *fakeTickets
	runs    *fakeRuns
	outbox  *fakeOutbox
}

var now = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

func newHarness(flights fakeFlights) *harness {
	h := &harness{
		tx:      &fakeTx{},
		locker:  &fakeLocker{},
		tickets: &fakeTickets{},
		runs:    newFakeRuns(),
		outbox:  &fakeOutbox{},
	}
	cfg := config.Simulation{CooldownDays: 2, ChunkSize: 100, LockTTL: time.Minute, Seed: 99}
	pp := fakePassports{}
	for _, n := range []string{"P1", "P2", "P3", "P4", "P5", "P6", "P7", "P8"} {
		pp = append(pp, passport.Passport{Number: n})
	}
	h.uc = NewRunSimulation(cfg, h.tx, h.locker, flights, pp, h.tickets, h.runs, h.outbox)
	h.uc.now = func() time.Time { return now }
	return h
}

func sampleFlights() fakeFlights {
	at := time.Date(2025, 7, 7, 8, 0, 0, 0, time.UTC)
	return fakeFlights{flights: []flight.Flight{
		{TransactionID: "TX1", Status: "Departed", ScheduledLocal: at, Seats: 6},
		{TransactionID: "TX2", Status: "Scheduled", ScheduledLocal: at.Add(72 * time.Hour), Seats: 6},
	}}
}

func TestRunSimulationPersistsTicketsRunAndEvent(t *testing.T) {
	h := newHarness(sampleFlights())

	r, err := h.uc.Execute(context.Background(), RunSimulationParams{Trigger: "test"})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if r.Status != run.StatusFinished || r.Flights != 2 || r.Seed != 99 {
		t.Fatalf("unexpected run %+v", r)
	}
	if r.Tickets != len(h.tickets.written) || r.Tickets == 0 {
		t.Fatalf("run reports %d tickets, %d written", r.Tickets, len(h.tickets.written))
	}
	if h.tickets.chunkSize != 100 {
		t.Fatalf("expected configured chunk size, got %d", h.tickets.chunkSize)
	}
	if stored := h.runs.runs[r.ID]; stored.Status != run.StatusFinished || stored.FinishedAt == nil {
		t.Fatalf("stored run not finished: %+v", stored)
	}

	if len(h.outbox.events) != 1 {
		t.Fatalf("expected one outbox event, got %d", len(h.outbox.events))
	}
	ev := h.outbox.events[0]
	if ev.EventType != event.TypeTicketsSimulated || ev.CorrelationID != r.ID {
		t.Fatalf("unexpected outbox event %+v", ev)
	}
	var payload event.TicketsSimulated
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Tickets != r.Tickets || payload.RunID != r.ID {
		t.Fatalf("payload %+v does not match run %+v", payload, r)
	}

	if h.tx.calls != 1 || h.locker.released != 1 || h.locker.held {
		t.Fatalf("expected one transaction and a released lock: tx=%d released=%d", h.tx.calls, h.locker.released)
	}
}

func TestRunSimulationRejectsConcurrentRun(t *testing.T) {
	h := newHarness(sampleFlights())
	h.locker.held = true

	_, err := h.uc.Execute(context.Background(), RunSimulationParams{})
	if !errors.Is(err, run.ErrRunInProgress) {
		t.Fatalf("expected ErrRunInProgress, got %v", err)
	}
	if len(h.runs.runs) != 0 {
		t.Fatalf("no run should be recorded while locked")
	}
}

func TestRunSimulationRecordsInputFailure(t *testing.T) {
	h := newHarness(fakeFlights{flights: []flight.Flight{{TransactionID: "TX1", Status: "departed", Seats: 10}}})

	r, err := h.uc.Execute(context.Background(), RunSimulationParams{})
	if !errors.Is(err, flight.ErrInvalidFlight) {
		t.Fatalf("expected ErrInvalidFlight, got %v", err)
	}
	if stored := h.runs.runs[r.ID]; stored.Status != run.StatusFailed || stored.Error == "" {
		t.Fatalf("expected failed run with error, got %+v", stored)
	}
	if len(h.tickets.written) != 0 || len(h.outbox.events) != 0 {
		t.Fatalf("nothing should be written on failure")
	}
	if h.locker.held {
		t.Fatalf("lock must be released after a failure")
	}
}

func TestRunSimulationRecordsPersistenceFailure(t *testing.T) {
	h := newHarness(sampleFlights())
	h.tickets.err = errors.New("connection reset")

	r, err := h.uc.Execute(context.Background(), RunSimulationParams{})
	if err == nil {
		t.Fatal("expected error from ticket upsert")
	}
	stored := h.runs.runs[r.ID]
	if stored.Status != run.StatusFailed || stored.Tickets != 0 {
		t.Fatalf("expected failed run with zero counters, got %+v", stored)
	}
}

func TestRunSimulationParams(t *testing.T) {
	h := newHarness(sampleFlights())

	for _, bad := range []int{-1, 200000} {
		if _, err := h.uc.Execute(context.Background(), RunSimulationParams{CooldownDays: &bad}); !errors.Is(err, ErrInvalidParams) {
			t.Fatalf("cooldown %d: expected ErrInvalidParams, got %v", bad, err)
		}
	}
	if h.locker.acquired != 0 {
		t.Fatal("lock taken for rejected params")
	}

	cooldown, force, seed := 5, true, uint64(0)
	h.uc.cfg.Seed = 0
	r, err := h.uc.Execute(context.Background(), RunSimulationParams{CooldownDays: &cooldown, ForceFill: &force, Seed: &seed})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if r.CooldownDays != 5 || !r.ForceFill {
		t.Fatalf("overrides not applied: %+v", r)
	}
	if r.Seed != uint64(now.UnixNano()) {
		t.Fatalf("expected time-derived seed, got %d", r.Seed)
	}
}

func TestRunSimulationIsReproducibleForSeed(t *testing.T) {
	first := newHarness(sampleFlights())
	second := newHarness(sampleFlights())

	if _, err := first.uc.Execute(context.Background(), RunSimulationParams{}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if _, err := second.uc.Execute(context.Background(), RunSimulationParams{}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if len(first.tickets.written) != len(second.tickets.written) {
		t.Fatalf("ticket counts differ: %d vs %d", len(first.tickets.written), len(second.tickets.written))
	}
	for i := range first.tickets.written {
		a, b := first.tickets.written[i], second.tickets.written[i]
		if a.UniqueID != b.UniqueID || a.PassportNumber != b.PassportNumber || !a.CheckinTime.Equal(b.CheckinTime) {
			t.Fatalf("ticket %d differs: %+v vs %+v", i, a, b)
		}
	}
}

func TestGetRunWithoutCache(t *testing.T) {
	runs := newFakeRuns()
	runs.runs["r1"] = run.Run{ID: "r1", Status: run.StatusFinished}
	uc := NewGetRun(nil, runs)

	r, err := uc.Execute(context.Background(), "r1")
	if err != nil || r.ID != "r1" {
		t.Fatalf("unexpected result %+v, %v", r, err)
	}
	if _, err := uc.Execute(context.Background(), "missing"); !errors.Is(err, run.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestGetRunCachesOnlyTerminalRuns(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	runs := newFakeRuns()
	runs.runs["done"] = run.Run{ID: "done", Status: run.StatusFinished, Tickets: 7}
	runs.runs["busy"] = run.Run{ID: "busy", Status: run.StatusRunning}
	uc := NewGetRun(client, runs)
	ctx := context.Background()

	for _, id := range []string{"done", "busy"} {
		if _, err := uc.Execute(ctx, id); err != nil {
			t.Fatalf("Execute(%s): %v", id, err)
		}
	}
	if !mr.Exists("ticketsim:run:done") {
		t.Fatal("finished run not cached")
	}
	if mr.Exists("ticketsim:run:busy") {
		t.Fatal("running run cached")
	}

	// served from cache once the store changes underneath
	delete(runs.runs, "done")
	r, err := uc.Execute(ctx, "done")
	if err != nil || r.Tickets != 7 || r.Status != run.StatusFinished {
		t.Fatalf("cached lookup = %+v, %v", r, err)
	}

	runs.runs["busy"] = run.Run{ID: "busy", Status: run.StatusFinished}
	r, err = uc.Execute(ctx, "busy")
	if err != nil || r.Status != run.StatusFinished {
		t.Fatalf("running run served stale: %+v, %v", r, err)
	}
}
