package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ticketsim/internal/config"
	"ticketsim/internal/domain/event"
	"ticketsim/internal/domain/outbox"
	"ticketsim/internal/domain/run"
	"ticketsim/internal/domain/ticket"
	"ticketsim/internal/infrastructure/postgres"
	"ticketsim/internal/simulation"

	"github.com/google/uuid"
)

var ErrInvalidParams = errors.New("invalid simulation parameters")

const (
	runLockKey = "ticketsim:simulation:lock"
	producer   = "ticket-simulator"
)

type RunSimulation struct {
	cfg        config.Simulation
	txManager  postgres.Transactor
	locker     Locker
	flights    FlightReader
	passports  PassportReader
	tickets    TicketWriter
	runs       RunStore
	outboxRepo OutboxWriter
	now        func() time.Time
}

func NewRunSimulation(
	cfg config.Simulation,
	txManager postgres.Transactor,
	locker Locker,
	flights FlightReader,
	passports PassportReader,
	tickets TicketWriter,
	runs RunStore,
	outboxRepo OutboxWriter,
) *RunSimulation {
	return &RunSimulation{
		cfg:        cfg,
		txManager:  txManager,
		locker:     locker,
		flights:    flights,
		passports:  passports,
		tickets:    tickets,
		runs:       runs,
		outboxRepo: outboxRepo,
		now:        time.Now,
	}
}

// RunSimulationParams overrides configured simulation settings when set.
type RunSimulationParams struct {
	Trigger      string  `json:"trigger"`
	CooldownDays *int    `json:"cooldown_days,omitempty"`
	ForceFill    *bool   `json:"force_fill,omitempty"`
	Seed         *uint64 `json:"seed,omitempty"`
	CausationID  string  `json:"-"`
}

func (uc *RunSimulation) resolve(params RunSimulationParams) (simulation.Config, uint64, error) {
	cfg := simulation.Config{
		CooldownDays: uc.cfg.CooldownDays,
		ForceFill:    uc.cfg.ForceFill,
	}
	if params.CooldownDays != nil {
		if *params.CooldownDays < 0 || *params.CooldownDays > simulation.MaxCooldownDays {
			return cfg, 0, fmt.Errorf("%w: cooldown_days must be within [0, %d], got %d",
				ErrInvalidParams, simulation.MaxCooldownDays, *params.CooldownDays)
		}
		cfg.CooldownDays = *params.CooldownDays
	}
	if params.ForceFill != nil {
		cfg.ForceFill = *params.ForceFill
	}

	seed := uc.cfg.Seed
	if params.Seed != nil {
		seed = *params.Seed
	}
	if seed == 0 {
		seed = uint64(uc.now().UnixNano())
	}
	return cfg, seed, nil
}

// Execute simulates tickets for every known flight and upserts them. Only one
// run may be active at a time; a concurrent call fails with
// run.ErrRunInProgress. The tickets, the run record and a TicketsSimulated
// outbox event are committed together.
func (uc *RunSimulation) Execute(ctx context.Context, params RunSimulationParams) (*run.Run, error) {
	simCfg, seed, err := uc.resolve(params)
	if err != nil {
		return nil, err
	}

	token, ok, err := uc.locker.Acquire(ctx, runLockKey, uc.cfg.LockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, run.ErrRunInProgress
	}
	defer func() {
		if err := uc.locker.Release(context.WithoutCancel(ctx), runLockKey, token); err != nil {
			slog.Warn("failed to release simulation lock", "error", err)
		}
	}()

	started := uc.now()
	r := &run.Run{
		ID:           uuid.New().String(),
		Status:       run.StatusRunning,
		Trigger:      params.Trigger,
		CooldownDays: simCfg.CooldownDays,
		ForceFill:    simCfg.ForceFill,
		Seed:         seed,
		CreatedAt:    started,
	}
	if err := uc.runs.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}

	logger := slog.With("run_id", r.ID)
	logger.Info("simulation started", "trigger", r.Trigger, "config", simCfg.String(), "seed", seed)

	if err := uc.simulate(ctx, r, simCfg, params.CausationID); err != nil {
		uc.fail(ctx, r, err)
		logger.Error("simulation failed", "error", err)
		return r, err
	}

	runsTotal.WithLabelValues(run.StatusFinished).Inc()
	runDuration.Observe(uc.now().Sub(started).Seconds())
	logger.Info("simulation finished",
		"flights", r.Flights, "tickets", r.Tickets,
		"underfilled_flights", r.UnderfilledFlights, "forced_seats", r.ForcedSeats)
	return r, nil
}

func (uc *RunSimulation) simulate(ctx context.Context, r *run.Run, simCfg simulation.Config, causationID string) error {
	passports, err := uc.passports.List(ctx)
	if err != nil {
		return fmt.Errorf("load passports: %w", err)
	}
	flights, err := uc.flights.ListForSimulation(ctx)
	if err != nil {
		return fmt.Errorf("load flights: %w", err)
	}

	engine := simulation.NewEngine(simulation.NewSource(r.Seed), simCfg)
	res, err := engine.Run(flights, passports)
	if err != nil {
		return fmt.Errorf("simulate tickets: %w", err)
	}
	tickets := ticket.Dedup(res.Tickets)

	for _, o := range res.Flights {
		if o.Underfilled() {
			slog.Debug("flight under-filled",
				"run_id", r.ID, "transaction_id", o.TransactionID,
				"seats_sold", o.SeatsSold, "assigned", o.Assigned(), "attempts", o.Attempts)
		}
	}

	finished := uc.now()
	r.Status = run.StatusFinished
	r.Flights = len(res.Flights)
	r.Tickets = len(tickets)
	r.UnderfilledFlights = res.Underfilled()
	r.ForcedSeats = res.ForcedSeats()
	r.FinishedAt = &finished

	evt, err := outbox.NewEvent(event.TypeTicketsSimulated, event.TicketsSimulated{
		RunID:              r.ID,
		Flights:            r.Flights,
		Tickets:            r.Tickets,
		UnderfilledFlights: r.UnderfilledFlights,
		ForcedSeats:        r.ForcedSeats,
	}, r.ID, causationID, producer, finished)
	if err != nil {
		return err
	}

	err = uc.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if _, err := uc.tickets.Upsert(txCtx, tickets, uc.cfg.ChunkSize); err != nil {
			return err
		}
		if err := uc.runs.Finish(txCtx, r); err != nil {
			return err
		}
		return uc.outboxRepo.Create(txCtx, evt)
	})
	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}

	flightsSimulated.Add(float64(r.Flights))
	ticketsGenerated.Add(float64(r.Tickets))
	underfilledFlights.Add(float64(r.UnderfilledFlights))
	forcedSeats.Add(float64(r.ForcedSeats))
	return nil
}

func (uc *RunSimulation) fail(ctx context.Context, r *run.Run, cause error) {
	finished := uc.now()
	r.Status = run.StatusFailed
	r.Flights, r.Tickets, r.UnderfilledFlights, r.ForcedSeats = 0, 0, 0, 0
	r.Error = cause.Error()
	r.FinishedAt = &finished
	runsTotal.WithLabelValues(run.StatusFailed).Inc()

	if err := uc.runs.Finish(context.WithoutCancel(ctx), r); err != nil {
		slog.Error("failed to record run failure", "run_id", r.ID, "error", err)
	}
}
