package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ticketsim/internal/domain/run"
	"ticketsim/internal/usecase"

	"github.com/go-co-op/gocron/v2"
)

type Runner interface {
	Execute(ctx context.Context, params usecase.RunSimulationParams) (*run.Run, error)
}

// Scheduler triggers simulation runs on a cron schedule.
type Scheduler struct {
	cron   gocron.Scheduler
	runner Runner
	logger *slog.Logger
}

// New registers one cron job. Overlapping ticks are rescheduled rather than
// queued; the run lock still guards against runs started elsewhere.
func New(ctx context.Context, crontab string, runner Runner) (*Scheduler, error) {
	cron, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	s := &Scheduler{
		cron:   cron,
		runner: runner,
		logger: slog.Default().With("component", "scheduler"),
	}

	_, err = cron.NewJob(
		gocron.CronJob(crontab, false),
		gocron.NewTask(func() { s.trigger(ctx) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("simulate-tickets"),
	)
	if err != nil {
		cron.Shutdown()
		return nil, fmt.Errorf("schedule %q: %w", crontab, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Shutdown() error {
	return s.cron.Shutdown()
}

func (s *Scheduler) trigger(ctx context.Context) {
	r, err := s.runner.Execute(ctx, usecase.RunSimulationParams{Trigger: "schedule"})
	switch {
	case errors.Is(err, run.ErrRunInProgress):
		s.logger.Info("scheduled run skipped, another run is active")
	case err != nil:
		s.logger.Error("scheduled run failed", "error", err)
	default:
		s.logger.Info("scheduled run finished", "run_id", r.ID, "tickets", r.Tickets)
	}
}
