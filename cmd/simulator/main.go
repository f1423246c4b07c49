package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"ticketsim/internal/application/factories/infrastructure"
	"ticketsim/internal/config"
	"ticketsim/internal/pipeline"
	"ticketsim/internal/usecase"

	"github.com/spf13/pflag"
)

func main() {
	flags := pflag.NewFlagSet("simulator", pflag.ExitOnError)
	configPath := flags.StringP("config", "c", "config.yaml", "path to config file")
	cooldown := flags.Int("cooldown", 0, "minimum days between two flights of one passenger")
	forceFill := flags.Bool("force-fill", false, "fill remaining seats ignoring the cooldown")
	seed := flags.Uint64("seed", 0, "random seed, 0 derives one from the clock")
	createTables := flags.Bool("create-tables", false, "create the tickets table when missing")
	flags.Parse(os.Args[1:])

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger = cfg.Log.Logger()
	slog.SetDefault(logger)

	if *createTables {
		cfg.Simulation.CreateTables = true
	}

	params := usecase.RunSimulationParams{Trigger: "cli"}
	if flags.Changed("cooldown") {
		params.CooldownDays = cooldown
	}
	if flags.Changed("force-fill") {
		params.ForceFill = forceFill
	}
	if flags.Changed("seed") {
		params.Seed = seed
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	infraFactory := infrastructure.NewFactory(cfg)
	defer infraFactory.Close()

	steps := []pipeline.Step{
		{Name: "Ensure Tables", Run: infraFactory.EnsureTables},
		{Name: "Simulate Tickets", Run: func(ctx context.Context) error {
			runner, err := infraFactory.RunSimulation(ctx)
			if err != nil {
				return err
			}
			r, err := runner.Execute(ctx, params)
			if err != nil {
				return err
			}
			logger.Info("run recorded", "run_id", r.ID, "tickets", r.Tickets, "seed", r.Seed)
			return nil
		}},
	}

	if err := pipeline.Run(ctx, logger, steps); err != nil {
		logger.Error("pipeline finished with errors", "error", err)
		os.Exit(1)
	}
	logger.Info("pipeline finished")
}
