package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ticketsim/internal/application/factories/infrastructure"
	"ticketsim/internal/config"
	"ticketsim/internal/infrastructure/kafka"
	"ticketsim/internal/infrastructure/postgres"
	"ticketsim/internal/scheduler"
	"ticketsim/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.New()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger = cfg.Log.Logger()
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		logger.Info("worker metrics listening", "port", cfg.HTTP.MetricsPort)
		if err := http.ListenAndServe(":"+cfg.HTTP.MetricsPort, mux); err != nil {
			logger.Error("metrics server stopped", "error", err)
		}
	}()

	infraFactory := infrastructure.NewFactory(cfg)
	defer infraFactory.Close()

	pgPool, err := infraFactory.Postgres(ctx)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}

	outboxRepo := postgres.NewOutboxRepository(pgPool)

	kafkaProd := kafka.NewProducer(kafka.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
	})
	defer kafkaProd.Close()

	if cfg.Simulation.Schedule != "" {
		if err := infraFactory.EnsureTables(ctx); err != nil {
			logger.Error("failed to ensure tables", "error", err)
			os.Exit(1)
		}
		runner, err := infraFactory.RunSimulation(ctx)
		if err != nil {
			logger.Error("failed to build simulation", "error", err)
			os.Exit(1)
		}
		sched, err := scheduler.New(ctx, cfg.Simulation.Schedule, runner)
		if err != nil {
			logger.Error("failed to schedule simulation", "error", err)
			os.Exit(1)
		}
		sched.Start()
		defer sched.Shutdown()
		logger.Info("simulation scheduled", "schedule", cfg.Simulation.Schedule)
	}

	w := worker.NewOutboxPoller(outboxRepo, kafkaProd, cfg.Worker.PollInterval, cfg.Worker.BatchSize)

	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("worker stopped with error", "error", err)
	}

	logger.Info("worker exited")
}
