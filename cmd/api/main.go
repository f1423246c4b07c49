package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ticketsim/internal/api"
	"ticketsim/internal/application/factories/infrastructure"
	"ticketsim/internal/config"
	"ticketsim/internal/infrastructure/postgres"
	"ticketsim/internal/usecase"
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

	infraFactory := infrastructure.NewFactory(cfg)
	defer infraFactory.Close()

	pgPool, err := infraFactory.Postgres(ctx)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	redisClient, err := infraFactory.Redis(ctx)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if err := infraFactory.EnsureTables(ctx); err != nil {
		logger.Error("failed to ensure tables", "error", err)
		os.Exit(1)
	}

	runSimulationUC, err := infraFactory.RunSimulation(ctx)
	if err != nil {
		logger.Error("failed to build simulation", "error", err)
		os.Exit(1)
	}
	getRunUC := usecase.NewGetRun(redisClient, postgres.NewRunRepository(pgPool))
	listTicketsUC := usecase.NewListFlightTickets(postgres.NewTicketRepository(pgPool))

	handlers := api.NewHandlers(runSimulationUC, getRunUC, listTicketsUC)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTP.Port,
		Handler: api.NewRouter(handlers, redisClient),
	}

	go func() {
		logger.Info("server starting", "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server exiting")
}
