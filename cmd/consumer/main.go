package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ticketsim/internal/application/factories/infrastructure"
	"ticketsim/internal/config"
	"ticketsim/internal/consumer"
	"ticketsim/internal/infrastructure/kafka"
	"ticketsim/internal/infrastructure/postgres"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	consumerName = "ticket-simulator"
	maxRetries   = 5
)

var (
	messagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ticketsim_consumer_messages_total",
		Help: "Kafka messages handled by the trigger consumer, by outcome",
	}, []string{"outcome"})
	processingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ticketsim_consumer_processing_duration_seconds",
		Help:    "Time taken to handle one trigger message",
		Buckets: []float64{0.1, 0.5, 1, 5, 30, 120, 300},
	})
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
		logger.Info("consumer metrics listening", "port", cfg.HTTP.MetricsPort)
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
	if err := infraFactory.EnsureTables(ctx); err != nil {
		logger.Error("failed to ensure tables", "error", err)
		os.Exit(1)
	}
	runner, err := infraFactory.RunSimulation(ctx)
	if err != nil {
		logger.Error("failed to build simulation", "error", err)
		os.Exit(1)
	}

	handler := consumer.NewHandler(consumerName, postgres.NewTxManager(pgPool), postgres.NewInboxRepository(pgPool), runner)

	kafkaConsumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, cfg.Kafka.StartOffset)
	defer kafkaConsumer.Close()

	logger.Info("trigger consumer started", "consumer", consumerName, "group_id", cfg.Kafka.GroupID, "topic", cfg.Kafka.Topic)

	for {
		msg, err := kafkaConsumer.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			logger.Error("failed to fetch message", "error", err)
			time.Sleep(1 * time.Second)
			continue
		}

		for attempt := 0; attempt <= maxRetries; attempt++ {
			if attempt > 0 {
				backoff := time.Duration(1<<attempt) * time.Second
				logger.Info("retry attempt", "attempt", attempt, "max", maxRetries, "backoff", backoff)
				select {
				case <-ctx.Done():
					return
				case <-time.After(backoff):
				}
			}

			started := time.Now()
			processErr := handler.Handle(ctx, msg.Value)
			processingDuration.Observe(time.Since(started).Seconds())

			if processErr == nil {
				messagesProcessed.WithLabelValues("ok").Inc()
				if err := kafkaConsumer.CommitMessages(ctx, msg); err != nil {
					logger.Error("failed to commit kafka message", "error", err)
				}
				break
			}

			logger.Error("processing failed", "error", processErr, "offset", msg.Offset)
			if attempt == maxRetries {
				messagesProcessed.WithLabelValues("dropped").Inc()
				logger.Error("DLQ: dropping message after retries", "retries", maxRetries, "error", processErr)
				if err := kafkaConsumer.CommitMessages(ctx, msg); err != nil {
					logger.Error("failed to commit drop to kafka", "error", err)
				}
			}
		}
	}

	logger.Info("consumer exited")
}
