package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	domainEvent "ticketsim/internal/domain/event"
	"ticketsim/internal/domain/run"
	"ticketsim/internal/infrastructure/postgres"
	"ticketsim/internal/usecase"
)

type Inbox interface {
	SaveIfNotExists(ctx context.Context, consumer string, eventID string, eventType string, correlationID string) (bool, error)
}

type Simulator interface {
	Execute(ctx context.Context, params usecase.RunSimulationParams) (*run.Run, error)
}

// Handler starts a simulation for every FlightsUpserted event, at most once
// per event id.
type Handler struct {
	name      string
	txManager postgres.Transactor
	inbox     Inbox
	simulator Simulator
	logger    *slog.Logger
}

func NewHandler(name string, txManager postgres.Transactor, inbox Inbox, simulator Simulator) *Handler {
	return &Handler{
		name:      name,
		txManager: txManager,
		inbox:     inbox,
		simulator: simulator,
		logger:    slog.Default().With("consumer", name),
	}
}

// Handle processes one raw Kafka message value. A nil error means the
// message can be committed; undecodable and unrelated messages are skipped.
// The inbox row commits only after the simulation succeeds, so a failed run
// is retried on redelivery.
func (h *Handler) Handle(ctx context.Context, value []byte) error {
	var ev domainEvent.Message
	if err := json.Unmarshal(value, &ev); err != nil {
		h.logger.Error("failed to unmarshal event envelope", "error", err)
		return nil
	}
	if ev.Type != domainEvent.TypeFlightsUpserted {
		return nil
	}

	var p domainEvent.FlightsUpserted
	if len(ev.Payload) > 0 && string(ev.Payload) != "null" {
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			h.logger.Error("invalid FlightsUpserted payload, skipping", "event_id", ev.ID, "error", err)
			return nil
		}
	}

	h.logger.Info("received event", "type", ev.Type, "event_id", ev.ID, "correlation_id", ev.CorrelationID)

	return h.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		isNew, err := h.inbox.SaveIfNotExists(txCtx, h.name, ev.ID, ev.Type, ev.CorrelationID)
		if err != nil {
			return fmt.Errorf("inbox save: %w", err)
		}
		if !isNew {
			h.logger.Info("duplicate event skipped", "event_id", ev.ID)
			return nil
		}

		// the run manages its own transaction
		r, err := h.simulator.Execute(ctx, usecase.RunSimulationParams{
			Trigger:      "kafka:" + ev.ID,
			CooldownDays: p.CooldownDays,
			ForceFill:    p.ForceFill,
			Seed:         p.Seed,
			CausationID:  ev.ID,
		})
		if errors.Is(err, usecase.ErrInvalidParams) {
			// retrying cannot fix the payload; the inbox row records it as handled
			h.logger.Error("invalid FlightsUpserted parameters, skipping", "event_id", ev.ID, "error", err)
			return nil
		}
		if err != nil {
			return fmt.Errorf("run simulation: %w", err)
		}

		h.logger.Info("simulation completed", "event_id", ev.ID, "run_id", r.ID, "tickets", r.Tickets)
		return nil
	})
}
