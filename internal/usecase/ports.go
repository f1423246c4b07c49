package usecase

import (
	"context"
	"time"

	"ticketsim/internal/domain/flight"
	"ticketsim/internal/domain/outbox"
	"ticketsim/internal/domain/passport"
	"ticketsim/internal/domain/run"
	"ticketsim/internal/domain/ticket"
)

type FlightReader interface {
	ListForSimulation(ctx context.Context) ([]flight.Flight, error)
}

type PassportReader interface {
	List(ctx context.Context) ([]passport.Passport, error)
}

type TicketWriter interface {
	Upsert(ctx context.Context, tickets []ticket.Ticket, chunkSize int) (int, error)
}

type TicketReader interface {
	ListByTransactionID(ctx context.Context, transactionID string) ([]ticket.Ticket, error)
}

type RunStore interface {
	Create(ctx context.Context, r *run.Run) error
	Finish(ctx context.Context, r *run.Run) error
	GetByID(ctx context.Context, id string) (*run.Run, error)
}

type OutboxWriter interface {
	Create(ctx context.Context, e *outbox.Event) error
}

type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}
