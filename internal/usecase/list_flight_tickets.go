package usecase

import (
	"context"
	"fmt"

	"ticketsim/internal/domain/ticket"
)

type ListFlightTickets struct {
	tickets TicketReader
}

func NewListFlightTickets(tickets TicketReader) *ListFlightTickets {
	return &ListFlightTickets{tickets: tickets}
}

func (uc *ListFlightTickets) Execute(ctx context.Context, transactionID string) ([]ticket.Ticket, error) {
	tickets, err := uc.tickets.ListByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	if tickets == nil {
		tickets = []ticket.Ticket{}
	}
	return tickets, nil
}
