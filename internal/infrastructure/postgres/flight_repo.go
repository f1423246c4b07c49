package postgres

import (
	"context"
	"fmt"
	"time"

	"ticketsim/internal/domain/flight"

	"github.com/jackc/pgx/v5/pgxpool"
)

type FlightRepository struct {
	pool *pgxpool.Pool
}

func NewFlightRepository(pool *pgxpool.Pool) *FlightRepository {
	return &FlightRepository{pool: pool}
}

// ListForSimulation returns every flight with the seat capacity of its
// aircraft model, ordered by local departure time.
func (r *FlightRepository) ListForSimulation(ctx context.Context) ([]flight.Flight, error) {
	const sql = `
		SELECT
			fl.transaction_id,
			fl.status,
			fl.scheduled_local,
			am.seats
		FROM flights fl
		JOIN aircraft_models am ON am.aircraft_model = fl.aircraft_model
		ORDER BY fl.scheduled_local ASC, fl.transaction_id ASC
	`

	rows, err := conn(ctx, r.pool).Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("query flights: %w", err)
	}
	defer rows.Close()

	var flights []flight.Flight
	for rows.Next() {
		var (
			id        string
			status    *string
			scheduled *time.Time
			seats     *int64
		)
		if err := rows.Scan(&id, &status, &scheduled, &seats); err != nil {
			return nil, fmt.Errorf("scan flight: %w", err)
		}

		f, err := flightFromRow(id, status, scheduled, seats)
		if err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flights: %w", err)
	}

	return flights, nil
}

func flightFromRow(id string, status *string, scheduled *time.Time, seats *int64) (flight.Flight, error) {
	switch {
	case status == nil:
		return flight.Flight{}, fmt.Errorf("%w: %s: missing status", flight.ErrInvalidFlight, id)
	case scheduled == nil:
		return flight.Flight{}, fmt.Errorf("%w: %s: missing scheduled_local", flight.ErrInvalidFlight, id)
	case seats == nil:
		return flight.Flight{}, fmt.Errorf("%w: %s: missing seats", flight.ErrInvalidFlight, id)
	}

	f := flight.Flight{
		TransactionID:  id,
		Status:         *status,
		ScheduledLocal: *scheduled,
		Seats:          int(*seats),
	}
	return f, f.Validate()
}
