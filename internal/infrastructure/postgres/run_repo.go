package postgres

import (
	"context"
	"errors"
	"fmt"

	"ticketsim/internal/domain/run"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const runColumns = `
	id, status, triggered_by, cooldown_days, force_fill, seed,
	flights, tickets, underfilled_flights, forced_seats,
	COALESCE(error, ''), created_at, finished_at
`

type RunRepository struct {
	pool *pgxpool.Pool
}

func NewRunRepository(pool *pgxpool.Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

func (r *RunRepository) Create(ctx context.Context, rn *run.Run) error {
	const sql = `
		INSERT INTO simulation_runs (
			id, status, triggered_by, cooldown_days, force_fill, seed,
			flights, tickets, underfilled_flights, forced_seats, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, 0, 0, 0, 0, $7)
	`

	// seed is stored bit-for-bit in a signed BIGINT
	_, err := conn(ctx, r.pool).Exec(ctx, sql,
		rn.ID, rn.Status, rn.Trigger, rn.CooldownDays, rn.ForceFill, int64(rn.Seed), rn.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Finish stores the terminal status, counters and error of a run.
func (r *RunRepository) Finish(ctx context.Context, rn *run.Run) error {
	const sql = `
		UPDATE simulation_runs
		SET status = $2,
		    flights = $3,
		    tickets = $4,
		    underfilled_flights = $5,
		    forced_seats = $6,
		    error = NULLIF($7, ''),
		    finished_at = $8
		WHERE id = $1
	`

	tag, err := conn(ctx, r.pool).Exec(ctx, sql,
		rn.ID, rn.Status, rn.Flights, rn.Tickets, rn.UnderfilledFlights, rn.ForcedSeats, rn.Error, rn.FinishedAt)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return run.ErrRunNotFound
	}
	return nil
}

func (r *RunRepository) GetByID(ctx context.Context, id string) (*run.Run, error) {
	sql := `SELECT ` + runColumns + ` FROM simulation_runs WHERE id = $1`

	rn, err := scanRun(conn(ctx, r.pool).QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, run.ErrRunNotFound
		}
		return nil, fmt.Errorf("get run by id: %w", err)
	}
	return rn, nil
}

func (r *RunRepository) ListRecent(ctx context.Context, limit int) ([]*run.Run, error) {
	sql := `SELECT ` + runColumns + ` FROM simulation_runs ORDER BY created_at DESC LIMIT $1`

	rows, err := conn(ctx, r.pool).Query(ctx, sql, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*run.Run
	for rows.Next() {
		rn, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, rn)
	}
	return runs, rows.Err()
}

func scanRun(row pgx.Row) (*run.Run, error) {
	var (
		rn   run.Run
		seed int64
	)
	err := row.Scan(&rn.ID, &rn.Status, &rn.Trigger, &rn.CooldownDays, &rn.ForceFill, &seed,
		&rn.Flights, &rn.Tickets, &rn.UnderfilledFlights, &rn.ForcedSeats,
		&rn.Error, &rn.CreatedAt, &rn.FinishedAt)
	if err != nil {
		return nil, err
	}
	rn.Seed = uint64(seed)
	return &rn, nil
}
