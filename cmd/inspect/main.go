package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"ticketsim/internal/config"
	"ticketsim/internal/infrastructure/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/pflag"
)

func main() {
	fix := pflag.Bool("fix", false, "reset processing outbox events to new")
	limit := pflag.Int("limit", 5, "rows to show per table")
	correlation := pflag.String("correlation", "", "show outbox and inbox events for one run or upstream correlation id")
	pflag.Parse()

	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewClient(ctx, postgres.Config{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		DBName:   cfg.Postgres.DBName,
		Schema:   cfg.Postgres.Schema,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if *fix {
		tag, err := pool.Exec(ctx, "UPDATE outbox SET status = 'new' WHERE status = 'processing'")
		if err != nil {
			fmt.Printf("Fix failed: %v\n", err)
		} else {
			fmt.Printf("Fixed %d events\n", tag.RowsAffected())
		}
	}

	if *correlation != "" {
		printCorrelation(ctx, pool, *correlation)
		return
	}

	fmt.Println("--- Runs ---")
	runs, err := postgres.NewRunRepository(pool).ListRecent(ctx, *limit)
	if err != nil {
		fmt.Printf("List runs failed: %v\n", err)
	}
	for _, r := range runs {
		fmt.Printf("ID: %s | Status: %s | Trigger: %s | Flights: %d | Tickets: %d | Underfilled: %d | Forced: %d | Seed: %d\n",
			r.ID, r.Status, r.Trigger, r.Flights, r.Tickets, r.UnderfilledFlights, r.ForcedSeats, r.Seed)
	}

	fmt.Println("\n--- Outbox ---")
	events, err := postgres.NewOutboxRepository(pool).ListRecent(ctx, *limit)
	if err != nil {
		fmt.Printf("List outbox failed: %v\n", err)
	}
	for _, e := range events {
		fmt.Printf("ID: %s | Status: %s | Type: %s | Correlation: %s\n", e.ID, e.Status, e.EventType, e.CorrelationID)
	}

	fmt.Println("\n--- Tickets per flight (top) ---")
	rows, err := pool.Query(ctx,
		"SELECT transaction_id, count(*) FROM tickets GROUP BY transaction_id ORDER BY count(*) DESC LIMIT $1", *limit)
	if err != nil {
		fmt.Printf("Ticket summary failed: %v\n", err)
		return
	}
	counts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (string, error) {
		var tx string
		var n int64
		if err := row.Scan(&tx, &n); err != nil {
			return "", err
		}
		return fmt.Sprintf("Flight: %s | Tickets: %d", tx, n), nil
	})
	if err != nil {
		fmt.Printf("Ticket summary failed: %v\n", err)
		return
	}
	for _, line := range counts {
		fmt.Println(line)
	}
}

func printCorrelation(ctx context.Context, pool *pgxpool.Pool, correlationID string) {
	fmt.Printf("--- Outbox (%s) ---\n", correlationID)
	events, err := postgres.NewOutboxRepository(pool).ListByCorrelationID(ctx, correlationID)
	if err != nil {
		fmt.Printf("List outbox failed: %v\n", err)
	}
	for _, e := range events {
		fmt.Printf("ID: %s | Status: %s | Type: %s | Causation: %s | Created: %s\n",
			e.ID, e.Status, e.EventType, e.CausationID, e.CreatedAt.Format(time.RFC3339))
	}

	fmt.Printf("\n--- Inbox (%s) ---\n", correlationID)
	handled, err := postgres.NewInboxRepository(pool).ListByCorrelationID(ctx, correlationID)
	if err != nil {
		fmt.Printf("List inbox failed: %v\n", err)
	}
	for _, e := range handled {
		fmt.Printf("Event: %s | Consumer: %s | Type: %s | Processed: %s\n",
			e.EventID, e.Consumer, e.EventType, e.ProcessedAt.Format(time.RFC3339))
	}
}
