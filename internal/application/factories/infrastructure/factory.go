package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ticketsim/internal/config"
	"ticketsim/internal/infrastructure/postgres"
	"ticketsim/internal/infrastructure/redis"
	"ticketsim/internal/usecase"

	pgxpool "github.com/jackc/pgx/v5/pgxpool"
	go_redis "github.com/redis/go-redis/v9"
)

const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

// Factory lazily opens shared connections and closes them together.
type Factory struct {
	cfg      *config.Config
	pgPool   *pgxpool.Pool
	redisCli *go_redis.Client
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		cfg: cfg,
	}
}

func (f *Factory) Postgres(ctx context.Context) (*pgxpool.Pool, error) {
	if f.pgPool != nil {
		return f.pgPool, nil
	}

	var pool *pgxpool.Pool
	var err error

	for i := 0; i < connectAttempts; i++ {
		pool, err = postgres.NewClient(ctx, postgres.Config{
			Host:     f.cfg.Postgres.Host,
			Port:     f.cfg.Postgres.Port,
			User:     f.cfg.Postgres.User,
			Password: f.cfg.Postgres.Password,
			DBName:   f.cfg.Postgres.DBName,
			Schema:   f.cfg.Postgres.Schema,
		})
		if err == nil {
			break
		}
		slog.Warn("failed to connect to postgres, retrying",
			"attempt", i+1, "max", connectAttempts, "backoff", connectBackoff, "error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectBackoff):
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to init postgres after retries: %w", err)
	}

	f.pgPool = pool
	return pool, nil
}

func (f *Factory) Redis(ctx context.Context) (*go_redis.Client, error) {
	if f.redisCli != nil {
		return f.redisCli, nil
	}

	client, err := redis.NewClient(ctx, redis.Config{
		Addr:     f.cfg.Redis.Addr,
		Password: f.cfg.Redis.Password,
		DB:       f.cfg.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init redis: %w", err)
	}

	f.redisCli = client
	return client, nil
}

// EnsureTables creates the service-owned tables when missing and verifies the
// tickets table, creating it only when simulation.create_tables is set.
func (f *Factory) EnsureTables(ctx context.Context) error {
	pool, err := f.Postgres(ctx)
	if err != nil {
		return err
	}

	schema := postgres.NewSchemaManager(pool, f.cfg.Postgres.Schema)
	if err := schema.EnsureAll(ctx, postgres.ServiceTables, true); err != nil {
		return err
	}
	return schema.Ensure(ctx, postgres.TicketsTable, f.cfg.Simulation.CreateTables)
}

// RunSimulation assembles the simulation use case over Postgres and the
// Redis run lock.
func (f *Factory) RunSimulation(ctx context.Context) (*usecase.RunSimulation, error) {
	pool, err := f.Postgres(ctx)
	if err != nil {
		return nil, err
	}
	redisClient, err := f.Redis(ctx)
	if err != nil {
		return nil, err
	}

	return usecase.NewRunSimulation(
		f.cfg.Simulation,
		postgres.NewTxManager(pool),
		redis.NewLocker(redisClient),
		postgres.NewFlightRepository(pool),
		postgres.NewPassportRepository(pool),
		postgres.NewTicketRepository(pool),
		postgres.NewRunRepository(pool),
		postgres.NewOutboxRepository(pool),
	), nil
}

func (f *Factory) Close() {
	if f.pgPool != nil {
		f.pgPool.Close()
	}
	if f.redisCli != nil {
		f.redisCli.Close()
	}
}
