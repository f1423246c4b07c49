package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ticketsim/internal/domain/run"

	"github.com/redis/go-redis/v9"
)

const runCacheTTL = 30 * time.Second

type RunReader interface {
	GetByID(ctx context.Context, id string) (*run.Run, error)
}

type GetRun struct {
	redisClient *redis.Client
	runs        RunReader
}

// NewGetRun builds the run lookup. redisClient may be nil to disable caching.
func NewGetRun(redisClient *redis.Client, runs RunReader) *GetRun {
	return &GetRun{
		redisClient: redisClient,
		runs:        runs,
	}
}

func (uc *GetRun) Execute(ctx context.Context, runID string) (*run.Run, error) {
	cacheKey := fmt.Sprintf("ticketsim:run:%s", runID)

	if uc.redisClient != nil {
		val, err := uc.redisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			var r run.Run
			if err := json.Unmarshal([]byte(val), &r); err == nil {
				return &r, nil
			}
		}
	}

	r, err := uc.runs.GetByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	// running runs change under us; only terminal states are cached
	if uc.redisClient != nil && r.Status != run.StatusRunning {
		data, _ := json.Marshal(r)
		uc.redisClient.Set(ctx, cacheKey, data, runCacheTTL)
	}

	return r, nil
}
