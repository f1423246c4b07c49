package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Step is one named unit of the batch pipeline.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Run executes steps in order. A failing step is logged and the next step
// still runs. The returned error joins every step failure, or is nil.
// Cancellation stops the pipeline before the next step starts.
func Run(ctx context.Context, logger *slog.Logger, steps []Step) error {
	var errs []error
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		started := time.Now()
		logger.Info("running step", "step", step.Name)

		if err := step.Run(ctx); err != nil {
			logger.Error("step failed", "step", step.Name, "error", err, "elapsed", time.Since(started))
			errs = append(errs, fmt.Errorf("%s: %w", step.Name, err))
			continue
		}

		logger.Info("step completed", "step", step.Name, "elapsed", time.Since(started))
	}
	return errors.Join(errs...)
}
