package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/contentsync/internal/core/domain"
	"github.com/custodia-labs/contentsync/internal/core/ports/driven"
	"github.com/custodia-labs/contentsync/internal/logger"
)

// ProgressFunc is called after every batch step with the number of steps
// done, the total and the name of the finished step.
type ProgressFunc func(done, total int, item string)

// batchStep is one unit of a bulk operation.
type batchStep struct {
	// name identifies the step in results and progress reports.
	name string

	// fatal stops the batch when the step fails.
	fatal bool

	// silent steps are not recorded in the result.
	silent bool

	run func(ctx context.Context) error
}

// runBatch executes steps in order. Failures are recorded per step and
// never stop the remaining steps, except fatal ones and cancellation.
func runBatch(ctx context.Context, steps []batchStep, progress ProgressFunc, metrics driven.Metrics, operation string) (*domain.BatchResult, error) {
	result := &domain.BatchResult{}
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("%s cancelled at %s: %w", operation, step.name, err)
		}

		err := step.run(ctx)
		switch {
		case err != nil && step.fatal:
			return result, fmt.Errorf("%s: %s: %w", operation, step.name, err)
		case err != nil:
			logger.Warn("%s: %s: %v", operation, step.name, err)
			metrics.ItemFailed(operation)
			if !step.silent {
				result.Fail(step.name, err)
			}
		case !step.silent:
			result.Success(step.name)
		}

		if progress != nil {
			progress(i+1, len(steps), step.name)
		}
	}
	return result, nil
}
