package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/contentsync/internal/core/domain"
)

// printResult prints the succeeded and failed items of a batch.
func printResult(cmd *cobra.Command, verb string, result *domain.BatchResult) {
	for _, item := range result.Succeeded {
		cmd.Printf("  ok      %s\n", item)
	}
	for _, failed := range result.Failed {
		cmd.Printf("  failed  %s: %v\n", failed.Item, failed.Err)
	}
	cmd.Printf("%s %d, failed %d\n", verb, len(result.Succeeded), len(result.Failed))
}

// resultError turns batch failures into a command error so the process
// exits non-zero.
func resultError(result *domain.BatchResult) error {
	if !result.HasFailures() {
		return nil
	}
	return fmt.Errorf("%d of %d items failed", len(result.Failed), len(result.Failed)+len(result.Succeeded))
}

// commandContext returns the command's context, or a background context for
// commands run outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
