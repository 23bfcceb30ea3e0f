package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/contentsync/internal/adapters/driving/watch"
	"github.com/custodia-labs/contentsync/internal/logger"
)

var (
	watchSettle   time.Duration
	watchExisting bool
	watchRemove   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Import files dropped into a directory",
	Long: `Watches a drop directory and imports every YAML document or zip archive
written into it. Files are imported once writes to them have settled.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchSettle, "settle", 500*time.Millisecond, "quiet period before a file is imported")
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "import files already in the directory")
	watchCmd.Flags().BoolVar(&watchRemove, "remove", false, "delete files after a successful import")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if contentImporter == nil {
		return errors.New("import service not configured")
	}

	w, err := watch.New(watch.Config{
		Dir:            args[0],
		Settle:         watchSettle,
		ImportExisting: watchExisting,
		OnFile: func(ctx context.Context, path string) error {
			return importDropped(ctx, cmd, path)
		},
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s for content files (Ctrl+C to stop)\n", w.Dir())
	return w.Run(ctx)
}

// importDropped imports one dropped file and optionally removes it.
func importDropped(ctx context.Context, cmd *cobra.Command, path string) error {
	name := filepath.Base(path)
	result, err := importPath(ctx, path)
	if err != nil {
		return err
	}

	printResult(cmd, "Imported "+name+":", result)
	if err := resultError(result); err != nil {
		return err
	}
	if watchRemove {
		if err := os.Remove(path); err != nil {
			logger.Warn("remove %s: %v", name, err)
		}
	}
	return nil
}
