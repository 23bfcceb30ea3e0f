// Package cli provides the contentsync command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/contentsync/internal/core/ports/driving"
	"github.com/custodia-labs/contentsync/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=1.2.3".
var version = "dev"

// Global flags.
var (
	verbose     bool
	configDir   string
	dataDir     string
	metricsFile string
)

// Services used by the commands. Set by the bootstrap before a command runs.
var (
	contentExporter driving.ContentExporter
	contentImporter driving.ContentImporter
	fileGenerator   driving.FileGenerator
	entityService   driving.EntityService
	settingsService driving.SettingsService
)

// Options are the global flag values handed to the bootstrap.
type Options struct {
	Verbose     bool
	ConfigDir   string
	DataDir     string
	MetricsFile string
}

// Services are the core services the commands run against.
type Services struct {
	Exporter      driving.ContentExporter
	Importer      driving.ContentImporter
	FileGenerator driving.FileGenerator
	Entities      driving.EntityService
	Settings      driving.SettingsService

	// Close releases resources once the command finishes. Optional.
	Close func() error
}

// Bootstrap builds the services from the global flags.
type Bootstrap func(opts Options) (*Services, error)

var (
	bootstrap Bootstrap
	closer    func() error
)

var rootCmd = &cobra.Command{
	Use:   "contentsync",
	Short: "Export and import content between sites",
	Long: `contentsync moves content entities between sites as portable YAML
documents. Referenced entities travel with the content that uses them, and
zip archives carry the files they point at.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
	flags.StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.contentsync)")
	flags.StringVar(&dataDir, "data-dir", "", "data directory (default ~/.contentsync/data)")
	flags.StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile on exit")
}

// SetBootstrap registers the function that builds services before a
// command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices installs services directly.
func SetServices(s *Services) {
	contentExporter = s.Exporter
	contentImporter = s.Importer
	fileGenerator = s.FileGenerator
	entityService = s.Entities
	settingsService = s.Settings
	closer = s.Close
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	logger.SetOutput(cmd.ErrOrStderr())

	// version and help need no services
	if bootstrap == nil || cmd == versionCmd {
		return nil
	}
	services, err := bootstrap(Options{
		Verbose:     verbose,
		ConfigDir:   configDir,
		DataDir:     dataDir,
		MetricsFile: metricsFile,
	})
	if err != nil {
		return err
	}
	SetServices(services)
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if closer == nil {
		return nil
	}
	err := closer()
	closer = nil
	return err
}

// Close releases the services installed by the bootstrap. It is safe to
// call after a command has already released them.
func Close() error {
	return teardown(nil, nil)
}
