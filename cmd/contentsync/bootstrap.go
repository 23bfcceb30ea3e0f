package main

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/contentsync/internal/adapters/driven/archive"
	configfile "github.com/custodia-labs/contentsync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/contentsync/internal/adapters/driven/fetch"
	"github.com/custodia-labs/contentsync/internal/adapters/driven/metrics"
	schemafile "github.com/custodia-labs/contentsync/internal/adapters/driven/schema/file"
	"github.com/custodia-labs/contentsync/internal/adapters/driven/site"
	"github.com/custodia-labs/contentsync/internal/adapters/driven/storage/localfs"
	"github.com/custodia-labs/contentsync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/contentsync/internal/adapters/driving/cli"
	"github.com/custodia-labs/contentsync/internal/codecs"
	"github.com/custodia-labs/contentsync/internal/core/services"
	"github.com/custodia-labs/contentsync/internal/logger"
)

// keyBaseURL is the public URL files in the public scheme are served under.
const (
	keyBaseURL     = "site.base_url"
	defaultBaseURL = "http://localhost"
)

// bootstrap wires the adapters into the core services.
func bootstrap(opts cli.Options) (*cli.Services, error) {
	configStore, err := configfile.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	siteUUID, err := settingsService.EnsureSiteUUID()
	if err != nil {
		return nil, err
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}
	if err := settingsService.Validate(); err != nil {
		logger.Warn("settings: %v", err)
	}

	schema, err := schemafile.NewSchema(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}

	db, err := sqlite.NewStore(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	store := db.EntityStore()
	logger.Debug("store: %s", db.Path())

	baseURL := configStore.GetString(keyBaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	files, err := localfs.NewFileStore(opts.DataDir, baseURL)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open file store: %w", err)
	}

	prom := metrics.NewPrometheus()
	archiver := archive.NewZip()

	registry, err := codecs.NewDefaultRegistry(codecs.Dependencies{
		Store:       store,
		Schema:      schema,
		Files:       files,
		Fetcher:     fetch.NewFetcher(settings.Fetch, prom),
		FocalPoint:  db.FocalPoint(),
		CurrentUser: site.NewImportUser(store, settings.ImportUserEmail),
		URLs:        site.NewRouter(store),
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to build codecs: %w", err)
	}

	exporter := services.NewContentExporter(
		schema,
		registry,
		services.NewSettingsAccessPolicy(schema, *settings),
		*settings,
		prom,
		siteUUID,
	)
	importer := services.NewContentImporter(store, schema, files, archiver, registry, prom, services.ImportOptions{
		SiteUUID:              siteUUID,
		SiteUUIDCheck:         settings.SiteUUIDCheck,
		ImportDirectorySchema: settings.ImportDirectorySchema,
		Progress:              logProgress,
	})

	return &cli.Services{
		Exporter:      exporter,
		Importer:      importer,
		FileGenerator: services.NewFileGenerator(exporter, files, archiver, prom, logProgress),
		Entities:      services.NewEntityService(store, schema),
		Settings:      settingsService,
		Close: func() error {
			var errs []error
			if opts.MetricsFile != "" {
				if err := prom.WriteTextfile(opts.MetricsFile); err != nil {
					errs = append(errs, fmt.Errorf("write metrics: %w", err))
				}
			}
			if err := db.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close store: %w", err))
			}
			return errors.Join(errs...)
		},
	}, nil
}

func logProgress(done, total int, item string) {
	logger.Debug("[%d/%d] %s", done, total, item)
}
