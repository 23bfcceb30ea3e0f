package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/contentsync/internal/core/domain"
	"github.com/custodia-labs/contentsync/internal/core/ports/driven"
	"github.com/custodia-labs/contentsync/internal/core/ports/driving"
	"github.com/custodia-labs/contentsync/internal/logger"
)

// Ensure FileGenerator implements the interface.
var _ driving.FileGenerator = (*FileGenerator)(nil)

// FileGenerator renders exports as YAML files and zip archives.
//
// Archive layout:
//
//	<entity_type>-<bundle>-<uuid>.yml   one document per exported root
//	assets/<scheme>/<path>              files of exported file entities
type FileGenerator struct {
	exporter driving.ContentExporter
	files    driven.FileStore
	archiver driven.Archiver
	metrics  driven.Metrics
	progress ProgressFunc
}

// NewFileGenerator creates a new file generator. metrics and progress
// are optional.
func NewFileGenerator(
	exporter driving.ContentExporter,
	files driven.FileStore,
	archiver driven.Archiver,
	metrics driven.Metrics,
	progress ProgressFunc,
) *FileGenerator {
	return &FileGenerator{
		exporter: exporter,
		files:    files,
		archiver: archiver,
		metrics:  orNopMetrics(metrics),
		progress: progress,
	}
}

// GenerateYAML exports entity and renders its document.
func (g *FileGenerator) GenerateYAML(ctx context.Context, entity *domain.Entity) (*driving.GeneratedFile, error) {
	doc, err := g.exporter.Export(ctx, entity)
	if err != nil {
		return nil, err
	}
	data, err := EncodeDocument(doc)
	if err != nil {
		return nil, err
	}
	return &driving.GeneratedFile{Name: DocumentFileName(doc), Data: data}, nil
}

// GenerateZip exports entities in one pass and writes the archive. Items
// that fail to export or encode are reported and left out; the error is
// only set when the archive cannot be written.
func (g *FileGenerator) GenerateZip(ctx context.Context, entities []*domain.Entity, dest string, opts driving.ZipOptions) (*domain.BatchResult, error) {
	exported := g.exporter.ExportMultiple(ctx, entities)
	result := exported.Result

	var entries []driven.ArchiveEntry
	var steps []batchStep
	for _, doc := range exported.Documents {
		steps = append(steps, batchStep{
			name:   doc.Key(),
			silent: true,
			run: func(context.Context) error {
				data, err := EncodeDocument(doc)
				if err != nil {
					result.Fail(doc.Key(), err)
					return err
				}
				entries = append(entries, driven.ArchiveEntry{Name: DocumentFileName(doc), Data: data})
				return nil
			},
		})
	}
	if opts.IncludeAssets {
		for _, uri := range exported.Assets {
			steps = append(steps, batchStep{
				name: uri,
				run: func(context.Context) error {
					entry, err := g.assetEntry(uri)
					if err != nil {
						return err
					}
					entries = append(entries, entry)
					return nil
				},
			})
		}
	}
	steps = append(steps, batchStep{
		name:   dest,
		fatal:  true,
		silent: true,
		run: func(context.Context) error {
			if g.archiver == nil {
				return fmt.Errorf("no archiver configured: %w", domain.ErrConfiguration)
			}
			if err := g.archiver.Create(dest, entries); err != nil {
				return fmt.Errorf("%w: %w", domain.ErrIO, err)
			}
			return nil
		},
	})

	assets, err := runBatch(ctx, steps, g.progress, g.metrics, "archive")
	if assets != nil {
		result.Succeeded = append(result.Succeeded, assets.Succeeded...)
		result.Failed = append(result.Failed, assets.Failed...)
	}
	if err != nil {
		return result, err
	}
	logger.Info("Wrote %s with %d entries", dest, len(entries))
	return result, nil
}

func (g *FileGenerator) assetEntry(uri string) (driven.ArchiveEntry, error) {
	name, ok := assetEntryName(uri)
	if !ok {
		return driven.ArchiveEntry{}, fmt.Errorf("%w: asset %s has no valid scheme", domain.ErrValidation, uri)
	}
	data, err := g.files.Read(uri)
	if err != nil {
		return driven.ArchiveEntry{}, fmt.Errorf("%w: read %s: %w", domain.ErrIO, uri, err)
	}
	return driven.ArchiveEntry{Name: name, Data: data}, nil
}
