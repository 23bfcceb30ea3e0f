package driving

import (
	"context"

	"github.com/custodia-labs/contentsync/internal/core/domain"
)

// ContentExporter turns live entities into portable documents.
type ContentExporter interface {
	// Export exports one entity, and transitively its references, in a new
	// export pass.
	Export(ctx context.Context, entity *domain.Entity) (*domain.Document, error)

	// ExportMultiple exports several entities in one shared pass, so an
	// entity referenced from more than one root is exported in full once.
	// Items fail independently.
	ExportMultiple(ctx context.Context, entities []*domain.Entity) *ExportResult
}

// ExportResult is the outcome of a bulk export.
type ExportResult struct {
	// Documents holds one document per successfully exported root, in order.
	Documents []*domain.Document

	// Assets lists the file URIs collected during the pass, in first-seen order.
	Assets []string

	// Result records per-item success and failure, keyed by entity key.
	Result *domain.BatchResult
}

// ContentImporter turns portable documents back into live entities.
type ContentImporter interface {
	// Import imports one document, and transitively its references, in a
	// new import pass.
	Import(ctx context.Context, doc *domain.Document) (*domain.Entity, error)

	// ImportFromFile reads, validates and imports one YAML document file.
	ImportFromFile(ctx context.Context, path string) (*domain.Entity, error)

	// ImportFromArchive extracts an archive, copies its assets into the
	// file store and imports its documents in archive order. Items fail
	// independently; the error is only set when the archive itself is
	// unusable.
	ImportFromArchive(ctx context.Context, path string) (*domain.BatchResult, error)

	// CreateStubEntity creates and saves an entity from a document's base
	// fields only.
	CreateStubEntity(ctx context.Context, doc *domain.Document) (*domain.Entity, error)

	// IsFullEntity reports whether a decoded document carries custom fields.
	IsFullEntity(value any) bool
}

// GeneratedFile is a rendered document file.
type GeneratedFile struct {
	// Name is the file name, "<entity_type>-<bundle>-<uuid>.yml".
	Name string

	// Data is the YAML content.
	Data []byte
}

// ZipOptions controls archive generation.
type ZipOptions struct {
	// IncludeAssets copies the files referenced by exported file entities
	// into the archive.
	IncludeAssets bool
}

// FileGenerator renders exports as files and archives.
type FileGenerator interface {
	// GenerateYAML exports one entity and renders it as a YAML document.
	GenerateYAML(ctx context.Context, entity *domain.Entity) (*GeneratedFile, error)

	// GenerateZip exports entities in one pass and writes them, with their
	// assets when requested, into a zip archive at dest.
	GenerateZip(ctx context.Context, entities []*domain.Entity, dest string, opts ZipOptions) (*domain.BatchResult, error)
}
