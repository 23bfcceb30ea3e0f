package driven

import (
	"context"

	"github.com/custodia-labs/contentsync/internal/core/domain"
)

// FieldCodec converts one configurable field between its live value and
// its portable form. Each codec handles specific field types.
type FieldCodec interface {
	// FieldTypes returns the field types this codec handles.
	// The generic fallback codec returns an empty slice.
	FieldTypes() []string

	// Export converts the field value into its portable form.
	// Referenced entities are exported through the session.
	Export(ctx context.Context, session ExportSession, field domain.Field) (any, error)

	// Import converts a portable value back and assigns it to the field of
	// entity named by def. Referenced entities are resolved through the session.
	Import(ctx context.Context, session ImportSession, entity *domain.Entity, def domain.FieldDefinition, value any) error
}

// BaseFieldsCodec converts the built-in fields of one entity type.
type BaseFieldsCodec interface {
	// EntityType returns the entity type this codec handles.
	EntityType() string

	// ExportBaseValues returns the portable base fields of entity.
	ExportBaseValues(ctx context.Context, session ExportSession, entity *domain.Entity) (map[string]any, error)

	// MapBaseFieldsValues converts portable base fields into the values
	// assigned to entity before its custom fields are imported.
	MapBaseFieldsValues(ctx context.Context, session ImportSession, values map[string]any, entity *domain.Entity) (map[string]any, error)
}

// AfterImportHook is implemented by base codecs that run after the entity
// has been saved.
type AfterImportHook interface {
	// AfterBaseValuesImport runs once the imported entity is saved.
	AfterBaseValuesImport(ctx context.Context, session ImportSession, values map[string]any, entity *domain.Entity) error
}

// CodecRegistry dispatches fields and entity types to their codecs.
type CodecRegistry interface {
	// FieldCodec returns the codec for a field type, or the generic
	// fallback when no codec claims it. Never nil.
	FieldCodec(fieldType string) FieldCodec

	// BaseCodec returns the base-fields codec of an entity type.
	BaseCodec(entityType string) (BaseFieldsCodec, bool)
}

// ExportSession is the state of one export pass, shared by every codec the
// pass invokes. It owns the reference cache: an entity is exported in full
// at most once per pass.
type ExportSession interface {
	// ExportEntity exports entity in full and marks it cached.
	ExportEntity(ctx context.Context, entity *domain.Entity) (*domain.Document, error)

	// ExportReference exports entity in full when it is not cached yet,
	// and as a reference stub otherwise.
	ExportReference(ctx context.Context, entity *domain.Entity) (*domain.Document, error)

	// ExportStub exports entity as a reference stub.
	ExportStub(ctx context.Context, entity *domain.Entity) (*domain.Document, error)

	// IsReferenceCached reports whether entity was already exported in full.
	IsReferenceCached(entity *domain.Entity) bool

	// AddAsset records a file URI to ship alongside the documents.
	AddAsset(uri string)
}

// ImportSession is the state of one import pass. It tracks which entities
// were already created or imported so shared references resolve to one
// destination entity.
type ImportSession interface {
	// ImportDocument imports a full document, reusing the entity if it was
	// already imported in this pass.
	ImportDocument(ctx context.Context, doc *domain.Document) (*domain.Entity, error)

	// ResolveReference returns the destination entity of a reference:
	// full documents are imported, stubs are loaded by uuid or created.
	ResolveReference(ctx context.Context, doc *domain.Document) (*domain.Entity, error)

	// CreateStubEntity creates and saves an entity from base fields only.
	CreateStubEntity(ctx context.Context, doc *domain.Document) (*domain.Entity, error)

	// IsFullEntity reports whether a decoded value is a full document.
	IsFullEntity(value any) bool
}
