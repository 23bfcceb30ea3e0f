package driven

import (
	"context"

	"github.com/custodia-labs/contentsync/internal/core/domain"
)

// AccessPolicy decides which entities may be exported.
type AccessPolicy interface {
	// CanExport reports whether the entity may be exported.
	CanExport(ctx context.Context, entity *domain.Entity) bool
}

// FieldExclusions decides which configurable fields are skipped on export.
type FieldExclusions interface {
	// IsFieldExcluded reports whether the field is excluded.
	IsFieldExcluded(entityType, bundle, field string) bool
}

// AssetFetcher downloads remote files referenced by imported file entities.
type AssetFetcher interface {
	// Fetch returns the body served at url.
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// CurrentUser supplies the account an import runs as.
type CurrentUser interface {
	// Current returns the active account.
	Current(ctx context.Context) domain.Account
}

// URLGenerator builds canonical URLs for entities.
type URLGenerator interface {
	// CanonicalURL returns the path of the entity's canonical page.
	CanonicalURL(entity *domain.Entity) string
}

// FocalPoint reads and writes image focal point crops.
type FocalPoint interface {
	// Crop returns the crop of an image file.
	// ok is false when the file has no crop.
	Crop(ctx context.Context, file *domain.Entity) (crop domain.Crop, ok bool, err error)

	// SaveCrop stores the crop of a saved image file.
	SaveCrop(ctx context.Context, file *domain.Entity, crop domain.Crop) error
}

// Metrics records export and import activity.
type Metrics interface {
	// EntityExported counts a full export.
	EntityExported(entityType string)

	// EntityImported counts a full import.
	EntityImported(entityType string, created bool)

	// StubCreated counts a reference stub creation.
	StubCreated(entityType string)

	// ItemFailed counts a failed batch item.
	ItemFailed(operation string)

	// AssetFetched counts a remote asset download.
	AssetFetched(ok bool)
}
