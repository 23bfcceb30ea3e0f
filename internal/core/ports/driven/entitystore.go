package driven

import (
	"context"

	"github.com/custodia-labs/contentsync/internal/core/domain"
)

// EntityStore persists content entities.
// Returned entities are copies; mutations only take effect through Save.
type EntityStore interface {
	// Load retrieves an entity by its store id.
	// Returns domain.ErrNotFound if it does not exist.
	Load(ctx context.Context, entityType, id string) (*domain.Entity, error)

	// LoadMultiple retrieves several entities of one type.
	// Missing ids are skipped; the result keeps the order of ids.
	LoadMultiple(ctx context.Context, entityType string, ids []string) ([]*domain.Entity, error)

	// LoadByUUID retrieves an entity by uuid.
	// Returns domain.ErrNotFound if it does not exist.
	LoadByUUID(ctx context.Context, entityType, uuid string) (*domain.Entity, error)

	// LoadByProperties returns entities whose base fields equal all given values.
	LoadByProperties(ctx context.Context, entityType string, props map[string]any) ([]*domain.Entity, error)

	// List returns all entities of a type, ordered by id.
	List(ctx context.Context, entityType string) ([]*domain.Entity, error)

	// Save creates or updates an entity. A new entity is assigned an id.
	// Returns domain.ErrAlreadyExists when a new entity reuses a stored uuid.
	Save(ctx context.Context, entity *domain.Entity) error

	// Delete removes an entity.
	Delete(ctx context.Context, entityType, id string) error
}
