package driving

import (
	"context"

	"github.com/custodia-labs/contentsync/internal/core/domain"
)

// EntityService browses the entities held by the local store.
type EntityService interface {
	// Types returns the entity types known to the schema, ordered by id.
	Types() []domain.EntityType

	// List returns all entities of a type, ordered by id.
	// Returns domain.ErrUnsupportedType for unknown types.
	List(ctx context.Context, entityType string) ([]*domain.Entity, error)

	// Get retrieves an entity by store id or, failing that, by uuid.
	Get(ctx context.Context, entityType, idOrUUID string) (*domain.Entity, error)

	// GetMultiple retrieves several entities of one type, failing on the
	// first that does not exist.
	GetMultiple(ctx context.Context, entityType string, ids []string) ([]*domain.Entity, error)

	// Delete removes an entity.
	Delete(ctx context.Context, entityType, idOrUUID string) error
}
