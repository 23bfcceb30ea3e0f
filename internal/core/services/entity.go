package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/contentsync/internal/core/domain"
	"github.com/custodia-labs/contentsync/internal/core/ports/driven"
	"github.com/custodia-labs/contentsync/internal/core/ports/driving"
)

// Ensure EntityService implements the interface.
var _ driving.EntityService = (*EntityService)(nil)

// EntityService browses the entities of the local store.
type EntityService struct {
	store  driven.EntityStore
	schema driven.SchemaProvider
}

// NewEntityService creates a new entity service.
func NewEntityService(store driven.EntityStore, schema driven.SchemaProvider) *EntityService {
	return &EntityService{store: store, schema: schema}
}

// Types returns the entity types known to the schema.
func (s *EntityService) Types() []domain.EntityType {
	return s.schema.EntityTypes()
}

// List returns all entities of a type.
func (s *EntityService) List(ctx context.Context, entityType string) ([]*domain.Entity, error) {
	if err := s.checkType(entityType); err != nil {
		return nil, err
	}
	return s.store.List(ctx, entityType)
}

// Get retrieves an entity by id, falling back to uuid.
func (s *EntityService) Get(ctx context.Context, entityType, idOrUUID string) (*domain.Entity, error) {
	if err := s.checkType(entityType); err != nil {
		return nil, err
	}

	entity, err := s.store.Load(ctx, entityType, idOrUUID)
	if err == nil {
		return entity, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	entity, err = s.store.LoadByUUID(ctx, entityType, idOrUUID)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", entityType, idOrUUID, err)
	}
	return entity, nil
}

// GetMultiple retrieves several entities, failing on the first missing one.
func (s *EntityService) GetMultiple(ctx context.Context, entityType string, ids []string) ([]*domain.Entity, error) {
	entities := make([]*domain.Entity, 0, len(ids))
	for _, id := range ids {
		entity, err := s.Get(ctx, entityType, id)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// Delete removes an entity by id or uuid.
func (s *EntityService) Delete(ctx context.Context, entityType, idOrUUID string) error {
	entity, err := s.Get(ctx, entityType, idOrUUID)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, entityType, entity.ID)
}

func (s *EntityService) checkType(entityType string) error {
	if _, ok := s.schema.EntityType(entityType); !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedType, entityType)
	}
	return nil
}
