package driven

import "github.com/custodia-labs/contentsync/internal/core/domain"

// SchemaProvider describes the entity types and fields known to the site.
type SchemaProvider interface {
	// EntityType returns the entity type with the given id.
	EntityType(id string) (domain.EntityType, bool)

	// FieldDefinitions returns the configurable fields of a bundle in
	// display order.
	FieldDefinitions(entityType, bundle string) []domain.FieldDefinition

	// EntityTypes returns all registered entity types, ordered by id.
	EntityTypes() []domain.EntityType
}
