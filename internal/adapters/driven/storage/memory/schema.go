package memory

import (
	"sort"
	"sync"

	"github.com/custodia-labs/contentsync/internal/core/domain"
	"github.com/custodia-labs/contentsync/internal/core/ports/driven"
)

// Ensure Schema implements the interface.
var _ driven.SchemaProvider = (*Schema)(nil)

// Schema is an in-memory implementation of driven.SchemaProvider.
type Schema struct {
	mu     sync.RWMutex
	types  map[string]domain.EntityType
	fields map[string][]domain.FieldDefinition
}

// NewSchema creates an empty schema.
func NewSchema() *Schema {
	return &Schema{
		types:  make(map[string]domain.EntityType),
		fields: make(map[string][]domain.FieldDefinition),
	}
}

// AddEntityType registers or replaces an entity type.
func (s *Schema) AddEntityType(t domain.EntityType) *Schema {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.types[t.ID] = t
	return s
}

// AddField appends a field definition to a bundle.
func (s *Schema) AddField(entityType, bundle string, def domain.FieldDefinition) *Schema {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := entityType + "." + bundle
	s.fields[key] = append(s.fields[key], def)
	return s
}

// EntityType returns the entity type with the given id.
func (s *Schema) EntityType(id string) (domain.EntityType, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.types[id]
	return t, ok
}

// FieldDefinitions returns the configurable fields of a bundle.
func (s *Schema) FieldDefinitions(entityType, bundle string) []domain.FieldDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	defs := s.fields[entityType+"."+bundle]
	out := make([]domain.FieldDefinition, len(defs))
	copy(out, defs)
	return out
}

// EntityTypes returns all registered entity types, ordered by id.
func (s *Schema) EntityTypes() []domain.EntityType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.EntityType, 0, len(s.types))
	for _, t := range s.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
