package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/custodia-labs/contentsync/internal/core/domain"
	"github.com/custodia-labs/contentsync/internal/core/ports/driven"
)

// Ensure EntityStore implements the interface.
var _ driven.EntityStore = (*EntityStore)(nil)

// EntityStore is an in-memory implementation of driven.EntityStore.
// Ids are assigned sequentially per entity type, starting at 1.
type EntityStore struct {
	mu       sync.RWMutex
	entities map[string]map[string]*domain.Entity
	uuids    map[string]string
	nextID   map[string]int
	saves    int
}

// NewEntityStore creates a new in-memory entity store.
func NewEntityStore() *EntityStore {
	return &EntityStore{
		entities: make(map[string]map[string]*domain.Entity),
		uuids:    make(map[string]string),
		nextID:   make(map[string]int),
	}
}

// Load retrieves an entity by its store id.
func (s *EntityStore) Load(_ context.Context, entityType, id string) (*domain.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[entityType][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e.Clone(), nil
}

// LoadMultiple retrieves several entities of one type.
func (s *EntityStore) LoadMultiple(_ context.Context, entityType string, ids []string) ([]*domain.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*domain.Entity, 0, len(ids))
	for _, id := range ids {
		if e, ok := s.entities[entityType][id]; ok {
			result = append(result, e.Clone())
		}
	}
	return result, nil
}

// LoadByUUID retrieves an entity by uuid.
func (s *EntityStore) LoadByUUID(_ context.Context, entityType, uuid string) (*domain.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.uuids[domain.EntityKey(entityType, uuid)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.entities[entityType][id].Clone(), nil
}

// LoadByProperties returns entities whose base fields equal all given values.
func (s *EntityStore) LoadByProperties(_ context.Context, entityType string, props map[string]any) ([]*domain.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*domain.Entity
	for _, e := range s.sorted(entityType) {
		if matches(e, props) {
			result = append(result, e.Clone())
		}
	}
	return result, nil
}

// List returns all entities of a type, ordered by id.
func (s *EntityStore) List(_ context.Context, entityType string) ([]*domain.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sorted := s.sorted(entityType)
	result := make([]*domain.Entity, len(sorted))
	for i, e := range sorted {
		result[i] = e.Clone()
	}
	return result, nil
}

// Save creates or updates an entity.
func (s *EntityStore) Save(_ context.Context, entity *domain.Entity) error {
	if entity.UUID == "" || entity.EntityType == "" {
		return fmt.Errorf("save entity: uuid and entity type required: %w", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := entity.Key()
	if entity.IsNew() {
		if _, exists := s.uuids[key]; exists {
			return fmt.Errorf("save %s: %w", key, domain.ErrAlreadyExists)
		}
		s.nextID[entity.EntityType]++
		entity.ID = strconv.Itoa(s.nextID[entity.EntityType])
	} else if existing, ok := s.uuids[key]; ok && existing != entity.ID {
		return fmt.Errorf("save %s: uuid owned by id %s: %w", key, existing, domain.ErrAlreadyExists)
	}

	byID, ok := s.entities[entity.EntityType]
	if !ok {
		byID = make(map[string]*domain.Entity)
		s.entities[entity.EntityType] = byID
	}
	byID[entity.ID] = entity.Clone()
	s.uuids[key] = entity.ID
	s.saves++
	return nil
}

// Delete removes an entity.
func (s *EntityStore) Delete(_ context.Context, entityType, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[entityType][id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(s.uuids, e.Key())
	delete(s.entities[entityType], id)
	return nil
}

// Count returns the number of stored entities of a type.
func (s *EntityStore) Count(entityType string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities[entityType])
}

// Saves returns the number of successful Save calls.
func (s *EntityStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func (s *EntityStore) sorted(entityType string) []*domain.Entity {
	byID := s.entities[entityType]
	result := make([]*domain.Entity, 0, len(byID))
	for _, e := range byID {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		a, _ := strconv.Atoi(result[i].ID)
		b, _ := strconv.Atoi(result[j].ID)
		return a < b
	})
	return result
}

func matches(e *domain.Entity, props map[string]any) bool {
	for k, want := range props {
		if domain.AsString(e.Get(k)) != domain.AsString(want) {
			return false
		}
	}
	return true
}
