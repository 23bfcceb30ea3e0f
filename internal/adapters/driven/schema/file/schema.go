package file

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/contentsync/internal/core/domain"
	"github.com/custodia-labs/contentsync/internal/core/ports/driven"
)

// Ensure Schema implements the interface.
var _ driven.SchemaProvider = (*Schema)(nil)

// FileName is the schema file name inside the config directory.
const FileName = "schema.toml"

//go:embed default_schema.toml
var defaultSchema []byte

// schemaFile is the on-disk layout of schema.toml.
type schemaFile struct {
	EntityTypes []entityTypeEntry `toml:"entity_types" validate:"dive"`
	Fields      []fieldEntry      `toml:"fields" validate:"dive"`
}

type entityTypeEntry struct {
	ID        string   `toml:"id" validate:"required"`
	Label     string   `toml:"label"`
	Fieldable bool     `toml:"fieldable"`
	Config    bool     `toml:"config"`
	Bundles   []string `toml:"bundles" validate:"dive,required"`
}

type fieldEntry struct {
	EntityType string         `toml:"entity_type" validate:"required"`
	Bundle     string         `toml:"bundle" validate:"required"`
	Name       string         `toml:"name" validate:"required"`
	Type       string         `toml:"type" validate:"required"`
	Settings   map[string]any `toml:"settings"`
}

// Schema is a SchemaProvider loaded from a TOML file.
// A missing file is created from the built-in default schema.
type Schema struct {
	mu       sync.RWMutex
	path     string
	validate *validator.Validate
	types    map[string]domain.EntityType
	fields   map[string][]domain.FieldDefinition
}

// NewSchema loads the schema at configDir/schema.toml.
// If configDir is empty, defaults to ~/.contentsync.
func NewSchema(configDir string) (*Schema, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".contentsync")
	}

	s := &Schema{
		path:     filepath.Join(configDir, FileName),
		validate: validator.New(),
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads the schema file, writing the default first if it is missing.
// The loaded schema replaces the current one only when it is valid.
func (s *Schema) Load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
			return fmt.Errorf("create schema directory: %w", err)
		}
		if err := os.WriteFile(s.path, defaultSchema, 0600); err != nil {
			return fmt.Errorf("write default schema: %w", err)
		}
		data = defaultSchema
	} else if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}

	types, fields, err := s.parse(data)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrConfiguration, s.path, err)
	}

	s.mu.Lock()
	s.types = types
	s.fields = fields
	s.mu.Unlock()
	return nil
}

func (s *Schema) parse(data []byte) (map[string]domain.EntityType, map[string][]domain.FieldDefinition, error) {
	var file schemaFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, nil, err
	}
	if err := s.validate.Struct(file); err != nil {
		return nil, nil, err
	}

	types := make(map[string]domain.EntityType, len(file.EntityTypes))
	for _, t := range file.EntityTypes {
		if _, dup := types[t.ID]; dup {
			return nil, nil, fmt.Errorf("entity type %q declared twice", t.ID)
		}
		types[t.ID] = domain.EntityType{
			ID:        t.ID,
			Label:     t.Label,
			Fieldable: t.Fieldable,
			Config:    t.Config,
			Bundles:   t.Bundles,
		}
	}

	fields := make(map[string][]domain.FieldDefinition)
	seen := make(map[string]bool)
	for _, f := range file.Fields {
		t, ok := types[f.EntityType]
		if !ok {
			return nil, nil, fmt.Errorf("field %s: unknown entity type %q", f.Name, f.EntityType)
		}
		if !t.HasBundle(f.Bundle) {
			return nil, nil, fmt.Errorf("field %s: %q is not a bundle of %s", f.Name, f.Bundle, f.EntityType)
		}
		key := f.EntityType + "." + f.Bundle
		if seen[key+"."+f.Name] {
			return nil, nil, fmt.Errorf("field %s declared twice on %s", f.Name, key)
		}
		seen[key+"."+f.Name] = true
		fields[key] = append(fields[key], domain.FieldDefinition{
			Name:     f.Name,
			Type:     f.Type,
			Settings: f.Settings,
		})
	}

	return types, fields, nil
}

// Path returns the schema file path.
func (s *Schema) Path() string {
	return s.path
}

// EntityType returns the entity type with the given id.
func (s *Schema) EntityType(id string) (domain.EntityType, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.types[id]
	return t, ok
}

// FieldDefinitions returns the configurable fields of a bundle in file order.
func (s *Schema) FieldDefinitions(entityType, bundle string) []domain.FieldDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	defs := s.fields[entityType+"."+bundle]
	out := make([]domain.FieldDefinition, len(defs))
	copy(out, defs)
	return out
}

// EntityTypes returns all entity types, ordered by id.
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
