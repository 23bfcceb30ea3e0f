// Package codecs dispatches configurable fields and entity types to the
// codecs that convert them. The registry is built once at startup; two
// codecs claiming the same field or entity type is a configuration error.
package codecs

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/contentsync/internal/core/domain"
	"github.com/custodia-labs/contentsync/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.CodecRegistry = (*Registry)(nil)

// Registry maps field types and entity types to their codecs.
type Registry struct {
	fields  map[string]driven.FieldCodec
	generic driven.FieldCodec
	base    map[string]driven.BaseFieldsCodec
}

// NewRegistry builds the field type and entity type mappings.
// A field codec declaring no field types becomes the generic fallback.
// Returns an error wrapping domain.ErrConfiguration on duplicate claims or
// when no generic codec is given.
func NewRegistry(fieldCodecs []driven.FieldCodec, baseCodecs []driven.BaseFieldsCodec) (*Registry, error) {
	r := &Registry{
		fields: make(map[string]driven.FieldCodec),
		base:   make(map[string]driven.BaseFieldsCodec),
	}

	for _, c := range fieldCodecs {
		types := c.FieldTypes()
		if len(types) == 0 {
			if r.generic != nil {
				return nil, fmt.Errorf("the generic field codec is already defined by %T: %w", r.generic, domain.ErrConfiguration)
			}
			r.generic = c
			continue
		}
		for _, t := range types {
			if existing, ok := r.fields[t]; ok {
				return nil, fmt.Errorf("the field type %q is already defined by %T: %w", t, existing, domain.ErrConfiguration)
			}
			r.fields[t] = c
		}
	}
	if r.generic == nil {
		return nil, fmt.Errorf("no generic field codec registered: %w", domain.ErrConfiguration)
	}

	for _, c := range baseCodecs {
		t := c.EntityType()
		if existing, ok := r.base[t]; ok {
			return nil, fmt.Errorf("the entity type %q is already defined by %T: %w", t, existing, domain.ErrConfiguration)
		}
		r.base[t] = c
	}

	return r, nil
}

// FieldCodec returns the codec for a field type, or the generic fallback.
func (r *Registry) FieldCodec(fieldType string) driven.FieldCodec {
	if c, ok := r.fields[fieldType]; ok {
		return c
	}
	return r.generic
}

// BaseCodec returns the base-fields codec of an entity type.
func (r *Registry) BaseCodec(entityType string) (driven.BaseFieldsCodec, bool) {
	c, ok := r.base[entityType]
	return c, ok
}

// FieldTypes returns all field types with a dedicated codec, sorted.
func (r *Registry) FieldTypes() []string {
	types := make([]string, 0, len(r.fields))
	for t := range r.fields {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// EntityTypes returns all entity types with a base codec, sorted.
func (r *Registry) EntityTypes() []string {
	types := make([]string, 0, len(r.base))
	for t := range r.base {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
