package field

import (
	"context"
	"fmt"

	"github.com/custodia-labs/contentsync/internal/core/domain"
	"github.com/custodia-labs/contentsync/internal/core/ports/driven"
)

// Ensure Generic implements the interface.
var _ driven.FieldCodec = (*Generic)(nil)

// Generic copies field items verbatim in both directions.
// It is the fallback for every field type without a dedicated codec.
type Generic struct{}

// NewGeneric creates the pass-through codec.
func NewGeneric() *Generic {
	return &Generic{}
}

// FieldTypes returns no types; the registry uses Generic as fallback.
func (c *Generic) FieldTypes() []string {
	return nil
}

// Export copies the field items.
func (c *Generic) Export(_ context.Context, _ driven.ExportSession, field domain.Field) (any, error) {
	items := domain.CopyItems(field.Items)
	if items == nil {
		items = domain.FieldItems{}
	}
	return items, nil
}

// Import assigns the items unchanged.
func (c *Generic) Import(_ context.Context, _ driven.ImportSession, entity *domain.Entity, def domain.FieldDefinition, value any) error {
	if value == nil {
		entity.SetField(def.Name, domain.FieldItems{})
		return nil
	}
	items, ok := domain.AsItems(value)
	if !ok {
		return fmt.Errorf("field %s: expected a list of items, got %T: %w", def.Name, value, domain.ErrInvalidInput)
	}
	entity.SetField(def.Name, domain.CopyItems(items))
	return nil
}
