package field

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/contentsync/internal/core/domain"
	"github.com/custodia-labs/contentsync/internal/core/ports/driven"
	"github.com/custodia-labs/contentsync/internal/logger"
)

// Reference field types.
const (
	TypeEntityReference          = "entity_reference"
	TypeEntityReferenceRevisions = "entity_reference_revisions"
	TypeDynamicEntityReference   = "dynamic_entity_reference"
	TypeFile                     = "file"
	TypeImage                    = "image"
)

// Ensure Reference implements the interface.
var _ driven.FieldCodec = (*Reference)(nil)

// Reference exports the entities targeted by a reference field.
//
// Fieldable targets are exported in full the first time they are met in a
// pass and as stubs afterwards. Configuration targets become config
// references. Other targets are dropped.
type Reference struct {
	store  driven.EntityStore
	schema driven.SchemaProvider
}

// NewReference creates a reference codec.
func NewReference(store driven.EntityStore, schema driven.SchemaProvider) *Reference {
	return &Reference{store: store, schema: schema}
}

// FieldTypes returns the reference field types.
func (c *Reference) FieldTypes() []string {
	return []string{
		TypeEntityReference,
		TypeEntityReferenceRevisions,
		TypeDynamicEntityReference,
		TypeFile,
		TypeImage,
	}
}

type target struct {
	entityType string
	id         string
}

// Export converts each item into a document, stub or config reference.
func (c *Reference) Export(ctx context.Context, session driven.ExportSession, field domain.Field) (any, error) {
	targets := c.targets(field)

	// Batch-load each target type once.
	ids := make(map[string][]string)
	var order []string
	for _, t := range targets {
		if _, seen := ids[t.entityType]; !seen {
			order = append(order, t.entityType)
		}
		ids[t.entityType] = append(ids[t.entityType], t.id)
	}

	loaded := make(map[target]*domain.Entity)
	types := make(map[string]domain.EntityType)
	for _, entityType := range order {
		et, ok := c.schema.EntityType(entityType)
		if !ok {
			logger.Warn("field %s: unknown target type %q", field.Definition.Name, entityType)
			continue
		}
		types[entityType] = et
		if et.Config {
			continue
		}
		entities, err := c.store.LoadMultiple(ctx, entityType, ids[entityType])
		if err != nil {
			return nil, fmt.Errorf("field %s: load %s targets: %w", field.Definition.Name, entityType, err)
		}
		for _, e := range entities {
			loaded[target{entityType: entityType, id: e.ID}] = e
		}
	}

	out := make([]any, 0, len(targets))
	for _, t := range targets {
		et, ok := types[t.entityType]
		if !ok {
			continue
		}
		if et.Config {
			ref := domain.ConfigReference{DependencyName: t.entityType + "." + t.id, Value: t.id}
			out = append(out, ref.ToMap())
			continue
		}
		e, ok := loaded[t]
		if !ok {
			logger.Debug("field %s: %s %s not found, skipped", field.Definition.Name, t.entityType, t.id)
			continue
		}
		if !et.Fieldable {
			continue
		}
		doc, err := session.ExportReference(ctx, e)
		if err != nil {
			return nil, fmt.Errorf("field %s: export %s: %w", field.Definition.Name, e.Key(), err)
		}
		out = append(out, doc.ToMap())
	}
	return out, nil
}

// targets collects the referenced (type, id) pairs in item order.
// Dynamic references carry their target type per item.
func (c *Reference) targets(field domain.Field) []target {
	targetType := field.Definition.TargetType()
	if targetType == "" && (field.Definition.Type == TypeFile || field.Definition.Type == TypeImage) {
		targetType = "file"
	}
	dynamic := field.Definition.Type == TypeDynamicEntityReference

	out := make([]target, 0, len(field.Items))
	for _, item := range field.Items {
		t := target{entityType: targetType, id: domain.AsString(item["target_id"])}
		if dynamic {
			t.entityType = domain.AsString(item["target_type"])
		}
		if t.entityType == "" || t.id == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Import resolves each reference to a destination entity id.
// References that cannot be resolved are logged and left out.
func (c *Reference) Import(ctx context.Context, session driven.ImportSession, entity *domain.Entity, def domain.FieldDefinition, value any) error {
	list, ok := domain.AsList(value)
	if !ok {
		if value != nil {
			return fmt.Errorf("field %s: expected a list of references, got %T: %w", def.Name, value, domain.ErrInvalidInput)
		}
		list = nil
	}

	dynamic := def.Type == TypeDynamicEntityReference
	items := make(domain.FieldItems, 0, len(list))
	for _, v := range list {
		if ref, ok := domain.ConfigReferenceFromValue(v); ok {
			item := map[string]any{"target_id": ref.Value}
			if dynamic {
				item["target_type"] = configTargetType(ref)
			}
			items = append(items, item)
			continue
		}

		doc, err := domain.DocumentFromValue(v)
		if err != nil {
			logger.Warn("field %s of %s: %v", def.Name, entity.Key(), err)
			continue
		}
		resolved, err := session.ResolveReference(ctx, doc)
		if err != nil {
			logger.Warn("field %s of %s: %v", def.Name, entity.Key(), err)
			continue
		}
		item := map[string]any{"target_id": resolved.ID}
		if dynamic {
			item["target_type"] = resolved.EntityType
		}
		items = append(items, item)
	}
	entity.SetField(def.Name, items)
	return nil
}

// configTargetType recovers the entity type from "<type>.<id>".
func configTargetType(ref domain.ConfigReference) string {
	return strings.TrimSuffix(ref.DependencyName, "."+ref.Value)
}
