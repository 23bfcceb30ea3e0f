package field

import (
	"context"
	"fmt"
	"regexp"

	"github.com/custodia-labs/contentsync/internal/core/domain"
	"github.com/custodia-labs/contentsync/internal/core/ports/driven"
	"github.com/custodia-labs/contentsync/internal/logger"
)

// TypeLink is the link field type.
const TypeLink = "link"

const keyLinkedEntity = "linked_entity"

var entityURIPattern = regexp.MustCompile(`^entity:(.+)/(\d+)$`)

// Ensure Link implements the interface.
var _ driven.FieldCodec = (*Link)(nil)

// Link exports the entity behind "entity:{type}/{id}" link URIs under the
// item's linked_entity key, and points the URI at the destination entity
// on import.
type Link struct {
	store  driven.EntityStore
	schema driven.SchemaProvider
}

// NewLink creates a link codec.
func NewLink(store driven.EntityStore, schema driven.SchemaProvider) *Link {
	return &Link{store: store, schema: schema}
}

// FieldTypes returns the link field type.
func (c *Link) FieldTypes() []string {
	return []string{TypeLink}
}

// Export copies the items and attaches linked entities.
func (c *Link) Export(ctx context.Context, session driven.ExportSession, field domain.Field) (any, error) {
	items := domain.CopyItems(field.Items)
	if items == nil {
		items = domain.FieldItems{}
	}
	for _, item := range items {
		m := entityURIPattern.FindStringSubmatch(domain.AsString(item["uri"]))
		if m == nil {
			continue
		}
		linked, err := c.store.Load(ctx, m[1], m[2])
		if err != nil {
			logger.Debug("field %s: linked %s/%s not found: %v", field.Definition.Name, m[1], m[2], err)
			continue
		}
		et, _ := c.schema.EntityType(linked.EntityType)
		if !et.Fieldable {
			item[keyLinkedEntity] = map[string]any{
				domain.KeyUUID:       linked.UUID,
				domain.KeyEntityType: linked.EntityType,
				domain.KeyBundle:     linked.Bundle,
			}
			continue
		}
		doc, err := session.ExportReference(ctx, linked)
		if err != nil {
			return nil, fmt.Errorf("field %s: export %s: %w", field.Definition.Name, linked.Key(), err)
		}
		item[keyLinkedEntity] = doc.ToMap()
	}
	return items, nil
}

// Import resolves linked entities and rewrites their URIs.
// Items whose linked entity cannot be resolved keep their URI.
func (c *Link) Import(ctx context.Context, session driven.ImportSession, entity *domain.Entity, def domain.FieldDefinition, value any) error {
	if value == nil {
		entity.SetField(def.Name, domain.FieldItems{})
		return nil
	}
	items, ok := domain.AsItems(value)
	if !ok {
		return fmt.Errorf("field %s: expected a list of links, got %T: %w", def.Name, value, domain.ErrInvalidInput)
	}

	out := domain.CopyItems(items)
	for _, item := range out {
		raw, present := item[keyLinkedEntity]
		delete(item, keyLinkedEntity)
		if !present {
			continue
		}
		doc, err := domain.DocumentFromValue(raw)
		if err != nil {
			logger.Warn("field %s of %s: %v", def.Name, entity.Key(), err)
			continue
		}
		linked, err := session.ResolveReference(ctx, doc)
		if err != nil {
			logger.Warn("field %s of %s: %v", def.Name, entity.Key(), err)
			continue
		}
		item["uri"] = "entity:" + linked.EntityType + "/" + linked.ID
	}
	entity.SetField(def.Name, out)
	return nil
}
