package base

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/contentsync/internal/core/domain"
	"github.com/custodia-labs/contentsync/internal/core/ports/driven"
	"github.com/custodia-labs/contentsync/internal/logger"
)

const (
	menuLinkType   = "menu_link_content"
	parentPrefix   = menuLinkType + ":"
	keyLinkEntity  = "entity"
	keyMenuParent  = "parent"
	keyMenuLinkURI = "link"
)

var linkEntityPattern = regexp.MustCompile(`^entity:([^/]+)/(.+)$`)

// Ensure MenuLink implements the interface.
var _ driven.BaseFieldsCodec = (*MenuLink)(nil)

// MenuLink handles custom menu links. The parent link and the entity a
// link points at are exported with the reference cache rules.
type MenuLink struct {
	store  driven.EntityStore
	schema driven.SchemaProvider
}

// NewMenuLink creates a menu link codec.
func NewMenuLink(store driven.EntityStore, schema driven.SchemaProvider) *MenuLink {
	return &MenuLink{store: store, schema: schema}
}

// EntityType returns "menu_link_content".
func (c *MenuLink) EntityType() string { return menuLinkType }

var menuLinkKeys = []string{"title", "enabled", "expanded", "langcode", "menu_name", "description", "weight"}

// ExportBaseValues exports the link fields, its target and its parent.
func (c *MenuLink) ExportBaseValues(ctx context.Context, session driven.ExportSession, entity *domain.Entity) (map[string]any, error) {
	out := exportKeys(entity, menuLinkKeys...)

	links, err := c.exportLinks(ctx, session, entity)
	if err != nil {
		return nil, err
	}
	out[keyMenuLinkURI] = links

	out[keyMenuParent] = ""
	if uuid, ok := strings.CutPrefix(entity.GetString(keyMenuParent), parentPrefix); ok && uuid != "" {
		parent, err := c.store.LoadByUUID(ctx, menuLinkType, uuid)
		if err != nil {
			logger.Debug("menu link %s: parent %s not found: %v", entity.Key(), uuid, err)
			return out, nil
		}
		doc, err := session.ExportReference(ctx, parent)
		if err != nil {
			return nil, fmt.Errorf("export parent of %s: %w", entity.Key(), err)
		}
		out[keyMenuParent] = doc.ToMap()
	}
	return out, nil
}

// exportLinks attaches the target of "entity:{type}/{id}" links and
// rewrites the URI to "entity:{type}/{uuid}".
func (c *MenuLink) exportLinks(ctx context.Context, session driven.ExportSession, entity *domain.Entity) (domain.FieldItems, error) {
	items, _ := domain.AsItems(entity.Get(keyMenuLinkURI))
	out := domain.CopyItems(items)
	if out == nil {
		out = domain.FieldItems{}
	}
	for _, item := range out {
		m := linkEntityPattern.FindStringSubmatch(domain.AsString(item["uri"]))
		if m == nil {
			continue
		}
		target, err := c.store.Load(ctx, m[1], m[2])
		if err != nil {
			logger.Debug("menu link %s: target %s/%s not found: %v", entity.Key(), m[1], m[2], err)
			continue
		}
		if et, _ := c.schema.EntityType(target.EntityType); !et.Fieldable {
			continue
		}
		doc, err := session.ExportReference(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("export link target of %s: %w", entity.Key(), err)
		}
		item[keyLinkEntity] = doc.ToMap()
		item["uri"] = "entity:" + target.EntityType + "/" + target.UUID
	}
	return out, nil
}

// MapBaseFieldsValues imports the parent first, then resolves the link
// target and points the URI at its destination id.
func (c *MenuLink) MapBaseFieldsValues(ctx context.Context, session driven.ImportSession, values map[string]any, entity *domain.Entity) (map[string]any, error) {
	out := mapKeys(values, menuLinkKeys...)

	out[keyMenuParent] = ""
	if raw := values[keyMenuParent]; !domain.IsEmpty(raw) {
		doc, err := domain.DocumentFromValue(raw)
		if err != nil {
			logger.Warn("menu link %s: parent: %v", entity.Key(), err)
		} else if parent, err := session.ResolveReference(ctx, doc); err != nil {
			logger.Warn("menu link %s: parent: %v", entity.Key(), err)
		} else {
			out[keyMenuParent] = parentPrefix + parent.UUID
		}
	}

	items, _ := domain.AsItems(values[keyMenuLinkURI])
	links := domain.CopyItems(items)
	if links == nil {
		links = domain.FieldItems{}
	}
	for _, item := range links {
		raw, present := item[keyLinkEntity]
		delete(item, keyLinkEntity)
		if !present {
			continue
		}
		doc, err := domain.DocumentFromValue(raw)
		if err != nil {
			logger.Warn("menu link %s: link target: %v", entity.Key(), err)
			continue
		}
		target, err := session.ResolveReference(ctx, doc)
		if err != nil {
			logger.Warn("menu link %s: link target: %v", entity.Key(), err)
			continue
		}
		item["uri"] = "entity:" + target.EntityType + "/" + target.ID
	}
	out[keyMenuLinkURI] = links
	return out, nil
}
