package field

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/custodia-labs/contentsync/internal/core/domain"
	"github.com/custodia-labs/contentsync/internal/core/ports/driven"
	"github.com/custodia-labs/contentsync/internal/logger"
)

// Rich text field types.
const (
	TypeText            = "text"
	TypeTextLong        = "text_long"
	TypeTextWithSummary = "text_with_summary"
)

const (
	keyEmbedEntities = "embed_entities"
	attrEntityType   = "data-entity-type"
	attrEntityUUID   = "data-entity-uuid"
)

// Ensure Text implements the interface.
var _ driven.FieldCodec = (*Text)(nil)

// Text exports entities embedded in rich text markup:
//
//   - <drupal-media data-entity-type="media" data-entity-uuid="..."> is always exported in full
//   - <img data-entity-type="file" data-entity-uuid="..."> is always exported in full
//   - <a href data-entity-type data-entity-uuid> follows the reference cache
//
// The exports are attached to the item under embed_entities. On import the
// embedded entities are resolved first, then internal link hrefs are pointed
// at the destination entities.
type Text struct {
	store  driven.EntityStore
	schema driven.SchemaProvider
	urls   driven.URLGenerator
}

// NewText creates a rich text codec. urls may be nil, in which case link
// hrefs are left unchanged on import.
func NewText(store driven.EntityStore, schema driven.SchemaProvider, urls driven.URLGenerator) *Text {
	return &Text{store: store, schema: schema, urls: urls}
}

// FieldTypes returns the rich text field types.
func (c *Text) FieldTypes() []string {
	return []string{TypeText, TypeTextLong, TypeTextWithSummary}
}

// Export copies the items and attaches embedded entity exports.
func (c *Text) Export(ctx context.Context, session driven.ExportSession, field domain.Field) (any, error) {
	items := domain.CopyItems(field.Items)
	if items == nil {
		items = domain.FieldItems{}
	}
	for _, item := range items {
		markup := domain.AsString(item["value"])
		if markup == "" {
			continue
		}
		embeds, err := c.exportEmbeds(ctx, session, markup)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Definition.Name, err)
		}
		if len(embeds) > 0 {
			item[keyEmbedEntities] = embeds
		}
	}
	return items, nil
}

type embed struct {
	entityType string
	uuid       string
	// full skips the reference cache.
	full bool
}

func scanEmbeds(markup string) []embed {
	var out []embed
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return out
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		tok := z.Token()
		entityType := attr(tok, attrEntityType)
		uuid := attr(tok, attrEntityUUID)
		if entityType == "" || uuid == "" {
			continue
		}
		switch tok.Data {
		case "drupal-media":
			if entityType == "media" {
				out = append(out, embed{entityType: entityType, uuid: uuid, full: true})
			}
		case "img":
			if entityType == "file" {
				out = append(out, embed{entityType: entityType, uuid: uuid, full: true})
			}
		case "a":
			if hasAttr(tok, "href") {
				out = append(out, embed{entityType: entityType, uuid: uuid})
			}
		}
	}
}

func (c *Text) exportEmbeds(ctx context.Context, session driven.ExportSession, markup string) ([]any, error) {
	var out []any
	for _, em := range scanEmbeds(markup) {
		e, err := c.store.LoadByUUID(ctx, em.entityType, em.uuid)
		if err != nil {
			logger.Debug("embedded %s %s not found: %v", em.entityType, em.uuid, err)
			continue
		}
		var doc *domain.Document
		if em.full {
			doc, err = session.ExportEntity(ctx, e)
		} else {
			if et, _ := c.schema.EntityType(e.EntityType); !et.Fieldable {
				continue
			}
			doc, err = session.ExportReference(ctx, e)
		}
		if err != nil {
			return nil, fmt.Errorf("export embedded %s: %w", e.Key(), err)
		}
		out = append(out, doc.ToMap())
	}
	return out, nil
}

// Import resolves embedded entities, rewrites internal links and strips
// embed_entities from the items.
func (c *Text) Import(ctx context.Context, session driven.ImportSession, entity *domain.Entity, def domain.FieldDefinition, value any) error {
	if value == nil {
		entity.SetField(def.Name, domain.FieldItems{})
		return nil
	}
	items, ok := domain.AsItems(value)
	if !ok {
		return fmt.Errorf("field %s: expected a list of text items, got %T: %w", def.Name, value, domain.ErrInvalidInput)
	}

	out := domain.CopyItems(items)
	for _, item := range out {
		raw := item[keyEmbedEntities]
		delete(item, keyEmbedEntities)
		embeds, _ := domain.AsList(raw)

		resolved := make(map[string]*domain.Entity, len(embeds))
		for _, v := range embeds {
			doc, err := domain.DocumentFromValue(v)
			if err != nil {
				logger.Warn("field %s of %s: %v", def.Name, entity.Key(), err)
				continue
			}
			e, err := session.ResolveReference(ctx, doc)
			if err != nil {
				logger.Warn("field %s of %s: %v", def.Name, entity.Key(), err)
				continue
			}
			resolved[doc.Key()] = e
		}

		markup, isString := item["value"].(string)
		if c.urls != nil && isString && len(resolved) > 0 {
			item["value"] = c.rewriteLinks(markup, resolved)
		}
	}
	entity.SetField(def.Name, out)
	return nil
}

// rewriteLinks points the href of every internal link whose target was
// resolved at the destination entity's canonical URL. All other markup is
// copied byte for byte.
func (c *Text) rewriteLinks(markup string, resolved map[string]*domain.Entity) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return b.String()
		}
		raw := string(z.Raw())
		if tt == html.StartTagToken || tt == html.SelfClosingTagToken {
			tok := z.Token()
			if tok.Data == "a" && hasAttr(tok, "href") {
				key := domain.EntityKey(attr(tok, attrEntityType), attr(tok, attrEntityUUID))
				if e, ok := resolved[key]; ok {
					setAttr(&tok, "href", c.urls.CanonicalURL(e))
					b.WriteString(tok.String())
					continue
				}
			}
		}
		b.WriteString(raw)
	}
}

func attr(tok html.Token, name string) string {
	for _, a := range tok.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasAttr(tok html.Token, name string) bool {
	for _, a := range tok.Attr {
		if a.Key == name {
			return true
		}
	}
	return false
}

func setAttr(tok *html.Token, name, val string) {
	for i := range tok.Attr {
		if tok.Attr[i].Key == name {
			tok.Attr[i].Val = val
			return
		}
	}
	tok.Attr = append(tok.Attr, html.Attribute{Key: name, Val: val})
}
