package base

import (
	"context"
	"fmt"

	"github.com/custodia-labs/contentsync/internal/core/domain"
	"github.com/custodia-labs/contentsync/internal/core/ports/driven"
	"github.com/custodia-labs/contentsync/internal/logger"
)

const (
	termType      = "taxonomy_term"
	keyTermParent = "parent"
	rootTermID    = "0"
)

// Ensure TaxonomyTerm implements the interface.
var _ driven.BaseFieldsCodec = (*TaxonomyTerm)(nil)

// TaxonomyTerm handles taxonomy terms. Parent terms are exported with the
// reference cache rules; the vocabulary is the bundle and travels in the
// document identity.
type TaxonomyTerm struct {
	store driven.EntityStore
}

// NewTaxonomyTerm creates a taxonomy term codec.
func NewTaxonomyTerm(store driven.EntityStore) *TaxonomyTerm {
	return &TaxonomyTerm{store: store}
}

// EntityType returns "taxonomy_term".
func (c *TaxonomyTerm) EntityType() string { return termType }

var termKeys = []string{"name", "description", "weight", "langcode", "status"}

// ExportBaseValues exports the term fields and its parents. Root parents
// (target id 0) are dropped, so a top-level term has an empty parent list.
func (c *TaxonomyTerm) ExportBaseValues(ctx context.Context, session driven.ExportSession, entity *domain.Entity) (map[string]any, error) {
	out := exportKeys(entity, termKeys...)

	parents := []any{}
	items, _ := domain.AsItems(entity.Get(keyTermParent))
	for _, item := range items {
		id := domain.AsString(item["target_id"])
		if id == "" || id == rootTermID {
			continue
		}
		parent, err := c.store.Load(ctx, termType, id)
		if err != nil {
			logger.Debug("term %s: parent %s not found: %v", entity.Key(), id, err)
			continue
		}
		doc, err := session.ExportReference(ctx, parent)
		if err != nil {
			return nil, fmt.Errorf("export parent of %s: %w", entity.Key(), err)
		}
		parents = append(parents, doc.ToMap())
	}
	out[keyTermParent] = parents
	return out, nil
}

// MapBaseFieldsValues maps the term fields and resolves each parent to its
// destination id. A term without resolvable parents is placed at the root.
func (c *TaxonomyTerm) MapBaseFieldsValues(ctx context.Context, session driven.ImportSession, values map[string]any, entity *domain.Entity) (map[string]any, error) {
	out := mapKeys(values, termKeys...)

	var parents domain.FieldItems
	list, _ := domain.AsList(values[keyTermParent])
	for _, raw := range list {
		doc, err := domain.DocumentFromValue(raw)
		if err != nil {
			logger.Warn("term %s: parent: %v", entity.Key(), err)
			continue
		}
		parent, err := session.ResolveReference(ctx, doc)
		if err != nil {
			logger.Warn("term %s: parent: %v", entity.Key(), err)
			continue
		}
		parents = append(parents, map[string]any{"target_id": parent.ID})
	}
	if len(parents) == 0 {
		parents = domain.FieldItems{{"target_id": rootTermID}}
	}
	out[keyTermParent] = parents
	return out, nil
}
