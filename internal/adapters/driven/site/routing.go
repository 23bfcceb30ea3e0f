package site

import (
	"context"

	"github.com/custodia-labs/contentsync/internal/core/domain"
	"github.com/custodia-labs/contentsync/internal/core/ports/driven"
)

// Ensure Router implements the interface.
var _ driven.URLGenerator = (*Router)(nil)

// canonicalRoutes maps entity types to their canonical path prefix.
var canonicalRoutes = map[string]string{
	"node":          "/node/",
	"taxonomy_term": "/taxonomy/term/",
	"user":          "/user/",
	"media":         "/media/",
	"block_content": "/block/",
}

// Router builds canonical paths for entities and resolves them through
// path_alias entities when an alias exists.
type Router struct {
	store driven.EntityStore
}

// NewRouter creates a router. store may be nil to disable alias lookup.
func NewRouter(store driven.EntityStore) *Router {
	return &Router{store: store}
}

// CanonicalURL returns the alias of the entity's system path, or the
// system path itself ("/node/1"). Unsaved entities have no URL.
func (r *Router) CanonicalURL(entity *domain.Entity) string {
	if entity == nil || entity.IsNew() {
		return ""
	}
	prefix, ok := canonicalRoutes[entity.EntityType]
	if !ok {
		prefix = "/" + entity.EntityType + "/"
	}
	path := prefix + entity.ID

	if r.store == nil {
		return path
	}
	aliases, err := r.store.LoadByProperties(context.Background(), "path_alias", map[string]any{"path": path})
	if err != nil || len(aliases) == 0 {
		return path
	}
	if alias := aliases[0].GetString("alias"); alias != "" {
		return alias
	}
	return path
}
