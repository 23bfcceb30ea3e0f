package base

import (
	"context"
	"fmt"

	"github.com/custodia-labs/contentsync/internal/core/domain"
	"github.com/custodia-labs/contentsync/internal/core/ports/driven"
	"github.com/custodia-labs/contentsync/internal/logger"
)

const (
	keyAuthor      = "author"
	keyRevisionLog = "revision_log_message"
	keyMenuLink    = "menu_link"
	unknownAuthor  = "Unknown"
)

var (
	_ driven.BaseFieldsCodec = (*Node)(nil)
	_ driven.AfterImportHook = (*Node)(nil)
)

// Node handles content nodes. The author travels as an email address and
// the node's menu link is exported alongside it.
type Node struct {
	store   driven.EntityStore
	current driven.CurrentUser
}

// NewNode creates a node codec. current may be nil.
func NewNode(store driven.EntityStore, current driven.CurrentUser) *Node {
	return &Node{store: store, current: current}
}

// EntityType returns "node".
func (c *Node) EntityType() string { return "node" }

// ExportBaseValues exports the node fields, the author's email and the
// menu link pointing at the node when it was not exported yet.
func (c *Node) ExportBaseValues(ctx context.Context, session driven.ExportSession, entity *domain.Entity) (map[string]any, error) {
	out := exportKeys(entity, "title", "status", "langcode", "created")
	out[keyAuthor] = c.authorEmail(ctx, entity)
	out[keyRevisionLog] = entity.Get("revision_log")
	out["revision_uid"] = entity.Get("revision_uid")

	link, err := c.menuLink(ctx, entity)
	if err != nil {
		return nil, err
	}
	if link != nil && !session.IsReferenceCached(link) {
		doc, err := session.ExportEntity(ctx, link)
		if err != nil {
			return nil, fmt.Errorf("export menu link of %s: %w", entity.Key(), err)
		}
		out[keyMenuLink] = doc.ToMap()
	}
	return out, nil
}

func (c *Node) authorEmail(ctx context.Context, entity *domain.Entity) string {
	uid := entity.GetString("uid")
	if uid == "" {
		return ""
	}
	owner, err := c.store.Load(ctx, "user", uid)
	if err != nil {
		logger.Debug("node %s: owner %s not found: %v", entity.Key(), uid, err)
		return ""
	}
	return owner.GetString("mail")
}

// menuLink finds the menu link whose first link points at the node.
func (c *Node) menuLink(ctx context.Context, entity *domain.Entity) (*domain.Entity, error) {
	if entity.IsNew() {
		return nil, nil
	}
	links, err := c.store.List(ctx, menuLinkType)
	if err != nil {
		return nil, fmt.Errorf("list menu links: %w", err)
	}
	want := "entity:" + entity.EntityType + "/" + entity.ID
	for _, l := range links {
		items, _ := domain.AsItems(l.Get(keyMenuLinkURI))
		if len(items) > 0 && domain.AsString(items[0]["uri"]) == want {
			return l, nil
		}
	}
	return nil, nil
}

// MapBaseFieldsValues maps the node fields and resolves the author by
// email. Without a matching account the node is owned by the importing
// user and the revision log records the original author.
func (c *Node) MapBaseFieldsValues(ctx context.Context, _ driven.ImportSession, values map[string]any, entity *domain.Entity) (map[string]any, error) {
	out := mapKeys(values, "title", "langcode", "created", "status")
	logMessage := domain.AsString(values[keyRevisionLog])

	email := domain.AsString(values[keyAuthor])
	if email != "" {
		users, err := c.store.LoadByProperties(ctx, "user", map[string]any{"mail": email})
		if err != nil {
			return nil, fmt.Errorf("find author %s: %w", email, err)
		}
		if len(users) > 0 {
			out["uid"] = users[0].ID
			if logMessage != "" {
				out["revision_log"] = logMessage
			}
			return out, nil
		}
	}

	if c.current != nil {
		if account := c.current.Current(ctx); account.Authenticated {
			out["uid"] = account.ID
		}
	}
	original := email
	if original == "" {
		original = unknownAuthor
	}
	note := "Original Author: " + original
	if logMessage != "" {
		note = logMessage + "\n" + note
	}
	out["revision_log"] = note
	logger.Debug("node %s: author %q not found, owned by importing user", entity.Key(), email)
	return out, nil
}

// AfterBaseValuesImport imports the node's menu link once the node is saved,
// so the link can point at it.
func (c *Node) AfterBaseValuesImport(ctx context.Context, session driven.ImportSession, values map[string]any, entity *domain.Entity) error {
	raw, ok := values[keyMenuLink]
	if !ok || domain.IsEmpty(raw) {
		return nil
	}
	doc, err := domain.DocumentFromValue(raw)
	if err != nil {
		logger.Warn("node %s: menu link: %v", entity.Key(), err)
		return nil
	}
	if _, err := session.ResolveReference(ctx, doc); err != nil {
		logger.Warn("node %s: menu link: %v", entity.Key(), err)
	}
	return nil
}
