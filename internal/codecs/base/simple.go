package base

import (
	"context"

	"github.com/custodia-labs/contentsync/internal/core/domain"
	"github.com/custodia-labs/contentsync/internal/core/ports/driven"
)

var (
	_ driven.BaseFieldsCodec = (*BlockContent)(nil)
	_ driven.BaseFieldsCodec = (*Media)(nil)
	_ driven.BaseFieldsCodec = (*User)(nil)
)

// BlockContent handles reusable content blocks.
type BlockContent struct{}

// EntityType returns "block_content".
func (BlockContent) EntityType() string { return "block_content" }

// ExportBaseValues exports the block label, reusability, language and
// revision id. Imports always create a new revision.
func (BlockContent) ExportBaseValues(_ context.Context, _ driven.ExportSession, entity *domain.Entity) (map[string]any, error) {
	out := exportKeys(entity, "info", "reusable", "langcode")
	out["block_revision_id"] = entity.Get("revision_id")
	out["enforce_new_revision"] = true
	return out, nil
}

// MapBaseFieldsValues maps language, label and reusability.
func (BlockContent) MapBaseFieldsValues(_ context.Context, _ driven.ImportSession, values map[string]any, _ *domain.Entity) (map[string]any, error) {
	return mapKeys(values, "langcode", "info", "reusable"), nil
}

// Media handles media items.
type Media struct{}

// EntityType returns "media".
func (Media) EntityType() string { return "media" }

// ExportBaseValues exports name, creation time, status and language.
func (Media) ExportBaseValues(_ context.Context, _ driven.ExportSession, entity *domain.Entity) (map[string]any, error) {
	return exportKeys(entity, "name", "created", "status", "langcode"), nil
}

// MapBaseFieldsValues maps name, creation time, status and language.
func (Media) MapBaseFieldsValues(_ context.Context, _ driven.ImportSession, values map[string]any, _ *domain.Entity) (map[string]any, error) {
	return mapKeys(values, "name", "created", "status", "langcode"), nil
}

// User handles user accounts.
type User struct{}

// EntityType returns "user".
func (User) EntityType() string { return "user" }

var userKeys = []string{"mail", "init", "name", "created", "status", "timezone"}

// ExportBaseValues exports the account fields.
func (User) ExportBaseValues(_ context.Context, _ driven.ExportSession, entity *domain.Entity) (map[string]any, error) {
	return exportKeys(entity, userKeys...), nil
}

// MapBaseFieldsValues maps the account fields.
func (User) MapBaseFieldsValues(_ context.Context, _ driven.ImportSession, values map[string]any, _ *domain.Entity) (map[string]any, error) {
	return mapKeys(values, userKeys...), nil
}
