package base

import (
	"context"
	"fmt"

	"github.com/custodia-labs/contentsync/internal/codecs/serialized"
	"github.com/custodia-labs/contentsync/internal/core/domain"
	"github.com/custodia-labs/contentsync/internal/core/ports/driven"
	"github.com/custodia-labs/contentsync/internal/logger"
)

const keyBehaviorSettings = "behavior_settings"

// Ensure Paragraph implements the interface.
var _ driven.BaseFieldsCodec = (*Paragraph)(nil)

// Paragraph handles paragraphs. Behaviour settings are stored serialised
// on the entity and exported as a mapping.
type Paragraph struct{}

// EntityType returns "paragraph".
func (Paragraph) EntityType() string { return "paragraph" }

// ExportBaseValues exports status, language, creation time and the
// decoded behaviour settings.
func (Paragraph) ExportBaseValues(_ context.Context, _ driven.ExportSession, entity *domain.Entity) (map[string]any, error) {
	out := exportKeys(entity, "status", "langcode", "created")
	out[keyBehaviorSettings] = behaviorSettings(entity)
	return out, nil
}

func behaviorSettings(entity *domain.Entity) map[string]any {
	switch v := entity.Get(keyBehaviorSettings).(type) {
	case string:
		if v == "" {
			return map[string]any{}
		}
		decoded, err := serialized.Decode(v)
		if err != nil {
			logger.Warn("behavior settings of %s: %v", entity.Key(), err)
			return map[string]any{}
		}
		return decoded
	default:
		if m, ok := domain.AsMap(v); ok {
			return domain.CopyMap(m)
		}
		return map[string]any{}
	}
}

// MapBaseFieldsValues maps language, creation time and status, and stores
// non-empty behaviour settings serialised.
func (Paragraph) MapBaseFieldsValues(_ context.Context, _ driven.ImportSession, values map[string]any, _ *domain.Entity) (map[string]any, error) {
	out := mapKeys(values, "langcode", "created", "status")
	settings, ok := domain.AsMap(values[keyBehaviorSettings])
	if ok && len(settings) > 0 {
		encoded, err := serialized.Encode(settings)
		if err != nil {
			return nil, fmt.Errorf("behavior settings: %w: %w", domain.ErrInvalidInput, err)
		}
		out[keyBehaviorSettings] = encoded
	}
	return out, nil
}
