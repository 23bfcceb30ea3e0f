package field

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/contentsync/internal/codecs/serialized"
	"github.com/custodia-labs/contentsync/internal/core/domain"
	"github.com/custodia-labs/contentsync/internal/core/ports/driven"
	"github.com/custodia-labs/contentsync/internal/logger"
)

// TypeMetatag is the metatag field type.
const TypeMetatag = "metatag"

// Ensure Metatag implements the interface.
var _ driven.FieldCodec = (*Metatag)(nil)

// Metatag decodes the stored tag string into a mapping.
// Stored values starting with "a:" are PHP-serialised, values starting with
// `{"` are JSON. Anything else exports as an empty mapping.
type Metatag struct{}

// NewMetatag creates a metatag codec.
func NewMetatag() *Metatag {
	return &Metatag{}
}

// FieldTypes returns the metatag field type.
func (c *Metatag) FieldTypes() []string {
	return []string{TypeMetatag}
}

// Export decodes the first item's value.
func (c *Metatag) Export(_ context.Context, _ driven.ExportSession, field domain.Field) (any, error) {
	if len(field.Items) == 0 {
		return map[string]any{}, nil
	}
	return DecodeMetatags(domain.AsString(field.Items[0]["value"])), nil
}

// DecodeMetatags decodes a stored metatag string.
func DecodeMetatags(raw string) map[string]any {
	var decoded any
	switch {
	case strings.HasPrefix(raw, "a:"):
		m, err := serialized.Decode(raw)
		if err != nil {
			logger.Warn("metatag: %v", err)
			return map[string]any{}
		}
		return m
	case strings.HasPrefix(raw, `{"`):
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			logger.Warn("metatag: %v", err)
			return map[string]any{}
		}
	default:
		return map[string]any{}
	}
	m, ok := domain.AsMap(decoded)
	if !ok {
		return map[string]any{}
	}
	return m
}

// Import re-encodes the mapping as a single item, preferring the
// PHP-serialised form and falling back to JSON.
func (c *Metatag) Import(_ context.Context, _ driven.ImportSession, entity *domain.Entity, def domain.FieldDefinition, value any) error {
	tags, ok := domain.AsMap(value)
	if !ok {
		if value != nil {
			return fmt.Errorf("field %s: expected a mapping, got %T: %w", def.Name, value, domain.ErrInvalidInput)
		}
		tags = map[string]any{}
	}
	encoded, err := EncodeMetatags(tags)
	if err != nil {
		return fmt.Errorf("field %s of %s: %w", def.Name, entity.Key(), err)
	}
	entity.SetField(def.Name, domain.FieldItems{{"value": encoded}})
	return nil
}

// EncodeMetatags encodes a mapping for storage.
// It fails only when neither encoding can represent the value.
func EncodeMetatags(tags map[string]any) (string, error) {
	s, serr := serialized.Encode(tags)
	if serr == nil {
		return s, nil
	}
	b, jerr := json.Marshal(tags)
	if jerr == nil {
		return string(b), nil
	}
	return "", fmt.Errorf("encode metatags: %w: %w", domain.ErrInvalidInput, errors.Join(serr, jerr))
}
