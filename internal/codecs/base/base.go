// Package base provides BaseFieldsCodec implementations, one per entity
// type. Base codecs move the built-in fields of an entity (title, status,
// owner...) which are the same for every bundle of the type.
package base

import "github.com/custodia-labs/contentsync/internal/core/domain"

// exportKeys copies the named base fields of entity.
// Unset fields are exported as nil.
func exportKeys(entity *domain.Entity, keys ...string) map[string]any {
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		out[k] = domain.CopyValue(entity.Get(k))
	}
	return out
}

// mapKeys copies the named portable values that are present.
func mapKeys(values map[string]any, keys ...string) map[string]any {
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := values[k]; ok {
			out[k] = domain.CopyValue(v)
		}
	}
	return out
}
