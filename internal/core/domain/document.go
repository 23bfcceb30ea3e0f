package domain

import "fmt"

// Document keys as they appear in the serialised form.
const (
	KeyUUID         = "uuid"
	KeyEntityType   = "entity_type"
	KeyBundle       = "bundle"
	KeySiteUUID     = "site_uuid"
	KeyBaseFields   = "base_fields"
	KeyCustomFields = "custom_fields"
)

// Document is the portable form of an entity.
//
// A document whose CustomFields is nil is a reference stub: it identifies
// an entity that was already exported in full elsewhere in the same pass,
// or one that only needs to exist on the destination. An empty but non-nil
// CustomFields still marks a full document.
type Document struct {
	// UUID identifies the entity across sites.
	UUID string

	// EntityType is the entity type id.
	EntityType string

	// Bundle is the entity bundle.
	Bundle string

	// SiteUUID identifies the source site. Optional.
	SiteUUID string

	// BaseFields holds the output of the entity type's base codec.
	BaseFields map[string]any

	// CustomFields holds one codec output per configurable field.
	// Nil for reference stubs.
	CustomFields map[string]any
}

// NewStub creates a reference stub document.
func NewStub(entityType, bundle, uuid string, baseFields map[string]any) *Document {
	if baseFields == nil {
		baseFields = map[string]any{}
	}
	return &Document{
		UUID:       uuid,
		EntityType: entityType,
		Bundle:     bundle,
		BaseFields: baseFields,
	}
}

// IsFull reports whether the document carries custom fields.
func (d *Document) IsFull() bool {
	return d != nil && d.CustomFields != nil
}

// Key returns the per-pass cache key of the document's entity.
func (d *Document) Key() string {
	return EntityKey(d.EntityType, d.UUID)
}

// ToMap renders the document as a plain mapping suitable for encoding.
// The custom_fields key is only present on full documents.
func (d *Document) ToMap() map[string]any {
	m := map[string]any{
		KeyUUID:       d.UUID,
		KeyEntityType: d.EntityType,
		KeyBundle:     d.Bundle,
	}
	if d.SiteUUID != "" {
		m[KeySiteUUID] = d.SiteUUID
	}
	base := d.BaseFields
	if base == nil {
		base = map[string]any{}
	}
	m[KeyBaseFields] = base
	if d.CustomFields != nil {
		m[KeyCustomFields] = d.CustomFields
	}
	return m
}

// IsFullDocument reports whether a decoded value is a full document,
// i.e. a mapping with a custom_fields key.
func IsFullDocument(v any) bool {
	m, ok := AsMap(v)
	if !ok {
		return false
	}
	_, ok = m[KeyCustomFields]
	return ok
}

// DocumentFromValue parses a decoded mapping into a Document.
// It requires uuid, entity_type and bundle. base_fields and custom_fields
// must be mappings when present. A null custom_fields value still marks
// the document as full.
func DocumentFromValue(v any) (*Document, error) {
	m, ok := AsMap(v)
	if !ok {
		return nil, fmt.Errorf("document is not a mapping: %w", ErrInvalidInput)
	}

	doc := &Document{
		UUID:       AsString(m[KeyUUID]),
		EntityType: AsString(m[KeyEntityType]),
		Bundle:     AsString(m[KeyBundle]),
		SiteUUID:   AsString(m[KeySiteUUID]),
	}
	if doc.UUID == "" || doc.EntityType == "" || doc.Bundle == "" {
		return nil, fmt.Errorf("document requires uuid, entity_type and bundle: %w", ErrInvalidInput)
	}

	doc.BaseFields = map[string]any{}
	if raw, present := m[KeyBaseFields]; present && raw != nil {
		base, ok := AsMap(raw)
		if !ok {
			return nil, fmt.Errorf("base_fields of %s is not a mapping: %w", doc.Key(), ErrInvalidInput)
		}
		doc.BaseFields = base
	}

	if raw, present := m[KeyCustomFields]; present {
		doc.CustomFields = map[string]any{}
		if raw != nil {
			custom, ok := AsMap(raw)
			if !ok {
				return nil, fmt.Errorf("custom_fields of %s is not a mapping: %w", doc.Key(), ErrInvalidInput)
			}
			doc.CustomFields = custom
		}
	}

	return doc, nil
}

// ConfigReference points at a configuration entity by name.
type ConfigReference struct {
	// DependencyName is the configuration dependency name of the target.
	DependencyName string

	// Value is the target id.
	Value string
}

// ConfigReferenceType is the discriminator value of a ConfigReference.
const ConfigReferenceType = "config"

// ToMap renders the reference as {type: config, dependency_name, value}.
func (r ConfigReference) ToMap() map[string]any {
	return map[string]any{
		"type":            ConfigReferenceType,
		"dependency_name": r.DependencyName,
		"value":           r.Value,
	}
}

// ConfigReferenceFromValue recognises a decoded ConfigReference.
func ConfigReferenceFromValue(v any) (ConfigReference, bool) {
	m, ok := AsMap(v)
	if !ok || AsString(m["type"]) != ConfigReferenceType {
		return ConfigReference{}, false
	}
	return ConfigReference{
		DependencyName: AsString(m["dependency_name"]),
		Value:          AsString(m["value"]),
	}, true
}
