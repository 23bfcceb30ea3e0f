package domain

// FieldItems is the value of a configurable field: an ordered list of items,
// each item a mapping of property name to value (target_id, value, uri...).
type FieldItems []map[string]any

// Entity is a live content record held by the host entity store.
type Entity struct {
	// ID is the store-assigned identifier. Empty until the entity is first saved.
	ID string

	// UUID is the stable identity used to match entities across sites.
	UUID string

	// EntityType is the entity type id (node, user, file...).
	EntityType string

	// Bundle is the sub-type within the entity type (article, page...).
	// Bundleless entity types use the entity type id as the bundle.
	Bundle string

	// Base holds the built-in fields of the entity type.
	Base map[string]any

	// Fields holds the configurable fields attached to the bundle.
	Fields map[string]FieldItems
}

// NewEntity creates an unsaved entity with empty field maps.
func NewEntity(entityType, bundle, uuid string) *Entity {
	return &Entity{
		UUID:       uuid,
		EntityType: entityType,
		Bundle:     bundle,
		Base:       make(map[string]any),
		Fields:     make(map[string]FieldItems),
	}
}

// EntityKey returns the identity used by per-pass caches: "type:uuid".
func EntityKey(entityType, uuid string) string {
	return entityType + ":" + uuid
}

// Key returns the per-pass cache key of the entity.
func (e *Entity) Key() string {
	return EntityKey(e.EntityType, e.UUID)
}

// IsNew reports whether the entity has not been saved yet.
func (e *Entity) IsNew() bool {
	return e.ID == ""
}

// Get returns a base field value, or nil when unset.
func (e *Entity) Get(name string) any {
	if e.Base == nil {
		return nil
	}
	return e.Base[name]
}

// GetString returns a base field value as a string.
func (e *Entity) GetString(name string) string {
	return AsString(e.Get(name))
}

// Set assigns a base field value.
func (e *Entity) Set(name string, value any) {
	if e.Base == nil {
		e.Base = make(map[string]any)
	}
	e.Base[name] = value
}

// Field returns the items of a configurable field.
func (e *Entity) Field(name string) FieldItems {
	if e.Fields == nil {
		return nil
	}
	return e.Fields[name]
}

// SetField replaces the items of a configurable field.
func (e *Entity) SetField(name string, items FieldItems) {
	if e.Fields == nil {
		e.Fields = make(map[string]FieldItems)
	}
	e.Fields[name] = items
}

// Clone returns a deep copy of the entity.
// Stores hand out clones so callers never mutate stored state.
func (e *Entity) Clone() *Entity {
	if e == nil {
		return nil
	}
	c := &Entity{
		ID:         e.ID,
		UUID:       e.UUID,
		EntityType: e.EntityType,
		Bundle:     e.Bundle,
		Base:       CopyMap(e.Base),
		Fields:     make(map[string]FieldItems, len(e.Fields)),
	}
	if c.Base == nil {
		c.Base = make(map[string]any)
	}
	for name, items := range e.Fields {
		c.Fields[name] = CopyItems(items)
	}
	return c
}

// EntityType describes a registered entity type.
type EntityType struct {
	// ID is the entity type id.
	ID string

	// Label is the human-readable name.
	Label string

	// Fieldable indicates the type carries configurable fields and can be
	// exported as a document. Non-fieldable content types are skipped.
	Fieldable bool

	// Config marks configuration entities. They are referenced by id
	// through a ConfigReference and never exported in full.
	Config bool

	// Bundles lists the bundles of the type. Empty means the type is
	// bundleless and its only bundle equals its id.
	Bundles []string
}

// HasBundle reports whether bundle belongs to the entity type.
func (t EntityType) HasBundle(bundle string) bool {
	if len(t.Bundles) == 0 {
		return bundle == t.ID
	}
	for _, b := range t.Bundles {
		if b == bundle {
			return true
		}
	}
	return false
}

// FieldDefinition describes a configurable field attached to a bundle.
type FieldDefinition struct {
	// Name is the machine name of the field (field_tags, body...).
	Name string

	// Type is the field type used for codec dispatch.
	Type string

	// Settings holds the field storage settings, e.g. target_type.
	Settings map[string]any
}

// TargetType returns the target entity type of a reference field.
func (d FieldDefinition) TargetType() string {
	return AsString(d.Settings["target_type"])
}

// Field is one configurable field of an entity, as handed to a field codec
// during export.
type Field struct {
	// Entity owns the field.
	Entity *Entity

	// Definition describes the field.
	Definition FieldDefinition

	// Items is the current field value.
	Items FieldItems
}

// Account is the user an import runs as.
type Account struct {
	// ID is the user entity id.
	ID string

	// Email is the user's mail address.
	Email string

	// Authenticated is false for anonymous runs.
	Authenticated bool
}

// Crop is a focal point crop of an image file, in percent of the image
// dimensions.
type Crop struct {
	X      int
	Y      int
	Width  int
	Height int
}

// ToMap renders the crop as {width, height, x, y}.
func (c Crop) ToMap() map[string]any {
	return map[string]any{
		"width":  c.Width,
		"height": c.Height,
		"x":      c.X,
		"y":      c.Y,
	}
}

// CropFromValue parses a decoded crop mapping.
func CropFromValue(v any) (Crop, bool) {
	m, ok := AsMap(v)
	if !ok || len(m) == 0 {
		return Crop{}, false
	}
	return Crop{
		X:      asInt(m["x"]),
		Y:      asInt(m["y"]),
		Width:  asInt(m["width"]),
		Height: asInt(m["height"]),
	}, true
}
