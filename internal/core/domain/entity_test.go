package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestEntity_Clone tests that clones do not share state
func TestEntity_Clone(t *testing.T) {
	e := NewEntity("node", "page", "u1")
	e.ID = "7"
	e.Set("title", "Llama")
	e.Set("tags", []any{map[string]any{"x": 1}})
	e.SetField("body", FieldItems{{"value": "<p>hi</p>"}})

	c := e.Clone()
	c.Set("title", "Alpaca")
	c.Field("body")[0]["value"] = "changed"
	c.Get("tags").([]any)[0].(map[string]any)["x"] = 2

	assert.Equal(t, "Llama", e.GetString("title"))
	assert.Equal(t, "<p>hi</p>", e.Field("body")[0]["value"])
	assert.Equal(t, 1, e.Get("tags").([]any)[0].(map[string]any)["x"])
	assert.Equal(t, "7", c.ID)
	assert.Equal(t, "node:u1", c.Key())
}

// TestEntity_IsNew tests the saved state
func TestEntity_IsNew(t *testing.T) {
	e := NewEntity("user", "user", "u1")
	assert.True(t, e.IsNew())
	e.ID = "1"
	assert.False(t, e.IsNew())
}

// TestEntity_NilMaps tests accessors on zero entities
func TestEntity_NilMaps(t *testing.T) {
	var e Entity
	assert.Nil(t, e.Get("x"))
	assert.Nil(t, e.Field("x"))
	e.Set("x", 1)
	e.SetField("f", FieldItems{})
	assert.Equal(t, 1, e.Get("x"))
	assert.NotNil(t, e.Field("f"))
}

// TestEntityType_HasBundle tests bundle membership
func TestEntityType_HasBundle(t *testing.T) {
	node := EntityType{ID: "node", Bundles: []string{"page", "article"}}
	assert.True(t, node.HasBundle("page"))
	assert.False(t, node.HasBundle("blog"))

	user := EntityType{ID: "user"}
	assert.True(t, user.HasBundle("user"))
	assert.False(t, user.HasBundle("admin"))
}

// TestFieldDefinition_TargetType tests the reference target setting
func TestFieldDefinition_TargetType(t *testing.T) {
	def := FieldDefinition{Name: "field_tags", Type: "entity_reference", Settings: map[string]any{"target_type": "taxonomy_term"}}
	assert.Equal(t, "taxonomy_term", def.TargetType())
	assert.Empty(t, FieldDefinition{}.TargetType())
}

// TestValues tests decoded value helpers
func TestValues(t *testing.T) {
	items, ok := AsItems([]any{map[string]any{"a": 1}, "skip"})
	assert.True(t, ok)
	assert.Len(t, items, 1)

	_, ok = AsItems("x")
	assert.False(t, ok)

	assert.Equal(t, "12", AsString(12))
	assert.Equal(t, "1.5", AsString(1.5))
	assert.Equal(t, "1", AsString(true))
	assert.Equal(t, "", AsString(nil))

	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty(map[string]any{}))
	assert.False(t, IsEmpty(0))
}
