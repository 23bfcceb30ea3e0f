package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contentsync/internal/core/domain"
)

func TestEncodeDecodeDocument(t *testing.T) {
	doc := &domain.Document{
		UUID:       "u1",
		EntityType: "node",
		Bundle:     "article",
		SiteUUID:   testSiteUUID,
		BaseFields: map[string]any{"title": "Llama", "status": 1},
		CustomFields: map[string]any{
			"field_tags": []any{domain.NewStub("taxonomy_term", "tags", "t1", nil).ToMap()},
		},
	}

	data, err := EncodeDocument(doc)
	require.NoError(t, err)
	got, err := DecodeDocument(data)
	require.NoError(t, err)

	assert.Equal(t, doc.UUID, got.UUID)
	assert.Equal(t, doc.SiteUUID, got.SiteUUID)
	assert.Equal(t, "Llama", got.BaseFields["title"])
	assert.Equal(t, 1, got.BaseFields["status"])
	assert.False(t, domain.IsFullDocument(got.CustomFields["field_tags"].([]any)[0]))
}

func TestDecodeDocument_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not yaml", "uuid: [unclosed"},
		{"missing uuid", "entity_type: page\nbundle: basic\nbase_fields: {}\ncustom_fields: {}\n"},
		{"missing bundle", "uuid: u1\nentity_type: page\nbase_fields: {}\ncustom_fields: {}\n"},
		{"missing custom fields", "uuid: u1\nentity_type: page\nbundle: basic\nbase_fields: {}\n"},
		{"missing base fields", "uuid: u1\nentity_type: page\nbundle: basic\ncustom_fields: {}\n"},
		{"base fields not a mapping", "uuid: u1\nentity_type: page\nbundle: basic\nbase_fields: [1]\ncustom_fields: {}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDocument([]byte(tt.data))
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestDecodeDocument_NullSections(t *testing.T) {
	doc, err := DecodeDocument([]byte("uuid: u1\nentity_type: page\nbundle: basic\nbase_fields: null\ncustom_fields: null\n"))

	require.NoError(t, err)
	assert.True(t, doc.IsFull())
	assert.Empty(t, doc.BaseFields)
	assert.Empty(t, doc.CustomFields)

	// the same value nested in a reference field reads the same way
	nested, err := domain.DocumentFromValue(map[string]any{
		"uuid": "u1", "entity_type": "page", "bundle": "basic", "custom_fields": nil,
	})
	require.NoError(t, err)
	assert.Equal(t, doc.IsFull(), nested.IsFull())
}

func TestDocumentFileName(t *testing.T) {
	doc := domain.NewStub("node", "article", "0f6c", nil)

	assert.Equal(t, "node-article-0f6c.yml", DocumentFileName(doc))
}

func TestAssetNames(t *testing.T) {
	name, ok := assetEntryName("public://images/2024/a.png")
	require.True(t, ok)
	assert.Equal(t, "assets/public/images/2024/a.png", name)

	uri, ok := assetURI(name)
	require.True(t, ok)
	assert.Equal(t, "public://images/2024/a.png", uri)

	for _, bad := range []string{"images/a.png", "s3://bucket/a.png", "public://"} {
		_, ok := assetEntryName(bad)
		assert.False(t, ok, bad)
	}
	for _, bad := range []string{"node-article-u1.yml", "assets/ftp/a.png", "assets/public"} {
		_, ok := assetURI(bad)
		assert.False(t, ok, bad)
	}
}

func TestDirOf(t *testing.T) {
	assert.Equal(t, "public://images", dirOf("public://images/a.png"))
	assert.Equal(t, "", dirOf("public://a.png"))
}

func TestSettingsAccessPolicy_CanExport(t *testing.T) {
	settings := domain.DefaultSyncSettings()
	settings.AllowedEntityTypes = map[string][]string{"node": {"article"}, "path_alias": nil}
	policy := NewSettingsAccessPolicy(testSchema(), settings)
	ctx := context.Background()

	assert.True(t, policy.CanExport(ctx, domain.NewEntity("node", "article", "a")))
	assert.False(t, policy.CanExport(ctx, domain.NewEntity("page", "basic", "p")))
	assert.False(t, policy.CanExport(ctx, domain.NewEntity("path_alias", "path_alias", "x")))
	assert.False(t, policy.CanExport(ctx, domain.NewEntity("widget", "widget", "w")))
}

func TestSettingsAccessPolicy_EmptyAllowListAllowsAll(t *testing.T) {
	policy := NewSettingsAccessPolicy(testSchema(), domain.DefaultSyncSettings())

	assert.True(t, policy.CanExport(context.Background(), domain.NewEntity("page", "basic", "p")))
}
