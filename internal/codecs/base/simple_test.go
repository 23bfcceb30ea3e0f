package base

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contentsync/internal/codecs/serialized"
	"github.com/custodia-labs/contentsync/internal/core/domain"
)

func TestBlockContent(t *testing.T) {
	block := entity("block_content", "basic", "b-1", map[string]any{
		"info": "Footer", "reusable": true, "langcode": "en", "revision_id": 12,
	})

	out, err := BlockContent{}.ExportBaseValues(context.Background(), newMockExportSession(), block)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"info": "Footer", "reusable": true, "langcode": "en",
		"block_revision_id": 12, "enforce_new_revision": true,
	}, out)

	mapped, err := BlockContent{}.MapBaseFieldsValues(context.Background(), nil, out, domain.NewEntity("block_content", "basic", "b-1"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"info": "Footer", "reusable": true, "langcode": "en"}, mapped)
}

func TestMedia(t *testing.T) {
	media := entity("media", "image", "m-1", map[string]any{"name": "Logo", "status": 1})

	out, err := Media{}.ExportBaseValues(context.Background(), newMockExportSession(), media)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Logo", "created": nil, "status": 1, "langcode": nil}, out)

	mapped, err := Media{}.MapBaseFieldsValues(context.Background(), nil, map[string]any{"name": "Logo"}, media)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Logo"}, mapped)
}

func TestUser(t *testing.T) {
	user := entity("user", "user", "u-1", map[string]any{
		"mail": "a@example.com", "init": "a@example.com", "name": "alice",
		"created": 100, "status": 1, "timezone": "UTC", "pass": "secret",
	})

	out, err := User{}.ExportBaseValues(context.Background(), newMockExportSession(), user)
	require.NoError(t, err)
	assert.NotContains(t, out, "pass")
	assert.Equal(t, "alice", out["name"])

	mapped, err := User{}.MapBaseFieldsValues(context.Background(), nil, out, domain.NewEntity("user", "user", "u-1"))
	require.NoError(t, err)
	assert.Equal(t, out, mapped)
}

func TestParagraph(t *testing.T) {
	stored, err := serialized.Encode(map[string]any{"style": "wide"})
	require.NoError(t, err)
	para := entity("paragraph", "text", "p-1", map[string]any{
		"status": 1, "langcode": "en", "created": 5, keyBehaviorSettings: stored,
	})

	out, err := Paragraph{}.ExportBaseValues(context.Background(), newMockExportSession(), para)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"style": "wide"}, out[keyBehaviorSettings])

	mapped, err := Paragraph{}.MapBaseFieldsValues(context.Background(), nil, out, domain.NewEntity("paragraph", "text", "p-1"))
	require.NoError(t, err)
	assert.Equal(t, stored, mapped[keyBehaviorSettings])
	assert.Equal(t, "en", mapped["langcode"])
}

func TestParagraph_EmptyBehaviorSettings(t *testing.T) {
	for _, raw := range []any{nil, "", "not serialised", map[string]any{}} {
		para := entity("paragraph", "text", "p-1", map[string]any{keyBehaviorSettings: raw})
		out, err := Paragraph{}.ExportBaseValues(context.Background(), newMockExportSession(), para)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{}, out[keyBehaviorSettings])

		mapped, err := Paragraph{}.MapBaseFieldsValues(context.Background(), nil, out, para)
		require.NoError(t, err)
		assert.NotContains(t, mapped, keyBehaviorSettings)
	}
}
