package field

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contentsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/contentsync/internal/core/domain"
)

var bodyDefinition = domain.FieldDefinition{Name: "body", Type: TypeTextWithSummary}

// pathURLs builds "/{type}/{id}" paths.
type pathURLs struct{}

func (pathURLs) CanonicalURL(e *domain.Entity) string {
	return "/" + e.EntityType + "/" + e.ID
}

func TestScanEmbeds(t *testing.T) {
	markup := `<p><drupal-media data-entity-type="media" data-entity-uuid="m-1"></drupal-media>` +
		`<img src="/a.png" data-entity-type="file" data-entity-uuid="f-1" />` +
		`<img src="/b.png" data-entity-type="media" data-entity-uuid="m-2" />` +
		`<a href="/node/3" data-entity-type="node" data-entity-uuid="n-3">x</a>` +
		`<a data-entity-type="node" data-entity-uuid="n-4">no href</a>` +
		`<span data-entity-type="node" data-entity-uuid="n-5"></span></p>`

	assert.Equal(t, []embed{
		{entityType: "media", uuid: "m-1", full: true},
		{entityType: "file", uuid: "f-1", full: true},
		{entityType: "node", uuid: "n-3"},
	}, scanEmbeds(markup))
}

func TestText_Export(t *testing.T) {
	store := memory.NewEntityStore()
	saved(store, "media", "image", "m-1")
	saved(store, "node", "page", "n-3")
	saved(store, "path_alias", "path_alias", "a-1")
	session := newMockExportSession()
	session.cached["media:m-1"] = true
	session.cached["node:n-3"] = true

	markup := `<drupal-media data-entity-type="media" data-entity-uuid="m-1"></drupal-media>` +
		`<a href="/node/3" data-entity-type="node" data-entity-uuid="n-3">x</a>` +
		`<a href="/alias" data-entity-type="path_alias" data-entity-uuid="a-1">y</a>` +
		`<a href="/gone" data-entity-type="node" data-entity-uuid="missing">z</a>`

	out, err := NewText(store, testSchema(), nil).Export(context.Background(), session, domain.Field{
		Entity:     domain.NewEntity("node", "article", "n-1"),
		Definition: bodyDefinition,
		Items:      domain.FieldItems{{"value": markup, "format": "basic_html"}, {"value": "", "summary": "s"}},
	})
	require.NoError(t, err)

	items := out.(domain.FieldItems)
	require.Len(t, items, 2)
	assert.Equal(t, markup, items[0]["value"])
	assert.Equal(t, "basic_html", items[0]["format"])

	embeds := items[0][keyEmbedEntities].([]any)
	require.Len(t, embeds, 2)
	// media is exported in full even when cached, the link follows the cache
	assert.True(t, domain.IsFullDocument(embeds[0]))
	assert.False(t, domain.IsFullDocument(embeds[1]))
	assert.NotContains(t, items[1], keyEmbedEntities)
}

func TestText_ImportRewritesLinks(t *testing.T) {
	store := memory.NewEntityStore()
	session := &mockImportSession{store: store}
	entity := domain.NewEntity("node", "article", "n-1")

	markup := `<p>before <a href="/node/3" data-entity-type="node" data-entity-uuid="n-3">x</a> after` +
		`<a href="https://example.com">ext</a><br></p>`
	value := []any{map[string]any{
		"value":  markup,
		"format": "full_html",
		keyEmbedEntities: []any{
			domain.NewStub("node", "page", "n-3", nil).ToMap(),
		},
	}}
	require.NoError(t, NewText(store, testSchema(), pathURLs{}).Import(context.Background(), session, entity, bodyDefinition, value))

	items := entity.Field("body")
	require.Len(t, items, 1)
	assert.NotContains(t, items[0], keyEmbedEntities)
	assert.Equal(t, "full_html", items[0]["format"])
	assert.Equal(t,
		`<p>before <a href="/node/1" data-entity-type="node" data-entity-uuid="n-3">x</a> after`+
			`<a href="https://example.com">ext</a><br></p>`,
		items[0]["value"])
}

func TestText_ImportWithoutURLGenerator(t *testing.T) {
	store := memory.NewEntityStore()
	session := &mockImportSession{store: store}
	entity := domain.NewEntity("node", "article", "n-1")

	markup := `<a href="/node/3" data-entity-type="node" data-entity-uuid="n-3">x</a>`
	value := []any{map[string]any{
		"value":          markup,
		keyEmbedEntities: []any{domain.NewStub("node", "page", "n-3", nil).ToMap()},
	}}
	require.NoError(t, NewText(store, testSchema(), nil).Import(context.Background(), session, entity, bodyDefinition, value))

	assert.Equal(t, markup, entity.Field("body")[0]["value"])
	assert.Equal(t, []string{"node:n-3"}, session.resolved)
	assert.Equal(t, 1, store.Count("node"))
}

func TestText_ImportNilAndInvalid(t *testing.T) {
	store := memory.NewEntityStore()
	codec := NewText(store, testSchema(), nil)
	entity := domain.NewEntity("node", "article", "n-1")

	require.NoError(t, codec.Import(context.Background(), &mockImportSession{store: store}, entity, bodyDefinition, nil))
	assert.Empty(t, entity.Field("body"))

	err := codec.Import(context.Background(), &mockImportSession{store: store}, entity, bodyDefinition, "text")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
