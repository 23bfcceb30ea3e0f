package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contentsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/contentsync/internal/codecs"
	"github.com/custodia-labs/contentsync/internal/core/domain"
	"github.com/custodia-labs/contentsync/internal/core/ports/driven"
)

const testSiteUUID = "6a4f1c1e-8d58-4c39-9a3e-2b7f0f4e5d11"

// site is one end of an export or import: a store, a file store and the
// services wired on top of them.
type site struct {
	store    *memory.EntityStore
	files    *memory.FileStore
	schema   *memory.Schema
	registry *codecs.Registry
	metrics  *mockMetrics
	archiver *mockArchiver
}

func newSite(t *testing.T, archiver *mockArchiver) *site {
	t.Helper()
	s := &site{
		store:    memory.NewEntityStore(),
		files:    memory.NewFileStore("https://source.example.com/files"),
		schema:   testSchema(),
		metrics:  newMockMetrics(),
		archiver: archiver,
	}
	if s.archiver != nil {
		s.archiver.files = s.files
	}
	registry, err := codecs.NewDefaultRegistry(codecs.Dependencies{
		Store:       s.store,
		Schema:      s.schema,
		Files:       s.files,
		CurrentUser: memory.StaticUser{ID: "99", Email: "importer@example.com", Authenticated: true},
	})
	require.NoError(t, err)
	s.registry = registry
	return s
}

func (s *site) exporter(access driven.AccessPolicy, exclusions driven.FieldExclusions) *ContentExporter {
	return NewContentExporter(s.schema, s.registry, access, exclusions, s.metrics, testSiteUUID)
}

func (s *site) importer(opts ImportOptions) *ContentImporter {
	var archiver driven.Archiver
	if s.archiver != nil {
		archiver = s.archiver
	}
	return NewContentImporter(s.store, s.schema, s.files, archiver, s.registry, s.metrics, opts)
}

func (s *site) save(t *testing.T, entities ...*domain.Entity) {
	t.Helper()
	for _, e := range entities {
		require.NoError(t, s.store.Save(context.Background(), e))
	}
}

func (s *site) load(t *testing.T, entityType, uuid string) *domain.Entity {
	t.Helper()
	e, err := s.store.LoadByUUID(context.Background(), entityType, uuid)
	require.NoError(t, err)
	return e
}

func testSchema() *memory.Schema {
	ref := func(name, target string) domain.FieldDefinition {
		return domain.FieldDefinition{
			Name:     name,
			Type:     "entity_reference",
			Settings: map[string]any{"target_type": target},
		}
	}
	return memory.NewSchema().
		AddEntityType(domain.EntityType{ID: "page", Fieldable: true, Bundles: []string{"basic"}}).
		AddEntityType(domain.EntityType{ID: "node", Fieldable: true, Bundles: []string{"article"}}).
		AddEntityType(domain.EntityType{ID: "taxonomy_term", Fieldable: true, Bundles: []string{"tags"}}).
		AddEntityType(domain.EntityType{ID: "file", Fieldable: true}).
		AddEntityType(domain.EntityType{ID: "user", Fieldable: true}).
		AddEntityType(domain.EntityType{ID: "path_alias"}).
		AddEntityType(domain.EntityType{ID: "taxonomy_vocabulary", Config: true}).
		AddField("node", "article", ref("field_related", "node")).
		AddField("node", "article", ref("field_tags", "taxonomy_term")).
		AddField("node", "article", domain.FieldDefinition{Name: "field_image", Type: "image"}).
		AddField("node", "article", domain.FieldDefinition{Name: "field_meta", Type: "metatag"}).
		AddField("node", "article", domain.FieldDefinition{Name: "field_subtitle", Type: "string"}).
		AddField("taxonomy_term", "tags", ref("vid", "taxonomy_vocabulary"))
}

func article(uuid, title string) *domain.Entity {
	e := domain.NewEntity("node", "article", uuid)
	e.Set("title", title)
	e.Set("status", 1)
	e.Set("langcode", "en")
	return e
}

func term(uuid, name string) *domain.Entity {
	e := domain.NewEntity("taxonomy_term", "tags", uuid)
	e.Set("name", name)
	return e
}

func refItems(targets ...*domain.Entity) domain.FieldItems {
	items := make(domain.FieldItems, len(targets))
	for i, target := range targets {
		items[i] = map[string]any{"target_id": target.ID}
	}
	return items
}

// targetIDs returns the target ids of a reference field.
func targetIDs(e *domain.Entity, field string) []string {
	var ids []string
	for _, item := range e.Field(field) {
		ids = append(ids, domain.AsString(item["target_id"]))
	}
	return ids
}

// nested returns the documents of an exported reference field.
func nested(t *testing.T, doc *domain.Document, field string) []*domain.Document {
	t.Helper()
	list, ok := domain.AsList(doc.CustomFields[field])
	require.True(t, ok, "field %s is not a list", field)
	out := make([]*domain.Document, len(list))
	for i, v := range list {
		d, err := domain.DocumentFromValue(v)
		require.NoError(t, err)
		out[i] = d
	}
	return out
}

// mockMetrics counts reported events.
type mockMetrics struct {
	mu       sync.Mutex
	exported map[string]int
	imported map[string]int
	created  int
	stubs    map[string]int
	failed   map[string]int
	fetched  int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{
		exported: make(map[string]int),
		imported: make(map[string]int),
		stubs:    make(map[string]int),
		failed:   make(map[string]int),
	}
}

func (m *mockMetrics) EntityExported(entityType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exported[entityType]++
}

func (m *mockMetrics) EntityImported(entityType string, created bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.imported[entityType]++
	if created {
		m.created++
	}
}

func (m *mockMetrics) StubCreated(entityType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stubs[entityType]++
}

func (m *mockMetrics) ItemFailed(operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed[operation]++
}

func (m *mockMetrics) AssetFetched(bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetched++
}

// mockArchiver keeps archives in memory and extracts them into the file
// store of the site it is attached to.
type mockArchiver struct {
	archives  map[string][]driven.ArchiveEntry
	files     *memory.FileStore
	createErr error
}

func newMockArchiver() *mockArchiver {
	return &mockArchiver{archives: make(map[string][]driven.ArchiveEntry)}
}

func (a *mockArchiver) Create(dest string, entries []driven.ArchiveEntry) error {
	if a.createErr != nil {
		return a.createErr
	}
	a.archives[dest] = append([]driven.ArchiveEntry(nil), entries...)
	return nil
}

func (a *mockArchiver) Extract(src, destDir string) ([]string, error) {
	entries, ok := a.archives[src]
	if !ok {
		return nil, errors.New("archive not found")
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		if err := a.files.WriteData(destDir+"/"+e.Name, e.Data); err != nil {
			return nil, err
		}
		names[i] = e.Name
	}
	return names, nil
}

func (a *mockArchiver) names(dest string) []string {
	var out []string
	for _, e := range a.archives[dest] {
		out = append(out, e.Name)
	}
	return out
}

// failingFieldCodec fails the export of its field type on one entity.
type failingFieldCodec struct {
	fieldType string
	uuid      string
}

func (c failingFieldCodec) FieldTypes() []string { return []string{c.fieldType} }

func (c failingFieldCodec) Export(_ context.Context, _ driven.ExportSession, f domain.Field) (any, error) {
	if f.Entity.UUID == c.uuid {
		return nil, errors.New("field export failed")
	}
	return []any{}, nil
}

func (c failingFieldCodec) Import(context.Context, driven.ImportSession, *domain.Entity, domain.FieldDefinition, any) error {
	return nil
}
