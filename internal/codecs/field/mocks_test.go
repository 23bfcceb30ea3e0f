package field

import (
	"context"

	"github.com/custodia-labs/contentsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/contentsync/internal/core/domain"
)

// mockExportSession records exports. Full exports carry empty custom
// fields; the cache is keyed by entity key.
type mockExportSession struct {
	cached  map[string]bool
	full    []string
	stubs   []string
	assets  []string
	failFor string
	failErr error
}

func newMockExportSession() *mockExportSession {
	return &mockExportSession{cached: make(map[string]bool)}
}

func (m *mockExportSession) ExportEntity(_ context.Context, e *domain.Entity) (*domain.Document, error) {
	if m.failFor != "" && m.failFor == e.Key() {
		return nil, m.failErr
	}
	m.cached[e.Key()] = true
	m.full = append(m.full, e.Key())
	doc := domain.NewStub(e.EntityType, e.Bundle, e.UUID, nil)
	doc.CustomFields = map[string]any{}
	return doc, nil
}

func (m *mockExportSession) ExportReference(ctx context.Context, e *domain.Entity) (*domain.Document, error) {
	if m.cached[e.Key()] {
		return m.ExportStub(ctx, e)
	}
	return m.ExportEntity(ctx, e)
}

func (m *mockExportSession) ExportStub(_ context.Context, e *domain.Entity) (*domain.Document, error) {
	m.stubs = append(m.stubs, e.Key())
	return domain.NewStub(e.EntityType, e.Bundle, e.UUID, nil), nil
}

func (m *mockExportSession) IsReferenceCached(e *domain.Entity) bool {
	return m.cached[e.Key()]
}

func (m *mockExportSession) AddAsset(uri string) {
	m.assets = append(m.assets, uri)
}

// mockImportSession resolves references against a memory store, creating
// missing entities on first use.
type mockImportSession struct {
	store    *memory.EntityStore
	resolved []string
	failFor  string
	failErr  error
}

func (m *mockImportSession) ImportDocument(ctx context.Context, doc *domain.Document) (*domain.Entity, error) {
	return m.ResolveReference(ctx, doc)
}

func (m *mockImportSession) ResolveReference(ctx context.Context, doc *domain.Document) (*domain.Entity, error) {
	if m.failFor != "" && m.failFor == doc.Key() {
		return nil, m.failErr
	}
	m.resolved = append(m.resolved, doc.Key())
	if e, err := m.store.LoadByUUID(ctx, doc.EntityType, doc.UUID); err == nil {
		return e, nil
	}
	return m.CreateStubEntity(ctx, doc)
}

func (m *mockImportSession) CreateStubEntity(ctx context.Context, doc *domain.Document) (*domain.Entity, error) {
	e := domain.NewEntity(doc.EntityType, doc.Bundle, doc.UUID)
	if err := m.store.Save(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (m *mockImportSession) IsFullEntity(v any) bool {
	return domain.IsFullDocument(v)
}

func testSchema() *memory.Schema {
	return memory.NewSchema().
		AddEntityType(domain.EntityType{ID: "node", Fieldable: true, Bundles: []string{"article", "page"}}).
		AddEntityType(domain.EntityType{ID: "taxonomy_term", Fieldable: true, Bundles: []string{"tags"}}).
		AddEntityType(domain.EntityType{ID: "media", Fieldable: true, Bundles: []string{"image"}}).
		AddEntityType(domain.EntityType{ID: "file", Fieldable: true}).
		AddEntityType(domain.EntityType{ID: "user", Fieldable: true}).
		AddEntityType(domain.EntityType{ID: "path_alias"}).
		AddEntityType(domain.EntityType{ID: "taxonomy_vocabulary", Config: true})
}

func saved(store *memory.EntityStore, entityType, bundle, uuid string) *domain.Entity {
	e := domain.NewEntity(entityType, bundle, uuid)
	if err := store.Save(context.Background(), e); err != nil {
		panic(err)
	}
	return e
}
