package base

import (
	"context"
	"testing"

	"github.com/custodia-labs/contentsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/contentsync/internal/core/domain"
)

// mockExportSession follows the reference cache rules with empty custom
// fields on full exports.
type mockExportSession struct {
	cached map[string]bool
	full   []string
	assets []string
}

func newMockExportSession() *mockExportSession {
	return &mockExportSession{cached: make(map[string]bool)}
}

func (m *mockExportSession) ExportEntity(_ context.Context, e *domain.Entity) (*domain.Document, error) {
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
	return domain.NewStub(e.EntityType, e.Bundle, e.UUID, nil), nil
}

func (m *mockExportSession) IsReferenceCached(e *domain.Entity) bool {
	return m.cached[e.Key()]
}

func (m *mockExportSession) AddAsset(uri string) {
	m.assets = append(m.assets, uri)
}

// mockImportSession loads references by uuid and creates the missing ones.
type mockImportSession struct {
	store    *memory.EntityStore
	resolved []string
}

func (m *mockImportSession) ImportDocument(ctx context.Context, doc *domain.Document) (*domain.Entity, error) {
	return m.ResolveReference(ctx, doc)
}

func (m *mockImportSession) ResolveReference(ctx context.Context, doc *domain.Document) (*domain.Entity, error) {
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

// mockFetcher serves fixed bodies by URL.
type mockFetcher struct {
	bodies map[string][]byte
	calls  []string
}

func (m *mockFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	m.calls = append(m.calls, url)
	b, ok := m.bodies[url]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

func testSchema() *memory.Schema {
	return memory.NewSchema().
		AddEntityType(domain.EntityType{ID: "node", Fieldable: true, Bundles: []string{"article", "page"}}).
		AddEntityType(domain.EntityType{ID: "menu_link_content", Fieldable: true, Bundles: []string{"menu_link_content"}}).
		AddEntityType(domain.EntityType{ID: "user", Fieldable: true}).
		AddEntityType(domain.EntityType{ID: "path_alias"})
}

func store(t *testing.T, entities ...*domain.Entity) *memory.EntityStore {
	t.Helper()
	s := memory.NewEntityStore()
	for _, e := range entities {
		if err := s.Save(context.Background(), e); err != nil {
			t.Fatalf("save %s: %v", e.Key(), err)
		}
	}
	return s
}

func entity(entityType, bundle, uuid string, base map[string]any) *domain.Entity {
	e := domain.NewEntity(entityType, bundle, uuid)
	for k, v := range base {
		e.Set(k, v)
	}
	return e
}
