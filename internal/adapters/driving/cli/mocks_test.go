package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sort"
	"testing"

	"github.com/custodia-labs/contentsync/internal/core/domain"
	"github.com/custodia-labs/contentsync/internal/core/ports/driving"
)

// ==================== Mock Services ====================

type mockEntityService struct {
	types    []domain.EntityType
	entities map[string]*domain.Entity
	deleted  []string
}

var _ driving.EntityService = (*mockEntityService)(nil)

func newMockEntityService(entities ...*domain.Entity) *mockEntityService {
	m := &mockEntityService{entities: make(map[string]*domain.Entity)}
	for _, e := range entities {
		m.entities[e.EntityType+":"+e.ID] = e
	}
	return m
}

func (m *mockEntityService) Types() []domain.EntityType { return m.types }

func (m *mockEntityService) List(_ context.Context, entityType string) ([]*domain.Entity, error) {
	var out []*domain.Entity
	for _, e := range m.entities {
		if e.EntityType == entityType {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockEntityService) Get(_ context.Context, entityType, id string) (*domain.Entity, error) {
	if e, ok := m.entities[entityType+":"+id]; ok {
		return e, nil
	}
	for _, e := range m.entities {
		if e.EntityType == entityType && e.UUID == id {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockEntityService) GetMultiple(ctx context.Context, entityType string, ids []string) ([]*domain.Entity, error) {
	out := make([]*domain.Entity, 0, len(ids))
	for _, id := range ids {
		e, err := m.Get(ctx, entityType, id)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *mockEntityService) Delete(ctx context.Context, entityType, id string) error {
	e, err := m.Get(ctx, entityType, id)
	if err != nil {
		return err
	}
	delete(m.entities, entityType+":"+e.ID)
	m.deleted = append(m.deleted, e.Key())
	return nil
}

type mockFileGenerator struct {
	yamlErr map[string]error
	zipErr  error
	zips    map[string][]string
	opts    driving.ZipOptions
}

var _ driving.FileGenerator = (*mockFileGenerator)(nil)

func newMockFileGenerator() *mockFileGenerator {
	return &mockFileGenerator{yamlErr: make(map[string]error), zips: make(map[string][]string)}
}

func (m *mockFileGenerator) GenerateYAML(_ context.Context, e *domain.Entity) (*driving.GeneratedFile, error) {
	if err := m.yamlErr[e.Key()]; err != nil {
		return nil, err
	}
	return &driving.GeneratedFile{
		Name: e.EntityType + "-" + e.Bundle + "-" + e.UUID + ".yml",
		Data: []byte("uuid: " + e.UUID + "\n"),
	}, nil
}

func (m *mockFileGenerator) GenerateZip(_ context.Context, entities []*domain.Entity, dest string, opts driving.ZipOptions) (*domain.BatchResult, error) {
	if m.zipErr != nil {
		return nil, m.zipErr
	}
	m.opts = opts
	result := &domain.BatchResult{}
	for _, e := range entities {
		m.zips[dest] = append(m.zips[dest], e.Key())
		result.Success(e.Key())
	}
	return result, nil
}

type mockImporter struct {
	imported []string
	fileErr  map[string]error
	archive  map[string]*domain.BatchResult
}

var _ driving.ContentImporter = (*mockImporter)(nil)

func newMockImporter() *mockImporter {
	return &mockImporter{fileErr: make(map[string]error), archive: make(map[string]*domain.BatchResult)}
}

func (m *mockImporter) Import(_ context.Context, doc *domain.Document) (*domain.Entity, error) {
	return domain.NewEntity(doc.EntityType, doc.Bundle, doc.UUID), nil
}

func (m *mockImporter) ImportFromFile(_ context.Context, path string) (*domain.Entity, error) {
	if err := m.fileErr[filepath.Base(path)]; err != nil {
		return nil, err
	}
	m.imported = append(m.imported, path)
	e := domain.NewEntity("node", "article", "uuid-"+filepath.Base(path))
	e.ID = "1"
	return e, nil
}

func (m *mockImporter) ImportFromArchive(_ context.Context, path string) (*domain.BatchResult, error) {
	result, ok := m.archive[filepath.Base(path)]
	if !ok {
		return nil, errors.New("archive unreadable")
	}
	m.imported = append(m.imported, path)
	return result, nil
}

func (m *mockImporter) CreateStubEntity(_ context.Context, doc *domain.Document) (*domain.Entity, error) {
	return domain.NewEntity(doc.EntityType, doc.Bundle, doc.UUID), nil
}

func (m *mockImporter) IsFullEntity(value any) bool { return domain.IsFullDocument(value) }

type mockSettingsService struct {
	settings    domain.SyncSettings
	validateErr error
}

var _ driving.SettingsService = (*mockSettingsService)(nil)

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultSyncSettings()}
}

func (m *mockSettingsService) Get() (*domain.SyncSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.SyncSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) SetSiteUUIDCheck(enabled bool) error {
	m.settings.SiteUUIDCheck = enabled
	return nil
}

func (m *mockSettingsService) SetAllowedEntityTypes(entries []string) error {
	m.settings.AllowedEntityTypes = domain.ParseAllowedEntityTypes(entries)
	return nil
}

func (m *mockSettingsService) SetExcludedFields(entries []string) error {
	m.settings.ExcludedFields = entries
	return nil
}

func (m *mockSettingsService) EnsureSiteUUID() (string, error) { return m.settings.SiteUUID, nil }

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.SyncSettings { return domain.DefaultSyncSettings() }

// ==================== Helpers ====================

// installServices installs services for the duration of a test and resets
// command flags.
func installServices(t *testing.T, s *Services) {
	t.Helper()
	SetServices(s)
	exportOutput, exportAssets, exportYAML, exportAll = "", false, false, false
	watchRemove = false
	t.Cleanup(func() { SetServices(&Services{}) })
}

// runCommand executes the root command with args and returns its output.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func article(id, uuid, title string) *domain.Entity {
	e := domain.NewEntity("node", "article", uuid)
	e.ID = id
	e.Set("title", title)
	return e
}
