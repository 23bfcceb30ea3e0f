package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contentsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/contentsync/internal/core/domain"
)

func TestNewSettingsService(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NotNil(t, service)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultSyncSettings()
	assert.Equal(t, defaults.SiteUUIDCheck, settings.SiteUUIDCheck)
	assert.Equal(t, defaults.ExportDirectorySchema, settings.ExportDirectorySchema)
	assert.Equal(t, defaults.ImportDirectorySchema, settings.ImportDirectorySchema)
	assert.Equal(t, defaults.Fetch, settings.Fetch)
	assert.Empty(t, settings.AllowedEntityTypes)
	assert.Empty(t, settings.ExcludedFields)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("sync.site_uuid_check", "true")
	_ = store.Set("sync.import_directory_schema", "private")
	_ = store.Set("sync.allowed_entity_types", []any{"node:article", "media"})
	_ = store.Set("sync.excluded_fields", "node.article.field_secret, node.*.field_internal")
	_ = store.Set("fetch.requests_per_second", 2.5)
	_ = store.Set("fetch.burst", 3)
	_ = store.Set("fetch.timeout", "5s")

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.True(t, settings.SiteUUIDCheck)
	assert.Equal(t, domain.SchemePrivate, settings.ImportDirectorySchema)
	assert.Equal(t, map[string][]string{"node": {"article"}, "media": nil}, settings.AllowedEntityTypes)
	assert.Equal(t, []string{"node.article.field_secret", "node.*.field_internal"}, settings.ExcludedFields)
	assert.InDelta(t, 2.5, settings.Fetch.RequestsPerSecond, 0.001)
	assert.Equal(t, 3, settings.Fetch.Burst)
	assert.Equal(t, 5*time.Second, settings.Fetch.Timeout)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("sync.export_directory_schema", "ftp")
	_ = store.Set("fetch.timeout", "soon")

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	defaults := domain.DefaultSyncSettings()
	assert.Equal(t, defaults.ExportDirectorySchema, settings.ExportDirectorySchema)
	assert.Equal(t, defaults.Fetch.Timeout, settings.Fetch.Timeout)
}

func TestSettingsService_Save(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	settings := domain.DefaultSyncSettings()
	settings.SiteUUID = "7b1e4c44-2f55-4f4c-9a51-6f1f0a0e3a77"
	settings.SiteUUIDCheck = true
	settings.ImportUserEmail = "importer@example.com"
	settings.AllowedEntityTypes = map[string][]string{"node": {"page", "article"}}
	settings.ExcludedFields = []string{"node.page.field_notes"}
	settings.Fetch.Timeout = time.Minute

	require.NoError(t, service.Save(&settings))

	retrieved, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, settings.SiteUUID, retrieved.SiteUUID)
	assert.True(t, retrieved.SiteUUIDCheck)
	assert.Equal(t, "importer@example.com", retrieved.ImportUserEmail)
	assert.ElementsMatch(t, []string{"page", "article"}, retrieved.AllowedEntityTypes["node"])
	assert.Equal(t, []string{"node.page.field_notes"}, retrieved.ExcludedFields)
	assert.Equal(t, time.Minute, retrieved.Fetch.Timeout)
	assert.Equal(t, "1m0s", store.GetString("fetch.timeout"))
}

func TestSettingsService_Save_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *domain.SyncSettings)
	}{
		{"site uuid", func(s *domain.SyncSettings) { s.SiteUUID = "not-a-uuid" }},
		{"import scheme", func(s *domain.SyncSettings) { s.ImportDirectorySchema = "ftp" }},
		{"user email", func(s *domain.SyncSettings) { s.ImportUserEmail = "nobody" }},
		{"field rule", func(s *domain.SyncSettings) { s.ExcludedFields = []string{"node.field_x"} }},
		{"negative burst", func(s *domain.SyncSettings) { s.Fetch.Burst = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			service := NewSettingsService(store)
			settings := domain.DefaultSyncSettings()
			tt.mutate(&settings)

			err := service.Save(&settings)

			require.ErrorIs(t, err, domain.ErrConfiguration)
			_, written := store.Get("sync.site_uuid_check")
			assert.False(t, written)
		})
	}
}

func TestSettingsService_SetSiteUUIDCheck(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	require.NoError(t, service.SetSiteUUIDCheck(true))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.True(t, settings.SiteUUIDCheck)
}

func TestSettingsService_SetAllowedEntityTypes(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	require.NoError(t, service.SetAllowedEntityTypes([]string{"node:article", "taxonomy_term"}))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.True(t, settings.IsEntityAllowed("node", "article"))
	assert.False(t, settings.IsEntityAllowed("node", "page"))
	assert.True(t, settings.IsEntityAllowed("taxonomy_term", "tags"))
	assert.False(t, settings.IsEntityAllowed("media", "image"))
}

func TestSettingsService_SetExcludedFields(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	require.NoError(t, service.SetExcludedFields([]string{"node.*.field_internal"}))
	settings, err := service.Get()
	require.NoError(t, err)
	assert.True(t, settings.IsFieldExcluded("node", "page", "field_internal"))

	err = service.SetExcludedFields([]string{"Node.Page"})
	require.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestSettingsService_EnsureSiteUUID(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	first, err := service.EnsureSiteUUID()
	require.NoError(t, err)
	_, err = uuid.Parse(first)
	require.NoError(t, err)

	second, err := service.EnsureSiteUUID()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, first, store.GetString("site.uuid"))
}

func TestSettingsService_Validate(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)
	require.NoError(t, service.Validate())

	_ = store.Set("sync.import_user_email", "not an email")
	assert.ErrorIs(t, service.Validate(), domain.ErrConfiguration)
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	assert.Equal(t, domain.DefaultSyncSettings(), service.GetDefaults())
}
