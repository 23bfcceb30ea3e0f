package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/contentsync/internal/core/domain"
	"github.com/custodia-labs/contentsync/internal/core/ports/driven"
	"github.com/custodia-labs/contentsync/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keySiteUUID              = "site.uuid"
	keySiteUUIDCheck         = "sync.site_uuid_check"
	keyAllowedEntityTypes    = "sync.allowed_entity_types"
	keyExcludedFields        = "sync.excluded_fields"
	keyImportDirectorySchema = "sync.import_directory_schema"
	keyExportDirectorySchema = "sync.export_directory_schema"
	keyImportUserEmail       = "sync.import_user_email"
	keyFetchRPS              = "fetch.requests_per_second"
	keyFetchBurst            = "fetch.burst"
	keyFetchTimeout          = "fetch.timeout"
)

// SettingsService manages content synchronisation settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current settings. Missing or invalid values fall back to
// the defaults.
func (s *SettingsService) Get() (*domain.SyncSettings, error) {
	defaults := domain.DefaultSyncSettings()

	settings := &domain.SyncSettings{
		SiteUUID:              s.configStore.GetString(keySiteUUID),
		SiteUUIDCheck:         s.getBool(keySiteUUIDCheck, defaults.SiteUUIDCheck),
		ExportDirectorySchema: s.getScheme(keyExportDirectorySchema, defaults.ExportDirectorySchema),
		ImportDirectorySchema: s.getScheme(keyImportDirectorySchema, defaults.ImportDirectorySchema),
		ImportUserEmail:       s.configStore.GetString(keyImportUserEmail),
		AllowedEntityTypes:    domain.ParseAllowedEntityTypes(s.configStore.GetStringSlice(keyAllowedEntityTypes)),
		ExcludedFields:        s.configStore.GetStringSlice(keyExcludedFields),
		Fetch: domain.FetchSettings{
			RequestsPerSecond: s.getFloat(keyFetchRPS, defaults.Fetch.RequestsPerSecond),
			Burst:             s.getInt(keyFetchBurst, defaults.Fetch.Burst),
			Timeout:           s.getDuration(keyFetchTimeout, defaults.Fetch.Timeout),
		},
	}

	return settings, nil
}

// Save validates and persists settings.
func (s *SettingsService) Save(settings *domain.SyncSettings) error {
	if err := validateSettings(settings); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keySiteUUID, settings.SiteUUID},
		{keySiteUUIDCheck, settings.SiteUUIDCheck},
		{keyExportDirectorySchema, settings.ExportDirectorySchema},
		{keyImportDirectorySchema, settings.ImportDirectorySchema},
		{keyImportUserEmail, settings.ImportUserEmail},
		{keyAllowedEntityTypes, domain.FormatAllowedEntityTypes(settings.AllowedEntityTypes)},
		{keyExcludedFields, append([]string{}, settings.ExcludedFields...)},
		{keyFetchRPS, settings.Fetch.RequestsPerSecond},
		{keyFetchBurst, settings.Fetch.Burst},
		{keyFetchTimeout, settings.Fetch.Timeout.String()},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	return nil
}

// SetSiteUUIDCheck enables or disables rejection of foreign documents.
func (s *SettingsService) SetSiteUUIDCheck(enabled bool) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.SiteUUIDCheck = enabled
	return s.Save(settings)
}

// SetAllowedEntityTypes replaces the export allow list.
func (s *SettingsService) SetAllowedEntityTypes(entries []string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.AllowedEntityTypes = domain.ParseAllowedEntityTypes(entries)
	return s.Save(settings)
}

// SetExcludedFields replaces the field exclusion list.
func (s *SettingsService) SetExcludedFields(entries []string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.ExcludedFields = entries
	return s.Save(settings)
}

// EnsureSiteUUID returns the configured site uuid, generating one on
// first use.
func (s *SettingsService) EnsureSiteUUID() (string, error) {
	if id := s.configStore.GetString(keySiteUUID); id != "" {
		return id, nil
	}
	id := uuid.NewString()
	if err := s.configStore.Set(keySiteUUID, id); err != nil {
		return "", fmt.Errorf("save %s: %w", keySiteUUID, err)
	}
	return id, nil
}

// Validate checks the current settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return validateSettings(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.SyncSettings {
	return domain.DefaultSyncSettings()
}

func validateSettings(settings *domain.SyncSettings) error {
	if err := validate.Struct(settings); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrConfiguration, describeValidation(err))
	}
	return nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getScheme(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if !domain.IsValidScheme(val) {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d < 0 {
		return defaultVal
	}
	return d
}
