package driving

import "github.com/custodia-labs/contentsync/internal/core/domain"

// SettingsService manages content synchronisation settings.
type SettingsService interface {
	// Get retrieves current settings.
	Get() (*domain.SyncSettings, error)

	// Save persists settings.
	Save(settings *domain.SyncSettings) error

	// SetSiteUUIDCheck enables or disables rejection of foreign documents.
	SetSiteUUIDCheck(enabled bool) error

	// SetAllowedEntityTypes replaces the export allow list.
	// Entries are "type" or "type:bundle".
	SetAllowedEntityTypes(entries []string) error

	// SetExcludedFields replaces the field exclusion list.
	// Entries are "type.bundle.field".
	SetExcludedFields(entries []string) error

	// EnsureSiteUUID returns the site uuid, generating and persisting one
	// when none is configured.
	EnsureSiteUUID() (string, error)

	// Validate checks the current settings.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.SyncSettings
}
