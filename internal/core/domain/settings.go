package domain

import (
	"sort"
	"strings"
	"time"
)

// FileStatusPermanent is the status of a permanent (non temporary) file.
const FileStatusPermanent = 1

// Directory schemes available to the file store.
const (
	SchemeTemporary = "temporary"
	SchemePublic    = "public"
	SchemePrivate   = "private"
)

// IsValidScheme returns true if the scheme is recognised.
func IsValidScheme(s string) bool {
	switch s {
	case SchemeTemporary, SchemePublic, SchemePrivate:
		return true
	default:
		return false
	}
}

// FetchSettings controls how remote assets are downloaded during import.
type FetchSettings struct {
	// RequestsPerSecond limits asset downloads. Zero disables limiting.
	RequestsPerSecond float64 `validate:"gte=0"`

	// Burst is the number of downloads allowed at once.
	Burst int `validate:"gte=0"`

	// Timeout bounds a single download. Zero means no timeout.
	Timeout time.Duration `validate:"gte=0"`
}

// SyncSettings holds content synchronisation configuration.
type SyncSettings struct {
	// SiteUUID identifies this site. Written into every exported document.
	SiteUUID string `validate:"omitempty,uuid"`

	// SiteUUIDCheck rejects documents exported from another site.
	SiteUUIDCheck bool

	// ExportDirectorySchema is the scheme exports are generated under.
	ExportDirectorySchema string `validate:"required,oneof=temporary public private"`

	// ImportDirectorySchema is the scheme archives are extracted under.
	ImportDirectorySchema string `validate:"required,oneof=temporary public private"`

	// ImportUserEmail names the account imports run as.
	// Empty runs imports anonymously.
	ImportUserEmail string `validate:"omitempty,email"`

	// AllowedEntityTypes maps entity type to allowed bundles.
	// An empty bundle list allows every bundle of the type.
	// An empty map allows every entity type.
	AllowedEntityTypes map[string][]string

	// ExcludedFields lists fields skipped on export, as
	// "entity_type.bundle.field". A bundle of "*" matches every bundle.
	ExcludedFields []string `validate:"dive,fieldrule"`

	// Fetch holds asset download settings.
	Fetch FetchSettings
}

// DefaultSyncSettings returns settings with sensible defaults.
func DefaultSyncSettings() SyncSettings {
	return SyncSettings{
		SiteUUIDCheck:         false,
		ExportDirectorySchema: SchemeTemporary,
		ImportDirectorySchema: SchemeTemporary,
		AllowedEntityTypes:    map[string][]string{},
		Fetch: FetchSettings{
			RequestsPerSecond: 5,
			Burst:             1,
			Timeout:           30 * time.Second,
		},
	}
}

// IsEntityAllowed reports whether entities of the given type and bundle
// may be exported.
func (s SyncSettings) IsEntityAllowed(entityType, bundle string) bool {
	if len(s.AllowedEntityTypes) == 0 {
		return true
	}
	bundles, ok := s.AllowedEntityTypes[entityType]
	if !ok {
		return false
	}
	if len(bundles) == 0 {
		return true
	}
	for _, b := range bundles {
		if b == bundle {
			return true
		}
	}
	return false
}

// IsFieldExcluded reports whether a field is excluded from export.
func (s SyncSettings) IsFieldExcluded(entityType, bundle, field string) bool {
	for _, rule := range s.ExcludedFields {
		parts := strings.SplitN(rule, ".", 3)
		if len(parts) != 3 {
			continue
		}
		if parts[0] != entityType || parts[2] != field {
			continue
		}
		if parts[1] == "*" || parts[1] == bundle {
			return true
		}
	}
	return false
}

// ParseAllowedEntityTypes parses "type" and "type:bundle" entries.
// Repeated types accumulate bundles; a bare type allows all bundles.
func ParseAllowedEntityTypes(entries []string) map[string][]string {
	out := make(map[string][]string)
	all := make(map[string]bool)
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		entityType, bundle, hasBundle := strings.Cut(entry, ":")
		if !hasBundle || bundle == "" {
			all[entityType] = true
			out[entityType] = nil
			continue
		}
		if all[entityType] {
			continue
		}
		out[entityType] = append(out[entityType], bundle)
	}
	return out
}

// FormatAllowedEntityTypes is the inverse of ParseAllowedEntityTypes.
func FormatAllowedEntityTypes(allowed map[string][]string) []string {
	var out []string
	for entityType, bundles := range allowed {
		if len(bundles) == 0 {
			out = append(out, entityType)
			continue
		}
		for _, b := range bundles {
			out = append(out, entityType+":"+b)
		}
	}
	sort.Strings(out)
	return out
}
