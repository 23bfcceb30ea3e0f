package cli

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/contentsync/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage synchronisation settings",
	Long: `View and change content synchronisation settings.

Use 'settings set' to change a single value.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long: `Change a single setting.

Available keys:
  site.uuid                     - site identifier written into exports
  sync.site_uuid_check          - reject documents from other sites (true/false)
  sync.allowed_entity_types     - comma separated "type" or "type:bundle" entries
  sync.excluded_fields          - comma separated "type.bundle.field" entries
  sync.export_directory_schema  - temporary, public or private
  sync.import_directory_schema  - temporary, public or private
  sync.import_user_email        - account imports run as
  fetch.requests_per_second     - asset download rate, 0 for unlimited
  fetch.burst                   - asset downloads allowed at once
  fetch.timeout                 - per download timeout, e.g. 30s`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Site]")
	cmd.Printf("  UUID: %s\n", orUnset(settings.SiteUUID))
	cmd.Printf("  UUID check: %s\n", yesNo(settings.SiteUUIDCheck))
	cmd.Println()

	cmd.Println("[Sync]")
	cmd.Printf("  Export directory schema: %s\n", settings.ExportDirectorySchema)
	cmd.Printf("  Import directory schema: %s\n", settings.ImportDirectorySchema)
	cmd.Printf("  Import user: %s\n", orUnset(settings.ImportUserEmail))
	allowed := domain.FormatAllowedEntityTypes(settings.AllowedEntityTypes)
	if len(allowed) == 0 {
		cmd.Printf("  Allowed entity types: (all)\n")
	} else {
		cmd.Printf("  Allowed entity types: %s\n", strings.Join(allowed, ", "))
	}
	if len(settings.ExcludedFields) == 0 {
		cmd.Printf("  Excluded fields: (none)\n")
	} else {
		excluded := append([]string{}, settings.ExcludedFields...)
		sort.Strings(excluded)
		cmd.Printf("  Excluded fields: %s\n", strings.Join(excluded, ", "))
	}
	cmd.Println()

	cmd.Println("[Fetch]")
	if settings.Fetch.RequestsPerSecond == 0 {
		cmd.Printf("  Rate: unlimited\n")
	} else {
		cmd.Printf("  Rate: %g/s (burst %d)\n", settings.Fetch.RequestsPerSecond, settings.Fetch.Burst)
	}
	cmd.Printf("  Timeout: %s\n", settings.Fetch.Timeout)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'contentsync settings set' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], strings.TrimSpace(args[1])
	if err := applySetting(key, value); err != nil {
		return err
	}

	cmd.Printf("Set %s to %q\n", key, value)
	return nil
}

// applySetting parses value for key and persists it.
func applySetting(key, value string) error {
	switch key {
	case "sync.site_uuid_check":
		enabled, err := parseBool(value)
		if err != nil {
			return err
		}
		return settingsService.SetSiteUUIDCheck(enabled)
	case "sync.allowed_entity_types":
		return settingsService.SetAllowedEntityTypes(splitList(value))
	case "sync.excluded_fields":
		return settingsService.SetExcludedFields(splitList(value))
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	switch key {
	case "site.uuid":
		settings.SiteUUID = value
	case "sync.export_directory_schema":
		settings.ExportDirectorySchema = value
	case "sync.import_directory_schema":
		settings.ImportDirectorySchema = value
	case "sync.import_user_email":
		settings.ImportUserEmail = value
	case "fetch.requests_per_second":
		rps, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid rate %q: %w", value, err)
		}
		settings.Fetch.RequestsPerSecond = rps
	case "fetch.burst":
		burst, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid burst %q: %w", value, err)
		}
		settings.Fetch.Burst = burst
	case "fetch.timeout":
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", value, err)
		}
		settings.Fetch.Timeout = timeout
	default:
		return fmt.Errorf("unknown setting %q", key)
	}

	return settingsService.Save(settings)
}

// Helper functions

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "yes", "y", "on", "1":
		return true, nil
	case "false", "no", "n", "off", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", s)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
