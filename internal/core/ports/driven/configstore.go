package driven

// ConfigStore holds the application settings as dot-separated keys, for
// example "sync.site_uuid_check" or "fetch.burst".
//
// Typed getters return the zero value for missing keys. Values written as
// strings (from the command line) are converted where the type allows it.
type ConfigStore interface {
	// Get returns the raw value and whether the key exists.
	Get(key string) (any, bool)

	// GetString returns a string value.
	GetString(key string) string

	// GetInt returns an integer value. Floats are truncated.
	GetInt(key string) int

	// GetFloat returns a float value. Integers are converted.
	GetFloat(key string) float64

	// GetBool returns a boolean value.
	GetBool(key string) bool

	// GetStringSlice returns a list value. A string is split on commas.
	GetStringSlice(key string) []string

	// Set stores a value and persists it immediately.
	Set(key string, value any) error

	// Save persists the current values.
	Save() error

	// Load replaces the current values with the persisted ones.
	Load() error

	// Path returns where values are persisted.
	Path() string
}
