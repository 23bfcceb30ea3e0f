package driven

// FileStore stores files addressed by scheme URIs such as
// "public://images/a.png" or "temporary://import/zip/<uuid>".
type FileStore interface {
	// Exists reports whether a file or directory exists at uri.
	Exists(uri string) bool

	// Read returns the contents of the file at uri.
	Read(uri string) ([]byte, error)

	// WriteData writes data to uri, replacing any existing file.
	// Parent directories are created as needed.
	WriteData(uri string, data []byte) error

	// PrepareDirectory creates the directory at uri if missing.
	PrepareDirectory(uri string) error

	// Realpath resolves a scheme URI to a local filesystem path.
	Realpath(uri string) (string, error)

	// DeleteRecursive removes the file or directory tree at uri.
	DeleteRecursive(uri string) error

	// ExternalURL returns the absolute URL a file is served from.
	ExternalURL(uri string) string
}
