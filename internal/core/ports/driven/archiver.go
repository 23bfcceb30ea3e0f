package driven

// ArchiveEntry is one file written into an archive.
type ArchiveEntry struct {
	// Name is the slash-separated path inside the archive.
	Name string

	// Data is the file content.
	Data []byte
}

// Archiver packs and unpacks portable archives.
type Archiver interface {
	// Create writes entries into a new archive at dest, in order.
	Create(dest string, entries []ArchiveEntry) error

	// Extract unpacks the archive at src into destDir and returns the
	// extracted file names in archive order.
	// Entries escaping destDir are rejected.
	Extract(src, destDir string) ([]string, error)
}
