package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/contentsync/internal/core/domain"
	"github.com/custodia-labs/contentsync/internal/core/ports/driven"
)

// Ensure Zip implements the interface.
var _ driven.Archiver = (*Zip)(nil)

// DefaultMaxEntrySize bounds the uncompressed size of one extracted entry.
const DefaultMaxEntrySize int64 = 512 << 20

// Zip reads and writes zip archives on the local filesystem.
type Zip struct {
	// MaxEntrySize bounds one extracted entry. Zero uses DefaultMaxEntrySize.
	MaxEntrySize int64
}

// NewZip creates a zip archiver with default limits.
func NewZip() *Zip {
	return &Zip{MaxEntrySize: DefaultMaxEntrySize}
}

// Create writes entries into a new deflated archive at dest.
// A partially written archive is removed on failure.
func (z *Zip) Create(dest string, entries []driven.ArchiveEntry) (err error) {
	if dir := filepath.Dir(dest); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create archive directory: %w", err)
		}
	}

	file, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(dest)
		}
	}()
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	writer := zip.NewWriter(file)
	for _, entry := range entries {
		if !validName(entry.Name) {
			_ = writer.Close()
			return fmt.Errorf("%w: invalid archive entry name %q", domain.ErrInvalidInput, entry.Name)
		}
		w, createErr := writer.CreateHeader(&zip.FileHeader{Name: entry.Name, Method: zip.Deflate})
		if createErr != nil {
			_ = writer.Close()
			return fmt.Errorf("create entry %s: %w", entry.Name, createErr)
		}
		if _, writeErr := w.Write(entry.Data); writeErr != nil {
			_ = writer.Close()
			return fmt.Errorf("write entry %s: %w", entry.Name, writeErr)
		}
	}
	return writer.Close()
}

// Extract unpacks src into destDir and returns the file names in archive
// order. Directory entries are created but not returned.
func (z *Zip) Extract(src, destDir string) (names []string, err error) {
	absDest, err := filepath.Abs(destDir)
	if err != nil {
		return nil, fmt.Errorf("resolve destination: %w", err)
	}

	reader, err := zip.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer func() {
		if closeErr := reader.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	// Validate every name before writing anything.
	for _, file := range reader.File {
		if !validName(strings.TrimSuffix(file.Name, "/")) {
			return nil, fmt.Errorf("%w: invalid path in archive: %s", domain.ErrValidation, file.Name)
		}
	}

	for _, file := range reader.File {
		destPath := filepath.Join(absDest, filepath.FromSlash(file.Name))
		relPath, relErr := filepath.Rel(absDest, destPath)
		if relErr != nil || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
			return names, fmt.Errorf("%w: invalid path in archive: %s", domain.ErrValidation, file.Name)
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(destPath, 0o755); err != nil {
				return names, fmt.Errorf("create directory: %w", err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return names, fmt.Errorf("create parent directory: %w", err)
		}
		if err := z.extractFile(file, destPath); err != nil {
			return names, fmt.Errorf("extract %s: %w", file.Name, err)
		}
		names = append(names, file.Name)
	}

	return names, nil
}

func (z *Zip) extractFile(file *zip.File, destPath string) (err error) {
	limit := z.MaxEntrySize
	if limit <= 0 {
		limit = DefaultMaxEntrySize
	}

	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	n, err := io.Copy(out, io.LimitReader(rc, limit+1))
	if err != nil {
		return err
	}
	if n > limit {
		return errors.New("entry exceeds size limit")
	}
	return nil
}

// validName reports whether name is a relative, slash-separated path with
// no parent segments.
func validName(name string) bool {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, "\\") {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." || part == "" {
			return false
		}
	}
	return true
}
