package localfs

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/contentsync/internal/core/domain"
	"github.com/custodia-labs/contentsync/internal/core/ports/driven"
)

// Ensure FileStore implements the interface.
var _ driven.FileStore = (*FileStore)(nil)

// FileStore maps scheme URIs onto local directories, one per scheme:
// "public://images/a.png" lives at <public root>/images/a.png.
type FileStore struct {
	roots   map[string]string
	baseURL string
}

// NewFileStore creates a file store rooted at dataDir/files/<scheme> for
// each known scheme. Public files are served under baseURL.
func NewFileStore(dataDir, baseURL string) (*FileStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".contentsync", "data")
	}

	roots := make(map[string]string, 3)
	for _, scheme := range []string{domain.SchemePublic, domain.SchemePrivate, domain.SchemeTemporary} {
		root, err := filepath.Abs(filepath.Join(dataDir, "files", scheme))
		if err != nil {
			return nil, fmt.Errorf("resolve %s root: %w", scheme, err)
		}
		if err := os.MkdirAll(root, 0700); err != nil {
			return nil, fmt.Errorf("create %s root: %w", scheme, err)
		}
		roots[scheme] = root
	}

	return &FileStore{roots: roots, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Exists reports whether a file or directory exists at uri.
func (s *FileStore) Exists(uri string) bool {
	path, err := s.Realpath(uri)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Read returns the contents of the file at uri.
func (s *FileStore) Read(uri string) ([]byte, error) {
	path, err := s.Realpath(uri)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", uri, domain.ErrNotFound)
	}
	return data, err
}

// WriteData writes data to uri, replacing any existing file.
func (s *FileStore) WriteData(uri string, data []byte) error {
	path, err := s.Realpath(uri)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// PrepareDirectory creates the directory at uri if missing.
func (s *FileStore) PrepareDirectory(uri string) error {
	path, err := s.Realpath(uri)
	if err != nil {
		return err
	}
	return os.MkdirAll(path, 0700)
}

// Realpath resolves uri to a path below its scheme root.
// Unknown schemes and targets escaping the root are rejected.
func (s *FileStore) Realpath(uri string) (string, error) {
	scheme, target, ok := strings.Cut(uri, "://")
	if !ok {
		return "", fmt.Errorf("%w: %q is not a scheme uri", domain.ErrInvalidInput, uri)
	}
	root, ok := s.roots[scheme]
	if !ok {
		return "", fmt.Errorf("%w: unknown scheme %q", domain.ErrInvalidInput, scheme)
	}

	path := filepath.Join(root, filepath.FromSlash(target))
	if path != root && !strings.HasPrefix(path, root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes %s://", domain.ErrInvalidInput, uri, scheme)
	}
	return path, nil
}

// DeleteRecursive removes the file or directory tree at uri.
// The scheme root itself is never removed.
func (s *FileStore) DeleteRecursive(uri string) error {
	path, err := s.Realpath(uri)
	if err != nil {
		return err
	}
	if _, scheme := s.rootOf(path); scheme != "" {
		return fmt.Errorf("%w: refusing to delete %s:// root", domain.ErrInvalidInput, scheme)
	}
	return os.RemoveAll(path)
}

// ExternalURL returns the URL a file is served from: baseURL joined with
// the escaped uri target.
func (s *FileStore) ExternalURL(uri string) string {
	_, target, ok := strings.Cut(uri, "://")
	if !ok {
		target = uri
	}
	parts := strings.Split(target, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return s.baseURL + "/" + strings.Join(parts, "/")
}

// rootOf returns the scheme whose root equals path.
func (s *FileStore) rootOf(path string) (string, string) {
	for scheme, root := range s.roots {
		if root == path {
			return root, scheme
		}
	}
	return "", ""
}
