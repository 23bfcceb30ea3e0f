package memory

import (
	"strings"
	"sync"

	"github.com/custodia-labs/contentsync/internal/core/domain"
	"github.com/custodia-labs/contentsync/internal/core/ports/driven"
)

// Ensure FileStore implements the interface.
var _ driven.FileStore = (*FileStore)(nil)

// FileStore is an in-memory implementation of driven.FileStore.
// Directories are implicit: a directory exists once a file or prepared
// directory lives under it.
type FileStore struct {
	mu      sync.RWMutex
	files   map[string][]byte
	dirs    map[string]bool
	baseURL string
}

// NewFileStore creates an empty file store serving files under baseURL.
func NewFileStore(baseURL string) *FileStore {
	return &FileStore{
		files:   make(map[string][]byte),
		dirs:    make(map[string]bool),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Exists reports whether a file or directory exists at uri.
func (s *FileStore) Exists(uri string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.files[uri]; ok {
		return true
	}
	if s.dirs[uri] {
		return true
	}
	prefix := strings.TrimRight(uri, "/") + "/"
	for name := range s.files {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// Read returns the contents of the file at uri.
func (s *FileStore) Read(uri string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[uri]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// WriteData writes data to uri, replacing any existing file.
func (s *FileStore) WriteData(uri string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[uri] = append([]byte(nil), data...)
	return nil
}

// PrepareDirectory creates the directory at uri.
func (s *FileStore) PrepareDirectory(uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirs[strings.TrimRight(uri, "/")] = true
	return nil
}

// Realpath returns uri unchanged; memory files have no local path.
func (s *FileStore) Realpath(uri string) (string, error) {
	return uri, nil
}

// DeleteRecursive removes the file or directory tree at uri.
func (s *FileStore) DeleteRecursive(uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	root := strings.TrimRight(uri, "/")
	delete(s.files, root)
	delete(s.dirs, root)
	for name := range s.files {
		if strings.HasPrefix(name, root+"/") {
			delete(s.files, name)
		}
	}
	for name := range s.dirs {
		if strings.HasPrefix(name, root+"/") {
			delete(s.dirs, name)
		}
	}
	return nil
}

// ExternalURL returns baseURL joined with the uri target.
func (s *FileStore) ExternalURL(uri string) string {
	_, target, ok := strings.Cut(uri, "://")
	if !ok {
		target = uri
	}
	return s.baseURL + "/" + target
}
