package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"
)

// FileStore keeps each record as a small JSON file in a directory:
// completed_tours.json and user_name.json.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore returns a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory holding the record files.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) recordPath(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Load implements Store.
func (s *FileStore) Load() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()

	var p Progress
	var ids []string
	if s.read(KeyCompletedTours, &ids) {
		p.CompletedTours = normalizeIDs(ids)
	}
	var name string
	if s.read(KeyUserName, &name) {
		p.UserName = name
	}
	return p
}

// read decodes one record; false means missing or corrupt.
func (s *FileStore) read(key string, v any) bool {
	data, err := os.ReadFile(s.recordPath(key))
	if err != nil {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

// SaveCompleted implements Store.
func (s *FileStore) SaveCompleted(ids []string) error {
	return s.write(KeyCompletedTours, normalizeIDs(ids))
}

// SaveUserName implements Store.
func (s *FileStore) SaveUserName(name string) error {
	return s.write(KeyUserName, name)
}

// write replaces a record atomically via a temp file and rename.
func (s *FileStore) write(key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := os.Rename(tmpName, s.recordPath(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Close implements Store.
func (s *FileStore) Close() error { return nil }
