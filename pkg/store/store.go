// Package store persists tour progress: the set of completed tour ids and the
// user's display name.
//
// Two logical records are kept regardless of backend:
//
//	completed_tours  JSON array of tour-id strings
//	user_name        JSON string
//
// Reads never fail. Missing or corrupt records load as empty defaults.
package store

import (
	"fmt"
	"sort"
	"sync"
)

// Record keys shared by every backend.
const (
	KeyCompletedTours = "completed_tours"
	KeyUserName       = "user_name"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Progress is the durable state loaded at startup.
type Progress struct {
	CompletedTours []string
	UserName       string
}

// Store reads and writes tour progress.
type Store interface {
	// Load returns the persisted progress, falling back to empty defaults
	// when records are missing or unreadable.
	Load() Progress
	SaveCompleted(ids []string) error
	SaveUserName(name string) error
	Close() error
}

// Open returns the store for a backend name. path is a directory for the
// file backend and a database file for sqlite; memory ignores it.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "", BackendFile:
		return NewFileStore(path)
	case BackendSQLite:
		return NewSQLiteStore(path)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

// normalizeIDs drops empties and duplicates and sorts, so writes are stable.
func normalizeIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// MemoryStore keeps progress in process memory. Useful for tests and for
// hosts that opt out of persistence.
type MemoryStore struct {
	mu       sync.Mutex
	progress Progress
	writes   int
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements Store.
func (s *MemoryStore) Load() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Progress{
		CompletedTours: append([]string(nil), s.progress.CompletedTours...),
		UserName:       s.progress.UserName,
	}
}

// SaveCompleted implements Store.
func (s *MemoryStore) SaveCompleted(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress.CompletedTours = normalizeIDs(ids)
	s.writes++
	return nil
}

// SaveUserName implements Store.
func (s *MemoryStore) SaveUserName(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress.UserName = name
	s.writes++
	return nil
}

// Writes returns how many saves the store has received.
func (s *MemoryStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
