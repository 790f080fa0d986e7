package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openBackends(t *testing.T) map[string]func() Store {
	t.Helper()
	dir := t.TempDir()
	mem := NewMemoryStore()
	return map[string]func() Store{
		BackendFile: func() Store {
			s, err := NewFileStore(filepath.Join(dir, "files"))
			require.NoError(t, err)
			return s
		},
		BackendSQLite: func() Store {
			s, err := NewSQLiteStore(filepath.Join(dir, "db", "progress.db"))
			require.NoError(t, err)
			return s
		},
		BackendMemory: func() Store { return mem },
	}
}

func TestStore_EmptyDefaults(t *testing.T) {
	for name, open := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			s := open()
			defer s.Close()
			p := s.Load()
			assert.Empty(t, p.CompletedTours)
			assert.Equal(t, "", p.UserName)
		})
	}
}

func TestStore_RoundTripIgnoresOrder(t *testing.T) {
	for name, open := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			s := open()
			require.NoError(t, s.SaveCompleted([]string{"b", "a", "b", ""}))
			require.NoError(t, s.SaveUserName("Sam"))
			require.NoError(t, s.Close())

			reopened := open()
			defer reopened.Close()
			p := reopened.Load()
			assert.ElementsMatch(t, []string{"a", "b"}, p.CompletedTours)
			assert.Equal(t, "Sam", p.UserName)
		})
	}
}

func TestStore_OverwriteUserName(t *testing.T) {
	for name, open := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			s := open()
			defer s.Close()
			require.NoError(t, s.SaveUserName("Sam"))
			require.NoError(t, s.SaveUserName(""))
			assert.Equal(t, "", s.Load().UserName)
		})
	}
}

func TestFileStore_CorruptRecordsFallBack(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.SaveUserName("Sam"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "completed_tours.json"), []byte("{not json"), 0o644))

	p := s.Load()
	assert.Empty(t, p.CompletedTours, "corrupt record should load as empty")
	assert.Equal(t, "Sam", p.UserName, "healthy record should still load")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "user_name.json"), []byte(`["wrong","type"]`), 0o644))
	assert.Equal(t, "", s.Load().UserName)
}

func TestFileStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.SaveCompleted([]string{"intro"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "completed_tours.json", entries[0].Name())

	data, err := os.ReadFile(filepath.Join(dir, "completed_tours.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `["intro"]`, string(data))
}

func TestSQLiteStore_CorruptValueFallsBack(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "progress.db"))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.db.Exec(`INSERT INTO kv (key, value) VALUES (?, ?)`, KeyCompletedTours, "not-json")
	require.NoError(t, err)
	assert.Empty(t, s.Load().CompletedTours)

	require.NoError(t, s.SaveCompleted([]string{"x"}))
	assert.Equal(t, []string{"x"}, s.Load().CompletedTours)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open("", filepath.Join(dir, "state"))
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = Open(BackendSQLite, filepath.Join(dir, "p.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	s, err = Open(BackendMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = Open("redis", "")
	assert.Error(t, err)
}

func TestMemoryStore_CountsWrites(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.SaveCompleted([]string{"a"}))
	require.NoError(t, s.SaveUserName("x"))
	assert.Equal(t, 2, s.Writes())

	p := s.Load()
	p.CompletedTours[0] = "mutated"
	assert.Equal(t, []string{"a"}, s.Load().CompletedTours, "Load must return a copy")
}
