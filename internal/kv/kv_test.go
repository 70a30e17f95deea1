package kv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Storage {
	t.Helper()

	file, err := NewFile(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)

	db, err := NewSQLite(filepath.Join(t.TempDir(), "focusboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return map[string]Storage{
		BackendMemory: NewMemory(),
		BackendFile:   file,
		BackendSQLite: db,
	}
}

func TestStorage_Contract(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get("tasks")
			require.NoError(t, err)
			assert.False(t, ok, "absent key")

			require.NoError(t, s.Set("tasks", `[{"id":1}]`))
			v, ok, err := s.Get("tasks")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `[{"id":1}]`, v)

			require.NoError(t, s.Set("tasks", `[]`))
			v, _, err = s.Get("tasks")
			require.NoError(t, err)
			assert.Equal(t, `[]`, v, "overwrite")

			require.NoError(t, s.Set("other", ""))
			v, ok, err = s.Get("other")
			require.NoError(t, err)
			assert.True(t, ok, "empty value is still present")
			assert.Empty(t, v)
		})
	}
}

func TestStorage_InvalidKey(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"", "../escape", "a/b", ".hidden"} {
				assert.ErrorIs(t, s.Set(key, "x"), ErrInvalidKey, key)
				_, _, err := s.Get(key)
				assert.ErrorIs(t, err, ErrInvalidKey, key)
			}
		})
	}
}

func TestFile_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(dir)
	require.NoError(t, err)

	require.NoError(t, f.Set("tasks", "[]"))
	require.NoError(t, f.Set("tasks", "[1]"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"tasks.json", lockName}, names)
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")

	db, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, db.Set("tasks", "[42]"))
	require.NoError(t, db.Close())

	db, err = NewSQLite(path)
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, path, db.Path())

	v, ok, err := db.Get("tasks")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[42]", v)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(BackendMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = Open("", dir)
	require.NoError(t, err)
	assert.IsType(t, &File{}, s)

	_, err = Open("redis", dir)
	assert.Error(t, err)
}
