package storage

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestDir(t *testing.T) {
	store := newStore(t)

	assert.True(t, filepath.IsAbs(store.Dir()))
	assert.Equal(t, "papers", filepath.Base(store.Dir()))
}

func TestSave(t *testing.T) {
	store := newStore(t)

	path, err := store.Save("My Paper.PDF", strings.NewReader("%PDF-1.4 data"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "/uploads/papers/paper-"))
	assert.True(t, strings.HasSuffix(path, ".pdf"))

	abs, ok := store.Abs(path)
	require.True(t, ok)
	assert.FileExists(t, abs)
}

func TestSave_UniqueNames(t *testing.T) {
	store := newStore(t)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		path, err := store.Save("same.pdf", strings.NewReader("x"))
		require.NoError(t, err)
		require.False(t, seen[path])
		seen[path] = true
	}
}

func TestSave_DefaultExtension(t *testing.T) {
	store := newStore(t)

	path, err := store.Save("noext", strings.NewReader("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".pdf"))
}

func TestRemove(t *testing.T) {
	store := newStore(t)

	path, err := store.Save("gone.pdf", strings.NewReader("x"))
	require.NoError(t, err)
	require.NoError(t, store.Remove(path))

	abs, ok := store.Abs(path)
	require.True(t, ok)
	assert.NoFileExists(t, abs)

	// Zweites Löschen ist kein Fehler.
	assert.NoError(t, store.Remove(path))
}

func TestAbs_RejectsForeignPaths(t *testing.T) {
	store := newStore(t)

	for _, path := range []string{
		"/etc/passwd",
		"/uploads/papers/../escape.pdf",
		"/uploads/papers/",
		"relative.pdf",
	} {
		_, ok := store.Abs(path)
		assert.False(t, ok, path)
	}
}

func TestList(t *testing.T) {
	store := newStore(t)

	first, err := store.Save("a.pdf", strings.NewReader("x"))
	require.NoError(t, err)
	second, err := store.Save("b.pdf", strings.NewReader("x"))
	require.NoError(t, err)

	paths, err := store.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{first, second}, paths)
}
