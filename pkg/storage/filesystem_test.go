package storage

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveOpenDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	rel, err := store.Save("job-1/rec-1/file.pdf", []byte("%PDF"))
	require.NoError(t, err)
	require.Equal(t, "job-1/rec-1/file.pdf", rel)

	f, err := store.Open(rel)
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	require.NoError(t, f.Close())
	require.NoError(t, err)
	require.Equal(t, "%PDF", string(data))

	require.NoError(t, store.Delete(rel))
	_, err = os.Stat(filepath.Join(dir, "job-1"))
	require.True(t, os.IsNotExist(err))
	require.NoError(t, store.Delete(rel))
}

func TestLocalStorageRejectsEscapingPaths(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, p := range []string{"../x.pdf", "/etc/passwd", "", "a/../../x"} {
		_, err := store.Save(p, []byte("x"))
		require.ErrorIs(t, err, ErrOutsideRoot, p)
	}
}

func TestLocalStorageCleanupOlderThan(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	_, err = store.Save("old/a.pdf", []byte("a"))
	require.NoError(t, err)
	_, err = store.Save("new/b.pdf", []byte("b"))
	require.NoError(t, err)
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old", "a.pdf"), past, past))

	deleted, err := store.CleanupOlderThan(24 * time.Hour)
	require.NoError(t, err)
	require.Equal(t, []string{"old/a.pdf"}, deleted)
	_, err = os.Stat(filepath.Join(dir, "new", "b.pdf"))
	require.NoError(t, err)
}
