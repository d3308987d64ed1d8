package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLetterStoreSaveAndRead(t *testing.T) {
	store, err := NewLetterStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("SCH-2026-0001.pdf", []byte("%PDF-1.4")))

	data, err := store.Read("SCH-2026-0001.pdf")
	require.NoError(t, err)
	require.Equal(t, []byte("%PDF-1.4"), data)
}

func TestLetterStoreFlattensPaths(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLetterStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save("../escape.pdf", []byte("x")))

	_, err = os.Stat(filepath.Join(dir, "escape.pdf"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(filepath.Dir(dir), "escape.pdf"))
	require.True(t, os.IsNotExist(err))
}

func TestLetterStoreCleanup(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLetterStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save("old.pdf", []byte("x")))
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old.pdf"), old, old))
	require.NoError(t, store.Save("fresh.pdf", []byte("y")))

	removed, err := store.CleanupOlderThan(24 * time.Hour)
	require.NoError(t, err)
	require.Equal(t, []string{"old.pdf"}, removed)

	_, err = store.Read("fresh.pdf")
	require.NoError(t, err)
}
