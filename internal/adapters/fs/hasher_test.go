package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/lane/internal/adapters/fs"
)

func TestHasher_Deterministic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Cargo.lock")
	require.NoError(t, os.WriteFile(path, []byte("[[package]]\nname = \"serde\"\n"), 0o644))

	h := fs.NewHasher()

	first, err := h.HashLockfile(path)
	require.NoError(t, err)
	second, err := h.HashLockfile(path)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Len(t, first, 16)
}

func TestHasher_DistinctContents(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.lock")
	b := filepath.Join(dir, "b.lock")
	require.NoError(t, os.WriteFile(a, []byte("version = 1"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("version = 2"), 0o644))

	h := fs.NewHasher()

	hashA, err := h.HashLockfile(a)
	require.NoError(t, err)
	hashB, err := h.HashLockfile(b)
	require.NoError(t, err)

	require.NotEqual(t, hashA, hashB)
}

func TestHasher_MissingFile(t *testing.T) {
	h := fs.NewHasher()

	_, err := h.HashLockfile(filepath.Join(t.TempDir(), "missing.lock"))
	require.Error(t, err)
}
