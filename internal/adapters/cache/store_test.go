package cache_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/lane/internal/adapters/cache"
	"go.trai.ch/lane/internal/core/domain"
)

func newNamespace(t *testing.T, name, lockHash string) domain.CacheNamespace {
	t.Helper()
	return domain.CacheNamespace{
		Name: name,
		Path: filepath.Join(t.TempDir(), name),
		Keys: domain.DeriveKeyChain("linux", name, lockHash),
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestStore_SaveAndRestore_ExactKey(t *testing.T) {
	store, err := cache.NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	ns := newNamespace(t, "cargo-dir", "aaaa")
	writeFile(t, ns.Path, "registry.bin", "dependency bits")

	require.NoError(t, store.Save(context.Background(), ns))

	// Restore into a fresh directory using the same keys.
	restored := ns
	restored.Path = filepath.Join(t.TempDir(), "restored")

	res, err := store.Restore(context.Background(), restored)
	require.NoError(t, err)
	require.True(t, res.Hit)
	require.Equal(t, ns.Keys.Primary, res.MatchedKey)

	data, err := os.ReadFile(filepath.Join(restored.Path, "registry.bin"))
	require.NoError(t, err)
	require.Equal(t, "dependency bits", string(data))
}

func TestStore_Restore_MissOnEmptyStore(t *testing.T) {
	store, err := cache.NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	ns := newNamespace(t, "target-dir", "bbbb")

	res, err := store.Restore(context.Background(), ns)
	require.NoError(t, err)
	require.False(t, res.Hit)

	// The namespace path exists and is empty so the build starts from
	// scratch.
	entries, err := os.ReadDir(ns.Path)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestStore_Restore_PrefixFallback(t *testing.T) {
	store, err := cache.NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	// Save under an old lock hash.
	old := newNamespace(t, "cargo-dir", "oldhash")
	writeFile(t, old.Path, "old.bin", "old deps")
	require.NoError(t, store.Save(context.Background(), old))

	// Restore with a new lock hash: exact key misses, the namespace
	// prefix matches.
	fresh := newNamespace(t, "cargo-dir", "newhash")

	res, err := store.Restore(context.Background(), fresh)
	require.NoError(t, err)
	require.True(t, res.Hit)
	require.Equal(t, old.Keys.Primary, res.MatchedKey)
}

func TestStore_Restore_MostSpecificPrefixWins(t *testing.T) {
	store, err := cache.NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	// One entry in the matching namespace, one in the other namespace.
	// The namespace-level prefix must win over the runner-level prefix.
	sameNS := newNamespace(t, "cargo-dir", "v1")
	writeFile(t, sameNS.Path, "a", "1")
	require.NoError(t, store.Save(context.Background(), sameNS))

	otherNS := newNamespace(t, "target-dir", "v1")
	writeFile(t, otherNS.Path, "b", "2")
	require.NoError(t, store.Save(context.Background(), otherNS))

	fresh := newNamespace(t, "cargo-dir", "v2")
	res, err := store.Restore(context.Background(), fresh)
	require.NoError(t, err)
	require.True(t, res.Hit)
	require.Equal(t, sameNS.Keys.Primary, res.MatchedKey)
}

func TestStore_Restore_NewestEntryWinsWithinPrefix(t *testing.T) {
	store, err := cache.NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	first := newNamespace(t, "cargo-dir", "v1")
	writeFile(t, first.Path, "gen", "one")
	require.NoError(t, store.Save(context.Background(), first))

	second := newNamespace(t, "cargo-dir", "v2")
	writeFile(t, second.Path, "gen", "two")
	require.NoError(t, store.Save(context.Background(), second))

	fresh := newNamespace(t, "cargo-dir", "v3")
	res, err := store.Restore(context.Background(), fresh)
	require.NoError(t, err)
	require.True(t, res.Hit)
	require.Equal(t, second.Keys.Primary, res.MatchedKey)

	data, err := os.ReadFile(filepath.Join(fresh.Path, "gen"))
	require.NoError(t, err)
	require.Equal(t, "two", string(data))
}

func TestStore_Save_OverwritesExactKey(t *testing.T) {
	store, err := cache.NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	ns := newNamespace(t, "cargo-dir", "cccc")
	writeFile(t, ns.Path, "state", "first")
	require.NoError(t, store.Save(context.Background(), ns))

	require.NoError(t, os.WriteFile(filepath.Join(ns.Path, "state"), []byte("second"), 0o644))
	require.NoError(t, store.Save(context.Background(), ns))

	restored := ns
	restored.Path = filepath.Join(t.TempDir(), "restored")
	res, err := store.Restore(context.Background(), restored)
	require.NoError(t, err)
	require.True(t, res.Hit)

	data, err := os.ReadFile(filepath.Join(restored.Path, "state"))
	require.NoError(t, err)
	require.Equal(t, "second", string(data))
}

func TestStore_Save_MissingNamespacePath(t *testing.T) {
	store, err := cache.NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	ns := domain.CacheNamespace{
		Name: "cargo-dir",
		Path: filepath.Join(t.TempDir(), "does-not-exist"),
		Keys: domain.DeriveKeyChain("linux", "cargo-dir", "dddd"),
	}

	require.Error(t, store.Save(context.Background(), ns))
}

func TestStore_Restore_CorruptIndexSurfacesError(t *testing.T) {
	root := t.TempDir()
	store, err := cache.NewStore(root, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "index.json"), []byte("{not json"), 0o644))

	ns := newNamespace(t, "cargo-dir", "eeee")
	res, err := store.Restore(context.Background(), ns)
	require.Error(t, err)
	require.False(t, res.Hit)
}

func TestStore_Stats(t *testing.T) {
	store, err := cache.NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	ns := newNamespace(t, "cargo-dir", "ffff")
	_, err = store.Restore(context.Background(), ns) // miss
	require.NoError(t, err)

	writeFile(t, ns.Path, "x", "y")
	require.NoError(t, store.Save(context.Background(), ns))

	_, err = store.Restore(context.Background(), ns) // hit
	require.NoError(t, err)

	stats := store.Stats()
	require.Equal(t, uint64(1), stats.Hits)
	require.Equal(t, uint64(1), stats.Misses)
}

func TestStore_Persistence(t *testing.T) {
	root := t.TempDir()

	store1, err := cache.NewStore(root, nil)
	require.NoError(t, err)

	ns := newNamespace(t, "cargo-dir", "gggg")
	writeFile(t, ns.Path, "kept", "across stores")
	require.NoError(t, store1.Save(context.Background(), ns))

	store2, err := cache.NewStore(root, nil)
	require.NoError(t, err)

	restored := ns
	restored.Path = filepath.Join(t.TempDir(), "restored")
	res, err := store2.Restore(context.Background(), restored)
	require.NoError(t, err)
	require.True(t, res.Hit)
}

func TestStore_Restore_PartialCopyLeavesEmptyDirectory(t *testing.T) {
	store, err := cache.NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	ns := newNamespace(t, "target-dir", "cccc")
	writeFile(t, ns.Path, "aaa.bin", "first artifact")
	writeFile(t, ns.Path, "zzz.bin", "second artifact")
	require.NoError(t, store.Save(context.Background(), ns))

	// A directory squatting on a cached file name makes the copy fail
	// after the first file already landed.
	restored := ns
	restored.Path = filepath.Join(t.TempDir(), "restored")
	require.NoError(t, os.MkdirAll(filepath.Join(restored.Path, "zzz.bin"), 0o750))

	res, err := store.Restore(context.Background(), restored)
	require.Error(t, err)
	require.False(t, res.Hit)

	// No partial tree survives; the namespace degrades to an empty
	// directory as on any other miss.
	entries, err := os.ReadDir(restored.Path)
	require.NoError(t, err)
	require.Empty(t, entries)
}
