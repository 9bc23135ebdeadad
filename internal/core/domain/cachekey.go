package domain

// KeyChain holds the primary cache key of a namespace together with its
// restore-key fallback chain, ordered most specific first. Every restore key
// is a prefix of the one before it, so lookup degrades gracefully: exact
// dependency match, then same namespace at any version, then any cache saved
// by this runner.
type KeyChain struct {
	Primary     string
	RestoreKeys []string
}

// DeriveKeyChain computes the key chain for one cache namespace.
//
// The primary key is deterministic given the runner identity, the namespace
// name, and the lockfile content hash:
//
//	{runner}-build-cache-{namespace}-{lockHash}
//
// Fallback prefixes drop the most specific suffix first (the lock hash, then
// the namespace), always retaining the runner identity.
func DeriveKeyChain(runnerID, namespace, lockHash string) KeyChain {
	return KeyChain{
		Primary: runnerID + "-build-cache-" + namespace + "-" + lockHash,
		RestoreKeys: []string{
			runnerID + "-build-cache-" + namespace + "-",
			runnerID + "-build-",
			runnerID + "-",
		},
	}
}

// CacheNamespace identifies one independent cache domain, e.g. the dependency
// cache or the build-artifact cache. Keys are computed once per run, before
// any restore, and are immutable afterwards.
type CacheNamespace struct {
	Name string
	// Path is the directory whose contents are captured on save and
	// repopulated on restore.
	Path string
	Keys KeyChain
}

// RestoreResult records the outcome of restoring one namespace.
type RestoreResult struct {
	Namespace  string
	Hit        bool
	MatchedKey string
}

// SaveResult records the outcome of saving one namespace.
type SaveResult struct {
	Namespace string
	// Skipped is set when the save was never attempted because a fail-fast
	// stage failed. Partial build output must not poison future restores.
	Skipped bool
	Err     error
}

// CacheStats counts restore outcomes across one store.
type CacheStats struct {
	Hits   uint64
	Misses uint64
}
