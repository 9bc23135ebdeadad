package ports

// LockfileHasher computes the content hash of the dependency lockfile that
// keys both cache namespaces.
//
//go:generate go run go.uber.org/mock/mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type LockfileHasher interface {
	// HashLockfile returns a deterministic hex digest of the file's
	// content. Distinct contents yield distinct digests.
	HashLockfile(path string) (string, error)
}
