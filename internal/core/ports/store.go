package ports

import (
	"context"

	"go.trai.ch/lane/internal/core/domain"
)

// CacheStore defines key-addressed blob storage for cache namespaces.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type CacheStore interface {
	// Restore looks up the namespace's primary key and, on a miss, each
	// restore key in order of decreasing specificity. The first entry
	// whose stored key starts with the probed prefix wins and its content
	// is copied into the namespace path.
	//
	// A miss is not an error. An error indicates storage I/O trouble; the
	// caller is expected to log it and treat it as a miss.
	Restore(ctx context.Context, ns domain.CacheNamespace) (domain.RestoreResult, error)

	// Save captures the current contents of the namespace path under the
	// primary key, overwriting any existing entry for that exact key.
	Save(ctx context.Context, ns domain.CacheNamespace) error

	// Stats returns the hit/miss counters accumulated by this store.
	Stats() domain.CacheStats
}
