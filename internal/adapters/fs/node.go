package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/lane/internal/core/ports"
)

// HasherNodeID is the unique identifier for the lockfile hasher Graft node.
const HasherNodeID graft.ID = "adapter.lockfile_hasher"

func init() {
	graft.Register(graft.Node[ports.LockfileHasher]{
		ID:        HasherNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.LockfileHasher, error) {
			return NewHasher(), nil
		},
	})
}
