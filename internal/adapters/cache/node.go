package cache

import (
	"context"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/grindlemire/graft"
	"go.trai.ch/lane/internal/adapters/logger" //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/lane/internal/core/ports"
)

// NodeID is the unique identifier for the cache store Graft node.
const NodeID graft.ID = "adapter.cache_store"

// RootEnvVar overrides the default cache root, which otherwise follows the
// platform cache directory convention.
const RootEnvVar = "LANE_CACHE_DIR"

func init() {
	graft.Register(graft.Node[ports.CacheStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.CacheStore, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			store, err := NewStore(DefaultRoot(), log)
			if err != nil {
				return nil, err
			}
			return store, nil
		},
	})
}

// DefaultRoot resolves the cache root directory: the environment override if
// set, otherwise the platform cache home.
func DefaultRoot() string {
	if dir := os.Getenv(RootEnvVar); dir != "" {
		return dir
	}
	return filepath.Join(xdg.CacheHome, "lane")
}
