package pipeline

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/lane/internal/adapters/cache"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/lane/internal/adapters/fs"        //nolint:depguard // Wired in engine wiring
	"go.trai.ch/lane/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/lane/internal/adapters/shell"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/lane/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/lane/internal/adapters/toolchain" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/lane/internal/core/ports"
)

// NodeID is the unique identifier for the pipeline engine Graft node.
const NodeID graft.ID = "engine.pipeline"

func init() {
	graft.Register(graft.Node[*Engine]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			toolchain.NodeID,
			cache.NodeID,
			shell.NodeID,
			fs.HasherNodeID,
			telemetry.TracerNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Engine, error) {
			provisioner, err := graft.Dep[ports.Provisioner](ctx)
			if err != nil {
				return nil, err
			}

			store, err := graft.Dep[ports.CacheStore](ctx)
			if err != nil {
				return nil, err
			}

			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}

			hasher, err := graft.Dep[ports.LockfileHasher](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewEngine(provisioner, store, executor, hasher, tracer, log), nil
		},
	})
}
