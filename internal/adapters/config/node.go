package config

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/lane/internal/core/ports"
)

// NodeID is the unique identifier for the pipeline loader Graft node.
const NodeID graft.ID = "adapter.pipeline_loader"

func init() {
	graft.Register(graft.Node[ports.PipelineLoader]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.PipelineLoader, error) {
			return &FileLoader{}, nil
		},
	})
}
