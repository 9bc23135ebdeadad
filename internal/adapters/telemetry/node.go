package telemetry

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/lane/internal/adapters/telemetry/progrock"
	"go.trai.ch/lane/internal/core/ports"
)

// TracerNodeID is the unique identifier for the tracer Graft node.
const TracerNodeID graft.ID = "adapter.tracer"

func init() {
	graft.Register(graft.Node[ports.Tracer]{
		ID:        TracerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Tracer, error) {
			return NewTracer(), nil
		},
	})
}

// NewTracer returns the tracer wired into the engine: a progrock recorder
// on a fresh tape, so every stage becomes a vertex a progress UI can
// consume. The no-op tracer stays available for tests.
func NewTracer() ports.Tracer {
	return progrock.New()
}
