// Package progrock provides the Progrock implementation of the Tracer port.
package progrock

import (
	"context"
	"strings"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/lane/internal/core/ports"
)

var _ ports.Tracer = (*Recorder)(nil)

// Recorder implements ports.Tracer on top of a progrock tape. Every span
// becomes a vertex, so a progress UI can show the stage sequence as it
// executes.
type Recorder struct {
	w   progrock.Writer
	rec *progrock.Recorder
}

// New creates a new Recorder with a default tape.
func New() *Recorder {
	return NewRecorder(progrock.NewTape())
}

// NewRecorder creates a new Recorder with the given writer.
func NewRecorder(w progrock.Writer) *Recorder {
	return &Recorder{
		w:   w,
		rec: progrock.NewRecorder(w),
	}
}

// Start begins recording a new vertex for one unit of pipeline work.
func (r *Recorder) Start(ctx context.Context, name string, _ ...ports.SpanOption) (context.Context, ports.Span) {
	d := digest.FromString(name)
	v := r.rec.Vertex(d, name)
	return ctx, &Span{vertex: v}
}

// EmitPlan records the ordered stage list as its own vertex so the plan is
// visible before any stage starts.
func (r *Recorder) EmitPlan(_ context.Context, stageNames []string) {
	d := digest.FromString("plan")
	v := r.rec.Vertex(d, "plan")
	_, _ = v.Stdout().Write([]byte(strings.Join(stageNames, "\n") + "\n"))
	v.Done(nil)
}

// Close flushes and closes the recording session.
func (r *Recorder) Close() error {
	if c, ok := r.w.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
