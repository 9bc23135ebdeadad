package progrock

import (
	"fmt"

	"github.com/vito/progrock"
)

// Span wraps *progrock.VertexRecorder as a ports.Span.
type Span struct {
	vertex *progrock.VertexRecorder
	err    error
}

// Write streams output onto the vertex's stdout.
func (s *Span) Write(p []byte) (int, error) {
	return s.vertex.Stdout().Write(p)
}

// End marks the vertex as finished, carrying any recorded error.
func (s *Span) End() {
	s.vertex.Done(s.err)
}

// RecordError stores the error the vertex completes with.
func (s *Span) RecordError(err error) {
	s.err = err
}

// SetAttribute renders the key-value pair onto the vertex output. Progrock
// vertices have no attribute concept, so attributes become log lines.
func (s *Span) SetAttribute(key string, value any) {
	_, _ = fmt.Fprintf(s.vertex.Stdout(), "%s=%v\n", key, value)
}
