package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/lane/internal/adapters/telemetry"
)

func TestNoOpTracer(t *testing.T) {
	tracer := telemetry.NewNoOpTracer()

	ctx, span := tracer.Start(context.Background(), "ci")
	require.NotNil(t, ctx)
	require.NotNil(t, span)

	n, err := span.Write([]byte("output"))
	require.NoError(t, err)
	require.Equal(t, 6, n)

	span.SetAttribute("key", "value")
	span.RecordError(errors.New("ignored"))
	span.End()

	tracer.EmitPlan(ctx, []string{"ci"})
}
