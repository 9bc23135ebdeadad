package logger_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/lane/internal/adapters/logger"
)

func TestLogger_Info(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New()
	l.SetOutput(&buf)

	l.Info("restoring cache")

	out := buf.String()
	require.Contains(t, out, "level=INFO")
	require.Contains(t, out, "restoring cache")
}

func TestLogger_Warn(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New()
	l.SetOutput(&buf)

	l.Warn("cache restore degraded to miss")

	require.Contains(t, buf.String(), "level=WARN")
}

func TestLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New()
	l.SetOutput(&buf)

	l.Error(errors.New("disk full"))

	out := buf.String()
	require.Contains(t, out, "level=ERROR")
	require.True(t, strings.Contains(out, "disk full"))
}
