// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/lane/internal/core/domain"
)

// Executor defines the interface for executing pipeline stages.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the stage's command as a subprocess.
	//
	// The env map holds pipeline-wide environment variables applied on top
	// of the system environment; stage-level overrides win over both.
	//
	// Execute always returns a result, even when the process could not be
	// started. A non-zero exit status is not an error of the executor
	// itself; it is recorded in the result.
	Execute(ctx context.Context, stage *domain.Stage, env map[string]string) domain.StageResult
}
