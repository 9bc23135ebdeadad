package ports

import "go.trai.ch/lane/internal/core/domain"

// PipelineLoader loads and validates a pipeline definition.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type PipelineLoader interface {
	// Load reads the pipeline definition at the given path. The returned
	// pipeline has passed domain validation.
	Load(path string) (*domain.Pipeline, error)
}
