package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/lane/internal/core/domain"
)

func validPipeline() *domain.Pipeline {
	return &domain.Pipeline{
		RunnerID:     "linux",
		LockfilePath: "Cargo.lock",
		Toolchain:    domain.Toolchain{Channel: "stable"},
		Namespaces: []domain.CacheNamespace{
			{Name: "cargo-dir", Path: "/ws/.cargo"},
			{Name: "target-dir", Path: "/ws/target"},
		},
		Stages: []*domain.Stage{
			{Name: "fmt", Command: []string{"cargo", "fmt", "--check"}},
			{Name: "ci", Command: []string{"cargo", "make", "ci"}},
			{Name: "clean-docker", Command: []string{"cargo", "make", "clean/docker"}, Class: domain.AlwaysRun},
		},
	}
}

func TestPipelineValidate(t *testing.T) {
	require.NoError(t, validPipeline().Validate())
}

func TestPipelineValidate_NoStages(t *testing.T) {
	p := validPipeline()
	p.Stages = nil
	require.ErrorIs(t, p.Validate(), domain.ErrNoStages)
}

func TestPipelineValidate_DuplicateStage(t *testing.T) {
	p := validPipeline()
	p.Stages[1].Name = "fmt"
	require.ErrorIs(t, p.Validate(), domain.ErrDuplicateStage)
}

func TestPipelineValidate_UnnamedStage(t *testing.T) {
	p := validPipeline()
	p.Stages[0].Name = ""
	require.Error(t, p.Validate())
}

func TestPipelineValidate_EmptyCommand(t *testing.T) {
	p := validPipeline()
	p.Stages[1].Command = nil
	require.Error(t, p.Validate())
}

func TestPipelineValidate_CleanupMustBeLast(t *testing.T) {
	p := validPipeline()
	p.Stages[0].Class = domain.AlwaysRun
	require.ErrorIs(t, p.Validate(), domain.ErrCleanupNotLast)
}

func TestPipelineValidate_DuplicateNamespace(t *testing.T) {
	p := validPipeline()
	p.Namespaces[1].Name = "cargo-dir"
	require.ErrorIs(t, p.Validate(), domain.ErrDuplicateNamespace)
}

func TestPipelineValidate_NamespaceNeedsPath(t *testing.T) {
	p := validPipeline()
	p.Namespaces[0].Path = ""
	require.Error(t, p.Validate())
}

func TestPipelineFailFastStages(t *testing.T) {
	p := validPipeline()
	stages := p.FailFastStages()
	require.Len(t, stages, 2)
	require.Equal(t, "fmt", stages[0].Name)
	require.Equal(t, "ci", stages[1].Name)
}

func TestPipelineCleanupStage(t *testing.T) {
	p := validPipeline()
	cleanup := p.CleanupStage()
	require.NotNil(t, cleanup)
	require.Equal(t, "clean-docker", cleanup.Name)
}

func TestPipelineCleanupStage_None(t *testing.T) {
	p := validPipeline()
	p.Stages = p.Stages[:2]
	require.Nil(t, p.CleanupStage())
}

func TestPipelineStageNames(t *testing.T) {
	p := validPipeline()
	require.Equal(t, []string{"fmt", "ci", "clean-docker"}, p.StageNames())
}
