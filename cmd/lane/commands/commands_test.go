package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/lane/cmd/lane/commands"
	"go.trai.ch/lane/internal/adapters/telemetry"
	"go.trai.ch/lane/internal/app"
	"go.trai.ch/lane/internal/core/domain"
	"go.trai.ch/lane/internal/core/ports/mocks"
	"go.trai.ch/lane/internal/engine/pipeline"
	"go.uber.org/mock/gomock"
)

func newCLI(t *testing.T) (*commands.CLI, *mocks.MockPipelineLoader, *mocks.MockExecutor) {
	t.Helper()
	ctrl := gomock.NewController(t)

	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	logger.EXPECT().Error(gomock.Any()).AnyTimes()

	provisioner := mocks.NewMockProvisioner(ctrl)
	provisioner.EXPECT().Provision(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	hasher := mocks.NewMockLockfileHasher(ctrl)
	hasher.EXPECT().HashLockfile(gomock.Any()).Return("abc123", nil).AnyTimes()

	store := mocks.NewMockCacheStore(ctrl)
	store.EXPECT().Restore(gomock.Any(), gomock.Any()).Return(domain.RestoreResult{}, nil).AnyTimes()
	store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	store.EXPECT().Stats().Return(domain.CacheStats{}).AnyTimes()

	loader := mocks.NewMockPipelineLoader(ctrl)
	executor := mocks.NewMockExecutor(ctrl)

	engine := pipeline.NewEngine(provisioner, store, executor, hasher, telemetry.NewNoOpTracer(), logger)
	a := app.New(loader, engine, logger)
	return commands.New(a), loader, executor
}

func TestRun_DefaultConfig(t *testing.T) {
	cli, loader, executor := newCLI(t)

	loader.EXPECT().Load("lane.yaml").Return(&domain.Pipeline{
		RunnerID: "linux",
		Stages: []*domain.Stage{
			{Name: "ci", Command: []string{"cargo", "make", "ci"}},
		},
	}, nil)
	executor.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.StageResult{Name: "ci", Status: domain.StatusSucceeded})

	cli.SetArgs([]string{"run"})
	require.NoError(t, cli.Execute(context.Background()))
}

func TestRun_ConfigFlag(t *testing.T) {
	cli, loader, executor := newCLI(t)

	loader.EXPECT().Load("ci/pipeline.yaml").Return(&domain.Pipeline{
		RunnerID: "linux",
		Stages: []*domain.Stage{
			{Name: "ci", Command: []string{"cargo", "make", "ci"}},
		},
	}, nil)
	executor.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.StageResult{Name: "ci", Status: domain.StatusSucceeded})

	cli.SetArgs([]string{"run", "-c", "ci/pipeline.yaml"})
	require.NoError(t, cli.Execute(context.Background()))
}

func TestRun_StageFailure(t *testing.T) {
	cli, loader, executor := newCLI(t)

	loader.EXPECT().Load("lane.yaml").Return(&domain.Pipeline{
		RunnerID: "linux",
		Stages: []*domain.Stage{
			{Name: "ci", Command: []string{"cargo", "make", "ci"}},
		},
	}, nil)
	executor.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.StageResult{Name: "ci", Status: domain.StatusFailed, ExitCode: 1})

	cli.SetArgs([]string{"run"})
	err := cli.Execute(context.Background())
	require.ErrorIs(t, err, domain.ErrStageFailed)
}

func TestRoot_Help(t *testing.T) {
	cli, _, _ := newCLI(t)

	cli.SetArgs([]string{"--help"})
	require.NoError(t, cli.Execute(context.Background()))
}
