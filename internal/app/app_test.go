package app_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/lane/internal/adapters/telemetry"
	"go.trai.ch/lane/internal/app"
	"go.trai.ch/lane/internal/core/domain"
	"go.trai.ch/lane/internal/core/ports/mocks"
	"go.trai.ch/lane/internal/engine/pipeline"
	"go.uber.org/mock/gomock"
)

type harness struct {
	loader   *mocks.MockPipelineLoader
	executor *mocks.MockExecutor
	app      *app.App
	out      *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
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

	h := &harness{
		loader:   mocks.NewMockPipelineLoader(ctrl),
		executor: mocks.NewMockExecutor(ctrl),
		out:      &bytes.Buffer{},
	}

	engine := pipeline.NewEngine(provisioner, store, h.executor, hasher, telemetry.NewNoOpTracer(), logger)
	h.app = app.New(h.loader, engine, logger)
	h.app.SetOutput(h.out)
	return h
}

func singleStagePipeline() *domain.Pipeline {
	return &domain.Pipeline{
		RunnerID:     "linux",
		LockfilePath: "Cargo.lock",
		Stages: []*domain.Stage{
			{Name: "ci", Command: []string{"cargo", "make", "ci"}},
		},
	}
}

func TestAppRun_Success(t *testing.T) {
	h := newHarness(t)

	h.loader.EXPECT().Load("lane.yaml").Return(singleStagePipeline(), nil)
	h.executor.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.StageResult{Name: "ci", Status: domain.StatusSucceeded})

	err := h.app.Run(context.Background(), "lane.yaml")
	require.NoError(t, err)
	require.Contains(t, h.out.String(), "pipeline SUCCESS")
}

func TestAppRun_LoadError(t *testing.T) {
	h := newHarness(t)

	h.loader.EXPECT().Load("missing.yaml").Return(nil, errors.New("no such file"))

	err := h.app.Run(context.Background(), "missing.yaml")
	require.Error(t, err)
	require.Empty(t, h.out.String())
}

func TestAppRun_StageFailure(t *testing.T) {
	h := newHarness(t)

	h.loader.EXPECT().Load("lane.yaml").Return(singleStagePipeline(), nil)
	h.executor.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.StageResult{Name: "ci", Status: domain.StatusFailed, ExitCode: 101})

	err := h.app.Run(context.Background(), "lane.yaml")
	require.ErrorIs(t, err, domain.ErrStageFailed)
	require.Contains(t, h.out.String(), "pipeline FAILURE")
}
