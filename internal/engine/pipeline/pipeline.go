// Package pipeline implements the pipeline controller state machine.
package pipeline

import (
	"context"
	"time"

	"go.trai.ch/lane/internal/core/domain"
	"go.trai.ch/lane/internal/core/ports"
	"go.trai.ch/zerr"
)

// Engine drives one pipeline run through its phases: provision the
// toolchain, restore caches, execute the fail-fast stages, save caches, and
// always run cleanup.
//
// Only provisioning and the fail-fast stages decide the run's verdict. Cache
// operations are best-effort and cleanup is reported separately; neither can
// flip an already decided outcome.
type Engine struct {
	provisioner ports.Provisioner
	store       ports.CacheStore
	executor    ports.Executor
	hasher      ports.LockfileHasher
	tracer      ports.Tracer
	logger      ports.Logger
}

// NewEngine creates an Engine from its collaborators.
func NewEngine(
	provisioner ports.Provisioner,
	store ports.CacheStore,
	executor ports.Executor,
	hasher ports.LockfileHasher,
	tracer ports.Tracer,
	logger ports.Logger,
) *Engine {
	return &Engine{
		provisioner: provisioner,
		store:       store,
		executor:    executor,
		hasher:      hasher,
		tracer:      tracer,
		logger:      logger,
	}
}

// Run executes the pipeline and returns its run record. The returned error
// is non-nil only for a provisioning failure, which aborts the run before
// any stage — including cleanup — is scheduled. Every other failure mode is
// captured in the run record.
func (e *Engine) Run(ctx context.Context, p *domain.Pipeline) (*domain.PipelineRun, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	run := domain.NewPipelineRun()

	if err := e.provision(ctx, p, run); err != nil {
		return run, err
	}

	e.tracer.EmitPlan(ctx, p.StageNames())

	namespaces, caching := e.restore(ctx, p, run)

	ok := e.build(ctx, p, run)
	run.FreezeVerdict(ok)

	e.save(ctx, p, run, namespaces, ok && caching)

	e.cleanup(ctx, p, run)

	run.SetCacheStats(e.store.Stats())
	run.SetPhase(domain.PhaseDone)
	return run, nil
}

func (e *Engine) provision(ctx context.Context, p *domain.Pipeline, run *domain.PipelineRun) error {
	run.SetPhase(domain.PhaseProvisioning)

	_, span := e.tracer.Start(ctx, "provision "+p.Toolchain.Channel)
	defer span.End()

	if err := e.provisioner.Provision(ctx, p.Toolchain); err != nil {
		span.RecordError(err)
		run.RecordProvisionFailure(err)
		return err
	}
	return nil
}

// restore computes the key chains and restores each namespace. I/O trouble
// degrades to a miss; a run never fails because its cache was unreadable.
// Returns the namespaces with keys resolved and whether caching is usable at
// all for this run.
func (e *Engine) restore(ctx context.Context, p *domain.Pipeline, run *domain.PipelineRun) ([]domain.CacheNamespace, bool) {
	run.SetPhase(domain.PhaseRestoring)

	lockHash, err := e.hasher.HashLockfile(p.LockfilePath)
	if err != nil {
		// Without a lockfile hash there is no sound primary key, so
		// both restore and save are disabled for this run.
		e.logger.Warn("lockfile unavailable, caching disabled: " + err.Error())
		for _, ns := range p.Namespaces {
			run.RecordRestore(domain.RestoreResult{Namespace: ns.Name})
		}
		return nil, false
	}

	namespaces := make([]domain.CacheNamespace, len(p.Namespaces))
	for i, ns := range p.Namespaces {
		ns.Keys = domain.DeriveKeyChain(p.RunnerID, ns.Name, lockHash)
		namespaces[i] = ns

		res, err := e.store.Restore(ctx, ns)
		if err != nil {
			e.logger.Warn("cache restore degraded to miss: " + err.Error())
		}
		run.RecordRestore(res)
	}

	return namespaces, true
}

// build runs the fail-fast stages in order. The first failure skips every
// remaining fail-fast stage. Returns whether all of them succeeded.
func (e *Engine) build(ctx context.Context, p *domain.Pipeline, run *domain.PipelineRun) bool {
	run.SetPhase(domain.PhaseBuilding)

	failed := false
	for _, stage := range p.FailFastStages() {
		if failed {
			run.RecordStage(domain.StageResult{
				Name:   stage.Name,
				Class:  stage.Class,
				Status: domain.StatusSkipped,
			})
			continue
		}

		res := e.executeStage(ctx, stage, p, p.StageTimeout)
		run.RecordStage(res)

		if !res.Succeeded() {
			failed = true
			e.logger.Error(zerr.With(domain.ErrStageFailed, "stage", stage.Name))
		}
	}

	return !failed
}

// save captures every namespace under its primary key, but only when the
// build succeeded. Partial output from a failed build must never poison
// future restores. Save errors are logged and absorbed.
func (e *Engine) save(ctx context.Context, p *domain.Pipeline, run *domain.PipelineRun, namespaces []domain.CacheNamespace, enabled bool) {
	if !enabled {
		for _, ns := range p.Namespaces {
			run.RecordSave(domain.SaveResult{Namespace: ns.Name, Skipped: true})
		}
		return
	}

	run.SetPhase(domain.PhaseSaving)
	for _, ns := range namespaces {
		err := e.store.Save(ctx, ns)
		if err != nil {
			e.logger.Warn("cache save failed: " + err.Error())
		}
		run.RecordSave(domain.SaveResult{Namespace: ns.Name, Err: err})
	}
}

// cleanup runs the always-run stage. It is shielded from upstream
// cancellation and bounded by its own, shorter timeout; its outcome is
// recorded but never changes the frozen verdict.
func (e *Engine) cleanup(ctx context.Context, p *domain.Pipeline, run *domain.PipelineRun) {
	run.SetPhase(domain.PhaseCleanup)

	stage := p.CleanupStage()
	if stage == nil {
		return
	}

	cctx := context.WithoutCancel(ctx)
	res := e.executeStage(cctx, stage, p, p.CleanupTimeout)
	run.RecordStage(res)

	if !res.Succeeded() {
		e.logger.Warn("cleanup stage failed: " + stage.Name)
	}
}

func (e *Engine) executeStage(ctx context.Context, stage *domain.Stage, p *domain.Pipeline, timeout time.Duration) domain.StageResult {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	_, span := e.tracer.Start(ctx, stage.Name)
	defer span.End()

	e.logger.Info("running stage " + stage.Name)
	res := e.executor.Execute(ctx, stage, p.Env)

	span.SetAttribute("status", string(res.Status))
	if res.Err != nil {
		span.RecordError(res.Err)
	}
	return res
}
