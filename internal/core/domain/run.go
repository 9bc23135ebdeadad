package domain

import (
	"fmt"
	"strings"
	"time"
)

// Phase is a state of the pipeline state machine.
type Phase string

const (
	// PhaseInit is the initial state before any work starts.
	PhaseInit Phase = "Init"
	// PhaseProvisioning covers toolchain installation and verification.
	PhaseProvisioning Phase = "Provisioning"
	// PhaseRestoring covers the best-effort cache restores.
	PhaseRestoring Phase = "Restoring"
	// PhaseBuilding covers the fail-fast stages.
	PhaseBuilding Phase = "Building"
	// PhaseSaving covers the best-effort cache saves.
	PhaseSaving Phase = "Saving"
	// PhaseCleanup covers the always-run stage.
	PhaseCleanup Phase = "Cleanup"
	// PhaseDone is the terminal state of a run that got past provisioning.
	PhaseDone Phase = "Done"
	// PhaseFatal is the terminal state of a run aborted during
	// provisioning. Nothing after provisioning was attempted.
	PhaseFatal Phase = "Fatal"
)

// PipelineRun is the runtime record of one execution: per-stage results,
// cache operation results, and the overall verdict. A single control thread
// appends to it; it needs no locking.
type PipelineRun struct {
	phase    Phase
	stages   []StageResult
	restores []RestoreResult
	saves    []SaveResult
	stats    CacheStats

	// The verdict is frozen when the build phase ends. Whatever the
	// cleanup stage or the cache saves do afterwards cannot flip it.
	verdict       bool
	verdictFrozen bool

	provisionErr error
}

// NewPipelineRun creates an empty run record.
func NewPipelineRun() *PipelineRun {
	return &PipelineRun{phase: PhaseInit}
}

// SetPhase advances the state machine.
func (r *PipelineRun) SetPhase(p Phase) {
	r.phase = p
}

// Phase returns the current state.
func (r *PipelineRun) Phase() Phase {
	return r.phase
}

// RecordStage appends a stage result.
func (r *PipelineRun) RecordStage(res StageResult) {
	r.stages = append(r.stages, res)
}

// RecordRestore appends a cache restore result.
func (r *PipelineRun) RecordRestore(res RestoreResult) {
	r.restores = append(r.restores, res)
}

// RecordSave appends a cache save result.
func (r *PipelineRun) RecordSave(res SaveResult) {
	r.saves = append(r.saves, res)
}

// RecordProvisionFailure marks the run as fatally aborted during
// provisioning.
func (r *PipelineRun) RecordProvisionFailure(err error) {
	r.provisionErr = err
	r.FreezeVerdict(false)
	r.phase = PhaseFatal
}

// SetCacheStats attaches the store's hit/miss counters to the run record.
func (r *PipelineRun) SetCacheStats(stats CacheStats) {
	r.stats = stats
}

// FreezeVerdict fixes the primary pass/fail outcome. Later calls are ignored
// so the cleanup stage cannot retroactively change an already decided run.
func (r *PipelineRun) FreezeVerdict(ok bool) {
	if r.verdictFrozen {
		return
	}
	r.verdict = ok
	r.verdictFrozen = true
}

// Succeeded reports the primary verdict: provisioning and every fail-fast
// stage succeeded.
func (r *PipelineRun) Succeeded() bool {
	return r.verdictFrozen && r.verdict
}

// Stages returns the recorded stage results in execution order.
func (r *PipelineRun) Stages() []StageResult {
	return r.stages
}

// Restores returns the recorded cache restore results.
func (r *PipelineRun) Restores() []RestoreResult {
	return r.restores
}

// Saves returns the recorded cache save results.
func (r *PipelineRun) Saves() []SaveResult {
	return r.saves
}

// CleanupResult returns the result of the always-run stage, if it was
// executed.
func (r *PipelineRun) CleanupResult() (StageResult, bool) {
	for _, res := range r.stages {
		if res.Class == AlwaysRun {
			return res, true
		}
	}
	return StageResult{}, false
}

// Report renders a human-readable per-stage status table so a failing
// cleanup or a cache miss is distinguishable from a failing build.
func (r *PipelineRun) Report() string {
	var b strings.Builder

	verdict := "FAILURE"
	if r.Succeeded() {
		verdict = "SUCCESS"
	}
	fmt.Fprintf(&b, "pipeline %s\n", verdict)

	if r.provisionErr != nil {
		fmt.Fprintf(&b, "  provisioning: failed: %v\n", r.provisionErr)
		return b.String()
	}

	for _, res := range r.restores {
		if res.Hit {
			fmt.Fprintf(&b, "  restore %-12s hit   %s\n", res.Namespace, res.MatchedKey)
		} else {
			fmt.Fprintf(&b, "  restore %-12s miss\n", res.Namespace)
		}
	}

	for _, res := range r.stages {
		switch res.Status {
		case StatusSucceeded:
			fmt.Fprintf(&b, "  stage   %-12s ok    (%s)\n", res.Name, res.Duration.Round(time.Millisecond))
		case StatusFailed:
			fmt.Fprintf(&b, "  stage   %-12s FAIL  exit=%d\n", res.Name, res.ExitCode)
		case StatusSkipped:
			fmt.Fprintf(&b, "  stage   %-12s skipped\n", res.Name)
		}
	}

	for _, res := range r.saves {
		switch {
		case res.Skipped:
			fmt.Fprintf(&b, "  save    %-12s skipped\n", res.Namespace)
		case res.Err != nil:
			fmt.Fprintf(&b, "  save    %-12s failed: %v\n", res.Namespace, res.Err)
		default:
			fmt.Fprintf(&b, "  save    %-12s ok\n", res.Namespace)
		}
	}

	if r.stats.Hits+r.stats.Misses > 0 {
		fmt.Fprintf(&b, "  cache   %d hits, %d misses\n", r.stats.Hits, r.stats.Misses)
	}

	return b.String()
}
