package domain

import (
	"time"

	"go.trai.ch/zerr"
)

// Toolchain names the compiler toolchain a pipeline requires before any
// build stage may run.
type Toolchain struct {
	// Channel is the release channel or version, e.g. "stable".
	Channel string
	// Targets lists extra cross-compilation targets that must be present,
	// e.g. "wasm32-unknown-unknown".
	Targets []string
}

// Pipeline is the fully resolved definition of one linear CI job: the
// toolchain precondition, the cache namespaces, and the ordered stage list.
// It is immutable once loaded.
type Pipeline struct {
	// RunnerID identifies the executing runner and prefixes every cache
	// key, isolating caches between runner platforms.
	RunnerID  string
	Toolchain Toolchain
	// LockfilePath points at the dependency lockfile whose content hash
	// keys both caches.
	LockfilePath string
	// Env is passed to every stage, on top of the system environment.
	Env        map[string]string
	Namespaces []CacheNamespace
	Stages     []*Stage
	// StageTimeout bounds each fail-fast stage. Zero means no bound.
	StageTimeout time.Duration
	// CleanupTimeout bounds the always-run stage. It is deliberately
	// shorter than build timeouts so a hung cleanup cannot stall a
	// cancelled run.
	CleanupTimeout time.Duration
}

// Validate checks the structural invariants of the pipeline definition.
func (p *Pipeline) Validate() error {
	if len(p.Stages) == 0 {
		return ErrNoStages
	}

	seen := make(map[string]bool, len(p.Stages))
	for i, stage := range p.Stages {
		if stage.Name == "" {
			return zerr.With(zerr.New("stage has no name"), "index", i)
		}
		if seen[stage.Name] {
			return zerr.With(ErrDuplicateStage, "stage", stage.Name)
		}
		seen[stage.Name] = true

		if len(stage.Command) == 0 {
			return zerr.With(zerr.New("stage has no command"), "stage", stage.Name)
		}

		// At most one stage may be marked always-run, and it must be last.
		if stage.Class == AlwaysRun && i != len(p.Stages)-1 {
			return zerr.With(ErrCleanupNotLast, "stage", stage.Name)
		}
	}

	nsSeen := make(map[string]bool, len(p.Namespaces))
	for _, ns := range p.Namespaces {
		if ns.Name == "" || ns.Path == "" {
			return zerr.With(zerr.New("cache namespace needs a name and a path"), "namespace", ns.Name)
		}
		if nsSeen[ns.Name] {
			return zerr.With(ErrDuplicateNamespace, "namespace", ns.Name)
		}
		nsSeen[ns.Name] = true
	}

	return nil
}

// FailFastStages returns the build/test stages, in order.
func (p *Pipeline) FailFastStages() []*Stage {
	stages := make([]*Stage, 0, len(p.Stages))
	for _, s := range p.Stages {
		if s.Class == FailFast {
			stages = append(stages, s)
		}
	}
	return stages
}

// CleanupStage returns the always-run stage, or nil when the pipeline has
// none.
func (p *Pipeline) CleanupStage() *Stage {
	if len(p.Stages) == 0 {
		return nil
	}
	last := p.Stages[len(p.Stages)-1]
	if last.Class == AlwaysRun {
		return last
	}
	return nil
}

// StageNames returns the display names of all stages, in order.
func (p *Pipeline) StageNames() []string {
	names := make([]string, len(p.Stages))
	for i, s := range p.Stages {
		names[i] = s.Name
	}
	return names
}
