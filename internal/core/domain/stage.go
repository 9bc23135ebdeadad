// Package domain contains the core types of the pipeline runner.
package domain

import "time"

// StageClass distinguishes how a stage's failure affects the rest of the run.
type StageClass int

const (
	// FailFast stages halt the remaining fail-fast stages when they fail.
	FailFast StageClass = iota
	// AlwaysRun marks the final cleanup stage, executed regardless of the
	// outcome of everything before it.
	AlwaysRun
)

// Stage is one unit of pipeline work: a named external command.
type Stage struct {
	Name    string
	Command []string
	// Env holds stage-specific environment overrides, applied on top of the
	// pipeline-wide environment.
	Env map[string]string
	// WorkingDir is the directory the command runs in. Empty means the
	// process working directory.
	WorkingDir string
	Class      StageClass
}

// StageStatus represents the status of a stage within a run.
type StageStatus string

const (
	// StatusPending indicates the stage has not started yet.
	StatusPending StageStatus = "Pending"
	// StatusRunning indicates the stage is currently executing.
	StatusRunning StageStatus = "Running"
	// StatusSucceeded indicates the stage finished with a zero exit status.
	StatusSucceeded StageStatus = "Succeeded"
	// StatusFailed indicates the stage finished with a non-zero exit status
	// or could not be started.
	StatusFailed StageStatus = "Failed"
	// StatusSkipped indicates the stage was never executed because an
	// earlier fail-fast stage failed.
	StatusSkipped StageStatus = "Skipped"
)

// StageResult records the outcome of executing a single stage.
type StageResult struct {
	Name     string
	Class    StageClass
	Status   StageStatus
	ExitCode int
	// Output holds a bounded tail of the combined stdout/stderr stream,
	// enough to show why a stage failed without retaining full logs.
	Output   string
	Err      error
	Duration time.Duration
}

// Succeeded reports whether the stage finished successfully.
func (r StageResult) Succeeded() bool {
	return r.Status == StatusSucceeded
}
