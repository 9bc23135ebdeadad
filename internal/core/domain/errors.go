package domain

import "go.trai.ch/zerr"

var (
	// ErrProvisionFailed is returned when the toolchain could not be
	// installed or verified. It is fatal: no stage runs after it, not even
	// cleanup.
	ErrProvisionFailed = zerr.New("toolchain provisioning failed")

	// ErrStageFailed is returned when a fail-fast stage exits non-zero.
	ErrStageFailed = zerr.New("stage failed")

	// ErrNoStages is returned when a pipeline defines no stages at all.
	ErrNoStages = zerr.New("pipeline has no stages")

	// ErrDuplicateStage is returned when two stages share a display name.
	ErrDuplicateStage = zerr.New("duplicate stage name")

	// ErrCleanupNotLast is returned when an always-run stage is not the
	// final stage of the sequence.
	ErrCleanupNotLast = zerr.New("always-run stage must be the last stage")

	// ErrDuplicateNamespace is returned when two cache namespaces share a
	// name.
	ErrDuplicateNamespace = zerr.New("duplicate cache namespace")
)
