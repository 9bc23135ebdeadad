// Package config provides the pipeline definition loader for lane.
package config

import (
	"os"
	"runtime"
	"time"

	"go.trai.ch/lane/internal/core/domain"
	"go.trai.ch/lane/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.PipelineLoader = (*FileLoader)(nil)

// DefaultFilename is the pipeline definition file lane looks for.
const DefaultFilename = "lane.yaml"

// defaultCleanupTimeout bounds the always-run stage when the definition does
// not set one. It is deliberately short: cleanup must finish even under
// cancellation.
const defaultCleanupTimeout = 2 * time.Minute

// FileLoader implements ports.PipelineLoader using a YAML file.
type FileLoader struct{}

// Load reads a pipeline definition from the given path.
func (l *FileLoader) Load(path string) (*domain.Pipeline, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read pipeline file")
	}

	var lanefile Lanefile
	if err := yaml.Unmarshal(data, &lanefile); err != nil {
		return nil, zerr.Wrap(err, "failed to parse pipeline file")
	}

	return build(&lanefile)
}

func build(lf *Lanefile) (*domain.Pipeline, error) {
	p := &domain.Pipeline{
		RunnerID:     lf.Runner,
		LockfilePath: lf.Lockfile,
		Toolchain: domain.Toolchain{
			Channel: lf.Toolchain.Channel,
			Targets: lf.Toolchain.Targets,
		},
		Env:            lf.Env,
		CleanupTimeout: defaultCleanupTimeout,
	}

	if p.RunnerID == "" {
		p.RunnerID = runtime.GOOS
	}
	if p.LockfilePath == "" {
		p.LockfilePath = "Cargo.lock"
	}
	if p.Env == nil {
		p.Env = map[string]string{}
	}
	// The color preference flag is passed through to every stage
	// unconditionally unless the definition overrides it.
	if _, ok := p.Env["CARGO_TERM_COLOR"]; !ok {
		p.Env["CARGO_TERM_COLOR"] = "always"
	}

	for _, dto := range lf.Cache {
		p.Namespaces = append(p.Namespaces, domain.CacheNamespace{
			Name: dto.Name,
			Path: dto.Path,
		})
	}

	for _, dto := range lf.Stages {
		class := domain.FailFast
		if dto.AlwaysRun {
			class = domain.AlwaysRun
		}
		p.Stages = append(p.Stages, &domain.Stage{
			Name:       dto.Name,
			Command:    dto.Cmd,
			Env:        dto.Env,
			WorkingDir: dto.WorkingDir,
			Class:      class,
		})
	}

	var err error
	if p.StageTimeout, err = parseTimeout(lf.Timeouts.Stage, 0); err != nil {
		return nil, zerr.Wrap(err, "invalid stage timeout")
	}
	if p.CleanupTimeout, err = parseTimeout(lf.Timeouts.Cleanup, defaultCleanupTimeout); err != nil {
		return nil, zerr.Wrap(err, "invalid cleanup timeout")
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

func parseTimeout(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to parse duration"), "value", raw)
	}
	if d < 0 {
		return 0, zerr.With(zerr.New("negative duration"), "value", raw)
	}
	return d, nil
}
