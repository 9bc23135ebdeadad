// Package app implements the application layer for lane.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.trai.ch/lane/internal/core/domain"
	"go.trai.ch/lane/internal/core/ports"
	"go.trai.ch/lane/internal/engine/pipeline"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	loader ports.PipelineLoader
	engine *pipeline.Engine
	logger ports.Logger
	out    io.Writer
}

// New creates a new App instance.
func New(loader ports.PipelineLoader, engine *pipeline.Engine, logger ports.Logger) *App {
	return &App{
		loader: loader,
		engine: engine,
		logger: logger,
		out:    os.Stdout,
	}
}

// SetOutput redirects the run report. Used for testing.
func (a *App) SetOutput(w io.Writer) {
	a.out = w
}

// Run loads the pipeline definition at configPath and executes it. The run
// report is always printed when the engine produced a run record, even for a
// failed run; failure is signalled through the returned error.
func (a *App) Run(ctx context.Context, configPath string) error {
	p, err := a.loader.Load(configPath)
	if err != nil {
		return zerr.Wrap(err, "failed to load pipeline definition")
	}

	run, err := a.engine.Run(ctx, p)
	if run != nil {
		_, _ = fmt.Fprint(a.out, run.Report())
	}
	if err != nil {
		return zerr.Wrap(err, "pipeline aborted")
	}

	if !run.Succeeded() {
		return zerr.With(domain.ErrStageFailed, "pipeline", configPath)
	}
	return nil
}
