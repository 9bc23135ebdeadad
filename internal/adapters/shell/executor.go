// Package shell provides the subprocess stage executor adapter.
package shell

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/lane/internal/core/domain"
	"go.trai.ch/lane/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

// Executor implements ports.Executor using os/exec.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{
		logger: logger,
	}
}

// Execute runs the stage's command with the merged environment.
// Environments merge with the following priority (low to high):
// 1. os.Environ() (system base)
// 2. env (pipeline-wide variables, e.g. the color preference flag)
// 3. stage.Env (stage-level overrides)
//
// PATH entries from the pipeline environment are prepended to the system
// PATH rather than replacing it.
func (e *Executor) Execute(ctx context.Context, stage *domain.Stage, env map[string]string) domain.StageResult {
	res := domain.StageResult{
		Name:  stage.Name,
		Class: stage.Class,
	}

	if len(stage.Command) == 0 {
		res.Status = domain.StatusSucceeded
		return res
	}

	name := stage.Command[0]
	args := stage.Command[1:]

	cmdEnv := resolveEnvironment(os.Environ(), env, stage.Env)

	// Resolve the executable against the merged PATH, not the parent
	// process's PATH.
	executable := name
	if !filepath.IsAbs(name) {
		if lp, err := lookPath(name, cmdEnv); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, args...) //nolint:gosec // user provided command

	// exec.CommandContext sets Args[0] to the resolved executable path;
	// preserve the name as invoked.
	if len(cmd.Args) > 0 {
		cmd.Args[0] = name
	}

	if stage.WorkingDir != "" {
		cmd.Dir = stage.WorkingDir
	}

	cmd.Env = cmdEnv

	tail := newTailBuffer(tailLimit)
	stdout := newLineWriter(func(line string) { e.logger.Info(line) }, tail)
	stderr := newLineWriter(func(line string) { e.logger.Error(zerr.New(line)) }, tail)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	err := cmd.Run()
	stdout.Flush()
	stderr.Flush()
	res.Duration = time.Since(start)
	res.Output = tail.String()

	if err != nil {
		res.Status = domain.StatusFailed
		res.ExitCode = exitCode(err)
		if ctx.Err() != nil {
			err = zerr.Wrap(errors.Join(err, ctx.Err()), "stage interrupted")
		}
		res.Err = zerr.With(zerr.Wrap(err, "command failed"), "exit_code", res.ExitCode)
		return res
	}

	res.Status = domain.StatusSucceeded
	return res
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1 // Unknown or never started
}

// resolveEnvironment merges environment variables with the defined priority.
func resolveEnvironment(sysEnv []string, pipelineEnv, stageEnv map[string]string) []string {
	envMap := make(map[string]string)
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if ok {
			envMap[k] = v
		}
	}

	for k, v := range pipelineEnv {
		if k == "PATH" {
			if sysPath, exists := envMap["PATH"]; exists && sysPath != "" {
				envMap[k] = v + string(os.PathListSeparator) + sysPath
			} else {
				envMap[k] = v
			}
			continue
		}
		envMap[k] = v
	}

	for k, v := range stageEnv {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	return result
}

// lookPath searches for an executable in the directories named by the PATH
// entry of the given environment.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if !strings.ContainsRune(candidate, filepath.Separator) {
			// Join("." , file) collapses to a bare name, which exec
			// would re-resolve against its own PATH.
			candidate = "." + string(filepath.Separator) + candidate
		}
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
