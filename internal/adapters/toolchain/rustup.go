// Package toolchain provisions the Rust toolchain through the rustup CLI.
package toolchain

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"go.trai.ch/lane/internal/core/domain"
	"go.trai.ch/lane/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

var _ ports.Provisioner = (*Provisioner)(nil)

// targetConcurrency bounds how many `rustup target add` invocations run at
// once.
const targetConcurrency = 4

// Provisioner implements ports.Provisioner using the rustup CLI.
type Provisioner struct {
	logger ports.Logger
	rustup string
}

// NewProvisioner creates a Provisioner that shells out to `rustup`.
func NewProvisioner(logger ports.Logger) *Provisioner {
	return &Provisioner{logger: logger, rustup: "rustup"}
}

// NewProvisionerWithBinary creates a Provisioner using a specific rustup
// binary. Used in tests.
func NewProvisionerWithBinary(logger ports.Logger, binary string) *Provisioner {
	return &Provisioner{logger: logger, rustup: binary}
}

// Provision installs the requested toolchain channel, adds every extra
// cross-compilation target, and verifies the toolchain answers. Any failure
// is wrapped in domain.ErrProvisionFailed: there is no fallback for a
// missing toolchain.
func (p *Provisioner) Provision(ctx context.Context, tc domain.Toolchain) error {
	if tc.Channel == "" {
		return zerr.With(domain.ErrProvisionFailed, "reason", "no toolchain channel configured")
	}

	p.logger.Info("installing toolchain " + tc.Channel)
	if _, err := p.run(ctx, "toolchain", "install", "--no-self-update", tc.Channel); err != nil {
		return p.provisionError(err, tc, "toolchain install failed")
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(targetConcurrency)
	for _, target := range tc.Targets {
		g.Go(func() error {
			p.logger.Info("adding target " + target)
			if _, err := p.run(groupCtx, "target", "add", "--toolchain", tc.Channel, target); err != nil {
				return zerr.With(zerr.Wrap(err, "target add failed"), "target", target)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return p.provisionError(err, tc, "cross-compilation target unavailable")
	}

	// Confirm the toolchain actually resolves a compiler binary before
	// declaring the environment ready.
	out, err := p.run(ctx, "which", "--toolchain", tc.Channel, "cargo")
	if err != nil {
		return p.provisionError(err, tc, "toolchain verification failed")
	}
	if strings.TrimSpace(string(out)) == "" {
		return p.provisionError(zerr.New("rustup resolved no cargo binary"), tc, "toolchain verification failed")
	}

	return nil
}

func (p *Provisioner) provisionError(err error, tc domain.Toolchain, reason string) error {
	// The sentinel must stay in the chain so callers can match it with
	// errors.Is.
	wrapped := zerr.Wrap(errors.Join(domain.ErrProvisionFailed, err), reason)
	return zerr.With(wrapped, "channel", tc.Channel)
}

// run executes rustup with the given arguments, capturing stderr into the
// returned error for diagnostics.
func (p *Provisioner) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, p.rustup, args...) //nolint:gosec // args are built from validated pipeline config

	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr := strings.TrimSpace(string(exitErr.Stderr))
			runErr := zerr.Wrap(exitErr, "rustup invocation failed")
			runErr = zerr.With(runErr, "args", strings.Join(args, " "))
			return nil, zerr.With(runErr, "stderr", stderr)
		}
		return nil, zerr.With(zerr.Wrap(err, "rustup invocation failed"), "args", strings.Join(args, " "))
	}

	return output, nil
}
