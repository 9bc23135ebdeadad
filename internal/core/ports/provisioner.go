package ports

import (
	"context"

	"go.trai.ch/lane/internal/core/domain"
)

// Provisioner ensures the requested toolchain is present before any build
// stage runs.
//
// It succeeds only when the toolchain binary and all requested
// cross-compilation targets are confirmed present. There is no fallback: a
// provisioning failure is a correctness precondition failure, not a cache
// miss.
//
//go:generate go run go.uber.org/mock/mockgen -source=provisioner.go -destination=mocks/mock_provisioner.go -package=mocks
type Provisioner interface {
	Provision(ctx context.Context, tc domain.Toolchain) error
}
