// Package fs provides filesystem-backed adapters.
package fs

import (
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/lane/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.LockfileHasher = (*Hasher)(nil)

// Hasher computes lockfile content hashes with XXHash.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// HashLockfile returns the hex digest of the file's content. Two lockfiles
// with different contents always produce different keys, so a stale
// dependency set can never satisfy an exact cache lookup.
func (h *Hasher) HashLockfile(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // Path comes from the pipeline definition
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to open lockfile"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to hash lockfile"), "path", path)
	}

	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}
