// Package cache implements the key-addressed disk cache store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gofrs/flock"
	"go.trai.ch/lane/internal/core/domain"
	"go.trai.ch/lane/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.CacheStore = (*Store)(nil)

// lockRetryDelay is how often a blocked flock acquisition retries.
const lockRetryDelay = 50 * time.Millisecond

// Store implements ports.CacheStore on the local filesystem.
//
// Layout under the root directory:
//
//	index.json          key -> entry id and save time
//	entries/<id>/key    the full key text
//	entries/<id>/data/  the captured tree
//	lane.lock           cross-process file lock
//
// The file lock serializes restore and save across processes sharing a cache
// root; within one pipeline run there is no concurrency to guard.
type Store struct {
	root   string
	logger ports.Logger
	fl     *flock.Flock

	hits   atomic.Uint64
	misses atomic.Uint64
}

type indexEntry struct {
	ID      string `json:"id"`
	SavedAt int64  `json:"saved_at"`
}

// NewStore creates a cache store rooted at the given directory, creating it
// if necessary.
func NewStore(root string, logger ports.Logger) (*Store, error) {
	root = filepath.Clean(root)
	if err := os.MkdirAll(filepath.Join(root, "entries"), 0o750); err != nil {
		return nil, zerr.Wrap(err, "failed to create cache directory")
	}
	return &Store{
		root:   root,
		logger: logger,
		fl:     flock.New(filepath.Join(root, "lane.lock")),
	}, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// Restore looks up the namespace's primary key, then each restore key in
// order of decreasing specificity. Among the entries matching a prefix the
// most recently saved one wins; the scan never continues past the first
// prefix that matches anything. On a hit the namespace path is repopulated
// from the stored tree; on a miss it is left as an empty directory.
func (s *Store) Restore(ctx context.Context, ns domain.CacheNamespace) (domain.RestoreResult, error) {
	res := domain.RestoreResult{Namespace: ns.Name}

	// A miss degrades to an empty directory so the build proceeds from
	// scratch.
	if err := os.MkdirAll(ns.Path, 0o750); err != nil {
		s.misses.Add(1)
		return res, zerr.Wrap(err, "failed to prepare namespace path")
	}

	unlock, err := s.lock(ctx)
	if err != nil {
		s.misses.Add(1)
		return res, err
	}
	defer unlock()

	index, err := s.loadIndex()
	if err != nil {
		s.misses.Add(1)
		return res, err
	}

	key, entry, ok := match(index, ns.Keys)
	if !ok {
		s.misses.Add(1)
		return res, nil
	}

	dataDir := filepath.Join(s.root, "entries", entry.ID, "data")
	if err := copyTree(dataDir, ns.Path); err != nil {
		// A partial tree must not leak into the build; the miss leaves
		// an empty directory behind.
		_ = os.RemoveAll(ns.Path)
		_ = os.MkdirAll(ns.Path, 0o750)
		s.misses.Add(1)
		return res, zerr.With(zerr.Wrap(err, "failed to copy cached tree"), "key", key)
	}

	s.hits.Add(1)
	res.Hit = true
	res.MatchedKey = key
	return res, nil
}

// match finds the best available key: exact primary first, then the restore
// prefixes most specific first, newest entry winning within a prefix.
func match(index map[string]indexEntry, keys domain.KeyChain) (string, indexEntry, bool) {
	if entry, ok := index[keys.Primary]; ok {
		return keys.Primary, entry, true
	}

	for _, prefix := range keys.RestoreKeys {
		var (
			bestKey   string
			bestEntry indexEntry
			found     bool
		)
		for key, entry := range index {
			if !strings.HasPrefix(key, prefix) {
				continue
			}
			better := entry.SavedAt > bestEntry.SavedAt ||
				(entry.SavedAt == bestEntry.SavedAt && key > bestKey)
			if !found || better {
				bestKey, bestEntry, found = key, entry, true
			}
		}
		if found {
			return bestKey, bestEntry, true
		}
	}

	return "", indexEntry{}, false
}

// Save captures the namespace path under its primary key, overwriting any
// existing entry for that exact key. The entry is staged in a temp directory
// and renamed into place so a crash never leaves a partial entry behind.
func (s *Store) Save(ctx context.Context, ns domain.CacheNamespace) error {
	if _, err := os.Stat(ns.Path); err != nil {
		return zerr.With(zerr.Wrap(err, "namespace path not readable"), "namespace", ns.Name)
	}

	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	id := entryID(ns.Keys.Primary)
	entryDir := filepath.Join(s.root, "entries", id)
	tmpDir := entryDir + ".tmp"

	if err := os.RemoveAll(tmpDir); err != nil {
		return zerr.Wrap(err, "failed to clear staging directory")
	}
	if err := os.MkdirAll(filepath.Join(tmpDir, "data"), 0o750); err != nil {
		return zerr.Wrap(err, "failed to create staging directory")
	}
	if err := copyTree(ns.Path, filepath.Join(tmpDir, "data")); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to capture namespace tree"), "namespace", ns.Name)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "key"), []byte(ns.Keys.Primary), 0o644); err != nil { //nolint:gosec // key text is not secret
		return zerr.Wrap(err, "failed to write key file")
	}

	if err := os.RemoveAll(entryDir); err != nil {
		return zerr.Wrap(err, "failed to drop previous entry")
	}
	if err := os.Rename(tmpDir, entryDir); err != nil {
		return zerr.Wrap(err, "failed to commit entry")
	}

	index, err := s.loadIndex()
	if err != nil {
		return err
	}
	index[ns.Keys.Primary] = indexEntry{ID: id, SavedAt: time.Now().UnixNano()}
	return s.saveIndex(index)
}

// Stats returns the hit/miss counters accumulated by this store.
func (s *Store) Stats() domain.CacheStats {
	return domain.CacheStats{
		Hits:   s.hits.Load(),
		Misses: s.misses.Load(),
	}
}

func (s *Store) lock(ctx context.Context) (func(), error) {
	locked, err := s.fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to acquire cache lock")
	}
	if !locked {
		return nil, zerr.New("cache lock not acquired")
	}
	return func() {
		if err := s.fl.Unlock(); err != nil && s.logger != nil {
			s.logger.Warn("failed to release cache lock: " + err.Error())
		}
	}, nil
}

func (s *Store) indexPath() string {
	return filepath.Join(s.root, "index.json")
}

func (s *Store) loadIndex() (map[string]indexEntry, error) {
	index := make(map[string]indexEntry)

	data, err := os.ReadFile(s.indexPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return index, nil
		}
		return nil, zerr.Wrap(err, "failed to read cache index")
	}
	if len(data) == 0 {
		return index, nil
	}

	if err := json.Unmarshal(data, &index); err != nil {
		return nil, zerr.Wrap(err, "failed to unmarshal cache index")
	}
	return index, nil
}

func (s *Store) saveIndex(index map[string]indexEntry) error {
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal cache index")
	}

	// Temp file plus rename keeps the index readable at all times.
	tmp := s.indexPath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil { //nolint:gosec // index holds key names only
		return zerr.Wrap(err, "failed to write cache index")
	}
	if err := os.Rename(tmp, s.indexPath()); err != nil {
		_ = os.Remove(tmp)
		return zerr.Wrap(err, "failed to commit cache index")
	}
	return nil
}

func entryID(key string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(key))
}
