package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/ppgtool/ppg/internal/fsutil"
	"github.com/ppgtool/ppg/internal/ids"
	"github.com/ppgtool/ppg/internal/kerrors"
)

// lockRetryDelay is how often Update retries acquiring the manifest lock.
const lockRetryDelay = 50 * time.Millisecond

// lockBudget is the total time Update spends trying to acquire the lock
// before failing with kerrors.ManifestLock.
const lockBudget = 10 * time.Second

// Store is the sole mutation path for a project's manifest (spec §4.2).
// Update serializes read-modify-write cycles across unrelated processes
// through an advisory file lock, not an in-process mutex; Read and Write
// take no lock (Write replaces the file by atomic rename).
type Store struct {
	paths ids.Paths
}

// NewStore returns a Store rooted at projectRoot.
func NewStore(projectRoot string) *Store {
	return &Store{paths: ids.NewPaths(projectRoot)}
}

// Read loads the manifest from disk without taking the lock. Callers that
// need a consistent read-modify-write cycle must use Update instead.
func (s *Store) Read() (*Manifest, error) {
	data, err := os.ReadFile(s.paths.ManifestPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, kerrors.Wrap(kerrors.NotInitialized, "manifest not found; run init first", err)
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return decode(data)
}

// Write atomically replaces the manifest on disk.
func (s *Store) Write(m *Manifest) error {
	return fsutil.EnsureDirAndWriteJSON(s.paths.ManifestPath(), m)
}

// UpdateFunc mutates the manifest it is given (in place or by replacing the
// pointee) and returns the manifest to persist.
type UpdateFunc func(*Manifest) (*Manifest, error)

// Update performs the spec's sole mutation primitive: acquire a
// cross-process lock, read, call fn, write the result, release the lock.
// Every change to agent/worktree state that must commit atomically within
// one logical operation must happen inside a single Update call.
func (s *Store) Update(ctx context.Context, fn UpdateFunc) (*Manifest, error) {
	lockPath := s.paths.LockPath()
	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		return nil, fmt.Errorf("creating state dir: %w", err)
	}

	fl := flock.New(lockPath)
	lockCtx, cancel := context.WithTimeout(ctx, lockBudget)
	defer cancel()

	locked, err := fl.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil || !locked {
		return nil, kerrors.Wrap(kerrors.ManifestLock, "could not acquire manifest lock", err)
	}
	defer func() { _ = fl.Unlock() }()

	m, err := s.Read()
	if err != nil {
		return nil, err
	}

	next, err := fn(m)
	if err != nil {
		return nil, err
	}
	if next == nil {
		next = m
	}
	next.UpdatedAt = time.Now()

	if err := s.Write(next); err != nil {
		return nil, fmt.Errorf("writing manifest: %w", err)
	}
	return next, nil
}

// Init creates a brand-new manifest for projectRoot. It fails if one
// already exists, since re-running init must never silently clobber state.
func (s *Store) Init(projectRoot, sessionName string) (*Manifest, error) {
	if _, err := os.Stat(s.paths.ManifestPath()); err == nil {
		return nil, kerrors.New(kerrors.InvalidArgs, "manifest already initialized")
	}
	m := New(projectRoot, sessionName)
	if err := s.Write(m); err != nil {
		return nil, fmt.Errorf("writing initial manifest: %w", err)
	}
	return m, nil
}

func decode(data []byte) (*Manifest, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return migrate(raw)
}
