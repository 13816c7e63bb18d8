// Package lockfile coordinates cache access across cooperating processes with
// advisory file locks. Locks are scoped handles: Acquire returns a Lock whose
// Release is safe to call on every exit path. The kernel drops a holder's
// locks when its process dies, so a crashed holder never wedges an entry.
package lockfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/revdeer/git-cache/internal/logger"
	"github.com/revdeer/git-cache/pkg/fsutil"
)

const (
	// defaultRetryDelay is the poll interval while waiting for a contended lock.
	defaultRetryDelay = 250 * time.Millisecond

	// maxAcquireAttempts bounds re-acquisition when the lock file is removed
	// out from under a waiter (an out-of-band rm, not a cache operation).
	maxAcquireAttempts = 5
)

// Manager hands out entry-scoped locks. The wait budget applies per
// acquisition: negative waits indefinitely, zero tries once without blocking,
// positive bounds the wait.
type Manager struct {
	timeout    time.Duration
	disabled   bool
	retryDelay time.Duration
}

// NewManager returns a Manager with the given wait budget. When disabled is
// set, acquisitions succeed immediately with no-op handles and the caller
// forgoes all cross-process safety.
func NewManager(timeout time.Duration, disabled bool) *Manager {
	return &Manager{
		timeout:    timeout,
		disabled:   disabled,
		retryDelay: defaultRetryDelay,
	}
}

// Lock is a held advisory lock. Release is idempotent.
type Lock struct {
	fl        *flock.Flock
	path      string
	exclusive bool
	noop      bool
	released  bool
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Release drops the lock. Calling it again has no effect.
func (l *Lock) Release() error {
	if l.released {
		return nil
	}
	l.released = true
	if l.noop {
		return nil
	}

	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		logger.Warn("lock file missing on release", logger.Fields{"path": l.path})
	}
	if l.exclusive {
		removeOwnerInfo(l.path)
	}

	logger.Debug("releasing lock", logger.Fields{"path": l.path})
	return l.fl.Unlock()
}

// AcquireExclusive takes the entry's write lock. Exactly one process holds it
// at a time; used by every mutating operation.
func (m *Manager) AcquireExclusive(ctx context.Context, path string) (*Lock, error) {
	return m.acquire(ctx, path, true)
}

// AcquireShared takes the entry's read lock. Any number of readers share it,
// and all of them exclude writers; used while cloning out of an entry.
func (m *Manager) AcquireShared(ctx context.Context, path string) (*Lock, error) {
	return m.acquire(ctx, path, false)
}

func (m *Manager) acquire(ctx context.Context, path string, exclusive bool) (*Lock, error) {
	if m.disabled {
		return &Lock{path: path, noop: true}, nil
	}

	if err := fsutil.EnsureFileDir(path); err != nil {
		return nil, fmt.Errorf("failed to create lock directory for %s: %w", path, err)
	}

	logger.Debug("acquiring lock", logger.Fields{
		"path":      path,
		"exclusive": exclusive,
		"timeout":   m.timeout.String(),
	})

	for attempt := 0; attempt < maxAcquireAttempts; attempt++ {
		fl := flock.New(path)

		acquired, err := m.tryAcquire(ctx, fl, exclusive)
		if err != nil {
			return nil, err
		}
		if !acquired {
			return nil, m.timeoutError(path)
		}

		// The lock is held, but the file may have been unlinked while we
		// waited. A lock on a deleted inode excludes nobody, so start over
		// against the recreated file.
		if _, err := os.Stat(path); os.IsNotExist(err) {
			logger.Warn("lock file removed during acquisition, retrying", logger.Fields{"path": path})
			_ = fl.Unlock()
			continue
		}

		if exclusive {
			writeOwnerInfo(path)
		}
		return &Lock{fl: fl, path: path, exclusive: exclusive}, nil
	}

	return nil, fmt.Errorf("lock file %s kept disappearing during acquisition", path)
}

// tryAcquire maps the wait budget onto the flock calls. It reports false when
// the budget ran out with the lock still contended.
func (m *Manager) tryAcquire(ctx context.Context, fl *flock.Flock, exclusive bool) (bool, error) {
	if m.timeout == 0 {
		return m.lockOnce(fl, exclusive)
	}

	waitCtx := ctx
	if m.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	var acquired bool
	var err error
	if exclusive {
		acquired, err = fl.TryLockContext(waitCtx, m.retryDelay)
	} else {
		acquired, err = fl.TryRLockContext(waitCtx, m.retryDelay)
	}

	if err != nil {
		if ctx.Err() != nil {
			return false, fmt.Errorf("lock acquisition interrupted: %w", ctx.Err())
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return false, nil
		}
		return false, fmt.Errorf("failed to acquire lock on %s: %w", fl.Path(), err)
	}
	return acquired, nil
}

func (m *Manager) lockOnce(fl *flock.Flock, exclusive bool) (bool, error) {
	var acquired bool
	var err error
	if exclusive {
		acquired, err = fl.TryLock()
	} else {
		acquired, err = fl.TryRLock()
	}
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock on %s: %w", fl.Path(), err)
	}
	return acquired, nil
}

func (m *Manager) timeoutError(path string) error {
	if owner := readOwnerInfo(path); owner != nil {
		return fmt.Errorf("%w: %s: %s", ErrTimeout, path, owner.describe())
	}
	return fmt.Errorf("%w: %s", ErrTimeout, path)
}
