package cli

import (
	"errors"

	"github.com/revdeer/git-cache/pkg/cache"
	"github.com/revdeer/git-cache/pkg/lockfile"
)

// Exit codes reported by the git-cache binary. These are stable and safe to
// script against.
const (
	ExitOK           = 0
	ExitError        = 1
	ExitLockTimeout  = 3
	ExitPopulate     = 4
	ExitNotCached    = 5
	ExitPartialClean = 6
)

// ExitCodeFor maps an error to the process exit code. Batch errors carry the
// code of the first recognized kind in the chain.
func ExitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, lockfile.ErrTimeout):
		return ExitLockTimeout
	case errors.Is(err, cache.ErrPartialClean):
		return ExitPartialClean
	case errors.Is(err, cache.ErrNotCached):
		return ExitNotCached
	case errors.Is(err, cache.ErrPopulateFailed):
		return ExitPopulate
	default:
		return ExitError
	}
}
