package cli

import (
	"fmt"
	"testing"

	"github.com/revdeer/git-cache/pkg/cache"
	"github.com/revdeer/git-cache/pkg/errors"
	"github.com/revdeer/git-cache/pkg/lockfile"
	"github.com/stretchr/testify/assert"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", err: nil, want: ExitOK},
		{name: "generic", err: fmt.Errorf("boom"), want: ExitError},
		{name: "invalid location", err: cache.ErrInvalidLocation, want: ExitError},
		{name: "lock timeout", err: lockfile.ErrTimeout, want: ExitLockTimeout},
		{name: "populate failure", err: cache.ErrPopulateFailed, want: ExitPopulate},
		{name: "not cached", err: cache.ErrNotCached, want: ExitNotCached},
		{name: "partial clean", err: cache.ErrPartialClean, want: ExitPartialClean},
		{
			name: "wrapped kinds are recognized",
			err:  errors.Wrapf(cache.ErrNotCached, "no entry for %s", "https://example.com/one"),
			want: ExitNotCached,
		},
		{
			name: "wrapped lock timeout",
			err:  errors.Wrap(lockfile.ErrTimeout, "cleaning example.com_one"),
			want: ExitLockTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeFor(tt.err))
		})
	}
}
