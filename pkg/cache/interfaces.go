//go:generate mockgen -destination=./mocks/cache.go . GitClient

package cache

import (
	"context"
	"time"
)

// GitClient is the subset of the git runner the engine drives.
type GitClient interface {
	CloneBare(ctx context.Context, url, dest string, mirror bool) error
	Fetch(ctx context.Context, repoDir string, mirror bool) error
	CloneReference(ctx context.Context, url, dest, reference string, dissociate bool) error
	Clone(ctx context.Context, url, dest string) error
}

// AddOptions controls how a repository is added to the cache.
type AddOptions struct {
	// Mode selects bare or mirror tracking. Empty falls back to the
	// manager's default.
	Mode Mode
	// Overwrite discards an existing entry and repopulates it.
	Overwrite bool
	// Refresh fetches into an existing entry instead of leaving it as is.
	Refresh bool
}

// CloneOptions controls how a working clone is produced from the cache.
type CloneOptions struct {
	// Mode is passed through to the implicit add.
	Mode Mode
	// Dissociate detaches the clone from the cache entry afterwards.
	Dissociate bool
	// NoAdd serves only repositories that are already cached.
	NoAdd bool
	// NoRetry disables the fallback to a direct clone when the cache
	// path fails.
	NoRetry bool
}

// CleanOptions specifies which entries to remove from the cache.
type CleanOptions struct {
	// All selects every entry.
	All bool
	// Location selects the single entry for one repository.
	Location string
	// OlderThan selects entries created longer ago than the given span.
	OlderThan time.Duration
	// UnusedFor selects entries whose last recorded activity is older
	// than the given span.
	UnusedFor time.Duration
}

// CleanResult reports what a clean pass did.
type CleanResult struct {
	Removed    []string
	Skipped    []string
	FreedBytes int64
}

// RefreshResult reports the outcome of refreshing every cached entry.
type RefreshResult struct {
	Refreshed int
	Failed    int
}

// EntryDetail is one entry's listing augmented with its disk usage.
type EntryDetail struct {
	EntryInfo
	Size  int64
	Files int
}

// Info summarizes the cache.
type Info struct {
	Root       string
	Entries    []EntryDetail
	TotalSize  int64
	TotalFiles int
	Incomplete int
}
