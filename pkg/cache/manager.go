// Package cache implements the clone cache itself: bare repositories stored
// under canonical keys, populated and served under per-entry file locks.
package cache

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/revdeer/git-cache/internal/logger"
	"github.com/revdeer/git-cache/pkg/archive"
	pkgerrors "github.com/revdeer/git-cache/pkg/errors"
	"github.com/revdeer/git-cache/pkg/giturl"
	"github.com/revdeer/git-cache/pkg/hooks"
	"github.com/revdeer/git-cache/pkg/lockfile"
	"golang.org/x/sync/errgroup"
)

// defaultRefreshWorkers bounds RefreshAll concurrency when the caller
// does not set a limit.
const defaultRefreshWorkers = 4

// Manager coordinates the cache operations. Archives and Hooks may be left
// nil, which disables export/import support and hook dispatch respectively.
type Manager struct {
	Store    *Store
	Locks    *lockfile.Manager
	Git      GitClient
	Archives *archive.Manager
	Hooks    hooks.HookManager

	// DefaultMode applies when an operation does not name a mode.
	DefaultMode Mode
	// RefreshWorkers bounds concurrent fetches in RefreshAll.
	RefreshWorkers int
}

// New wires a Manager from its collaborators.
func New(store *Store, locks *lockfile.Manager, gitClient GitClient, archives *archive.Manager, hookRunner hooks.HookManager) *Manager {
	return &Manager{
		Store:    store,
		Locks:    locks,
		Git:      gitClient,
		Archives: archives,
		Hooks:    hookRunner,
	}
}

// Add ensures the repository at location is cached. An entry that is already
// populated is left untouched unless opts asks for a refresh or an overwrite.
func (m *Manager) Add(ctx context.Context, location string, opts AddOptions) error {
	key, err := m.entryKey(location)
	if err != nil {
		return err
	}
	mode := m.resolveMode(opts.Mode)

	if err := m.Store.EnsurePod(key); err != nil {
		return err
	}
	lock, err := m.Locks.AcquireExclusive(ctx, m.Store.LockPath(key))
	if err != nil {
		return err
	}
	defer lock.Release()

	if err := m.Store.PruneTemp(key); err != nil {
		return err
	}

	if m.Store.Exists(key) {
		switch {
		case opts.Refresh:
			return m.refreshLocked(ctx, key)
		case opts.Overwrite:
			logger.Debug("overwriting cache entry", logger.Fields{"key": key})
			if err := m.Store.Remove(key); err != nil {
				return err
			}
		default:
			logger.Debug("repository already cached", logger.Fields{"key": key, "url": location})
			return nil
		}
	}

	logger.Info("populating cache entry", logger.Fields{"url": location, "mode": string(mode)})
	err = m.Store.CreateAtomic(key, func(dir string) error {
		return m.Git.CloneBare(ctx, location, dir, mode == ModeMirror)
	})
	if err != nil {
		return m.populateError(ctx, err, location)
	}

	if err := m.Store.WriteMeta(key, EntryMeta{URL: location, Mode: mode, CreatedAt: time.Now()}); err != nil {
		return err
	}

	m.notifyHook(ctx, hooks.PostAdd, location, key, m.Store.EntryPath(key), mode)
	return nil
}

// Refresh fetches new history into an existing entry.
func (m *Manager) Refresh(ctx context.Context, location string) error {
	key, err := m.entryKey(location)
	if err != nil {
		return err
	}
	return m.refreshEntry(ctx, key)
}

// RefreshAll fetches into every populated entry, a bounded number at a time.
// One entry's failure does not stop the others; failures come back aggregated
// next to the counts.
func (m *Manager) RefreshAll(ctx context.Context) (*RefreshResult, error) {
	entries, err := m.Store.List()
	if err != nil {
		return nil, err
	}

	workers := m.RefreshWorkers
	if workers <= 0 {
		workers = defaultRefreshWorkers
	}

	var (
		group  errgroup.Group
		mu     sync.Mutex
		result RefreshResult
		merr   *multierror.Error
	)
	group.SetLimit(workers)

	for _, entry := range entries {
		if !entry.Populated {
			continue
		}
		group.Go(func() error {
			err := m.refreshEntry(ctx, entry.Key)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				merr = multierror.Append(merr, err)
				return nil
			}
			result.Refreshed++
			return nil
		})
	}
	_ = group.Wait()

	return &result, merr.ErrorOrNil()
}

func (m *Manager) refreshEntry(ctx context.Context, key string) error {
	lock, err := m.Locks.AcquireExclusive(ctx, m.Store.LockPath(key))
	if err != nil {
		return err
	}
	defer lock.Release()
	return m.refreshLocked(ctx, key)
}

// refreshLocked runs the fetch. The caller holds the entry's exclusive lock.
func (m *Manager) refreshLocked(ctx context.Context, key string) error {
	if !m.Store.Exists(key) {
		return pkgerrors.Wrapf(ErrNotCached, "%s", key)
	}

	meta := EntryMeta{Mode: ModeBare}
	if stored, err := m.Store.ReadMeta(key); err == nil {
		meta = *stored
	} else {
		logger.Warnf("metadata for %s is unreadable, refreshing as a bare entry: %v", key, err)
	}

	logger.Info("refreshing cache entry", logger.Fields{"key": key, "mode": string(meta.Mode)})
	err := m.Store.UpdateInPlace(key, func(dir string) error {
		return m.Git.Fetch(ctx, dir, meta.Mode == ModeMirror)
	})
	if err != nil {
		return m.populateError(ctx, err, key)
	}

	meta.LastRefreshed = time.Now()
	if err := m.Store.WriteMeta(key, meta); err != nil {
		return err
	}

	m.notifyHook(ctx, hooks.PostRefresh, meta.URL, key, m.Store.EntryPath(key), meta.Mode)
	return nil
}

// Clean removes the selected entries. Entries whose lock cannot be taken in
// time, and entries a pre-clean hook refuses, are skipped; a clean that had
// to skip anything reports ErrPartialClean after processing the rest.
func (m *Manager) Clean(ctx context.Context, opts CleanOptions) (*CleanResult, error) {
	selected, err := m.selectEntries(opts)
	if err != nil {
		return nil, err
	}

	result := &CleanResult{}
	var merr *multierror.Error
	for _, entry := range selected {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		freed, err := m.cleanEntry(ctx, entry)
		if err != nil {
			logger.Warnf("skipping %s: %v", entry.Key, err)
			result.Skipped = append(result.Skipped, entry.Key)
			merr = multierror.Append(merr, pkgerrors.Wrapf(err, "%s", entry.Key))
			continue
		}
		result.Removed = append(result.Removed, entry.Key)
		result.FreedBytes += freed
	}

	if len(result.Skipped) > 0 {
		return result, pkgerrors.Wrapf(ErrPartialClean, "%d of %d entries skipped: %v",
			len(result.Skipped), len(selected), merr)
	}
	return result, nil
}

func (m *Manager) selectEntries(opts CleanOptions) ([]EntryInfo, error) {
	if !opts.All && opts.Location == "" && opts.OlderThan <= 0 && opts.UnusedFor <= 0 {
		return nil, fmt.Errorf("nothing selected to clean")
	}

	entries, err := m.Store.List()
	if err != nil {
		return nil, err
	}

	if opts.Location != "" {
		key, err := m.entryKey(opts.Location)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.Key == key {
				return []EntryInfo{entry}, nil
			}
		}
		return nil, pkgerrors.Wrapf(ErrNotCached, "%s", opts.Location)
	}
	if opts.All {
		return entries, nil
	}

	now := time.Now()
	var selected []EntryInfo
	for _, entry := range entries {
		if opts.OlderThan > 0 && now.Sub(entry.CreatedAt) > opts.OlderThan {
			selected = append(selected, entry)
			continue
		}
		if opts.UnusedFor > 0 && now.Sub(entry.lastActivity()) > opts.UnusedFor {
			selected = append(selected, entry)
		}
	}
	return selected, nil
}

// cleanEntry removes one entry under its exclusive lock. An error from the
// pre-clean hook vetoes the removal.
func (m *Manager) cleanEntry(ctx context.Context, entry EntryInfo) (int64, error) {
	lock, err := m.Locks.AcquireExclusive(ctx, m.Store.LockPath(entry.Key))
	if err != nil {
		return 0, err
	}
	defer lock.Release()

	if err := m.runHook(ctx, hooks.PreClean, entry.URL, entry.Key, m.Store.EntryPath(entry.Key), entry.Mode); err != nil {
		return 0, pkgerrors.Wrap(err, "pre-clean hook refused")
	}

	size, _, _ := m.Store.Size(entry.Key)
	if err := m.Store.Remove(entry.Key); err != nil {
		return 0, err
	}
	logger.Info("removed cache entry", logger.Fields{"key": entry.Key, "freed": size})
	return size, nil
}

// Clone produces a working clone of location at dest, serving objects out of
// the cache. dest may be empty, in which case git derives a directory name.
func (m *Manager) Clone(ctx context.Context, location, dest string, opts CloneOptions) error {
	key, err := m.entryKey(location)
	if err != nil {
		return err
	}

	if opts.NoAdd {
		if !m.Store.Exists(key) {
			return pkgerrors.Wrapf(ErrNotCached, "%s", location)
		}
	} else {
		if err := m.Add(ctx, location, AddOptions{Mode: opts.Mode}); err != nil {
			if ctx.Err() != nil || opts.NoRetry {
				return err
			}
			logger.Warnf("cache population for %s failed, cloning directly: %v", location, err)
			return m.directClone(ctx, location, dest)
		}
	}

	err = m.referenceClone(ctx, key, location, dest, opts)
	if err == nil {
		m.notifyHook(ctx, hooks.PostClone, location, key, cloneDestination(location, dest), m.resolveMode(opts.Mode))
		return nil
	}
	if ctx.Err() != nil || opts.NoRetry {
		return err
	}
	if opts.NoAdd && errors.Is(err, ErrNotCached) {
		return err
	}
	logger.Warnf("clone via cache for %s failed, cloning directly: %v", location, err)
	return m.directClone(ctx, location, dest)
}

// referenceClone serves a clone from the cache entry under its shared lock.
func (m *Manager) referenceClone(ctx context.Context, key, location, dest string, opts CloneOptions) error {
	lock, err := m.Locks.AcquireShared(ctx, m.Store.LockPath(key))
	if err != nil {
		return err
	}
	defer lock.Release()

	if !m.Store.Exists(key) {
		return pkgerrors.Wrapf(ErrNotCached, "%s", location)
	}

	if err := m.Store.TouchUsed(key); err != nil {
		logger.Warnf("failed to update served marker for %s: %v", key, err)
	}

	logger.Info("cloning via cache", logger.Fields{"url": location, "key": key})
	if err := m.Git.CloneReference(ctx, location, dest, m.Store.EntryPath(key), opts.Dissociate); err != nil {
		if ctx.Err() != nil {
			return err
		}
		return pkgerrors.Wrapf(ErrPopulateFailed, "clone via cache for %s: %v", location, err)
	}
	return nil
}

// directClone bypasses the cache entirely.
func (m *Manager) directClone(ctx context.Context, location, dest string) error {
	if err := m.Git.Clone(ctx, location, dest); err != nil {
		if ctx.Err() != nil {
			return err
		}
		return pkgerrors.Wrapf(ErrPopulateFailed, "git clone %s: %v", location, err)
	}
	m.notifyHook(ctx, hooks.PostClone, location, giturl.Key(location), cloneDestination(location, dest), "")
	return nil
}

// Export writes the entry's repository into a tar.gz archive at outFile.
func (m *Manager) Export(ctx context.Context, location, outFile string) error {
	if m.Archives == nil {
		return fmt.Errorf("archive support is not configured")
	}
	key, err := m.entryKey(location)
	if err != nil {
		return err
	}
	if !m.Store.Exists(key) {
		return pkgerrors.Wrapf(ErrNotCached, "%s", location)
	}

	lock, err := m.Locks.AcquireShared(ctx, m.Store.LockPath(key))
	if err != nil {
		return err
	}
	defer lock.Release()

	if !m.Store.Exists(key) {
		return pkgerrors.Wrapf(ErrNotCached, "%s", location)
	}

	logger.Info("exporting cache entry", logger.Fields{"key": key, "archive": outFile})
	if err := m.Archives.Create(ctx, m.Store.EntryPath(key), outFile); err != nil {
		return pkgerrors.Wrapf(err, "exporting %s", key)
	}
	return nil
}

// Import creates a new entry from an archive produced by Export.
func (m *Manager) Import(ctx context.Context, location, archiveFile string, mode Mode) error {
	if m.Archives == nil {
		return fmt.Errorf("archive support is not configured")
	}
	key, err := m.entryKey(location)
	if err != nil {
		return err
	}
	resolved := m.resolveMode(mode)

	ok, err := m.Archives.Contains(ctx, archiveFile, "HEAD")
	if err != nil {
		return pkgerrors.Wrapf(err, "reading archive %s", archiveFile)
	}
	if !ok {
		return fmt.Errorf("archive %s does not contain a git repository (no HEAD)", archiveFile)
	}

	if err := m.Store.EnsurePod(key); err != nil {
		return err
	}
	lock, err := m.Locks.AcquireExclusive(ctx, m.Store.LockPath(key))
	if err != nil {
		return err
	}
	defer lock.Release()

	if err := m.Store.PruneTemp(key); err != nil {
		return err
	}
	if m.Store.Exists(key) {
		return pkgerrors.Wrapf(ErrEntryExists, "%s", location)
	}

	logger.Info("importing cache entry", logger.Fields{"url": location, "archive": archiveFile})
	err = m.Store.CreateAtomic(key, func(dir string) error {
		return m.Archives.ExtractAll(ctx, archiveFile, dir)
	})
	if err != nil {
		return m.populateError(ctx, err, location)
	}

	if err := m.Store.WriteMeta(key, EntryMeta{URL: location, Mode: resolved, CreatedAt: time.Now()}); err != nil {
		return err
	}

	m.notifyHook(ctx, hooks.PostAdd, location, key, m.Store.EntryPath(key), resolved)
	return nil
}

// GetInfo summarizes every entry together with its disk usage.
func (m *Manager) GetInfo() (*Info, error) {
	entries, err := m.Store.List()
	if err != nil {
		return nil, err
	}

	info := &Info{Root: m.Store.Root()}
	for _, entry := range entries {
		size, files, err := m.Store.Size(entry.Key)
		if err != nil {
			logger.Warnf("failed to size %s: %v", entry.Key, err)
		}
		if !entry.Populated {
			info.Incomplete++
		}
		info.Entries = append(info.Entries, EntryDetail{EntryInfo: entry, Size: size, Files: files})
		info.TotalSize += size
		info.TotalFiles += files
	}
	return info, nil
}

// GetEntry reports one repository's entry with its disk usage.
func (m *Manager) GetEntry(location string) (*EntryDetail, error) {
	key, err := m.entryKey(location)
	if err != nil {
		return nil, err
	}
	entries, err := m.Store.List()
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.Key != key {
			continue
		}
		size, files, err := m.Store.Size(key)
		if err != nil {
			logger.Warnf("failed to size %s: %v", key, err)
		}
		return &EntryDetail{EntryInfo: entry, Size: size, Files: files}, nil
	}
	return nil, pkgerrors.Wrapf(ErrNotCached, "%s", location)
}

// entryKey derives the cache key for a location.
func (m *Manager) entryKey(location string) (string, error) {
	key := giturl.Key(location)
	if key == "" {
		return "", pkgerrors.Wrapf(ErrInvalidLocation, "%q", location)
	}
	return key, nil
}

func (m *Manager) resolveMode(mode Mode) Mode {
	if mode != "" {
		return mode
	}
	if m.DefaultMode != "" {
		return m.DefaultMode
	}
	return ModeBare
}

// populateError classifies a failed populate. Store failures and caller
// cancellation pass through; everything else means the clone or fetch itself
// failed.
func (m *Manager) populateError(ctx context.Context, err error, location string) error {
	if errors.Is(err, ErrFilesystem) || ctx.Err() != nil {
		return err
	}
	return pkgerrors.Wrapf(ErrPopulateFailed, "%s: %v", location, err)
}

// notifyHook dispatches a post-operation hook. Post hooks are advisory, so
// failures are logged and swallowed.
func (m *Manager) notifyHook(ctx context.Context, event hooks.HookType, url, key, hookPath string, mode Mode) {
	if err := m.runHook(ctx, event, url, key, hookPath, mode); err != nil {
		logger.Warnf("%s hook failed: %v", event, err)
	}
}

func (m *Manager) runHook(ctx context.Context, event hooks.HookType, url, key, hookPath string, mode Mode) error {
	if m.Hooks == nil {
		return nil
	}
	return m.Hooks.Execute(ctx, event, hooks.HookContext{
		URL:  url,
		Key:  key,
		Path: hookPath,
		Mode: string(mode),
	})
}

// cloneDestination resolves where a working clone lands, mirroring git's
// derivation of a directory name from the repository path.
func cloneDestination(location, dest string) string {
	if dest != "" {
		return dest
	}
	return path.Base(giturl.Normalize(location))
}
