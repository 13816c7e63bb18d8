package cache

import (
	"os"
	"path/filepath"
	"time"

	"github.com/revdeer/git-cache/pkg/errors"
	"github.com/revdeer/git-cache/pkg/fsutil"
	"gopkg.in/yaml.v3"
)

// Store owns the on-disk layout of the cache. It knows where every entry's
// pieces live and how to change them safely, but nothing about git.
type Store struct {
	root string
}

// NewStore creates a store rooted at the given cache directory.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the cache root directory.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) reposDir() string {
	return filepath.Join(s.root, reposDirName)
}

// PodPath returns the entry's container directory.
func (s *Store) PodPath(key string) string {
	return filepath.Join(s.reposDir(), key)
}

// EntryPath returns the entry's repository directory.
func (s *Store) EntryPath(key string) string {
	return filepath.Join(s.PodPath(key), repoDirName)
}

// LockPath returns the entry's lock file path.
func (s *Store) LockPath(key string) string {
	return filepath.Join(s.PodPath(key), lockFileName)
}

func (s *Store) metaPath(key string) string {
	return filepath.Join(s.PodPath(key), metaFileName)
}

func (s *Store) usedPath(key string) string {
	return filepath.Join(s.PodPath(key), usedMarkerName)
}

// EnsurePod creates the entry's container directory if needed.
func (s *Store) EnsurePod(key string) error {
	if err := fsutil.EnsureDir(s.PodPath(key)); err != nil {
		return errors.Wrapf(ErrFilesystem, "creating %s: %v", s.PodPath(key), err)
	}
	return nil
}

// Exists reports whether the entry holds a repository.
func (s *Store) Exists(key string) bool {
	info, err := os.Stat(s.EntryPath(key))
	return err == nil && info.IsDir()
}

// CreateAtomic populates a new entry. populate fills a staging directory
// inside the pod; only a fully populated staging directory is renamed into
// place, so readers never observe a half-written repository.
func (s *Store) CreateAtomic(key string, populate func(dir string) error) error {
	if err := s.EnsurePod(key); err != nil {
		return err
	}

	tmpDir, err := os.MkdirTemp(s.PodPath(key), tmpDirPattern)
	if err != nil {
		return errors.Wrapf(ErrFilesystem, "creating staging directory in %s: %v", s.PodPath(key), err)
	}
	defer os.RemoveAll(tmpDir)

	if err := populate(tmpDir); err != nil {
		return err
	}

	if err := os.Rename(tmpDir, s.EntryPath(key)); err != nil {
		if s.Exists(key) {
			// Another populate of the same entry won the rename.
			return nil
		}
		return errors.Wrapf(ErrFilesystem, "activating %s: %v", s.EntryPath(key), err)
	}
	return nil
}

// UpdateInPlace runs mutate against an existing entry's repository directory.
func (s *Store) UpdateInPlace(key string, mutate func(dir string) error) error {
	if !s.Exists(key) {
		return errors.Wrapf(ErrNotCached, "%s", key)
	}
	return mutate(s.EntryPath(key))
}

// Remove deletes the entry's repository, metadata, served marker, and any
// staging residue. The pod directory and its lock file stay behind: a waiter
// blocked on the lock must find the same lock object alive once it acquires.
func (s *Store) Remove(key string) error {
	// Payload first, so a waiter that proceeds after us sees the entry
	// gone rather than half-deleted.
	if err := os.RemoveAll(s.EntryPath(key)); err != nil {
		return errors.Wrapf(ErrFilesystem, "removing %s: %v", s.EntryPath(key), err)
	}
	for _, path := range []string{s.usedPath(key), s.metaPath(key)} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(ErrFilesystem, "removing %s: %v", path, err)
		}
	}
	return s.PruneTemp(key)
}

// PruneTemp clears staging directories abandoned by interrupted populates.
// Callers hold the entry's exclusive lock, so no staging directory matching
// the pattern can belong to a live populate.
func (s *Store) PruneTemp(key string) error {
	matches, err := filepath.Glob(filepath.Join(s.PodPath(key), tmpDirPattern))
	if err != nil {
		return errors.Wrapf(ErrFilesystem, "scanning %s: %v", s.PodPath(key), err)
	}
	for _, match := range matches {
		if err := os.RemoveAll(match); err != nil {
			return errors.Wrapf(ErrFilesystem, "removing staging residue %s: %v", match, err)
		}
	}
	return nil
}

// List enumerates the cache's entries in key order. Pods that hold nothing
// but their permanent lock are not entries anymore and are skipped; pods with
// metadata or staging residue but no repository are reported unpopulated so a
// clean pass can finish the job.
func (s *Store) List() ([]EntryInfo, error) {
	dirEntries, err := os.ReadDir(s.reposDir())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(ErrFilesystem, "listing %s: %v", s.reposDir(), err)
	}

	var entries []EntryInfo
	for _, dirEntry := range dirEntries {
		if !dirEntry.IsDir() {
			continue
		}
		info, ok := s.entryInfo(dirEntry.Name())
		if !ok {
			continue
		}
		entries = append(entries, info)
	}
	return entries, nil
}

func (s *Store) entryInfo(key string) (EntryInfo, bool) {
	info := EntryInfo{Key: key, Populated: s.Exists(key)}

	meta, metaErr := s.ReadMeta(key)
	if metaErr == nil {
		info.URL = meta.URL
		info.Mode = meta.Mode
		info.CreatedAt = meta.CreatedAt
		info.LastRefreshed = meta.LastRefreshed
	}
	if stat, err := os.Stat(s.usedPath(key)); err == nil {
		info.LastUsed = stat.ModTime()
	}

	if !info.Populated && metaErr != nil && !s.hasStagingResidue(key) {
		return EntryInfo{}, false
	}
	return info, true
}

func (s *Store) hasStagingResidue(key string) bool {
	matches, err := filepath.Glob(filepath.Join(s.PodPath(key), tmpDirPattern))
	return err == nil && len(matches) > 0
}

// TouchUsed stamps the entry's served marker with the current time.
func (s *Store) TouchUsed(key string) error {
	path := s.usedPath(key)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, fsutil.FileModeDefault)
	if err != nil {
		return errors.Wrapf(ErrFilesystem, "touching %s: %v", path, err)
	}
	file.Close()

	now := time.Now()
	if err := os.Chtimes(path, now, now); err != nil {
		return errors.Wrapf(ErrFilesystem, "touching %s: %v", path, err)
	}
	return nil
}

// ReadMeta loads the entry's metadata. The read error is returned as is so
// callers can tell a missing file from a corrupt one.
func (s *Store) ReadMeta(key string) (*EntryMeta, error) {
	data, err := os.ReadFile(s.metaPath(key))
	if err != nil {
		return nil, err
	}
	var meta EntryMeta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", s.metaPath(key))
	}
	return &meta, nil
}

// WriteMeta persists the entry's metadata through a staging file, so a crash
// mid-write never corrupts metadata that was previously intact.
func (s *Store) WriteMeta(key string, meta EntryMeta) error {
	data, err := yaml.Marshal(&meta)
	if err != nil {
		return errors.Wrap(err, "encoding entry metadata")
	}

	tmp := filepath.Join(s.PodPath(key), tmpDirPrefix+"meta")
	if err := os.WriteFile(tmp, data, fsutil.FileModeDefault); err != nil {
		return errors.Wrapf(ErrFilesystem, "writing %s: %v", tmp, err)
	}
	if err := os.Rename(tmp, s.metaPath(key)); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(ErrFilesystem, "writing %s: %v", s.metaPath(key), err)
	}
	return nil
}

// Size reports the entry repository's total bytes and file count.
func (s *Store) Size(key string) (int64, int, error) {
	return dirSizeAndFiles(s.EntryPath(key))
}

// dirSizeAndFiles calculates directory size and file count.
func dirSizeAndFiles(dir string) (size int64, count int, err error) {
	if _, err = os.Stat(dir); os.IsNotExist(err) {
		return 0, 0, nil
	}

	err = filepath.Walk(dir, func(_ string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !info.IsDir() {
			size += info.Size()
			count++
		}
		return nil
	})
	if err != nil {
		err = errors.Wrapf(err, "error walking directory %s", dir)
	}
	return size, count, err
}
