// Package archive packs cache entry payloads into tar.gz files and
// unpacks them again. It backs the export and import operations.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mholt/archives"
	"github.com/revdeer/git-cache/pkg/fsutil"
)

// Manager handles packing and unpacking of entry payloads.
type Manager struct{}

// NewManager creates a new Manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// Create packs the contents of sourceDir into a tar.gz file at
// archivePath. Paths inside the archive are relative to sourceDir, so a
// packed repository unpacks with HEAD and refs at the archive root.
func (am *Manager) Create(ctx context.Context, sourceDir, archivePath string) error {
	absolutePath, err := filepath.Abs(sourceDir)
	if err != nil {
		return fmt.Errorf("failed to resolve source directory: %w", err)
	}

	archiveFiles, err := archives.FilesFromDisk(ctx, nil, map[string]string{
		absolutePath + string(os.PathSeparator): "",
	})
	if err != nil {
		return fmt.Errorf("failed to read files from disk: %w", err)
	}

	if err := fsutil.EnsureFileDir(archivePath); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}
	file, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create archive file %s: %w", archivePath, err)
	}
	// Flush before close so a crashed export never leaves a silently
	// truncated archive behind.
	defer func() {
		_ = file.Sync()
		_ = file.Close()
	}()

	format := archives.CompressedArchive{
		Compression: archives.Gz{},
		Archival:    archives.Tar{},
	}

	if err := format.Archive(ctx, file, archiveFiles); err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	return nil
}

// ExtractAll unpacks the archive at archivePath into destDir,
// preserving file modes and timestamps.
func (am *Manager) ExtractAll(ctx context.Context, archivePath, destDir string) error {
	fsys, err := archives.FileSystem(ctx, archivePath, nil)
	if err != nil {
		return fmt.Errorf("failed to open archive file: %w", err)
	}
	if closer, ok := fsys.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	if err := os.MkdirAll(destDir, fsutil.DirModeDefault); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		return am.extractEntry(fsys, path, destDir, d)
	}

	return fs.WalkDir(fsys, ".", walkFn)
}

// Contains reports whether the archive has an entry at name. Import
// uses it to reject archives that do not look like a repository before
// unpacking anything.
func (am *Manager) Contains(ctx context.Context, archivePath, name string) (bool, error) {
	fsys, err := archives.FileSystem(ctx, archivePath, nil)
	if err != nil {
		return false, fmt.Errorf("failed to open archive file: %w", err)
	}
	if closer, ok := fsys.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}

	f, err := fsys.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to probe archive for %s: %w", name, err)
	}
	_ = f.Close()
	return true, nil
}

// extractEntry writes a single archive entry below destDir.
func (am *Manager) extractEntry(fsys fs.FS, path, destDir string, d fs.DirEntry) error {
	// Skip the root directory
	if path == "." {
		return nil
	}

	targetPath := filepath.Join(destDir, path)

	if d.IsDir() {
		return os.MkdirAll(targetPath, fsutil.DirModeDefault)
	}

	info, err := d.Info()
	if err != nil {
		return fmt.Errorf("failed to get file info for %s: %w", path, err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		return am.writeSymlink(fsys, path, targetPath)
	}

	return am.writeRegularFile(fsys, path, targetPath, info)
}

// writeSymlink recreates the symlink archive entry at targetPath.
func (am *Manager) writeSymlink(fsys fs.FS, path, targetPath string) error {
	linkTarget, err := fsys.Open(path)
	if err != nil {
		return fmt.Errorf("failed to read symlink %s: %w", path, err)
	}
	defer func() { _ = linkTarget.Close() }()

	targetBytes, err := io.ReadAll(linkTarget)
	if err != nil {
		return fmt.Errorf("failed to read symlink target %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), fsutil.DirModeDefault); err != nil {
		return fmt.Errorf("failed to create parent directory for symlink %s: %w", path, err)
	}

	// Remove a leftover from an earlier unpack into the same directory
	_ = os.Remove(targetPath)

	return os.Symlink(string(targetBytes), targetPath)
}

// writeRegularFile writes a regular archive entry to targetPath,
// carrying over its mode and modification time.
func (am *Manager) writeRegularFile(fsys fs.FS, path, targetPath string, info fs.FileInfo) error {
	srcFile, err := fsys.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open archive entry %s: %w", path, err)
	}
	defer func() { _ = srcFile.Close() }()

	if err := os.MkdirAll(filepath.Dir(targetPath), fsutil.DirModeDefault); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", path, err)
	}

	dstFile, err := fsutil.CreateFilePerm(targetPath, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", targetPath, err)
	}
	defer func() { _ = dstFile.Close() }()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy archive entry %s: %w", path, err)
	}

	if err := os.Chmod(targetPath, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to set permissions for %s: %w", targetPath, err)
	}
	if err := os.Chtimes(targetPath, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("failed to set modification time for %s: %w", targetPath, err)
	}
	return nil
}
