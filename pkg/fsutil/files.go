package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// Move moves a file or directory from src to dst.
// It first attempts os.Rename for an atomic move and falls back to
// copy + delete when src and dst live on different filesystems.
func Move(src, dst string) error {
	if src == "" || dst == "" {
		return fmt.Errorf("source and destination paths cannot be empty")
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat source %s: %w", src, err)
	}

	if !srcInfo.IsDir() {
		if err := EnsureFileDir(dst); err != nil {
			return fmt.Errorf("failed to create destination directory for %s: %w", dst, err)
		}
	}

	err = os.Rename(src, dst)
	if err == nil {
		return nil
	}

	if !isCrossDeviceError(err) {
		return fmt.Errorf("failed to rename %s to %s: %w", src, dst, err)
	}

	if srcInfo.IsDir() {
		return moveDirectory(src, dst, srcInfo)
	}
	return moveFile(src, dst, srcInfo)
}

// isCrossDeviceError reports whether an os.Rename failure means src and dst
// are on different filesystems. EXDEV covers Unix; the message check covers
// Windows, where moving across volumes surfaces a different error code.
func isCrossDeviceError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.EXDEV) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "cross-device") || strings.Contains(msg, "different disk")
}

func moveFile(src, dst string, srcInfo os.FileInfo) error {
	if err := Copy(src, dst); err != nil {
		return fmt.Errorf("failed to copy file %s to %s: %w", src, dst, err)
	}

	if err := os.Chmod(dst, srcInfo.Mode()); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", dst, err)
	}
	if err := os.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
		return fmt.Errorf("failed to set modification time on %s: %w", dst, err)
	}

	if err := os.Remove(src); err != nil {
		return fmt.Errorf("failed to remove source file %s after copy: %w", src, err)
	}
	return nil
}

func moveDirectory(src, dst string, srcInfo os.FileInfo) error {
	if err := os.MkdirAll(dst, srcInfo.Mode()); err != nil {
		return fmt.Errorf("failed to create destination directory %s: %w", dst, err)
	}

	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %s: %w", path, err)
		}
		dstPath := filepath.Join(dst, relPath)

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("failed to get file info for %s: %w", path, err)
		}

		if d.IsDir() {
			return os.MkdirAll(dstPath, info.Mode())
		}

		if err := Copy(path, dstPath); err != nil {
			return fmt.Errorf("failed to copy file %s to %s: %w", path, dstPath, err)
		}
		if err := os.Chmod(dstPath, info.Mode()); err != nil {
			return fmt.Errorf("failed to set permissions on %s: %w", dstPath, err)
		}
		return os.Chtimes(dstPath, info.ModTime(), info.ModTime())
	})
	if err != nil {
		return err
	}

	if err := os.RemoveAll(src); err != nil {
		return fmt.Errorf("failed to remove source directory %s after copy: %w", src, err)
	}
	return nil
}

// Copy copies the contents of srcFile to dstFile.
func Copy(srcFile, dstFile string) error {
	src, err := os.Open(srcFile)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", srcFile, err)
	}
	defer src.Close()

	dst, err := os.Create(dstFile)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", dstFile, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to copy from %s to %s: %w", srcFile, dstFile, err)
	}
	return nil
}

// CreateFilePerm creates a new file with the specified permissions.
func CreateFilePerm(name string, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, perm)
}
