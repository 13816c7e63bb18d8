package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(t *testing.T) string
		checkPerms bool
	}{
		{
			name: "creates new directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "repos")
			},
			checkPerms: true,
		},
		{
			name: "creates nested directories",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "repos", "github.com_git_git", "git")
			},
			checkPerms: true,
		},
		{
			name: "succeeds when directory already exists",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			path := testCase.setup(t)

			err := EnsureDir(path)

			assert.NoError(t, err)
			assert.DirExists(t, path)

			if testCase.checkPerms && runtime.GOOS != "windows" {
				info, err := os.Stat(path)
				require.NoError(t, err)
				assert.Equal(t, os.FileMode(DirModeDefault), info.Mode().Perm())
			}
		})
	}
}

func TestEnsureFileDir(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
	}{
		{
			name: "creates parent directory for file",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "git-cache", "config.yaml")
			},
		},
		{
			name: "creates nested parent directories for file",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "repos", "example.com_repo", ".git-cache-meta")
			},
		},
		{
			name: "succeeds when parent directory exists",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "config.yaml")
			},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			filePath := testCase.setup(t)
			dir := filepath.Dir(filePath)

			err := EnsureFileDir(filePath)

			assert.NoError(t, err)
			assert.DirExists(t, dir)
		})
	}
}

func TestEnsureDir_PermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Skipping permission test on Windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("Skipping permission test when running as root")
	}

	tempDir := t.TempDir()
	readonlyDir := filepath.Join(tempDir, "readonly")
	err := os.Mkdir(readonlyDir, 0o555)
	require.NoError(t, err)

	err = EnsureDir(filepath.Join(readonlyDir, "shouldfail"))

	assert.Error(t, err)
	assert.False(t, os.IsExist(err), "Should not be an 'already exists' error")
}
