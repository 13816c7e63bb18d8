package fsutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCacheRoot(t *testing.T) {
	root, err := DefaultCacheRoot()
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(root), "cache root should be absolute")
	assert.Equal(t, AppName, filepath.Base(root))
}

func TestDefaultConfigPath(t *testing.T) {
	path, err := DefaultConfigPath()
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(path), "config path should be absolute")
	assert.Equal(t, "config.yaml", filepath.Base(path))
	assert.Equal(t, AppName, filepath.Base(filepath.Dir(path)))
}
