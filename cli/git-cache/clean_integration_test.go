//go:build integration

package main

import (
	"path/filepath"
	"testing"

	"github.com/revdeer/git-cache/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean_AllRemovesEveryEntry(t *testing.T) {
	installStubGit(t)
	tempDir := t.TempDir()
	cfgPath, cacheRoot := writeTempConfig(t, tempDir)

	_, err := runCLI(t, "--config", cfgPath, "add", "https://example.com/one")
	require.NoError(t, err)
	_, err = runCLI(t, "--config", cfgPath, "add", "https://example.com/two")
	require.NoError(t, err)

	_, err = runCLI(t, "--config", cfgPath, "clean", "--all")
	require.NoError(t, err)

	assert.NoDirExists(t, entryRepoPath(cacheRoot, "example.com_one"))
	assert.NoDirExists(t, entryRepoPath(cacheRoot, "example.com_two"))
}

func TestClean_SingleRepository(t *testing.T) {
	installStubGit(t)
	tempDir := t.TempDir()
	cfgPath, cacheRoot := writeTempConfig(t, tempDir)

	_, err := runCLI(t, "--config", cfgPath, "add", "https://example.com/one")
	require.NoError(t, err)
	_, err = runCLI(t, "--config", cfgPath, "add", "https://example.com/two")
	require.NoError(t, err)

	_, err = runCLI(t, "--config", cfgPath, "clean", "https://example.com/one")
	require.NoError(t, err)

	assert.NoDirExists(t, entryRepoPath(cacheRoot, "example.com_one"))
	assert.DirExists(t, entryRepoPath(cacheRoot, "example.com_two"))
}

func TestClean_WithoutSelectorFails(t *testing.T) {
	installStubGit(t)
	tempDir := t.TempDir()
	cfgPath, _ := writeTempConfig(t, tempDir)

	_, err := runCLI(t, "--config", cfgPath, "clean")
	require.Error(t, err)
	assert.Equal(t, cli.ExitError, cli.ExitCodeFor(err))
}

func TestClean_PreCleanHookProtectsEntry(t *testing.T) {
	installStubGit(t)
	tempDir := t.TempDir()
	cfgPath, cacheRoot := writeTempConfig(t, tempDir)

	_, err := runCLI(t, "--config", cfgPath, "add", "https://example.com/keep")
	require.NoError(t, err)

	hooksDir := filepath.Join(tempDir, "hooks")
	writeHookScript(t, hooksDir, "pre-clean", `
err := ""
if key == "example.com_keep" {
	err = "entry is protected"
}
`)

	_, err = runCLI(t, "--config", cfgPath, "clean", "--all")
	require.Error(t, err)
	assert.Equal(t, cli.ExitPartialClean, cli.ExitCodeFor(err))
	assert.DirExists(t, entryRepoPath(cacheRoot, "example.com_keep"))
}

func TestInfo_SummarizesCache(t *testing.T) {
	installStubGit(t)
	tempDir := t.TempDir()
	cfgPath, _ := writeTempConfig(t, tempDir)

	_, err := runCLI(t, "--config", cfgPath, "add", "https://example.com/one")
	require.NoError(t, err)

	out, err := runCLI(t, "--config", cfgPath, "info")
	require.NoError(t, err)

	assert.Contains(t, out, "Entries: 1")
	assert.Contains(t, out, "example.com_one")
	assert.Contains(t, out, "https://example.com/one")
}

func TestInfo_SingleEntryDetails(t *testing.T) {
	installStubGit(t)
	tempDir := t.TempDir()
	cfgPath, cacheRoot := writeTempConfig(t, tempDir)

	_, err := runCLI(t, "--config", cfgPath, "add", "https://example.com/one")
	require.NoError(t, err)

	out, err := runCLI(t, "--config", cfgPath, "info", "https://example.com/one")
	require.NoError(t, err)

	assert.Contains(t, out, "Key: example.com_one")
	assert.Contains(t, out, "Mode: bare")
	assert.Contains(t, out, entryRepoPath(cacheRoot, "example.com_one"))
}
