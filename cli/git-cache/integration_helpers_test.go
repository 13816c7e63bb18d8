//go:build integration

package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/revdeer/git-cache/pkg/archive"
	"github.com/stretchr/testify/require"
)

// stubGitScript is a small git stand-in: it answers the version and config
// probes and simulates clone and fetch by creating marker files, so the CLI
// can be driven end to end without network access. A URL containing "fail"
// makes clones fail the way an unreachable remote would.
const stubGitScript = `#!/bin/sh
if [ -n "$GIT_STUB_LOG" ]; then
	echo "$@" >> "$GIT_STUB_LOG"
fi

case "$1" in
version)
	echo "git version 2.40.0"
	exit 0
	;;
config)
	exit 1
	;;
-C)
	repo="$2"
	if [ ! -d "$repo" ]; then
		echo "fatal: no such repository $repo" >&2
		exit 128
	fi
	echo fetched > "$repo/FETCH_HEAD"
	exit 0
	;;
clone)
	shift
	bare=0
	skip_next=0
	url=""
	dest=""
	for arg in "$@"; do
		if [ "$skip_next" = 1 ]; then
			skip_next=0
			continue
		fi
		case "$arg" in
		--bare|--mirror) bare=1 ;;
		--reference|--reference-if-able) skip_next=1 ;;
		-*|--) ;;
		*)
			if [ -z "$url" ]; then
				url="$arg"
			else
				dest="$arg"
			fi
			;;
		esac
	done
	case "$url" in
	*fail*)
		echo "fatal: repository '$url' not found" >&2
		exit 128
		;;
	esac
	if [ -z "$dest" ]; then
		dest=$(basename "$url" .git)
	fi
	mkdir -p "$dest" || exit 128
	if [ "$bare" = 1 ]; then
		echo "ref: refs/heads/main" > "$dest/HEAD"
		printf '[core]\n\tbare = true\n' > "$dest/config"
		mkdir -p "$dest/refs/heads"
	else
		mkdir -p "$dest/.git"
		echo "ref: refs/heads/main" > "$dest/.git/HEAD"
		echo checkout > "$dest/README"
	fi
	exit 0
	;;
*)
	exit 0
	;;
esac
`

// installStubGit puts the stub git first on PATH for the duration of the test.
func installStubGit(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "git"), []byte(stubGitScript), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

// writeTempConfig writes a config file pointing the cache and hooks into the
// test's temp directory and returns its path and the cache root.
func writeTempConfig(t *testing.T, dir string) (string, string) {
	t.Helper()
	cfgPath := filepath.Join(dir, "config.yaml")
	cacheRoot := filepath.Join(dir, "cache")

	yamlContent := `settings:
  cache_root: ` + cacheRoot + `
  hooks_dir: ` + filepath.Join(dir, "hooks") + `
  lock_timeout: 5
  log_level: warn
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(yamlContent), 0o600))
	return cfgPath, cacheRoot
}

// runCLI executes the root command in process and returns captured stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	cmd.SetArgs(withDefaultCommand(cmd, args))

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	execErr := cmd.ExecuteContext(context.Background())

	_ = w.Close()
	os.Stdout = oldStdout

	var buf strings.Builder
	_, _ = io.Copy(&buf, r)
	_ = r.Close()

	return buf.String(), execErr
}

// writeHookScript drops a lifecycle script into the hooks directory the
// config points at, e.g. writeHookScript(t, dir, "pre-clean", src).
func writeHookScript(t *testing.T, hooksDir, event, script string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(hooksDir, 0o755))
	path := filepath.Join(hooksDir, event+".tengo")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o644))
}

// writeArchiveOf packs the given files into a tar.gz so import can be fed
// archives that did not come out of export.
func writeArchiveOf(t *testing.T, dir, archivePath string, files map[string]string) {
	t.Helper()
	srcDir := filepath.Join(dir, "archive-src")
	require.NoError(t, os.MkdirAll(srcDir, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(srcDir, name), []byte(content), 0o644))
	}
	require.NoError(t, archive.NewManager().Create(context.Background(), srcDir, archivePath))
}

// entryRepoPath is where the cache keeps the repository for a key.
func entryRepoPath(cacheRoot, key string) string {
	return filepath.Join(cacheRoot, "repos", key, "git")
}

// countLines counts the lines of log containing needle.
func countLines(log, needle string) int {
	count := 0
	for _, line := range strings.Split(log, "\n") {
		if strings.Contains(line, needle) {
			count++
		}
	}
	return count
}
