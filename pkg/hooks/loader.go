package hooks

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/revdeer/git-cache/pkg/errors"
	"github.com/revdeer/git-cache/pkg/fsutil"
)

// scriptExtension is the file extension the loader picks up.
const scriptExtension = ".tengo"

// sampleSuffix marks generated sample scripts. The loader skips them
// until they are renamed to plain .tengo files.
const sampleSuffix = ".sample"

// LoadFromDir loads every known lifecycle script from dir into the
// manager. Scripts are named after their event, e.g. pre-clean.tengo.
// A missing directory means no hooks are configured.
func LoadFromDir(manager HookManager, dir string) error {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(errors.ErrHookLoad, "failed to read hooks directory %s: %v", dir, err)
	}

	known := make(map[HookType]bool, len(KnownTypes))
	for _, t := range KnownTypes {
		known[t] = true
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := filepath.Ext(entry.Name())
		if ext != scriptExtension {
			continue
		}

		hookType := HookType(strings.TrimSuffix(entry.Name(), ext))
		if !known[hookType] {
			continue
		}

		hookPath := filepath.Join(dir, entry.Name())
		content, err := os.ReadFile(hookPath)
		if err != nil {
			return errors.Wrapf(errors.ErrHookLoad, "failed to read hook file %s: %v", hookPath, err)
		}

		if err := manager.AddHook(Hook{
			Type:    hookType,
			Content: string(content),
		}); err != nil {
			return errors.Wrapf(err, "failed to add %s hook", hookType)
		}
	}

	return nil
}

// WriteSampleHooks writes a commented sample script for every event
// into dir, skipping files that already exist. Samples carry a .sample
// suffix so they stay inert until renamed.
func WriteSampleHooks(dir string) error {
	if err := fsutil.EnsureDir(dir); err != nil {
		return errors.Wrap(err, "failed to create hooks directory")
	}
	for _, hookType := range KnownTypes {
		path := filepath.Join(dir, string(hookType)+scriptExtension+sampleSuffix)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte(HookTemplate(hookType)), fsutil.FileModeDefault); err != nil {
			return errors.Wrapf(err, "failed to write sample hook %s", path)
		}
	}
	return nil
}

// HookTemplate generates a starting-point script for an event.
func HookTemplate(hookType HookType) string {
	switch hookType {
	case PostAdd:
		return `// post-add hook
// Runs after a repository is first cached.
// Available variables:
// - url: string - remote location that was cached
// - key: string - cache entry key
// - path: string - entry repository directory
// - mode: string - "bare" or "mirror"
// Assign a non-empty string to a top-level err to report failure.

err := ""

// Example: record new entries in an audit log
/*
fmt := import("fmt")
fmt.println("cached " + url + " as " + key)
*/`

	case PostRefresh:
		return `// post-refresh hook
// Runs after an entry is updated from its remote.
// Available variables: same as post-add.

err := ""

// Example: fail loudly when the entry path went missing
/*
os := import("os")
if is_error(os.stat(path)) {
    err = "refreshed entry vanished: " + path
}
*/`

	case PreClean:
		return `// pre-clean hook
// Runs before an entry is removed. A non-empty err vetoes removal of
// this entry; clean continues with the remaining entries.
// Available variables: same as post-add.

err := ""

// Example: protect specific remotes from clean
/*
text := import("text")
if text.contains(url, "example.com/keep") {
    err = "protected entry"
}
*/`

	case PostClone:
		return `// post-clone hook
// Runs after a clone is delivered. path is the clone destination.
// Available variables: same as post-add.

err := ""

// Example: print where the checkout landed
/*
fmt := import("fmt")
fmt.println("cloned " + url + " into " + path)
*/`

	default:
		return "// Unknown hook type: " + string(hookType)
	}
}
