// Package git invokes the system git binary for the clone, fetch and
// config operations the cache engine needs. The engine never inspects
// repository internals; it hands git an argument list and judges the
// outcome by exit status, so this package is mostly about building
// those argument lists and capturing output for diagnostics.
package git

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-version"
	"github.com/revdeer/git-cache/internal/logger"
)

// waitDelay bounds how long a cancelled git process may linger after the
// interrupt before it is killed outright.
const waitDelay = 10 * time.Second

// stderrTailLimit bounds how much captured stderr ends up in error messages.
const stderrTailLimit = 1000

// Client runs git commands against a configurable binary.
type Client struct {
	binary   string
	progress io.Writer

	mu            sync.Mutex
	cachedVersion *version.Version
	versionErr    error
	versionProbed bool
}

// NewClient creates a client for the given git binary. An empty name
// selects the git found on PATH.
func NewClient(binary string) *Client {
	if binary == "" {
		binary = "git"
	}
	return &Client{binary: binary}
}

// WithProgress mirrors git's stderr to w while still capturing it, so
// long-running clones stay visible to the user.
func (c *Client) WithProgress(w io.Writer) *Client {
	c.progress = w
	return c
}

// Result carries the captured outcome of one git invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CloneBare populates dest with a bare clone of url, or a mirror clone
// when mirror is set.
func (c *Client) CloneBare(ctx context.Context, url, dest string, mirror bool) error {
	_, err := c.run(ctx, cloneBareArgs(url, dest, mirror)...)
	return err
}

// Fetch updates the repository at repoDir from its origin remote. Mirror
// clones carry their own all-refs fetch refspec; bare clones have none,
// so the branch refspec is passed explicitly.
func (c *Client) Fetch(ctx context.Context, repoDir string, mirror bool) error {
	_, err := c.run(ctx, fetchArgs(repoDir, mirror)...)
	return err
}

// CloneReference clones url into dest, borrowing objects from the local
// repository at reference. With dissociate the borrowed objects are
// copied in so the result does not depend on the reference surviving.
// An empty dest lets git derive the directory name from the url.
func (c *Client) CloneReference(ctx context.Context, url, dest, reference string, dissociate bool) error {
	refFlag := "--reference"
	if c.SupportsReferenceIfAble(ctx) {
		refFlag = "--reference-if-able"
	}
	_, err := c.run(ctx, referenceCloneArgs(url, dest, reference, refFlag, dissociate)...)
	return err
}

// Clone performs a plain clone of url into dest. An empty dest lets git
// derive the directory name from the url.
func (c *Client) Clone(ctx context.Context, url, dest string) error {
	_, err := c.run(ctx, plainCloneArgs(url, dest)...)
	return err
}

// ConfigValues returns the git configuration entries whose keys start
// with prefix, as reported by the configured binary. No matching keys
// is not an error; the map is simply empty.
func (c *Client) ConfigValues(ctx context.Context, prefix string) (map[string]string, error) {
	res, err := c.run(ctx, "config", "--get-regexp", "^"+regexp.QuoteMeta(prefix))
	if err != nil {
		// git config exits 1 when nothing matches.
		if res != nil && res.ExitCode == 1 {
			return map[string]string{}, nil
		}
		return nil, err
	}

	values := make(map[string]string)
	for _, line := range strings.Split(res.Stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, _ := strings.Cut(line, " ")
		values[key] = value
	}
	return values, nil
}

func cloneBareArgs(url, dest string, mirror bool) []string {
	modeFlag := "--bare"
	if mirror {
		modeFlag = "--mirror"
	}
	return []string{"clone", modeFlag, "--", url, dest}
}

func fetchArgs(repoDir string, mirror bool) []string {
	if mirror {
		return []string{"-C", repoDir, "fetch", "--prune", "origin"}
	}
	return []string{"-C", repoDir, "fetch", "--prune", "--tags", "origin", "+refs/heads/*:refs/heads/*"}
}

func referenceCloneArgs(url, dest, reference, refFlag string, dissociate bool) []string {
	args := []string{"clone", refFlag, reference}
	if dissociate {
		args = append(args, "--dissociate")
	}
	args = append(args, "--", url)
	if dest != "" {
		args = append(args, dest)
	}
	return args
}

func plainCloneArgs(url, dest string) []string {
	args := []string{"clone", "--", url}
	if dest != "" {
		args = append(args, dest)
	}
	return args
}

// run executes the git binary with the given arguments and captures its
// output. Cancellation interrupts the child first and kills it only
// after waitDelay, giving git a chance to clean up its own temp files.
func (c *Client) run(ctx context.Context, args ...string) (*Result, error) {
	logger.Debug("running git command", logger.Fields{
		"binary": c.binary,
		"args":   strings.Join(args, " "),
	})

	cmd := exec.CommandContext(ctx, c.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if c.progress != nil {
		cmd.Stderr = io.MultiWriter(&stderr, c.progress)
	} else {
		cmd.Stderr = &stderr
	}
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = waitDelay

	start := time.Now()
	err := cmd.Run()

	res := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: -1,
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	logger.Debug("git command finished", logger.Fields{
		"exit_code": res.ExitCode,
		"duration":  time.Since(start).Round(time.Millisecond).String(),
	})

	if err != nil {
		if ctx.Err() != nil {
			return res, fmt.Errorf("git %s interrupted: %w", args[0], ctx.Err())
		}
		return res, commandError(args, res, err)
	}
	return res, nil
}

func commandError(args []string, res *Result, err error) error {
	detail := stderrTail(res.Stderr, stderrTailLimit)
	if detail == "" {
		detail = err.Error()
	}
	if res.ExitCode >= 0 {
		return fmt.Errorf("%w: git %s (exit %d): %s", ErrGitCommand, args[0], res.ExitCode, detail)
	}
	return fmt.Errorf("%w: git %s: %s", ErrGitCommand, args[0], detail)
}

// stderrTail returns the trailing portion of s. git prints its fatal
// error last, after any progress output.
func stderrTail(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	return "..." + s[len(s)-limit:]
}
