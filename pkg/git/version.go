package git

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/go-version"
	"github.com/revdeer/git-cache/internal/logger"
)

// Feature cut-ins, per git release notes.
var (
	minDissociate      = version.Must(version.NewVersion("2.3.0"))
	minReferenceIfAble = version.Must(version.NewVersion("2.11.0"))
)

var versionPattern = regexp.MustCompile(`\d+(\.\d+)+`)

// Version reports the version of the configured git binary. The probe
// runs once per client; later calls return the cached result.
func (c *Client) Version(ctx context.Context) (*version.Version, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.versionProbed {
		c.cachedVersion, c.versionErr = c.probeVersion(ctx)
		c.versionProbed = true
	}
	return c.cachedVersion, c.versionErr
}

// SupportsDissociate reports whether the binary understands
// git clone --dissociate (git 2.3).
func (c *Client) SupportsDissociate(ctx context.Context) bool {
	return c.supportsAtLeast(ctx, minDissociate)
}

// SupportsReferenceIfAble reports whether the binary understands
// git clone --reference-if-able (git 2.11).
func (c *Client) SupportsReferenceIfAble(ctx context.Context) bool {
	return c.supportsAtLeast(ctx, minReferenceIfAble)
}

func (c *Client) supportsAtLeast(ctx context.Context, min *version.Version) bool {
	v, err := c.Version(ctx)
	if err != nil {
		// An unprobeable git reads as modern here. An actually ancient
		// binary fails the resulting command instead, and the engine's
		// plain-clone fallback covers that.
		logger.Debugf("git version probe failed: %v", err)
		return true
	}
	return v.GreaterThanOrEqual(min)
}

func (c *Client) probeVersion(ctx context.Context) (*version.Version, error) {
	res, err := c.run(ctx, "version")
	if err != nil {
		return nil, err
	}
	return parseGitVersion(res.Stdout)
}

// parseGitVersion extracts the version number from "git version" output
// such as "git version 2.39.2", "git version 2.37.1 (Apple Git-137.1)"
// or "git version 2.37.1.windows.1".
func parseGitVersion(out string) (*version.Version, error) {
	match := versionPattern.FindString(out)
	if match == "" {
		return nil, fmt.Errorf("unrecognized git version output: %q", strings.TrimSpace(out))
	}
	return version.NewVersion(match)
}
