package config

import (
	"strconv"
	"strings"
)

// Git configuration keys recognized as settings sources.
const (
	GitKeyRoot        = "gitcache.root"
	GitKeyMode        = "gitcache.mode"
	GitKeyNoLock      = "gitcache.nolock"
	GitKeyLockTimeout = "gitcache.locktimeout"
)

// ApplyGitConfig overlays settings read from git's own configuration, as
// returned by `git config --get-regexp ^gitcache\.`. A key only takes effect
// where the current value still equals the built-in default, so the YAML file
// and command line flags keep precedence over git config.
func (c *Config) ApplyGitConfig(values map[string]string) {
	defaults := DefaultConfig()

	if v, ok := values[GitKeyRoot]; ok && v != "" && c.Settings.CacheRoot == defaults.Settings.CacheRoot {
		c.Settings.CacheRoot = v
	}
	if v, ok := values[GitKeyMode]; ok && v != "" && c.Settings.Mode == defaults.Settings.Mode {
		c.Settings.Mode = v
	}
	if v, ok := values[GitKeyNoLock]; ok && !c.Settings.NoLock {
		c.Settings.NoLock = parseGitBool(v)
	}
	if v, ok := values[GitKeyLockTimeout]; ok && c.Settings.LockTimeout == defaults.Settings.LockTimeout {
		if seconds, err := strconv.Atoi(v); err == nil {
			c.Settings.LockTimeout = seconds
		}
	}
}

// parseGitBool interprets a value the way git does for boolean keys:
// true/yes/on and non-zero numbers are true, everything else is false.
// A key present with no value at all ("[gitcache] nolock") is true.
func parseGitBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n != 0
	}
	return false
}
