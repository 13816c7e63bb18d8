// Package giturl canonicalizes repository locations into stable cache keys.
//
// Two locations that are provably the same remote (scp shorthand vs ssh vs
// https, credentials embedded or not, trailing slashes or .git suffix) map to
// the same key. Ambiguous pairs stay distinct.
package giturl

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// maxKeyLength is the longest key emitted as an escaped literal. Canonical
// forms that escape to something longer fall back to a content hash, keeping
// every key inside common path-component limits.
const maxKeyLength = 200

var (
	scpSyntax = regexp.MustCompile(`^git@([^:/]+):(.*)$`)
	slashRuns = regexp.MustCompile(`/{2,}`)
)

// Normalize canonicalizes a repository location to a schemeless host/path
// form. It never fails: malformed input degrades to a deterministic textual
// cleanup instead of an error.
//
// Examples:
//
//	git@github.com:user/Repo.git  -> github.com/user/Repo
//	https://GitHub.com/user/Repo/ -> github.com/user/Repo
//	git://github.com/user/Repo    -> github.com/user/Repo
func Normalize(location string) string {
	s := strings.TrimSpace(location)
	if s == "" {
		return ""
	}

	// scp-style shorthand is the one form the URL parser cannot take.
	if m := scpSyntax.FindStringSubmatch(s); m != nil {
		s = "https://" + m[1] + "/" + m[2]
	}

	if strings.HasPrefix(s, "git://") {
		s = "https://" + s[len("git://"):]
	}

	if !strings.Contains(s, "://") {
		// No authority to extract; treat the whole string as a path.
		return cleanPath(s)
	}

	u, err := url.Parse(s)
	if err != nil {
		return cleanPath(stripScheme(s))
	}

	// Hosts are case-insensitive; paths may not be, so their case survives.
	// Userinfo, query, and fragment never make it into the key.
	host := strings.ToLower(u.Hostname())
	if port := u.Port(); port != "" {
		host += ":" + port
	}

	return strings.Trim(host+cleanPathKeepRoot(u.EscapedPath()), "/")
}

// Key derives the filesystem-safe cache key for a location. The canonical
// form is flattened to a single path component; anything that would escape
// past the length limit becomes a fixed-width SHA-256 hex digest instead.
func Key(location string) string {
	normalized := Normalize(location)
	if normalized == "" {
		return ""
	}

	// Escape before joining: a literal underscore in the location must stay
	// distinguishable from the underscores that replace slashes, or
	// "a/b" and "a_b" would share an entry.
	segments := strings.Split(normalized, "/")
	for i, segment := range segments {
		segments[i] = escapeSegment(segment)
	}
	key := strings.Join(segments, "_")
	if strings.HasPrefix(key, ".") {
		key = "%2E" + key[1:]
	}

	if len(key) > maxKeyLength {
		sum := sha256.Sum256([]byte(normalized))
		return hex.EncodeToString(sum[:])
	}
	return key
}

func stripScheme(s string) string {
	if i := strings.Index(s, "://"); i >= 0 {
		return s[i+len("://"):]
	}
	return s
}

// cleanPath collapses duplicate slashes and strips the trailing slash run,
// then the .git suffix, then any slash that stripping uncovered.
func cleanPath(p string) string {
	return strings.Trim(cleanPathKeepRoot(p), "/")
}

func cleanPathKeepRoot(p string) string {
	p = slashRuns.ReplaceAllString(p, "/")
	p = strings.TrimRight(p, "/")
	p = strings.TrimSuffix(p, ".git")
	return strings.TrimRight(p, "/")
}

// escapeSegment maps one path segment onto the portable filename alphabet.
// Percent signs are escaped too, so escaped output can never be mistaken for
// (or collide with) literal input. A leading dot on the whole key is handled
// by the caller to keep keys out of the hidden/dot-dir namespace.
func escapeSegment(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case c == '-' || c == '.':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}
