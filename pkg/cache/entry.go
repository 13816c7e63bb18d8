package cache

import (
	"fmt"
	"time"
)

// Mode selects how an entry tracks its remote.
type Mode string

const (
	// ModeBare entries are created with git clone --bare and refreshed
	// only on request.
	ModeBare Mode = "bare"

	// ModeMirror entries are created with git clone --mirror and track
	// the full remote ref namespace.
	ModeMirror Mode = "mirror"
)

// ParseMode validates a user-supplied mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeBare, ModeMirror:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown cache mode %q (expected %q or %q)", s, ModeBare, ModeMirror)
	}
}

// EntryMeta is the per-entry metadata persisted next to the repository.
type EntryMeta struct {
	URL           string    `yaml:"url"`
	Mode          Mode      `yaml:"mode"`
	CreatedAt     time.Time `yaml:"created_at"`
	LastRefreshed time.Time `yaml:"last_refreshed_at,omitempty"`
}

// EntryInfo describes one cache entry as found on disk.
type EntryInfo struct {
	Key           string
	URL           string
	Mode          Mode
	CreatedAt     time.Time
	LastRefreshed time.Time
	LastUsed      time.Time
	Populated     bool
}

// lastActivity is the most recent recorded use of the entry, falling back
// through refresh and creation times when a clone was never served.
func (e EntryInfo) lastActivity() time.Time {
	if !e.LastUsed.IsZero() {
		return e.LastUsed
	}
	if !e.LastRefreshed.IsZero() {
		return e.LastRefreshed
	}
	return e.CreatedAt
}
