package lockfile

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"syscall"
	"time"

	"github.com/revdeer/git-cache/internal/logger"
	"github.com/revdeer/git-cache/pkg/fsutil"
	"gopkg.in/yaml.v3"
)

// ownerSuffix names the sidecar next to a lock file that records who holds
// the exclusive lock. It is diagnostic only: correctness comes from the lock
// itself, the sidecar just makes "held by whom" answerable on a timeout.
const ownerSuffix = ".owner"

// OwnerInfo describes the current exclusive holder of a lock.
type OwnerInfo struct {
	PID        int       `yaml:"pid"`
	Hostname   string    `yaml:"hostname"`
	Username   string    `yaml:"username"`
	AcquiredAt time.Time `yaml:"acquired_at"`
}

func (o *OwnerInfo) describe() string {
	desc := fmt.Sprintf("held by pid %d", o.PID)
	if o.Username != "" || o.Hostname != "" {
		desc += fmt.Sprintf(" (%s@%s)", o.Username, o.Hostname)
	}
	if !o.AcquiredAt.IsZero() {
		desc += fmt.Sprintf(" since %s", o.AcquiredAt.Format(time.RFC3339))
	}
	if !processAlive(o.PID) {
		desc += " (process no longer running)"
	}
	return desc
}

// writeOwnerInfo records the calling process as the exclusive holder.
// Best effort: a failure to write diagnostics never fails an acquisition.
func writeOwnerInfo(lockPath string) {
	info := OwnerInfo{
		PID:        os.Getpid(),
		AcquiredAt: time.Now().UTC(),
	}
	if hostname, err := os.Hostname(); err == nil {
		info.Hostname = hostname
	}
	if current, err := user.Current(); err == nil {
		info.Username = current.Username
	}

	data, err := yaml.Marshal(&info)
	if err != nil {
		return
	}
	if err := os.WriteFile(lockPath+ownerSuffix, data, fsutil.FileModeDefault); err != nil {
		logger.Debug("failed to write lock owner info", logger.Fields{"path": lockPath, "error": err.Error()})
	}
}

// readOwnerInfo loads the holder sidecar, or nil if absent or unreadable.
func readOwnerInfo(lockPath string) *OwnerInfo {
	data, err := os.ReadFile(lockPath + ownerSuffix)
	if err != nil {
		return nil
	}
	var info OwnerInfo
	if err := yaml.Unmarshal(data, &info); err != nil {
		return nil
	}
	return &info
}

func removeOwnerInfo(lockPath string) {
	_ = os.Remove(lockPath + ownerSuffix)
}

// processAlive probes a pid with the null signal. On platforms where the
// probe is unsupported the holder is assumed alive.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	if errors.Is(err, os.ErrProcessDone) || errors.Is(err, syscall.ESRCH) {
		return false
	}
	// EPERM or an unsupported probe: the process exists as far as we can tell.
	return true
}
