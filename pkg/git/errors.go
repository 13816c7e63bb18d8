package git

import "fmt"

// Git command errors.
var (
	// ErrGitCommand indicates the git binary exited with a non-zero status.
	// The wrapped message carries the tail of the command's stderr.
	ErrGitCommand = fmt.Errorf("git command failed")
)
