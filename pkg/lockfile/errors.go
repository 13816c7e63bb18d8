package lockfile

import "fmt"

// Lock acquisition errors.
var (
	// ErrTimeout means the lock was not acquired within the configured wait.
	ErrTimeout = fmt.Errorf("timed out waiting for lock")
)
