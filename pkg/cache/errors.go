package cache

import "fmt"

// Common cache errors.
var (
	// ErrInvalidLocation is returned when a repository location normalizes
	// to the empty string and therefore cannot name a cache entry.
	ErrInvalidLocation = fmt.Errorf("invalid repository location")

	// ErrNotCached is returned when an operation that requires an existing
	// entry is pointed at a repository that is not in the cache.
	ErrNotCached = fmt.Errorf("repository is not cached")

	// ErrEntryExists is returned when an import would overwrite an
	// existing entry.
	ErrEntryExists = fmt.Errorf("cache entry already exists")

	// ErrPopulateFailed is returned when a clone or fetch into the cache fails.
	ErrPopulateFailed = fmt.Errorf("cache population failed")

	// ErrPartialClean is returned when a clean pass finishes but had to
	// skip one or more entries.
	ErrPartialClean = fmt.Errorf("clean incomplete")

	// ErrFilesystem is returned when a cache directory cannot be read or written.
	ErrFilesystem = fmt.Errorf("cache filesystem operation failed")
)
