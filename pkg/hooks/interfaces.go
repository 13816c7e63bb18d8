package hooks

import "context"

// HookManager defines the interface for managing lifecycle hooks.
type HookManager interface {
	// Execute runs the script for the given event, if one is loaded
	Execute(ctx context.Context, hookType HookType, hctx HookContext) error

	// AddHook registers a script for an event
	AddHook(hook Hook) error

	// RemoveHook drops the script for an event
	RemoveHook(hookType HookType)

	// HasHook checks whether a script is loaded for an event
	HasHook(hookType HookType) bool
}
