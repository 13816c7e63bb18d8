package hooks

// HookType identifies a cache lifecycle event that can run a script.
type HookType string

// Supported lifecycle events.
const (
	PostAdd     HookType = "post-add"
	PostRefresh HookType = "post-refresh"
	PreClean    HookType = "pre-clean"
	PostClone   HookType = "post-clone"
)

// KnownTypes lists every event the loader accepts.
var KnownTypes = []HookType{PostAdd, PostRefresh, PreClean, PostClone}

// Hook represents a script bound to a lifecycle event.
type Hook struct {
	Type    HookType
	Content string
}

// HookContext contains the entry details passed to a script. Path is
// the entry's repository directory, except for post-clone where it is
// the clone destination.
type HookContext struct {
	URL  string
	Key  string
	Path string
	Mode string
	Vars map[string]interface{}
}
