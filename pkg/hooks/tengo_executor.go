package hooks

import (
	"context"
	"fmt"
	"sync"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/revdeer/git-cache/pkg/errors"
)

// TengoExecutor runs lifecycle hooks written as Tengo scripts.
type TengoExecutor struct {
	scripts map[HookType]string
	mutex   sync.RWMutex
}

// NewTengoExecutor creates a new Tengo script executor.
func NewTengoExecutor() *TengoExecutor {
	return &TengoExecutor{
		scripts: make(map[HookType]string),
	}
}

// Execute runs the script registered for the given event. Events with
// no script are a no-op. A script reports failure by assigning a
// non-empty string or error value to "err".
func (e *TengoExecutor) Execute(ctx context.Context, hookType HookType, hctx HookContext) error {
	e.mutex.RLock()
	script, exists := e.scripts[hookType]
	e.mutex.RUnlock()
	if !exists {
		return nil
	}

	scriptInstance := tengo.NewScript([]byte(script))

	// Standard library modules available to scripts
	modules := stdlib.GetModuleMap("fmt", "os", "text", "times")
	scriptInstance.SetImports(modules)

	vars := map[string]interface{}{
		"url":  hctx.URL,
		"key":  hctx.Key,
		"path": hctx.Path,
		"mode": hctx.Mode,
	}
	for k, v := range hctx.Vars {
		vars[k] = v
	}
	for k, v := range vars {
		if err := scriptInstance.Add(k, v); err != nil {
			return fmt.Errorf("failed to add variable '%s' to script: %w", k, err)
		}
	}

	compiled, err := scriptInstance.RunContext(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", hookType, errors.ErrHookExecution, err)
	}

	// Check for an error reported by the script itself
	errVar := compiled.Get("err")
	if errVar != nil {
		switch v := errVar.Value().(type) {
		case error:
			return fmt.Errorf("%s: %w: %w", hookType, errors.ErrHookScript, v)
		case string:
			if v != "" {
				return fmt.Errorf("%s: %w: %s", hookType, errors.ErrHookScript, v)
			}
		}
	}

	return nil
}

// AddHook registers or replaces the script for an event.
func (e *TengoExecutor) AddHook(hook Hook) error {
	if hook.Type == "" {
		return errors.ErrHookTypeEmpty
	}
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.scripts[hook.Type] = hook.Content
	return nil
}

// RemoveHook drops the script for an event.
func (e *TengoExecutor) RemoveHook(hookType HookType) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	delete(e.scripts, hookType)
}

// HasHook checks whether a script is registered for an event.
func (e *TengoExecutor) HasHook(hookType HookType) bool {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	_, exists := e.scripts[hookType]
	return exists
}
