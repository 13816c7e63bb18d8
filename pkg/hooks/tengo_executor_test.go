package hooks_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revdeer/git-cache/pkg/errors"
	"github.com/revdeer/git-cache/pkg/hooks"
)

func TestTengoExecutor(t *testing.T) {
	executor := hooks.NewTengoExecutor()
	ctx := context.Background()
	hctx := hooks.HookContext{
		URL:  "https://github.com/git/git",
		Key:  "github.com_git_git",
		Path: "/cache/repos/github.com_git_git/git",
		Mode: "bare",
		Vars: map[string]interface{}{
			"customVar": "customValue",
		},
	}

	t.Run("valid script runs clean", func(t *testing.T) {
		script := `// A valid script that does nothing`
		require.NoError(t, executor.AddHook(hooks.Hook{Type: hooks.PostAdd, Content: script}))

		err := executor.Execute(ctx, hooks.PostAdd, hctx)
		assert.NoError(t, err, "Execute should not return an error for a valid script")
	})

	t.Run("runtime error surfaces as execution failure", func(t *testing.T) {
		script := `non_existent_function()`
		require.NoError(t, executor.AddHook(hooks.Hook{Type: hooks.PostRefresh, Content: script}))

		err := executor.Execute(ctx, hooks.PostRefresh, hctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrHookExecution)
	})

	t.Run("script reports failure through err", func(t *testing.T) {
		script := `err := "entry is protected"`
		require.NoError(t, executor.AddHook(hooks.Hook{Type: hooks.PreClean, Content: script}))

		err := executor.Execute(ctx, hooks.PreClean, hctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrHookScript)
		assert.Contains(t, err.Error(), "entry is protected")
	})

	t.Run("empty err means success", func(t *testing.T) {
		script := `err := ""`
		require.NoError(t, executor.AddHook(hooks.Hook{Type: hooks.PostClone, Content: script}))

		assert.NoError(t, executor.Execute(ctx, hooks.PostClone, hctx))
	})

	t.Run("event without script is a no-op", func(t *testing.T) {
		fresh := hooks.NewTengoExecutor()
		assert.NoError(t, fresh.Execute(ctx, hooks.PreClean, hctx))
	})

	t.Run("entry variables are accessible", func(t *testing.T) {
		script := `
			err := ""
			if url != "https://github.com/git/git" {
				err = "unexpected url: " + url
			}
			if key != "github.com_git_git" {
				err = "unexpected key: " + key
			}
			if mode != "bare" {
				err = "unexpected mode: " + mode
			}
			if path == "" {
				err = "path not set"
			}
			if customVar != "customValue" {
				err = "custom variable not passed"
			}
		`
		require.NoError(t, executor.AddHook(hooks.Hook{Type: hooks.PostAdd, Content: script}))

		assert.NoError(t, executor.Execute(ctx, hooks.PostAdd, hctx))
	})
}

func TestTengoExecutor_AddHook(t *testing.T) {
	executor := hooks.NewTengoExecutor()

	err := executor.AddHook(hooks.Hook{Type: "", Content: "x := 1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrHookTypeEmpty)

	require.NoError(t, executor.AddHook(hooks.Hook{Type: hooks.PostAdd, Content: "x := 1"}))
	assert.True(t, executor.HasHook(hooks.PostAdd))

	executor.RemoveHook(hooks.PostAdd)
	assert.False(t, executor.HasHook(hooks.PostAdd))
}

func TestTengoExecutor_Cancellation(t *testing.T) {
	executor := hooks.NewTengoExecutor()
	require.NoError(t, executor.AddHook(hooks.Hook{
		Type:    hooks.PostAdd,
		Content: `for true { }`,
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := executor.Execute(ctx, hooks.PostAdd, hooks.HookContext{})
	require.Error(t, err, "a looping script should be stopped by the context")
	assert.Less(t, time.Since(start), 10*time.Second)
}
