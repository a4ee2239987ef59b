package usecases

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platerrors "warp/internal/platform/errors"
)

func noopRun(ctx context.Context) error { return nil }

func TestNewTaskGraphRejectsBadIDs(t *testing.T) {
	t.Run("empty id", func(t *testing.T) {
		_, err := NewTaskGraph([]Task{{ID: "", Run: noopRun}})
		require.Error(t, err)
		assert.True(t, platerrors.IsKind(err, platerrors.CompileErr))
	})

	t.Run("duplicate id", func(t *testing.T) {
		_, err := NewTaskGraph([]Task{
			{ID: "a", Run: noopRun},
			{ID: "a", Run: noopRun},
		})
		require.Error(t, err)
	})
}

func TestTaskGraphValidateDetectsCycle(t *testing.T) {
	g, err := NewTaskGraph([]Task{
		{ID: "a", DependsOn: []string{"b"}, Run: noopRun},
		{ID: "b", DependsOn: []string{"a"}, Run: noopRun},
	})
	require.NoError(t, err)

	err = g.Validate()
	require.Error(t, err)
	assert.True(t, platerrors.IsKind(err, platerrors.CompileErr))
}

func TestTaskGraphValidateIgnoresUnknownDeps(t *testing.T) {
	g, err := NewTaskGraph([]Task{
		{ID: "a", DependsOn: []string{"ghost"}, Run: noopRun},
	})
	require.NoError(t, err)
	assert.NoError(t, g.Validate())
}

func TestTaskGraphRunRespectsOrdering(t *testing.T) {
	var mu sync.Mutex
	var order []string
	record := func(id string) func(context.Context) error {
		return func(ctx context.Context) error {
			mu.Lock()
			order = append(order, id)
			mu.Unlock()
			return nil
		}
	}

	g, err := NewTaskGraph([]Task{
		{ID: "compile:esm", Run: record("compile:esm")},
		{ID: "copy:esm-min", DependsOn: []string{"compile:esm"}, Run: record("copy:esm-min")},
		{ID: "copy:esm-alias", DependsOn: []string{"compile:esm"}, Run: record("copy:esm-alias")},
	})
	require.NoError(t, err)

	require.NoError(t, g.Run(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, order, 3)
	assert.Equal(t, "compile:esm", order[0])
	assert.ElementsMatch(t, []string{"copy:esm-min", "copy:esm-alias"}, order[1:])
}

func TestTaskGraphRunNeverLaunchesDependentsOfAFailedTask(t *testing.T) {
	var dependentRan atomic.Bool

	g, err := NewTaskGraph([]Task{
		{ID: "compile", Run: func(ctx context.Context) error { return fmt.Errorf("boom") }},
		{ID: "copy", DependsOn: []string{"compile"}, Run: func(ctx context.Context) error {
			dependentRan.Store(true)
			return nil
		}},
	})
	require.NoError(t, err)

	err = g.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile")
	assert.False(t, dependentRan.Load())
}

func TestTaskGraphRunIndependentBranchesBothComplete(t *testing.T) {
	var count atomic.Int32
	inc := func(ctx context.Context) error {
		count.Add(1)
		return nil
	}

	g, err := NewTaskGraph([]Task{
		{ID: "left", Run: inc},
		{ID: "right", Run: inc},
	})
	require.NoError(t, err)
	require.NoError(t, g.Run(context.Background()))
	assert.Equal(t, int32(2), count.Load())
}

func TestTaskGraphRunEmpty(t *testing.T) {
	g, err := NewTaskGraph(nil)
	require.NoError(t, err)
	assert.NoError(t, g.Run(context.Background()))
}
