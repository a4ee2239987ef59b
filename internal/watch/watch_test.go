package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warp/internal/platform/logx"
)

func TestNewWatchesRootRecursively(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "nested")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	var calls int32
	build := func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}

	l, err := New([]string{root}, "", build, logx.NewSilent())
	require.NoError(t, err)
	defer l.watcher.Close()

	assert.Contains(t, l.watcher.WatchList(), root)
	assert.Contains(t, l.watcher.WatchList(), nested)
}

func TestNewToleratesUnwatchableConfigPath(t *testing.T) {
	root := t.TempDir()
	l, err := New([]string{root}, filepath.Join(root, "does-not-exist.yaml"), func(ctx context.Context) error { return nil }, logx.NewSilent())
	require.NoError(t, err)
	defer l.watcher.Close()
}

func TestRunBuildsOnceUpFront(t *testing.T) {
	root := t.TempDir()
	var calls int32
	build := func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}

	l, err := New([]string{root}, "", build, logx.NewSilent())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRunRebuildsAfterDebouncedChange(t *testing.T) {
	root := t.TempDir()
	var calls int32
	build := func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}

	l, err := New([]string{root}, "", build, logx.NewSilent())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	// Give the initial build a moment to run before triggering a change.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.ts"), []byte("export const a = 1;"), 0o644))

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) >= 2
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestIsRelevantFiltersChmodOnly(t *testing.T) {
	assert.False(t, isRelevant(fsnotify.Event{Op: fsnotify.Chmod}))
	assert.True(t, isRelevant(fsnotify.Event{Op: fsnotify.Write}))
	assert.True(t, isRelevant(fsnotify.Event{Op: fsnotify.Create}))
	assert.True(t, isRelevant(fsnotify.Event{Op: fsnotify.Remove}))
	assert.True(t, isRelevant(fsnotify.Event{Op: fsnotify.Rename}))
}
