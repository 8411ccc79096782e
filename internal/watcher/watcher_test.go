package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labsync/internal/logger"
)

func TestWatchDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	topo := filepath.Join(dir, "lab.clab.yml")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(topo, []byte("name: lab\n"), 0o644))

	w := New(logger.NewTestLogger(), topo).WithDebounce(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changed := make(chan string, 10)
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func(path string) { changed <- path })
	}()

	// Give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0o644))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(topo, []byte("name: lab\ntopology: {}\n"), 0o644))
	}

	select {
	case path := <-changed:
		assert.Equal(t, topo, path)
	case <-ctx.Done():
		t.Fatal("no change reported")
	}

	// The burst collapses into a single callback
	select {
	case path := <-changed:
		t.Fatalf("unexpected second change for %s", path)
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatchMissingDirectory(t *testing.T) {
	w := New(logger.NewTestLogger(), filepath.Join(t.TempDir(), "missing", "lab.clab.yml"))
	err := w.Watch(context.Background(), func(string) {})
	assert.Error(t, err)
}
