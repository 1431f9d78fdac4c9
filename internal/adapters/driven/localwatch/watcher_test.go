package localwatch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0600))

	_, err := New(file, 0)

	assert.Error(t, err)
}

func TestWatcher_EmitsDebouncedBatch(t *testing.T) {
	root := t.TempDir()
	w, err := New(root, 50*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register the root.
	time.Sleep(100 * time.Millisecond)
	a := filepath.Join(root, "a.txt")
	b := filepath.Join(root, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("one"), 0600))
	require.NoError(t, os.WriteFile(b, []byte("two"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".hidden"), []byte("x"), 0600))

	select {
	case batch := <-w.Batches():
		assert.Contains(t, batch, a)
		assert.NotContains(t, batch, filepath.Join(root, ".hidden"))
	case <-time.After(3 * time.Second):
		t.Fatal("no batch received")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestRelativeDir(t *testing.T) {
	root := filepath.Join("/tmp", "watch")

	assert.Equal(t, "", RelativeDir(root, filepath.Join(root, "a.txt")))
	assert.Equal(t, "docs/2026", RelativeDir(root, filepath.Join(root, "docs", "2026", "a.txt")))
	assert.Equal(t, "", RelativeDir(root, "/elsewhere/a.txt"))
}
