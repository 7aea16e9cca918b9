package watcher

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDebounce = 50 * time.Millisecond

func startWatcher(t *testing.T) (*Watcher, string) {
	t.Helper()
	root := t.TempDir()
	w, err := New(root, testDebounce)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })
	return w, w.Root()
}

func waitEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case ev := <-w.Events():
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for watcher event")
		return Event{}
	}
}

func assertQuiet(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(4 * testDebounce):
	}
}

func TestWatcher_DebouncesBurst(t *testing.T) {
	w, root := startWatcher(t)
	p := filepath.Join(root, "lists", "groceries.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	// let the new directory be picked up
	time.Sleep(2 * testDebounce)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(p, []byte("- [ ] milk\n"), 0o644))
	}

	ev := waitEvent(t, w)
	assert.Equal(t, p, ev.Path)
	assert.Equal(t, OpWrite, ev.Op)
	assertQuiet(t, w)
}

func TestWatcher_Remove(t *testing.T) {
	w, root := startWatcher(t)
	p := filepath.Join(root, "note.md")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	waitEvent(t, w)

	require.NoError(t, os.Remove(p))
	ev := waitEvent(t, w)
	assert.Equal(t, OpRemove, ev.Op)
}

func TestWatcher_IgnoresTempAndHidden(t *testing.T) {
	w, root := startWatcher(t)

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.md.swp"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".hidden.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "image.png"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.md~"), []byte("x"), 0o644))

	assertQuiet(t, w)
}

func TestWatcher_NewDirectoryWithFiles(t *testing.T) {
	w, root := startWatcher(t)

	dir := filepath.Join(root, "notes", "work")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	p := filepath.Join(dir, "todo.md")
	require.NoError(t, os.WriteFile(p, []byte("hello"), 0o644))

	ev := waitEvent(t, w)
	assert.Equal(t, p, ev.Path)
}

func TestWatcher_StartTwice(t *testing.T) {
	w, _ := startWatcher(t)
	assert.ErrorIs(t, w.Start(), ErrAlreadyRunning)
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	files := []string{
		"lists/a.md",
		"notes/deep/b.md",
		"notes/.trash/c.md",
		".git/d.md",
		"notes/e.txt",
	}
	for _, f := range files {
		p := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}

	got, err := Scan(root)
	require.NoError(t, err)
	sort.Strings(got)
	assert.Equal(t, []string{
		filepath.Join(root, "lists", "a.md"),
		filepath.Join(root, "notes", "deep", "b.md"),
	}, got)
}

func TestOp_String(t *testing.T) {
	assert.Equal(t, "write", OpWrite.String())
	assert.Equal(t, "remove", OpRemove.String())
	assert.Equal(t, "unknown", Op(9).String())
}
