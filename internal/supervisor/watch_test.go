package supervisor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIgnoreMatcher(t *testing.T) {
	cwd := filepath.FromSlash("/repo/app")
	m := newIgnoreMatcher(cwd, []string{"dist", "*.test.js", "/repo/app/tmp", "logs/**", "  "})

	tests := []struct {
		path string
		want bool
	}{
		{"/repo/app/src/index.js", false},
		{"/repo/app/.git/HEAD", true},
		{"/repo/app/node_modules/x/index.js", true},
		{"/repo/app/dist/bundle.js", true},
		{"/repo/app/src/dist", true},
		{"/repo/app/src/a.test.js", true},
		{"/repo/app/tmp/cache", true},
		{"/repo/app/logs/today.log", true},
		{"/repo/other/logs/today.log", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.Match(filepath.FromSlash(tt.path)), "Match(%q)", tt.path)
	}
}

func TestResolveRule(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	require.NoError(t, os.MkdirAll(src, 0755))
	file := filepath.Join(root, "server.js")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	dir, err := resolveRule(root, "src")
	require.NoError(t, err)
	assert.Equal(t, src, dir.base)
	assert.True(t, dir.recursive())
	assert.True(t, dir.matches(filepath.Join(src, "a", "b.js")))
	assert.False(t, dir.matches(file))

	single, err := resolveRule(root, file)
	require.NoError(t, err)
	assert.Equal(t, root, single.base)
	assert.False(t, single.recursive())
	assert.True(t, single.matches(file))
	assert.False(t, single.matches(filepath.Join(root, "other.js")))

	glob, err := resolveRule(root, "src/**/*.ts")
	require.NoError(t, err)
	assert.Equal(t, src, glob.base)
	assert.True(t, glob.matches(filepath.Join(src, "deep", "x.ts")))
	assert.False(t, glob.matches(filepath.Join(src, "x.js")))

	_, err = resolveRule(root, "missing")
	assert.Error(t, err)
}

func TestNewWatcher_nothingToWatch(t *testing.T) {
	_, err := NewWatcher(t.TempDir(), []string{"missing/dir"}, nil, time.Millisecond)
	assert.Error(t, err)
}

func TestWatcher_debouncesBursts(t *testing.T) {
	root := t.TempDir()
	w, err := NewWatcher(root, nil, []string{"*.log"}, 100*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Ignored files never trigger.
	require.NoError(t, os.WriteFile(filepath.Join(root, "debug.log"), []byte("x"), 0644))
	select {
	case p := <-w.Changes():
		t.Fatalf("unexpected change for %s", p)
	case <-time.After(300 * time.Millisecond):
	}

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(root, "a.js"), []byte{byte(i)}, 0644))
	}
	select {
	case p := <-w.Changes():
		assert.Equal(t, filepath.Join(root, "a.js"), p)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
	select {
	case p := <-w.Changes():
		t.Fatalf("burst reported twice, second for %s", p)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_watchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	w, err := NewWatcher(root, nil, nil, 50*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	nested := filepath.Join(root, "lib")
	require.NoError(t, os.Mkdir(nested, 0755))
	<-w.Changes()

	// Give the watcher a moment to register the new directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(nested, "x.js"), []byte("x"), 0644))
	select {
	case p := <-w.Changes():
		assert.Equal(t, filepath.Join(nested, "x.js"), p)
	case <-time.After(5 * time.Second):
		t.Fatal("change in new directory not reported")
	}
}
