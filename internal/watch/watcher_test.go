package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "no roots", cfg: Config{}, wantErr: "at least one root"},
		{name: "bad pattern", cfg: Config{Roots: []string{dir}, Patterns: []string{"[a-"}}, wantErr: "invalid watch pattern"},
		{name: "bad ignore", cfg: Config{Roots: []string{dir}, Ignore: []string{"[a-"}}, wantErr: "invalid ignore pattern"},
		{name: "missing root", cfg: Config{Roots: []string{filepath.Join(dir, "nope")}}, wantErr: "stat"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestWatcher_Accepts(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	other := t.TempDir()
	single := filepath.Join(other, "only.hcl")
	require.NoError(t, os.WriteFile(single, []byte(""), 0o600))

	w, err := New(Config{Roots: []string{dir, single}, Ignore: []string{"drafts/**"}})
	require.NoError(t, err)
	t.Cleanup(func() { w.fsw.Close() })

	assert.True(t, w.accepts(filepath.Join(dir, "a.hcl")))
	assert.True(t, w.accepts(filepath.Join(dir, "nested", "b.hcl")))
	assert.True(t, w.accepts(single))
	assert.False(t, w.accepts(filepath.Join(dir, "a.txt")))
	assert.False(t, w.accepts(filepath.Join(dir, "drafts", "c.hcl")))
	assert.False(t, w.accepts(filepath.Join(dir, "node_modules", "d.hcl")))
	assert.False(t, w.accepts(filepath.Join(other, "sibling.hcl")), "a file root does not watch its siblings")
}

func TestWatcher_DebouncesEvents(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	var (
		mu    sync.Mutex
		calls [][]string
	)
	done := make(chan struct{}, 1)

	w, err := New(Config{
		Roots:    []string{dir},
		Debounce: 100 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			mu.Lock()
			calls = append(calls, changed)
			mu.Unlock()
			select {
			case done <- struct{}{}:
			default:
			}
			return nil
		},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	for _, name := range []string{"a.hcl", "b.hcl", "ignored.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("callback was not invoked")
	}
	cancel()
	require.NoError(t, <-errCh)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, calls, 1)
	assert.ElementsMatch(t, []string{filepath.Join(dir, "a.hcl"), filepath.Join(dir, "b.hcl")}, calls[0])
}

func TestWatcher_RunTwice(t *testing.T) {
	t.Parallel()
	w, err := New(Config{Roots: []string{t.TempDir()}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, w.Run(ctx))
	require.ErrorIs(t, w.Run(ctx), ErrAlreadyRunning)
}

func TestWatcher_RunWaitsForRunningCallback(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	started := make(chan struct{})
	var finished atomic.Bool
	var once sync.Once

	w, err := New(Config{
		Roots:    []string{dir},
		Debounce: 20 * time.Millisecond,
		OnChange: func(context.Context, []string) error {
			once.Do(func() { close(started) })
			time.Sleep(200 * time.Millisecond)
			finished.Store(true)
			return nil
		},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.hcl"), []byte("x"), 0o600))
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("callback was not invoked")
	}
	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.True(t, finished.Load(), "Run returned while the callback was still running")
}
