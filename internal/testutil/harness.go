package testutil

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amoebajs/builder-sub000/internal/app"
	"github.com/amoebajs/builder-sub000/internal/ctxlog"
	"github.com/amoebajs/builder-sub000/internal/hcl_adapter"
	"github.com/amoebajs/builder-sub000/internal/registry"
)

// LogsEnv enables dumping captured logs of every test when set to "true".
const LogsEnv = "AMOEBA_TEST_LOGS"

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Context returns a context carrying a debug logger that writes into the
// returned buffer.
func Context(t *testing.T) (context.Context, *SafeBuffer) {
	t.Helper()
	buf := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	t.Cleanup(func() { dumpLogs(t, buf) })
	return ctxlog.WithLogger(context.Background(), logger), buf
}

// WriteFiles writes files, keyed by relative path, under a fresh temporary
// directory and returns it.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Output    string
	Err       error
	App       *app.App
	Results   []app.Result
}

// RunBuild writes files into a temporary tree with "pages/" and
// "compositions/" subdirectories, starts an app on it and builds every page
// to the output buffer. Startup panics are reported as Err.
func RunBuild(t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()

	root := WriteFiles(t, files)
	cfg, err := app.NewConfig(app.Config{
		PagesPath:        filepath.Join(root, "pages"),
		CompositionsPath: filepath.Join(root, "compositions"),
		LogLevel:         "debug",
		LogFormat:        "text",
	})
	require.NoError(t, err)

	logs := &SafeBuffer{}
	out := &SafeBuffer{}
	t.Cleanup(func() { dumpLogs(t, logs) })

	var (
		testApp  *app.App
		panicErr any
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.NewApp(out, logs, cfg, hcl_adapter.NewLoader(), modules...)
	}()
	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logs.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	results, err := testApp.Build(context.Background())
	return &HarnessResult{
		LogOutput: logs.String(),
		Output:    out.String(),
		Err:       err,
		App:       testApp,
		Results:   results,
	}
}

func dumpLogs(t *testing.T, buf *SafeBuffer) {
	if os.Getenv(LogsEnv) == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), buf.String())
	}
}
