package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amoebajs/builder-sub000/internal/registry"
	"github.com/amoebajs/builder-sub000/modules/basic"
)

func TestParse_Build(t *testing.T) {
	t.Parallel()

	inv, shouldExit, err := Parse([]string{
		"build", "./pages",
		"--out", "./gen",
		"--provider", "PLAIN",
		"--log-level", "debug",
		"--debounce", "2s",
	}, &bytes.Buffer{})

	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Equal(t, ActionBuild, inv.Action)
	assert.Equal(t, "./pages", inv.Config.PagesPath)
	assert.Equal(t, "./gen", inv.Config.OutputDir)
	assert.Equal(t, "plain", inv.Config.Provider)
	assert.Equal(t, "debug", inv.Config.LogLevel)
	assert.Equal(t, "text", inv.Config.LogFormat)
	assert.Equal(t, 2*time.Second, inv.Config.Debounce)
	assert.Equal(t, "socketio", inv.Config.PublishTransport)
}

func TestParse_Help(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{{}, {"-h"}, {"build", "--help"}} {
		out := &bytes.Buffer{}
		inv, shouldExit, err := Parse(args, out)
		require.NoError(t, err, args)
		assert.True(t, shouldExit, args)
		assert.Nil(t, inv)
		assert.Contains(t, out.String(), "Usage:")
	}
}

func TestParse_UsageErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		args []string
		want string
	}{
		{"unknown flag", []string{"build", "--nope"}, "unknown flag: --nope"},
		{"unknown command", []string{"deploy"}, `unknown command "deploy"`},
		{"missing path", []string{"build"}, "a pages path is required"},
		{"too many paths", []string{"build", "a", "b"}, "accepts at most 1 arg(s)"},
		{"bad log level", []string{"build", "p", "--log-level", "loud"}, "invalid log level"},
		{"bad log format", []string{"watch", "p", "--log-format", "xml"}, "invalid log format"},
		{"bad publish transport", []string{"watch", "p", "--publish-transport", "smtp"}, "invalid publish transport"},
		{"relative publish url", []string{"watch", "p", "--publish-url", "localhost"}, "invalid publish URL"},
		{"missing config file", []string{"build", "p", "--config", "does-not-exist.yaml"}, "failed to read config file"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := Parse(tc.args, &bytes.Buffer{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
		})
	}
}

func TestParse_TemplatesDefaultsToWorkingDirectory(t *testing.T) {
	t.Parallel()

	inv, _, err := Parse([]string{"templates"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, ActionTemplates, inv.Action)
	assert.Equal(t, ".", inv.Config.PagesPath)
}

func TestParse_ConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "amoeba.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
pages: ./site/pages
compositions: ./site/compositions
log-format: json
publish-url: http://localhost:3000
`), 0o600))

	inv, _, err := Parse([]string{"watch", "--config", path}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, ActionWatch, inv.Action)
	assert.Equal(t, "./site/pages", inv.Config.PagesPath)
	assert.Equal(t, "./site/compositions", inv.Config.CompositionsPath)
	assert.Equal(t, "json", inv.Config.LogFormat)
	assert.Equal(t, "http://localhost:3000", inv.Config.PublishURL)

	// Flags win over the file.
	inv, _, err = Parse([]string{"watch", "./other", "--config", path, "--log-format", "pretty"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "./other", inv.Config.PagesPath)
	assert.Equal(t, "pretty", inv.Config.LogFormat)
}

func TestParse_Environment(t *testing.T) {
	t.Setenv("AMOEBA_LOG_LEVEL", "warn")
	t.Setenv("AMOEBA_PUBLISH_EVENT", "pages")

	inv, _, err := Parse([]string{"build", "./pages"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "warn", inv.Config.LogLevel)
	assert.Equal(t, "pages", inv.Config.PublishEvent)

	inv, _, err = Parse([]string{"build", "./pages", "--log-level", "error"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "error", inv.Config.LogLevel)
}

func TestPrintTemplates(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	reg.Load(&basic.Module{})
	out := &bytes.Buffer{}

	require.NoError(t, PrintTemplates(out, reg))

	s := out.String()
	for _, want := range []string{
		"Providers", "plain", "react",
		"Components", "basic/button", "input label: string = \"Button\"",
		"Directives", "basic/highlight",
		"Compositions", "basic/stack",
		"requires basic/validator",
		"attach area: string",
	} {
		assert.Contains(t, s, want)
	}
	assert.Less(t, bytes.Index(out.Bytes(), []byte("Components")), bytes.Index(out.Bytes(), []byte("Directives")))
}

func TestExitError(t *testing.T) {
	t.Parallel()

	inner := os.ErrNotExist
	err := &ExitError{Code: 1, Err: inner}
	assert.Equal(t, inner.Error(), err.Error())
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, "custom", (&ExitError{Code: 2, Message: "custom", Err: inner}).Error())
}
