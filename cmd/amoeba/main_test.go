package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amoebajs/builder-sub000/internal/cli"
)

func writePage(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.hcl"), []byte(content), 0o600))
	return dir
}

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A syntax error makes the loader fail inside app.NewApp, which panics.
	dir := writePage(t, `
		page "Broken" {
			component "basic" "page" {
		// Missing closing brace here
	`)
	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(context.Background(), out, &bytes.Buffer{}, []string{"build", dir})

	// --- Assert ---
	require.Error(t, runErr, "run() should have returned an error after recovering from a panic")
	assert.Contains(t, runErr.Error(), "application startup panicked")
	assert.Contains(t, runErr.Error(), "failed to parse")

	var exitErr *cli.ExitError
	require.ErrorAs(t, runErr, &exitErr)
	assert.Equal(t, 1, exitErr.Code)
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when help is requested")
	assert.Contains(t, out.String(), "Usage:")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"build", "--this-is-not-a-valid-flag"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestRun_BuildPrintsDocuments(t *testing.T) {
	t.Parallel()

	dir := writePage(t, `
		page "Home" {
			component "basic" "page" {
				component "basic" "button" {
					input "label" { value = "OK" }
				}
			}
		}
	`)
	out := &bytes.Buffer{}

	err := run(context.Background(), out, &bytes.Buffer{}, []string{"build", dir})

	require.NoError(t, err)
	assert.Contains(t, out.String(), "// Home.tsx")
	assert.Contains(t, out.String(), "export class Home extends React.Component<any, any> {")
}

func TestRun_BuildFailureExitsWithOne(t *testing.T) {
	t.Parallel()

	dir := writePage(t, `
		page "Home" {
			component "basic" "missing" {}
		}
	`)

	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"build", dir})

	require.Error(t, err)
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.Code)
	assert.Contains(t, err.Error(), "basic/missing")
}

func TestRun_Templates(t *testing.T) {
	t.Parallel()

	dir := writePage(t, `
		page "Home" {
			component "basic" "page" {}
		}
	`)
	out := &bytes.Buffer{}

	err := run(context.Background(), out, &bytes.Buffer{}, []string{"templates", dir})

	require.NoError(t, err)
	assert.Contains(t, out.String(), "basic/button")
	assert.Contains(t, out.String(), "react")
}
