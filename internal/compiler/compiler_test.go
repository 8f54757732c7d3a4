package compiler_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/amoebajs/builder-sub000/internal/builderr"
	"github.com/amoebajs/builder-sub000/internal/compiler"
	"github.com/amoebajs/builder-sub000/internal/emit"
	"github.com/amoebajs/builder-sub000/internal/entity"
	"github.com/amoebajs/builder-sub000/internal/registry"
	"github.com/amoebajs/builder-sub000/internal/testutil"
	"github.com/amoebajs/builder-sub000/internal/tree"
	"github.com/amoebajs/builder-sub000/modules/basic"
)

type panicky struct{ entity.Component }

func (p *panicky) OnRender(context.Context) error {
	panic("render exploded")
}

func newCompiler(t *testing.T) (*compiler.Compiler, *registry.Registry) {
	t.Helper()
	reg := registry.New()
	reg.Load(&basic.Module{}, testutil.NewRecorder())
	reg.RegisterTemplate(registry.Component("fail", "panic"), func() entity.Entity { return &panicky{} })
	return compiler.New(reg), reg
}

func buttonPage() *tree.Node {
	return tree.Entity(basic.Name, "page",
		tree.Entity(basic.Name, "button", tree.Input("label", cty.StringVal("OK"))).WithKey("ok"),
		tree.Entity(basic.Name, "highlight", tree.Input("color", cty.StringVal("yellow"))).WithKey("hl"),
	)
}

func TestCompile_ButtonWithHighlight(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)
	c, _ := newCompiler(t)

	doc, err := c.Compile(ctx, buttonPage(), "react", "Home", false)
	require.NoError(t, err)
	assert.Equal(t, "Home", doc.Name)
	assert.Equal(t, "react", doc.Provider)

	out, err := emit.Sprint(doc)
	require.NoError(t, err)
	for _, want := range []string{
		`import * as React from "react";`,
		`import { css } from "@emotion/css";`,
		`const Root_hlClass = css({ background: "yellow" });`,
		`class Root_ok extends React.Component<any, any> {`,
		`export class Home extends React.Component<any, any> {`,
		`<div className={Root_hlClass}>`,
		`<Root_ok`,
		`label="OK"`,
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "export class Root_ok")
	assert.Less(t, strings.Index(out, "class Root_ok"), strings.Index(out, "export class Home"),
		"nested declarations precede the root declaration")
}

func TestCompile_SiblingDirectivesShareOneImport(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)
	c, _ := newCompiler(t)

	root := tree.Entity(basic.Name, "page",
		tree.Entity(basic.Name, "highlight").WithKey("hl"),
		tree.Entity(basic.Name, "animate", tree.Input("duration", cty.NumberIntVal(2))).WithKey("fade"),
	)
	doc, err := c.Compile(ctx, root, "react", "Page", false)
	require.NoError(t, err)
	out, err := emit.Sprint(doc)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out, `"@emotion/css"`))
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "@emotion/css") {
			assert.Contains(t, line, "css")
			assert.Contains(t, line, "keyframes")
		}
	}
	assert.Contains(t, out, "const Root_fadeFrames = keyframes`")
	assert.Contains(t, out, "${Root_fadeFrames} 2s ease-in")
}

func TestCompile_PlainProviderUnexported(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)
	c, _ := newCompiler(t)

	doc, err := c.Compile(ctx, buttonPage(), "plain", "Home", true)
	require.NoError(t, err)
	out, err := emit.Sprint(doc)
	require.NoError(t, err)
	assert.NotContains(t, out, `from "react"`)
	assert.NotContains(t, out, "export class")
	assert.Contains(t, out, "class Home {")
}

func TestCallCompilation_Twice(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)
	c, _ := newCompiler(t)

	g, err := c.CreateInstance(ctx, buttonPage())
	require.NoError(t, err)
	_, err = c.CallCompilation(ctx, "react", g, "Home", false)
	require.NoError(t, err)
	assert.Positive(t, g.Scopes.Len())

	_, err = c.CallCompilation(ctx, "react", g, "Home", false)
	require.ErrorIs(t, err, builderr.ErrInvalidOperation)
}

func TestCompile_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		root     *tree.Node
		provider string
		output   string
		wantKind error
		wantMsg  string
	}{
		{
			name:     "unknown template",
			root:     tree.Entity(basic.Name, "missing"),
			provider: "react",
			output:   "Home",
			wantKind: builderr.ErrNotFound,
			wantMsg:  "basic/missing",
		},
		{
			name:     "unknown provider",
			root:     buttonPage(),
			provider: "vue",
			output:   "Home",
			wantKind: builderr.ErrNotFound,
			wantMsg:  `unknown provider "vue"`,
		},
		{
			name:     "invalid output name",
			root:     buttonPage(),
			provider: "react",
			output:   "my-page",
			wantKind: builderr.ErrInvalidOperation,
			wantMsg:  "is not an identifier",
		},
		{
			name:     "directive as root",
			root:     tree.Entity(basic.Name, "highlight"),
			provider: "react",
			output:   "Home",
			wantKind: builderr.ErrInvalidOperation,
		},
		{
			name:     "panicking hook",
			root:     tree.Entity("fail", "panic"),
			provider: "react",
			output:   "Home",
			wantKind: builderr.ErrBasic,
			wantMsg:  "render exploded",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctx, _ := testutil.Context(t)
			c, _ := newCompiler(t)

			_, err := c.Compile(ctx, tc.root, tc.provider, tc.output, false)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantKind)
			if tc.wantMsg != "" {
				assert.Contains(t, err.Error(), tc.wantMsg)
			}
		})
	}
}

func TestCallCompilation_NilGraph(t *testing.T) {
	t.Parallel()
	c, _ := newCompiler(t)

	_, err := c.CallCompilation(context.Background(), "react", nil, "Home", false)
	require.ErrorIs(t, err, builderr.ErrInvalidOperation)
}

func TestCompile_FreshScopesPerPass(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)
	c, _ := newCompiler(t)

	first, err := c.Compile(ctx, buttonPage(), "react", "Home", false)
	require.NoError(t, err)
	second, err := c.Compile(ctx, buttonPage(), "react", "Home", false)
	require.NoError(t, err)

	a, err := emit.Sprint(first)
	require.NoError(t, err)
	b, err := emit.Sprint(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
