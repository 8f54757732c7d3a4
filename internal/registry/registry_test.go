package registry_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/amoebajs/builder-sub000/internal/builderr"
	"github.com/amoebajs/builder-sub000/internal/compiler"
	"github.com/amoebajs/builder-sub000/internal/config"
	"github.com/amoebajs/builder-sub000/internal/emit"
	"github.com/amoebajs/builder-sub000/internal/entity"
	"github.com/amoebajs/builder-sub000/internal/registry"
	"github.com/amoebajs/builder-sub000/internal/testutil"
	"github.com/amoebajs/builder-sub000/internal/tree"
	"github.com/amoebajs/builder-sub000/modules/basic"
)

func TestRegister_DuplicatePanics(t *testing.T) {
	t.Parallel()

	r := registry.New()
	r.Register(&basic.Button{})
	assert.PanicsWithValue(t, "template 'basic/button' already registered", func() {
		r.Register(&basic.Button{})
	})
	assert.Panics(t, func() {
		r.RegisterTemplate(registry.Component("", "nameless"), func() entity.Entity { return &basic.Button{} })
	})
}

func TestResolve(t *testing.T) {
	t.Parallel()

	r := registry.New()
	r.Load(&basic.Module{})

	tmpl, err := r.Resolve(basic.Name, "button")
	require.NoError(t, err)
	assert.Equal(t, entity.KindComponent, tmpl.Contract.Kind)
	_, ok := tmpl.New().(*basic.Button)
	assert.True(t, ok, "factory allocates the registered type")
	assert.NotSame(t, tmpl.New(), tmpl.New())

	_, err = r.Resolve(basic.Name, "nope")
	require.ErrorIs(t, err, builderr.ErrNotFound)

	_, err = r.ResolveKind(basic.Name, "button", entity.KindDirective)
	require.ErrorIs(t, err, builderr.ErrNotFound)
	assert.Contains(t, err.Error(), "is a component, not a directive")

	inputs, err := r.InputsOf(entity.TemplateID{Module: basic.Name, Name: "box"})
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	assert.Equal(t, "style.gap", inputs[1].Name())

	attaches, err := r.AttachesOf(entity.TemplateID{Module: basic.Name, Name: "grid"})
	require.NoError(t, err)
	require.Len(t, attaches, 1)
	assert.Equal(t, "area", attaches[0].Name())

	assert.Equal(t, []string{"plain", "react"}, r.Providers())
	_, err = r.Provider("vue")
	require.ErrorIs(t, err, builderr.ErrNotFound)
}

func TestContract(t *testing.T) {
	t.Parallel()

	c := registry.Component("m", "c").
		Input("a", cty.String, registry.WithDefault(cty.StringVal("x"))).
		Input("b", cty.Number, registry.WithGroup("style"), registry.WithDefault(cty.NumberIntVal(1))).
		Input("c", cty.Bool, registry.WithRealName("isC")).
		Attach("d", cty.String, registry.WithGroup("layout"))

	assert.Equal(t, []string{"style", "layout"}, c.Groups())
	assert.Equal(t, map[string]cty.Value{
		"a":       cty.StringVal("x"),
		"style.b": cty.NumberIntVal(1),
	}, c.Defaults())

	p, ok := c.FindInput("c")
	require.True(t, ok)
	assert.Equal(t, "isC", p.RealName)
	assert.False(t, p.HasDefault())

	_, ok = c.FindInput("b")
	assert.False(t, ok, "grouped properties are addressed by their full name")
	_, ok = c.FindAttach("layout.d")
	assert.True(t, ok)
}

type notAComponent struct{ entity.Directive }

func TestValidate(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)

	t.Run("basic module is valid", func(t *testing.T) {
		r := registry.New()
		r.Load(&basic.Module{}, testutil.NewRecorder())
		require.NoError(t, r.Validate(ctx))
	})

	t.Run("reports every problem", func(t *testing.T) {
		r := registry.New()
		r.Register(&basic.Highlight{})
		r.Register(&basic.Button{})
		r.RegisterTemplate(
			registry.Component("bad", "kind"),
			func() entity.Entity { return &notAComponent{} },
		)
		r.RegisterTemplate(
			registry.Composition("bad", "composition"),
			func() entity.Entity { return &basic.Button{} },
		)
		r.RegisterTemplate(
			registry.Component("bad", "props").
				Input("x", cty.String).
				Attach("x", cty.String).
				Input("y", cty.NilType).
				Input("z", cty.Number, registry.WithDefault(cty.StringVal("not a number"))),
			func() entity.Entity { return &basic.Button{} },
		)
		r.RegisterTemplate(
			registry.Component("bad", "requires").
				Requires("bad", "missing", func(entity.Entity) (map[string]cty.Value, error) { return nil, nil }).
				Requires(basic.Name, "button", func(entity.Entity) (map[string]cty.Value, error) { return nil, nil }).
				Requires(basic.Name, "highlight", nil),
			func() entity.Entity { return &basic.Button{} },
		)

		err := r.Validate(ctx)
		require.Error(t, err)
		msg := err.Error()
		for _, want := range []string{
			"template 'bad/kind': declared as component",
			"template 'bad/composition': declared as composition",
			"template 'bad/props': property 'x' declared twice",
			"template 'bad/props', property 'y': missing type",
			"template 'bad/props', property 'z': default does not match type number",
			"template 'bad/requires': requires unknown template 'bad/missing'",
			"requirement 'basic/button' must be a directive",
			"requirement 'basic/highlight' has no inputs function",
		} {
			assert.Contains(t, msg, want)
		}
		assert.True(t, strings.HasPrefix(msg, "registry validation failed:"))
	})
}

// staticSource expands to a text component showing the "title" input.
type staticSource struct {
	got map[string]cty.Value
}

func (s *staticSource) Expand(_ context.Context, inputs map[string]cty.Value) (*tree.Node, error) {
	s.got = inputs
	return tree.Entity(basic.Name, "text", tree.Input("value", inputs["title"])).WithKey("title"), nil
}

func TestPopulateFromModel(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)

	src := &staticSource{}
	r := registry.New()
	r.Load(&basic.Module{})
	r.PopulateFromModel(&config.Model{Compositions: []*config.CompositionDefinition{{
		Module:      "site",
		Name:        "card",
		Description: "A titled card",
		Inputs: []*config.InputDefinition{
			{Name: "title", Type: cty.String, Default: cty.StringVal("Untitled")},
			{Name: "extra"},
		},
		Template: src,
	}}})
	r.PopulateFromModel(nil)

	tmpl, err := r.ResolveKind("site", "card", entity.KindComposition)
	require.NoError(t, err)
	assert.Equal(t, "A titled card", tmpl.Contract.Description)
	extra, ok := tmpl.Contract.FindInput("extra")
	require.True(t, ok)
	assert.True(t, extra.Type.Equals(cty.DynamicPseudoType))
	require.NoError(t, r.Validate(ctx))

	root := tree.Entity(basic.Name, "page",
		tree.Entity("site", "card", tree.Input("title", cty.StringVal("Hello"))).WithKey("card"),
	)
	doc, err := compiler.New(r).Compile(ctx, root, "react", "Home", false)
	require.NoError(t, err)
	out, err := emit.Sprint(doc)
	require.NoError(t, err)

	assert.Equal(t, cty.StringVal("Hello"), src.got["title"])
	assert.Contains(t, out, `value="Hello"`)
}

func TestDeclaredComposition_WithoutSource(t *testing.T) {
	t.Parallel()

	_, err := (&registry.DeclaredComposition{}).Compose(context.Background())
	require.ErrorIs(t, err, builderr.ErrInvalidOperation)
}
