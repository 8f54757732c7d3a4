package reconcile_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/amoebajs/builder-sub000/internal/builderr"
	"github.com/amoebajs/builder-sub000/internal/entity"
	"github.com/amoebajs/builder-sub000/internal/reconcile"
	"github.com/amoebajs/builder-sub000/internal/registry"
	"github.com/amoebajs/builder-sub000/internal/testutil"
	"github.com/amoebajs/builder-sub000/internal/tree"
)

const mod = testutil.RecorderModuleName

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	reg.Load(testutil.NewRecorder())
	return reg
}

func node(children ...*tree.Node) *tree.Node {
	return tree.Entity(mod, "node", children...)
}

func scopeIDs(refs []*entity.ChildRef) []string {
	var out []string
	for _, r := range refs {
		out = append(out, r.ScopeID())
	}
	return out
}

func TestResolveRoot_Naming(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)

	root := node(
		node().WithKey("header"),
		node().WithKey("header"),
		node().WithID("Pinned"),
		node(),
	)
	ref, err := reconcile.New(newRegistry(t)).ResolveRoot(ctx, root)
	require.NoError(t, err)

	assert.Equal(t, "Root", ref.ScopeID())
	assert.Empty(t, ref.ParentID())
	ids := scopeIDs(ref.Components)
	require.Len(t, ids, 4)
	assert.Equal(t, []string{"Root_header", "Root_header_2", "Pinned"}, ids[:3])
	assert.Regexp(t, regexp.MustCompile(`^Root_[0-9a-f]{8}$`), ids[3])
	for _, c := range ref.Components {
		assert.Equal(t, "Root", c.ParentID())
		assert.Same(t, ref, c.Parent)
		assert.Equal(t, "test_node", c.RefEntityID)
	}

	again, err := reconcile.New(newRegistry(t)).ResolveRoot(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, ids, scopeIDs(again.Components), "generated names are deterministic across passes")
}

func TestResolveRoot_PinnedRootID(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)

	ref, err := reconcile.New(newRegistry(t)).ResolveRoot(ctx, node(node().WithKey("a")).WithID("AppRoot"))
	require.NoError(t, err)
	assert.Equal(t, "AppRoot", ref.ScopeID())
	assert.Equal(t, []string{"AppRoot_a"}, scopeIDs(ref.Components))
}

func TestResolveRoot_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		root    *tree.Node
		wantErr error
		wantMsg string
	}{
		{name: "nil root", root: nil, wantErr: builderr.ErrInvalidOperation},
		{name: "marker root", root: tree.Input("label", cty.StringVal("x")), wantErr: builderr.ErrInvalidOperation},
		{name: "unknown template", root: tree.Entity(mod, "missing"), wantErr: builderr.ErrNotFound},
		{name: "unknown nested template", root: node(tree.Entity("nope", "node")), wantErr: builderr.ErrNotFound},
		{name: "duplicate pinned id", root: node(node().WithID("Same"), node().WithID("Same")), wantErr: builderr.ErrInvalidOperation, wantMsg: `scope id "Same" is used twice`},
		{
			name:    "pinned id matches a generated name",
			root:    node(node().WithKey("ok"), node().WithID("Root_ok")),
			wantErr: builderr.ErrInvalidOperation,
			wantMsg: `id "Root_ok" collides with a name generated earlier in the tree`,
		},
		{name: "undeclared input", root: node(tree.Input("color", cty.StringVal("red"))), wantErr: builderr.ErrInvalidOperation},
		{name: "input conversion", root: node(tree.Input("label", cty.ListValEmpty(cty.String))), wantErr: builderr.ErrInvalidOperation},
		{name: "attach without declaring ancestor", root: node(tree.Attach("slot", cty.StringVal("x"))), wantErr: builderr.ErrInvalidOperation},
		{name: "undeclared attach", root: node(node(tree.Attach("area", cty.StringVal("x")))), wantErr: builderr.ErrInvalidOperation},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, _ := testutil.Context(t)
			_, err := reconcile.New(newRegistry(t)).ResolveRoot(ctx, tc.root)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
			if tc.wantMsg != "" {
				assert.Contains(t, err.Error(), tc.wantMsg)
			}
		})
	}
}

func TestResolveRoot_InputMarkers(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)

	root := node(
		tree.Input("label", cty.NumberIntVal(42)),
		node().WithKey("a"),
		tree.Input("value", cty.True),
		node().WithKey("b"),
	)
	ref, err := reconcile.New(newRegistry(t)).ResolveRoot(ctx, root)
	require.NoError(t, err)

	assert.Equal(t, []string{"Root_a", "Root_b"}, scopeIDs(ref.Components), "markers never become children")
	assert.True(t, ref.Options.Inputs["label"].RawEquals(cty.StringVal("42")), "inputs convert to the declared type")
	assert.True(t, ref.Options.Inputs["value"].RawEquals(cty.True), "dynamic inputs keep their value")
}

func TestResolveRoot_AttachOrdering(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)

	root := node(
		node(tree.Attach("slot", cty.StringVal("first")), tree.Attach("slot", cty.StringVal("replaced"))).WithKey("a"),
		node(tree.Attach("slot", cty.StringVal("second"))).WithKey("b"),
		node(node(tree.Attach("slot", cty.StringVal("nested"))).WithKey("inner")).WithKey("c"),
	)
	ref, err := reconcile.New(newRegistry(t)).ResolveRoot(ctx, root)
	require.NoError(t, err)

	assert.Equal(t, []entity.AttachValue{
		{OriginID: "Root_a", Value: cty.StringVal("replaced")},
		{OriginID: "Root_b", Value: cty.StringVal("second")},
	}, ref.Options.Attaches["slot"])

	c := ref.Components[2]
	assert.Equal(t, []entity.AttachValue{
		{OriginID: "Root_inner", Value: cty.StringVal("nested")},
	}, c.Options.Attaches["slot"], "the nearest declaring ancestor receives the attach")
}

func TestResolveRoot_Classification(t *testing.T) {
	t.Parallel()
	ctx, buf := testutil.Context(t)

	root := node(
		tree.Entity(mod, "mark").WithKey("m"),
		node().WithKey("a"),
		tree.Entity(mod, "many").WithKey("c"),
		tree.Entity(mod, "mark", node().WithKey("ignored")).WithKey("m2"),
		tree.Entity(mod, "needs").WithKey("n"),
	)
	ref, err := reconcile.New(newRegistry(t)).ResolveRoot(ctx, root)
	require.NoError(t, err)

	assert.Equal(t, []string{"Root_a", "Root_c", "Root_n"}, scopeIDs(ref.Components))
	assert.Equal(t, []string{"Root_m", "Root_m2"}, scopeIDs(ref.Directives))
	assert.Empty(t, ref.Directives[1].Components)
	assert.Contains(t, buf.String(), "Directives cannot have nested entities")

	assert.Equal(t, entity.KindComposition, ref.Components[1].TemplateKind)
	assert.Len(t, ref.Components[2].Deferred, 1)
}

func TestExpand_Slots(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		card       tree.Cardinality
		contextual []*tree.Node
		want       []string
	}{
		{name: "one binds the first child", card: tree.One, contextual: []*tree.Node{node().WithKey("a"), node().WithKey("b")}, want: []string{"Root_a"}},
		{name: "many binds every child in order", card: tree.Many, contextual: []*tree.Node{node().WithKey("a"), node().WithKey("b")}, want: []string{"Root_a", "Root_b"}},
		{name: "empty slot", card: tree.Many, contextual: nil, want: nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, _ := testutil.Context(t)
			rec := reconcile.New(newRegistry(t))

			owner, err := rec.ResolveRoot(ctx, tree.Entity(mod, "many", tc.contextual...))
			require.NoError(t, err)

			refs, err := rec.Expand(ctx, node(tree.Slot(tc.card)).WithKey("body"), owner, owner.Components)
			require.NoError(t, err)
			require.Len(t, refs, 1)

			body := refs[0]
			assert.Equal(t, "Root_body", body.ScopeID())
			assert.Same(t, owner, body.Parent)
			assert.Equal(t, tc.want, scopeIDs(body.Components))
			for i, c := range body.Components {
				assert.Same(t, body, c.Parent)
				assert.NotSame(t, owner.Components[i], c, "slot children are copies")
			}
		})
	}
}

func TestExpand_RepeatedSlotRenamesCopies(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)
	rec := reconcile.New(newRegistry(t))

	owner, err := rec.ResolveRoot(ctx, tree.Entity(mod, "many", node().WithKey("a")))
	require.NoError(t, err)

	refs, err := rec.Expand(ctx, node(
		node(tree.Slot(tree.One)).WithKey("left"),
		node(tree.Slot(tree.One)).WithKey("right"),
	).WithKey("body"), owner, owner.Components)
	require.NoError(t, err)

	body := refs[0]
	require.Len(t, body.Components, 2)
	assert.Equal(t, []string{"Root_a"}, scopeIDs(body.Components[0].Components))
	assert.Equal(t, []string{"Root_a_2"}, scopeIDs(body.Components[1].Components))
}

func TestResolveRoot_SlotOutsideComposite(t *testing.T) {
	t.Parallel()
	ctx, _ := testutil.Context(t)

	ref, err := reconcile.New(newRegistry(t)).ResolveRoot(ctx, node(tree.Slot(tree.Many)))
	require.NoError(t, err)
	assert.Empty(t, ref.Components)
}
