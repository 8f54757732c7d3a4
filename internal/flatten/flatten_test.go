package flatten

import (
	"context"
	"testing"

	"github.com/amoebajs/builder-sub000/internal/builderr"
	"github.com/amoebajs/builder-sub000/internal/fragment"
	"github.com/amoebajs/builder-sub000/internal/scope"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportSet_Merge(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		imports []*fragment.ImportBuilder
		want    []*ImportRecord
		wantErr error
	}{
		{
			name: "duplicate named binding is merged once",
			imports: []*fragment.ImportBuilder{
				fragment.NewImport("@emotion/css").Named("css"),
				fragment.NewImport("@emotion/css").Named("css"),
			},
			want: []*ImportRecord{{Module: "@emotion/css", Named: []fragment.Binding{{Name: "css"}}}},
		},
		{
			name: "order of duplicates does not matter",
			imports: []*fragment.ImportBuilder{
				fragment.NewImport("react").Named("useState").Default("React"),
				fragment.NewImport("react").Default("React").Named("useState"),
			},
			want: []*ImportRecord{{Module: "react", Default: "React", Named: []fragment.Binding{{Name: "useState"}}}},
		},
		{
			name: "named bindings are unioned",
			imports: []*fragment.ImportBuilder{
				fragment.NewImport("@emotion/css").Named("css"),
				fragment.NewImport("@emotion/css").Named("keyframes"),
			},
			want: []*ImportRecord{{Module: "@emotion/css", Named: []fragment.Binding{{Name: "css"}, {Name: "keyframes"}}}},
		},
		{
			name: "aliases are distinct locals",
			imports: []*fragment.ImportBuilder{
				fragment.NewImport("lib").Named("a"),
				fragment.NewImport("lib").Named("a", "b"),
			},
			want: []*ImportRecord{{Module: "lib", Named: []fragment.Binding{{Name: "a"}, {Name: "a", Alias: "b"}}}},
		},
		{
			name: "distinct default bindings conflict",
			imports: []*fragment.ImportBuilder{
				fragment.NewImport("react").Default("React"),
				fragment.NewImport("react").Default("R"),
			},
			wantErr: builderr.ErrInvalidOperation,
		},
		{
			name: "distinct namespace bindings conflict",
			imports: []*fragment.ImportBuilder{
				fragment.NewImport("react").Namespace("React"),
				fragment.NewImport("react").Namespace("R"),
			},
			wantErr: builderr.ErrInvalidOperation,
		},
		{
			name: "one alias bound to two names conflicts",
			imports: []*fragment.ImportBuilder{
				fragment.NewImport("lib").Named("a", "x"),
				fragment.NewImport("lib").Named("b", "x"),
			},
			wantErr: builderr.ErrInvalidOperation,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			set := NewImportSet()
			var err error
			for _, ib := range tc.imports {
				if err = set.Merge(ib); err != nil {
					break
				}
			}
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, set.Records()); diff != "" {
				t.Errorf("records mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestImportSet_FailedMergeLeavesRecordIntact(t *testing.T) {
	t.Parallel()

	set := NewImportSet()
	require.NoError(t, set.Merge(fragment.NewImport("react").Default("React")))
	err := set.Merge(fragment.NewImport("react").Named("useState").Default("Other"))
	require.ErrorIs(t, err, builderr.ErrInvalidOperation)

	rec, ok := set.Get("react")
	require.True(t, ok)
	assert.Empty(t, rec.Named)
	assert.Equal(t, "React", rec.Default)
}

func newScopes(t *testing.T) *scope.Map {
	t.Helper()
	m := scope.New()
	require.NoError(t, m.CreateScope("App", scope.TypeComponent, ""))
	require.NoError(t, m.CreateScope("App_button", scope.TypeComponent, "App"))
	require.NoError(t, m.CreateScope("App_highlight", scope.TypeDirective, "App"))
	require.NoError(t, m.CreateScope("App_animate", scope.TypeDirective, "App"))
	require.NoError(t, m.CreateScope("App_card", scope.TypeComposition, "App"))
	return m
}

func TestFlatten_DeclarationsAndRoot(t *testing.T) {
	t.Parallel()

	m := newScopes(t)
	require.NoError(t, m.Contribute("App", scope.Methods, scope.Push, fragment.NewMethod("render")))
	require.NoError(t, m.Contribute("App_button", scope.Methods, scope.Push, fragment.NewMethod("render")))
	require.NoError(t, m.Contribute("App_highlight", scope.Fields, scope.Push, fragment.NewProperty("highlight")))
	require.NoError(t, m.Contribute("App_animate", scope.Variables, scope.Push, fragment.NewVariable("fadeIn")))
	require.NoError(t, m.Contribute("App_highlight", scope.Imports, scope.Push, fragment.NewImport("@emotion/css").Named("css")))
	require.NoError(t, m.Contribute("App_animate", scope.Imports, scope.Push, fragment.NewImport("@emotion/css").Named("keyframes")))
	require.NoError(t, m.Contribute("App_button", scope.Imports, scope.Push, fragment.NewImport("@emotion/css").Named("css")))

	res, err := Flatten(context.Background(), m, "App")
	require.NoError(t, err)

	require.Len(t, res.Declarations, 2)
	assert.Equal(t, "App_button", res.Declarations[0].Name)
	assert.Equal(t, "App_card", res.Declarations[1].Name)
	assert.Equal(t, scope.TypeComposition, res.Declarations[1].Type)

	assert.Equal(t, "App", res.Root.Name)
	assert.Equal(t, []string{"App", "App_highlight", "App_animate"}, res.Root.Scopes)
	assert.Len(t, res.Root.Methods, 1)
	assert.Len(t, res.Root.Fields, 1)
	assert.Len(t, res.Root.Variables, 1)

	require.Equal(t, 1, res.Imports.Len())
	rec, _ := res.Imports.Get("@emotion/css")
	assert.Equal(t, []fragment.Binding{{Name: "css"}, {Name: "keyframes"}}, rec.Named)
}

func TestFlatten_ExtendsLastWriterWins(t *testing.T) {
	t.Parallel()

	m := newScopes(t)
	require.NoError(t, m.Contribute("App", scope.Extends, scope.Reset, fragment.NewHeritage(fragment.Expr("Base"))))
	last := fragment.NewHeritage(fragment.Expr("Themed"))
	require.NoError(t, m.Contribute("App_animate", scope.Extends, scope.Reset, last))

	res, err := Flatten(context.Background(), m, "App")
	require.NoError(t, err)
	assert.Same(t, last, res.Root.Extends)
	assert.Nil(t, res.Declarations[0].Extends)
}

func TestFlatten_Errors(t *testing.T) {
	t.Parallel()

	m := newScopes(t)
	_, err := Flatten(context.Background(), m, "Missing")
	require.ErrorIs(t, err, builderr.ErrNotFound)

	require.NoError(t, m.Contribute("App", scope.Imports, scope.Push, fragment.NewImport("react").Default("React")))
	require.NoError(t, m.Contribute("App_highlight", scope.Imports, scope.Push, fragment.NewImport("react").Default("Preact")))
	_, err = Flatten(context.Background(), m, "App")
	require.ErrorIs(t, err, builderr.ErrInvalidOperation)

	bad := scope.New()
	require.NoError(t, bad.CreateScope("App", scope.TypeComponent, ""))
	require.NoError(t, bad.Contribute("App", scope.Imports, scope.Push, fragment.NewVariable("x")))
	_, err = Flatten(context.Background(), bad, "App")
	require.ErrorIs(t, err, builderr.ErrInvalidOperation)
}
