// Package compiler exposes the two entry points of a compilation pass:
// CreateInstance resolves a declarative tree into an entity graph, and
// CallCompilation runs the lifecycle over it and produces the output
// document.
package compiler

import (
	"context"

	"github.com/amoebajs/builder-sub000/internal/builderr"
	"github.com/amoebajs/builder-sub000/internal/ctxlog"
	"github.com/amoebajs/builder-sub000/internal/emit"
	"github.com/amoebajs/builder-sub000/internal/entity"
	"github.com/amoebajs/builder-sub000/internal/flatten"
	"github.com/amoebajs/builder-sub000/internal/lifecycle"
	"github.com/amoebajs/builder-sub000/internal/reconcile"
	"github.com/amoebajs/builder-sub000/internal/registry"
	"github.com/amoebajs/builder-sub000/internal/scope"
	"github.com/amoebajs/builder-sub000/internal/tree"
)

// Graph is a resolved entity graph bound to a fresh scope map. It can be
// compiled once.
type Graph struct {
	Root     *entity.ChildRef
	Scopes   *scope.Map
	rec      *reconcile.Reconciler
	compiled bool
}

// Compiler compiles trees against one registry.
type Compiler struct {
	reg *registry.Registry
}

// New returns a compiler bound to reg.
func New(reg *registry.Registry) *Compiler {
	return &Compiler{reg: reg}
}

// CreateInstance resolves root into an entity graph.
func (c *Compiler) CreateInstance(ctx context.Context, root *tree.Node) (g *Graph, err error) {
	defer func() {
		if r := recover(); r != nil {
			g, err = nil, builderr.Recovered("compiler.create_instance", r)
		}
	}()

	rec := reconcile.New(c.reg)
	ref, err := rec.ResolveRoot(ctx, root)
	if err != nil {
		return nil, builderr.Basic("compiler.create_instance", err)
	}
	if ref.TemplateKind == entity.KindDirective {
		return nil, builderr.InvalidOperation("compiler.create_instance", "root %s is a directive; the root must be a component or a composition", ref.Template)
	}
	ctxlog.FromContext(ctx).Debug("Entity graph created.", "root", ref.ScopeID(), "template", ref.Template.String())
	return &Graph{Root: ref, Scopes: scope.New(), rec: rec}, nil
}

// CallCompilation runs a full pass over g with the named provider and returns
// the output document. Any failure aborts the pass; errors outside the
// builderr taxonomy come back wrapped as Basic.
func (c *Compiler) CallCompilation(ctx context.Context, providerName string, g *Graph, outputName string, unexported bool) (doc *emit.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, builderr.Recovered("compiler.call_compilation", r)
		}
	}()

	if g == nil || g.Root == nil {
		return nil, builderr.InvalidOperation("compiler.call_compilation", "entity graph is required")
	}
	if g.compiled {
		return nil, builderr.InvalidOperation("compiler.call_compilation", "entity graph %s was already compiled", g.Root.ScopeID())
	}
	g.compiled = true

	ctx = ctxlog.With(ctx, "output", outputName)
	logger := ctxlog.FromContext(ctx)

	provider, err := c.reg.Provider(providerName)
	if err != nil {
		return nil, err
	}

	orch := lifecycle.New(c.reg, g.rec, g.Scopes)
	if err := orch.Run(ctx, g.Root, nil); err != nil {
		return nil, builderr.Basic("compiler.lifecycle", err)
	}
	logger.Debug("Lifecycle finished.", "scopes", g.Scopes.Len())

	res, err := flatten.Flatten(ctx, g.Scopes, g.Root.ScopeID())
	if err != nil {
		return nil, builderr.Basic("compiler.flatten", err)
	}

	doc, err = provider.Document(ctx, res, outputName, unexported)
	if err != nil {
		return nil, builderr.Basic("compiler.emit", err)
	}
	logger.Debug("Document built.", "provider", provider.Name(), "statements", len(doc.Statements))
	return doc, nil
}

// Compile is CreateInstance followed by CallCompilation.
func (c *Compiler) Compile(ctx context.Context, root *tree.Node, providerName, outputName string, unexported bool) (*emit.Document, error) {
	g, err := c.CreateInstance(ctx, root)
	if err != nil {
		return nil, err
	}
	return c.CallCompilation(ctx, providerName, g, outputName, unexported)
}
