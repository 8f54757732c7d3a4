// Package lifecycle drives entities through their phases.
//
// Component phases run in this order, each exactly once:
//
//	init, componentsPreRender, componentsRender, componentsPostRender,
//	childrenPreRender, childrenRender, childrenPostRender,
//	directivesPreAttach, directivesAttach, directivesPostAttach,
//	preRender, render, postRender
//
// A phase first walks the matching nested collection in registration order
// and then calls the entity's own hook, so a parent always observes what its
// children contributed. Directives run init, preAttach, attach and postAttach.
// Required directives of a template run once their host finished: after
// postRender for components, after postAttach for directives.
// A child reference runs init (bootstrap), preEmit, emit and postEmit; emit is
// where the referenced entity's whole lifecycle runs.
//
// Execution is strictly sequential. A failure aborts the pass, except a
// directive's attach hook, whose failure is logged and skipped.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/amoebajs/builder-sub000/internal/builderr"
	"github.com/amoebajs/builder-sub000/internal/ctxlog"
	"github.com/amoebajs/builder-sub000/internal/entity"
	"github.com/amoebajs/builder-sub000/internal/reconcile"
	"github.com/amoebajs/builder-sub000/internal/registry"
	"github.com/amoebajs/builder-sub000/internal/scope"
)

// Orchestrator runs the phases of one compilation pass.
type Orchestrator struct {
	reg    *registry.Registry
	rec    *reconcile.Reconciler
	scopes *scope.Map
}

// New returns an orchestrator writing into scopes.
func New(reg *registry.Registry, rec *reconcile.Reconciler, scopes *scope.Map) *Orchestrator {
	return &Orchestrator{reg: reg, rec: rec, scopes: scopes}
}

// Run drives a reference through all of its phases. host is the entity the
// reference belongs to, nil for the root.
func (o *Orchestrator) Run(ctx context.Context, ref *entity.ChildRef, host entity.Entity) error {
	if err := o.initRef(ctx, ref, host); err != nil {
		return err
	}
	if err := o.preEmit(ctx, ref); err != nil {
		return err
	}
	if err := o.emit(ctx, ref); err != nil {
		return err
	}
	return o.postEmit(ctx, ref)
}

// initRef bootstraps the instance a reference stands for.
func (o *Orchestrator) initRef(ctx context.Context, ref *entity.ChildRef, host entity.Entity) error {
	if ref.Instance() != nil {
		return builderr.InvalidOperation("lifecycle.init", "reference %s initialized twice", ref.ScopeID())
	}
	tmpl, err := o.reg.Resolve(ref.Template.Module, ref.Template.Name)
	if err != nil {
		return err
	}
	contract := tmpl.Contract

	inputs := contract.Defaults()
	for k, v := range ref.Options.Inputs {
		inputs[k] = v
	}
	if ref.Options.Attaches == nil {
		ref.Options.Attaches = make(map[string][]entity.AttachValue)
	}

	inst := tmpl.New()
	err = inst.Core().Setup(entity.Setup{
		ScopeID:  ref.ScopeID(),
		ParentID: ref.ParentID(),
		Kind:     contract.Kind,
		Template: contract.ID,
		Scopes:   o.scopes,
		Inputs:   inputs,
		Attaches: ref.Options.Attaches,
		Props:    ref.Options.Props,
		Ref:      ref,
	})
	if err != nil {
		return err
	}

	switch contract.Kind {
	case entity.KindComposition:
		c, ok := inst.(entity.CompositionHooks)
		if !ok {
			return builderr.InvalidOperation("lifecycle.init", "%s is not a composition", contract.ID)
		}
		c.CompositionCore().SetContextual(ref.Components)
		c.ComponentCore().SetRefs(nil, ref.Directives)
	case entity.KindComponent:
		c, ok := inst.(entity.ComponentHooks)
		if !ok {
			return builderr.InvalidOperation("lifecycle.init", "%s is not a component", contract.ID)
		}
		c.ComponentCore().SetRefs(ref.Components, ref.Directives)
	case entity.KindDirective:
		d, ok := inst.(entity.DirectiveHooks)
		if !ok {
			return builderr.InvalidOperation("lifecycle.init", "%s is not a directive", contract.ID)
		}
		d.DirectiveCore().SetHost(host)
	default:
		return builderr.InvalidOperation("lifecycle.init", "%s has unsupported kind %s", contract.ID, contract.Kind)
	}

	ref.SetInstance(inst)
	ctxlog.FromContext(ctx).Debug("Bootstrapped reference.", "scope", ref.ScopeID(), "template", contract.ID.String())
	return nil
}

func (o *Orchestrator) preEmit(ctx context.Context, ref *entity.ChildRef) error {
	if ref.Instance() == nil {
		return builderr.InvalidOperation("lifecycle.pre_emit", "reference %s was not initialized", ref.ScopeID())
	}
	ctxlog.FromContext(ctx).Debug("Reference pre-emit.", "scope", ref.ScopeID())
	return nil
}

// emit runs the full lifecycle of the referenced entity, once.
func (o *Orchestrator) emit(ctx context.Context, ref *entity.ChildRef) error {
	if ref.Instance() == nil {
		return builderr.InvalidOperation("lifecycle.emit", "reference %s was not initialized", ref.ScopeID())
	}
	if !ref.MarkEmitted() {
		return builderr.InvalidOperation("lifecycle.emit", "reference %s emitted twice", ref.ScopeID())
	}
	switch inst := ref.Instance().(type) {
	case entity.ComponentHooks:
		return o.component(ctx, inst)
	case entity.DirectiveHooks:
		return o.directive(ctx, inst)
	default:
		return builderr.InvalidOperation("lifecycle.emit", "reference %s has no runnable instance", ref.ScopeID())
	}
}

func (o *Orchestrator) postEmit(ctx context.Context, ref *entity.ChildRef) error {
	if !ref.Emitted() {
		return builderr.InvalidOperation("lifecycle.post_emit", "reference %s was not emitted", ref.ScopeID())
	}
	ctxlog.FromContext(ctx).Debug("Reference post-emit.", "scope", ref.ScopeID())
	return nil
}

type hook func(context.Context) error

// phase walks refs with step, then calls self.
func (o *Orchestrator) phase(ctx context.Context, scopeID, name string, refs []*entity.ChildRef, step func(context.Context, *entity.ChildRef) error, self hook) error {
	ctxlog.FromContext(ctx).Debug("Entering phase.", "scope", scopeID, "phase", name, "nested", len(refs))
	for _, r := range refs {
		if err := step(ctx, r); err != nil {
			return err
		}
	}
	if err := self(ctx); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (o *Orchestrator) component(ctx context.Context, c entity.ComponentHooks) error {
	core := c.ComponentCore()

	if err := core.InitScope(); err != nil {
		return err
	}
	if comp, ok := c.(entity.CompositionHooks); ok {
		if err := o.expand(ctx, comp); err != nil {
			return err
		}
	}
	initStep := func(ctx context.Context, r *entity.ChildRef) error { return o.initRef(ctx, r, c) }
	all := append(append(append([]*entity.ChildRef{}, core.Components()...), core.Directives()...), core.Children()...)
	if err := o.phase(ctx, core.ScopeID(), "init", all, initStep, c.OnInit); err != nil {
		return err
	}

	steps := []struct {
		name string
		refs func() []*entity.ChildRef
		step func(context.Context, *entity.ChildRef) error
		self hook
	}{
		{"componentsPreRender", core.Components, o.preEmit, c.OnComponentsPreRender},
		{"componentsRender", core.Components, o.emit, c.OnComponentsRender},
		{"componentsPostRender", core.Components, o.postEmit, c.OnComponentsPostRender},
		{"childrenPreRender", core.Children, o.preEmit, c.OnChildrenPreRender},
		{"childrenRender", core.Children, o.emit, c.OnChildrenRender},
		{"childrenPostRender", core.Children, o.postEmit, c.OnChildrenPostRender},
		{"directivesPreAttach", core.Directives, o.preEmit, c.OnDirectivesPreAttach},
		{"directivesAttach", core.Directives, o.emit, c.OnDirectivesAttach},
		{"directivesPostAttach", core.Directives, o.postEmit, c.OnDirectivesPostAttach},
		{"preRender", nil, nil, c.OnPreRender},
		{"render", nil, nil, c.OnRender},
		{"postRender", nil, nil, c.OnPostRender},
	}
	for _, s := range steps {
		var refs []*entity.ChildRef
		if s.refs != nil {
			refs = s.refs()
		}
		if err := o.phase(ctx, core.ScopeID(), s.name, refs, s.step, s.self); err != nil {
			return err
		}
	}

	if err := core.MarkRendered(); err != nil {
		return err
	}
	return o.requirements(ctx, c, core.AddDirective)
}

// expand resolves the composition's template against its contextual children.
func (o *Orchestrator) expand(ctx context.Context, c entity.CompositionHooks) error {
	node, err := c.Compose(ctx)
	if err != nil {
		return fmt.Errorf("composing %s: %w", c.Core().ScopeID(), err)
	}
	if node == nil {
		ctxlog.FromContext(ctx).Warn("Composition expanded to nothing.", "composition", c.Core().ScopeID())
		return nil
	}
	refs, err := o.rec.Expand(ctx, node, c.Core().Ref(), c.CompositionCore().Contextual())
	if err != nil {
		return err
	}
	c.ComponentCore().AddChildren(refs...)
	return nil
}

// requirements invokes the deferred factories of a finished host, so the
// inputs they compute see its post-render (or post-attach) state. Each
// created reference is handed to attach, when set, and then run with host as
// its host.
func (o *Orchestrator) requirements(ctx context.Context, host entity.Entity, attach func(*entity.ChildRef)) error {
	ref := host.Core().Ref()
	if ref == nil {
		return nil
	}
	for _, f := range ref.Deferred {
		dref, err := f(ctx, host)
		if err != nil {
			return err
		}
		if attach != nil {
			attach(dref)
		}
		if err := o.Run(ctx, dref, host); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) directive(ctx context.Context, d entity.DirectiveHooks) error {
	logger := ctxlog.FromContext(ctx).With("scope", d.Core().ScopeID())
	if err := d.DirectiveCore().InitScope(); err != nil {
		return err
	}
	logger.Debug("Entering phase.", "phase", "init")
	if err := d.OnInit(ctx); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	logger.Debug("Entering phase.", "phase", "preAttach")
	if err := d.OnPreAttach(ctx); err != nil {
		return fmt.Errorf("preAttach: %w", err)
	}
	logger.Debug("Entering phase.", "phase", "attach")
	if err := d.OnAttach(ctx); err != nil {
		logger.Warn("Directive attach failed, skipping.", "template", d.Core().Template().String(), "error", err)
	}
	logger.Debug("Entering phase.", "phase", "postAttach")
	if err := d.OnPostAttach(ctx); err != nil {
		return fmt.Errorf("postAttach: %w", err)
	}
	return o.requirements(ctx, d, nil)
}
