package testutil

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/zclconf/go-cty/cty"

	"github.com/amoebajs/builder-sub000/internal/entity"
	"github.com/amoebajs/builder-sub000/internal/fragment"
	"github.com/amoebajs/builder-sub000/internal/registry"
	"github.com/amoebajs/builder-sub000/internal/tree"
)

// RecorderModuleName is the module the recording templates register under.
const RecorderModuleName = "test"

// HookLog records hook invocations as "<scope>.<hook>" entries.
type HookLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *HookLog) add(scope, hook string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, scope+"."+hook)
}

// Entries returns every recorded entry in invocation order.
func (l *HookLog) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.entries)
}

// For returns the hooks recorded for one scope, in order.
func (l *HookLog) For(scope string) []string {
	var out []string
	for _, e := range l.Entries() {
		if s, hook, ok := strings.Cut(e, "."); ok && s == scope {
			out = append(out, hook)
		}
	}
	return out
}

// Index returns the position of entry, or -1.
func (l *HookLog) Index(entry string) int {
	return slices.Index(l.Entries(), entry)
}

// ComponentHookNames lists component hooks in lifecycle order.
var ComponentHookNames = []string{
	"init",
	"componentsPreRender", "componentsRender", "componentsPostRender",
	"childrenPreRender", "childrenRender", "childrenPostRender",
	"directivesPreAttach", "directivesAttach", "directivesPostAttach",
	"preRender", "render", "postRender",
}

// DirectiveHookNames lists directive hooks in lifecycle order.
var DirectiveHookNames = []string{"init", "preAttach", "attach", "postAttach"}

// RecorderModule registers templates that record every hook they receive:
//
//	test/node  component with inputs label and value and an attach slot "slot"
//	test/mark  directive; input fail makes attach fail, inputs module and
//	           named contribute an import
//	test/many  composition expanding to a node with a Many children slot
//	test/one   composition expanding to a node with a One children slot
//	test/needs component requiring test/aux with its post-render state
//	test/guard directive requiring test/aux with its post-attach state
//	test/aux   directive recording the value it received
type RecorderModule struct {
	Log *HookLog
}

// NewRecorder returns a module with a fresh log.
func NewRecorder() *RecorderModule {
	return &RecorderModule{Log: &HookLog{}}
}

// Register implements the registry.Module interface.
func (m *RecorderModule) Register(r *registry.Registry) {
	log := m.Log
	r.RegisterTemplate(
		registry.Component(RecorderModuleName, "node").
			Input("label", cty.String, registry.WithDefault(cty.StringVal(""))).
			Input("value", cty.DynamicPseudoType).
			Attach("slot", cty.DynamicPseudoType),
		func() entity.Entity { return &RecNode{log: log} },
	)
	r.RegisterTemplate(
		registry.Directive(RecorderModuleName, "mark").
			Input("fail", cty.Bool, registry.WithDefault(cty.False)).
			Input("module", cty.String, registry.WithDefault(cty.StringVal(""))).
			Input("named", cty.String, registry.WithDefault(cty.StringVal(""))),
		func() entity.Entity { return &RecMark{log: log} },
	)
	r.RegisterTemplate(
		registry.Composition(RecorderModuleName, "many"),
		func() entity.Entity { return &RecSlot{log: log, card: tree.Many} },
	)
	r.RegisterTemplate(
		registry.Composition(RecorderModuleName, "one"),
		func() entity.Entity { return &RecSlot{log: log, card: tree.One} },
	)
	r.RegisterTemplate(
		registry.Component(RecorderModuleName, "needs").
			Requires(RecorderModuleName, "aux", func(host entity.Entity) (map[string]cty.Value, error) {
				return map[string]cty.Value{
					"value": cty.StringVal(entity.State(host, "value", "")),
				}, nil
			}),
		func() entity.Entity { return &RecNeeds{log: log} },
	)
	r.RegisterTemplate(
		registry.Directive(RecorderModuleName, "guard").
			Requires(RecorderModuleName, "aux", func(host entity.Entity) (map[string]cty.Value, error) {
				return map[string]cty.Value{
					"value": cty.StringVal(entity.State(host, "value", "")),
				}, nil
			}),
		func() entity.Entity { return &RecGuard{log: log} },
	)
	r.RegisterTemplate(
		registry.Directive(RecorderModuleName, "aux").
			Input("value", cty.String, registry.WithDefault(cty.StringVal(""))),
		func() entity.Entity { return &RecAux{log: log} },
	)
}

// RecNode is the recording component.
type RecNode struct {
	entity.Component
	log *HookLog
}

func (n *RecNode) rec(hook string) error {
	n.log.add(n.ScopeID(), hook)
	return nil
}

func (n *RecNode) OnInit(context.Context) error                 { return n.rec("init") }
func (n *RecNode) OnComponentsPreRender(context.Context) error  { return n.rec("componentsPreRender") }
func (n *RecNode) OnComponentsRender(context.Context) error     { return n.rec("componentsRender") }
func (n *RecNode) OnComponentsPostRender(context.Context) error { return n.rec("componentsPostRender") }
func (n *RecNode) OnChildrenPreRender(context.Context) error    { return n.rec("childrenPreRender") }
func (n *RecNode) OnChildrenRender(context.Context) error       { return n.rec("childrenRender") }
func (n *RecNode) OnChildrenPostRender(context.Context) error   { return n.rec("childrenPostRender") }
func (n *RecNode) OnDirectivesPreAttach(context.Context) error  { return n.rec("directivesPreAttach") }
func (n *RecNode) OnDirectivesAttach(context.Context) error     { return n.rec("directivesAttach") }
func (n *RecNode) OnDirectivesPostAttach(context.Context) error { return n.rec("directivesPostAttach") }
func (n *RecNode) OnPreRender(context.Context) error            { return n.rec("preRender") }
func (n *RecNode) OnPostRender(context.Context) error           { return n.rec("postRender") }

func (n *RecNode) OnRender(context.Context) error {
	n.rec("render")
	return renderChildren(n.ComponentCore())
}

// RecMark is the recording directive.
type RecMark struct {
	entity.Directive
	log *HookLog
}

func (d *RecMark) OnInit(context.Context) error {
	d.log.add(d.ScopeID(), "init")
	return nil
}

func (d *RecMark) OnPreAttach(context.Context) error {
	d.log.add(d.ScopeID(), "preAttach")
	return nil
}

func (d *RecMark) OnAttach(context.Context) error {
	d.log.add(d.ScopeID(), "attach")
	if d.Input("fail").True() {
		return errors.New("mark asked to fail")
	}
	if module := d.InputString("module", ""); module != "" {
		imp := fragment.NewImport(module)
		if named := d.InputString("named", ""); named != "" {
			imp.Named(named)
		}
		return d.AddImports(imp)
	}
	return nil
}

func (d *RecMark) OnPostAttach(context.Context) error {
	d.log.add(d.ScopeID(), "postAttach")
	return nil
}

// RecSlot is a recording composition wrapping its contextual children in a
// test/node keyed "body".
type RecSlot struct {
	entity.Composition
	log  *HookLog
	card tree.Cardinality
}

func (c *RecSlot) Compose(context.Context) (*tree.Node, error) {
	c.log.add(c.ScopeID(), "compose")
	return tree.Entity(RecorderModuleName, "node", tree.Slot(c.card)).WithKey("body"), nil
}

func (c *RecSlot) OnRender(context.Context) error {
	c.log.add(c.ScopeID(), "render")
	return renderChildren(c.ComponentCore())
}

// RecNeeds changes its "value" state between init and render.
type RecNeeds struct {
	entity.Component
	log *HookLog
}

func (n *RecNeeds) OnInit(context.Context) error {
	n.log.add(n.ScopeID(), "init")
	n.SetState("value", "declared")
	return nil
}

func (n *RecNeeds) OnRender(context.Context) error {
	n.log.add(n.ScopeID(), "render")
	n.SetState("value", "rendered")
	return renderChildren(n.ComponentCore())
}

// RecGuard is a directive that changes its "value" state during attach.
type RecGuard struct {
	entity.Directive
	log *HookLog
}

func (d *RecGuard) OnInit(context.Context) error {
	d.log.add(d.ScopeID(), "init")
	d.SetState("value", "declared")
	return nil
}

func (d *RecGuard) OnAttach(context.Context) error {
	d.log.add(d.ScopeID(), "attach")
	d.SetState("value", "attached")
	return nil
}

func (d *RecGuard) OnPostAttach(context.Context) error {
	d.log.add(d.ScopeID(), "postAttach")
	return nil
}

// RecAux records the value it was given as "aux=<value>".
type RecAux struct {
	entity.Directive
	log *HookLog
}

func (d *RecAux) OnAttach(context.Context) error {
	d.log.add(d.ScopeID(), "aux="+d.InputString("value", ""))
	return nil
}

func renderChildren(c *entity.Component) error {
	el := c.Element()
	el.Child(c.ChildElements()...)
	return c.AddMethods(fragment.NewMethod("render").Return(fragment.Lazy(el)))
}
