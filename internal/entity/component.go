package entity

import (
	"context"

	"github.com/amoebajs/builder-sub000/internal/builderr"
	"github.com/amoebajs/builder-sub000/internal/fragment"
)

// ComponentHooks is the full component lifecycle, in phase order.
type ComponentHooks interface {
	Entity
	ComponentCore() *Component
	OnInit(ctx context.Context) error
	OnComponentsPreRender(ctx context.Context) error
	OnComponentsRender(ctx context.Context) error
	OnComponentsPostRender(ctx context.Context) error
	OnChildrenPreRender(ctx context.Context) error
	OnChildrenRender(ctx context.Context) error
	OnChildrenPostRender(ctx context.Context) error
	OnDirectivesPreAttach(ctx context.Context) error
	OnDirectivesAttach(ctx context.Context) error
	OnDirectivesPostAttach(ctx context.Context) error
	OnPreRender(ctx context.Context) error
	OnRender(ctx context.Context) error
	OnPostRender(ctx context.Context) error
}

// Component is the base of renderable templates.
type Component struct {
	Base
	components []*ChildRef
	directives []*ChildRef
	children   []*ChildRef
	rendered   bool
	element    *fragment.JSXElementBuilder
}

func (c *Component) ComponentCore() *Component { return c }

// Components returns nested component and composition references.
func (c *Component) Components() []*ChildRef { return c.components }

// Directives returns directive references attached to this component.
func (c *Component) Directives() []*ChildRef { return c.directives }

// Children returns references produced by expanding a composition template.
func (c *Component) Children() []*ChildRef { return c.children }

// Rendered reports whether postRender completed.
func (c *Component) Rendered() bool { return c.rendered }

// SetRefs replaces the nested component and directive references.
func (c *Component) SetRefs(components, directives []*ChildRef) {
	c.components = components
	c.directives = directives
}

// AddChildren appends expanded child references.
func (c *Component) AddChildren(refs ...*ChildRef) {
	c.children = append(c.children, refs...)
}

// AddDirective appends a directive reference, used for deferred requirements.
func (c *Component) AddDirective(ref *ChildRef) {
	c.directives = append(c.directives, ref)
}

// MarkRendered sets the terminal flag. It can only be set once.
func (c *Component) MarkRendered() error {
	if c.rendered {
		return builderr.InvalidOperation("entity.rendered", "component %q rendered twice", c.scopeID)
	}
	c.rendered = true
	return nil
}

// Element returns the builder of the component's own root markup. Directives
// attached to the component patch it before the component renders.
func (c *Component) Element() *fragment.JSXElementBuilder {
	if c.element == nil {
		c.element = fragment.NewJSXElement("div")
	}
	return c.element
}

// UseElement replaces the root markup builder, typically from OnInit.
func (c *Component) UseElement(el *fragment.JSXElementBuilder) {
	c.element = el
}

// ChildElements returns the construction elements of nested component
// references followed by expanded children, in order.
func (c *Component) ChildElements() []fragment.Builder {
	var out []fragment.Builder
	for _, r := range c.components {
		out = append(out, r.Element())
	}
	for _, r := range c.children {
		if r.TemplateKind != KindDirective {
			out = append(out, r.Element())
		}
	}
	return out
}

func (c *Component) OnInit(context.Context) error                 { return nil }
func (c *Component) OnComponentsPreRender(context.Context) error  { return nil }
func (c *Component) OnComponentsRender(context.Context) error     { return nil }
func (c *Component) OnComponentsPostRender(context.Context) error { return nil }
func (c *Component) OnChildrenPreRender(context.Context) error    { return nil }
func (c *Component) OnChildrenRender(context.Context) error       { return nil }
func (c *Component) OnChildrenPostRender(context.Context) error   { return nil }
func (c *Component) OnDirectivesPreAttach(context.Context) error  { return nil }
func (c *Component) OnDirectivesAttach(context.Context) error     { return nil }
func (c *Component) OnDirectivesPostAttach(context.Context) error { return nil }
func (c *Component) OnPreRender(context.Context) error            { return nil }
func (c *Component) OnRender(context.Context) error               { return nil }
func (c *Component) OnPostRender(context.Context) error           { return nil }
