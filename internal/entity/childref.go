package entity

import (
	"context"
	"slices"

	"github.com/amoebajs/builder-sub000/internal/fragment"
	"github.com/zclconf/go-cty/cty"
)

// DeferredFactory creates a directive reference for host once the host has
// rendered. Inputs are computed at call time.
type DeferredFactory func(ctx context.Context, host Entity) (*ChildRef, error)

// ChildRef stands for a template plus captured bindings. It owns no scope;
// the instance it bootstraps uses the reference's scope id.
type ChildRef struct {
	Base
	Template     TemplateID
	TemplateKind Kind
	RefEntityID  string
	Options      Options
	Components   []*ChildRef
	Directives   []*ChildRef
	Deferred     []DeferredFactory
	Parent       *ChildRef

	element  *fragment.JSXElementBuilder
	instance Entity
	emitted  bool
}

// NewChildRef returns a reference named scopeID.
func NewChildRef(scopeID string, tmpl TemplateID, kind Kind, parent *ChildRef) (*ChildRef, error) {
	r := &ChildRef{Template: tmpl, TemplateKind: kind, Parent: parent}
	parentID := ""
	if parent != nil {
		parentID = parent.ScopeID()
	}
	if err := r.Setup(Setup{ScopeID: scopeID, ParentID: parentID, Kind: KindChildRef, Template: tmpl}); err != nil {
		return nil, err
	}
	return r, nil
}

// Element returns the memoised construction element for this reference, with
// props and inputs as attributes in name order. Parents may patch it during
// their render phases.
func (r *ChildRef) Element() *fragment.JSXElementBuilder {
	if r.element != nil {
		return r.element
	}
	el := fragment.NewJSXElement(r.ScopeID())
	for _, k := range sortedKeys(r.Options.Props) {
		el.Attr(k, &fragment.Literal{Value: r.Options.Props[k]})
	}
	for _, k := range sortedKeys(r.Options.Inputs) {
		el.Attr(k, &fragment.Literal{Value: r.Options.Inputs[k]})
	}
	r.element = el
	return el
}

// Instance returns the bootstrapped entity, or nil before emit.
func (r *ChildRef) Instance() Entity { return r.instance }

// SetInstance binds the bootstrapped entity.
func (r *ChildRef) SetInstance(e Entity) { r.instance = e }

// Emitted reports whether the reference was already emitted.
func (r *ChildRef) Emitted() bool { return r.emitted }

// MarkEmitted flags the reference as emitted and reports whether it was not
// emitted before.
func (r *ChildRef) MarkEmitted() bool {
	if r.emitted {
		return false
	}
	r.emitted = true
	return true
}

// Clone deep-copies the reference under parent, naming each copied reference
// with rename.
func (r *ChildRef) Clone(parent *ChildRef, rename func(string) string) (*ChildRef, error) {
	c, err := NewChildRef(rename(r.ScopeID()), r.Template, r.TemplateKind, parent)
	if err != nil {
		return nil, err
	}
	c.RefEntityID = r.RefEntityID
	c.Options = r.Options.Clone()
	c.Deferred = slices.Clone(r.Deferred)
	for _, n := range r.Components {
		cc, err := n.Clone(c, rename)
		if err != nil {
			return nil, err
		}
		c.Components = append(c.Components, cc)
	}
	for _, n := range r.Directives {
		cd, err := n.Clone(c, rename)
		if err != nil {
			return nil, err
		}
		c.Directives = append(c.Directives, cd)
	}
	return c, nil
}

func sortedKeys(m map[string]cty.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
