package entity

import "context"

// DirectiveHooks is the directive lifecycle, in phase order.
type DirectiveHooks interface {
	Entity
	DirectiveCore() *Directive
	OnInit(ctx context.Context) error
	OnPreAttach(ctx context.Context) error
	OnAttach(ctx context.Context) error
	OnPostAttach(ctx context.Context) error
}

// Directive augments a host component. Its scope is merged into the root
// declaration at flatten time.
type Directive struct {
	Base
	host Entity
}

func (d *Directive) DirectiveCore() *Directive { return d }

// Host returns the entity the directive is attached to.
func (d *Directive) Host() Entity { return d.host }

// HostComponent returns the host as a component, or nil.
func (d *Directive) HostComponent() *Component {
	if h, ok := d.host.(ComponentHooks); ok {
		return h.ComponentCore()
	}
	return nil
}

// SetHost binds the host entity.
func (d *Directive) SetHost(h Entity) { d.host = h }

func (d *Directive) OnInit(context.Context) error       { return nil }
func (d *Directive) OnPreAttach(context.Context) error  { return nil }
func (d *Directive) OnAttach(context.Context) error     { return nil }
func (d *Directive) OnPostAttach(context.Context) error { return nil }
