package registry

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"

	"github.com/amoebajs/builder-sub000/internal/builderr"
	"github.com/amoebajs/builder-sub000/internal/emit"
	"github.com/amoebajs/builder-sub000/internal/entity"
)

// Module is the interface every template library implements to be registered.
type Module interface {
	Register(r *Registry)
}

// Describer is implemented by template types. Describe is called once, on a
// zero value, when the template is registered.
type Describer interface {
	entity.Entity
	Describe() *Contract
}

// Template is a registered template: its contract and an instance factory.
type Template struct {
	Contract *Contract
	New      func() entity.Entity
}

// Registry holds the templates and providers of one application instance.
type Registry struct {
	templates map[entity.TemplateID]*Template
	order     []entity.TemplateID
	providers map[string]emit.Provider
}

// New creates a registry with the built-in providers.
func New() *Registry {
	r := &Registry{
		templates: make(map[entity.TemplateID]*Template),
		providers: make(map[string]emit.Provider),
	}
	r.RegisterProvider(emit.React{})
	r.RegisterProvider(emit.Plain{})
	return r
}

// Load registers every module.
func (r *Registry) Load(modules ...Module) {
	for _, m := range modules {
		m.Register(r)
	}
}

// Register adds a Go template. tmpl must be a pointer to a struct; fresh
// instances are allocated from its type.
func (r *Registry) Register(tmpl Describer) {
	typ := reflect.TypeOf(tmpl)
	if typ.Kind() != reflect.Pointer || typ.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("template %T must be a pointer to a struct", tmpl))
	}
	elem := typ.Elem()
	r.RegisterTemplate(tmpl.Describe(), func() entity.Entity {
		return reflect.New(elem).Interface().(entity.Entity)
	})
}

// RegisterTemplate adds a template from an explicit contract and factory.
func (r *Registry) RegisterTemplate(c *Contract, newFn func() entity.Entity) {
	if c == nil || c.ID.Module == "" || c.ID.Name == "" {
		panic("template contract requires a module and a name")
	}
	if _, exists := r.templates[c.ID]; exists {
		panic(fmt.Sprintf("template '%s' already registered", c.ID))
	}
	slog.Debug("Registering template.", "template", c.ID.String(), "kind", c.Kind.String())
	r.templates[c.ID] = &Template{Contract: c, New: newFn}
	r.order = append(r.order, c.ID)
}

// Resolve looks up a template.
func (r *Registry) Resolve(module, name string) (*Template, error) {
	t, ok := r.templates[entity.TemplateID{Module: module, Name: name}]
	if !ok {
		return nil, builderr.NotFound("registry.resolve", "invalid directive or component %s/%s", module, name)
	}
	return t, nil
}

// ResolveKind looks up a template and checks its kind.
func (r *Registry) ResolveKind(module, name string, kind entity.Kind) (*Template, error) {
	t, err := r.Resolve(module, name)
	if err != nil {
		return nil, err
	}
	if t.Contract.Kind != kind {
		return nil, builderr.NotFound("registry.resolve", "%s/%s is a %s, not a %s", module, name, t.Contract.Kind, kind)
	}
	return t, nil
}

// InputsOf returns the declared inputs of a template.
func (r *Registry) InputsOf(id entity.TemplateID) ([]Property, error) {
	t, err := r.Resolve(id.Module, id.Name)
	if err != nil {
		return nil, err
	}
	return t.Contract.Inputs, nil
}

// AttachesOf returns the declared attach slots of a template.
func (r *Registry) AttachesOf(id entity.TemplateID) ([]Property, error) {
	t, err := r.Resolve(id.Module, id.Name)
	if err != nil {
		return nil, err
	}
	return t.Contract.Attaches, nil
}

// Templates returns every template in registration order.
func (r *Registry) Templates() []*Template {
	out := make([]*Template, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.templates[id])
	}
	return out
}

// RegisterProvider adds an output provider, replacing one with the same name.
func (r *Registry) RegisterProvider(p emit.Provider) {
	r.providers[p.Name()] = p
}

// Provider looks up an output provider.
func (r *Registry) Provider(name string) (emit.Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, builderr.NotFound("registry.provider", "unknown provider %q", name)
	}
	return p, nil
}

// Providers returns the registered provider names, sorted.
func (r *Registry) Providers() []string {
	names := make([]string, 0, len(r.providers))
	for n := range r.providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
