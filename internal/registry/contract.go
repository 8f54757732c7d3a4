package registry

import (
	"slices"

	"github.com/amoebajs/builder-sub000/internal/entity"
	"github.com/zclconf/go-cty/cty"
)

// Property is one declared input or attach slot.
type Property struct {
	Key         string
	RealName    string
	Group       string
	Type        cty.Type
	Default     cty.Value
	Description string
}

// Name returns the key markers use to address the property: "group.key" for
// grouped properties, "key" otherwise.
func (p Property) Name() string {
	if p.Group != "" {
		return p.Group + "." + p.Key
	}
	return p.Key
}

// HasDefault reports whether a default value was declared.
func (p Property) HasDefault() bool {
	return p.Default != cty.NilVal && !p.Default.IsNull()
}

// PropertyOption tunes a declared property.
type PropertyOption func(*Property)

// WithDefault sets the value used when nothing is bound.
func WithDefault(v cty.Value) PropertyOption {
	return func(p *Property) { p.Default = v }
}

// WithRealName sets the generated member name.
func WithRealName(name string) PropertyOption {
	return func(p *Property) { p.RealName = name }
}

// WithGroup places the property in a group.
func WithGroup(group string) PropertyOption {
	return func(p *Property) { p.Group = group }
}

// WithDescription documents the property.
func WithDescription(text string) PropertyOption {
	return func(p *Property) { p.Description = text }
}

// InputsFunc computes the inputs of a required directive from its host.
type InputsFunc func(host entity.Entity) (map[string]cty.Value, error)

// Requirement is a directive that always accompanies a template.
type Requirement struct {
	Template entity.TemplateID
	Inputs   InputsFunc
}

// Contract is the static description of a template.
type Contract struct {
	ID           entity.TemplateID
	Kind         entity.Kind
	Description  string
	Inputs       []Property
	Attaches     []Property
	Requirements []Requirement
}

func newContract(kind entity.Kind, module, name string) *Contract {
	return &Contract{ID: entity.TemplateID{Module: module, Name: name}, Kind: kind}
}

// Component starts the contract of a component template.
func Component(module, name string) *Contract {
	return newContract(entity.KindComponent, module, name)
}

// Directive starts the contract of a directive template.
func Directive(module, name string) *Contract {
	return newContract(entity.KindDirective, module, name)
}

// Composition starts the contract of a composition template.
func Composition(module, name string) *Contract {
	return newContract(entity.KindComposition, module, name)
}

// Describe sets the human readable description.
func (c *Contract) Describe(text string) *Contract {
	c.Description = text
	return c
}

// Input declares a typed input.
func (c *Contract) Input(key string, typ cty.Type, opts ...PropertyOption) *Contract {
	c.Inputs = append(c.Inputs, newProperty(key, typ, opts))
	return c
}

// Attach declares an attach slot that descendants may contribute to.
func (c *Contract) Attach(key string, typ cty.Type, opts ...PropertyOption) *Contract {
	c.Attaches = append(c.Attaches, newProperty(key, typ, opts))
	return c
}

// Requires declares a directive that always accompanies the template. inputs
// runs after the host rendered.
func (c *Contract) Requires(module, name string, inputs InputsFunc) *Contract {
	c.Requirements = append(c.Requirements, Requirement{Template: entity.TemplateID{Module: module, Name: name}, Inputs: inputs})
	return c
}

func newProperty(key string, typ cty.Type, opts []PropertyOption) Property {
	p := Property{Key: key, RealName: key, Type: typ}
	for _, o := range opts {
		o(&p)
	}
	return p
}

// FindInput looks up an input by marker name.
func (c *Contract) FindInput(name string) (Property, bool) {
	return find(c.Inputs, name)
}

// FindAttach looks up an attach slot by marker name.
func (c *Contract) FindAttach(name string) (Property, bool) {
	return find(c.Attaches, name)
}

// Groups returns the distinct property groups, in declaration order.
func (c *Contract) Groups() []string {
	var out []string
	for _, p := range slices.Concat(c.Inputs, c.Attaches) {
		if p.Group != "" && !slices.Contains(out, p.Group) {
			out = append(out, p.Group)
		}
	}
	return out
}

// Defaults returns the declared default of every input that has one.
func (c *Contract) Defaults() map[string]cty.Value {
	out := make(map[string]cty.Value)
	for _, p := range c.Inputs {
		if p.HasDefault() {
			out[p.Name()] = p.Default
		}
	}
	return out
}

func find(props []Property, name string) (Property, bool) {
	for _, p := range props {
		if p.Name() == name {
			return p, true
		}
	}
	return Property{}, false
}
