package entity

import (
	"maps"
	"slices"

	"github.com/amoebajs/builder-sub000/internal/builderr"
	"github.com/amoebajs/builder-sub000/internal/fragment"
	"github.com/amoebajs/builder-sub000/internal/scope"
	"github.com/zclconf/go-cty/cty"
)

// Entity is implemented by every type embedding Base.
type Entity interface {
	Core() *Base
}

// Setup carries what the orchestrator binds into a fresh instance.
type Setup struct {
	ScopeID  string
	ParentID string
	Kind     Kind
	Template TemplateID
	Scopes   *scope.Map
	Inputs   map[string]cty.Value
	Attaches map[string][]AttachValue
	Props    map[string]cty.Value
	Ref      *ChildRef
}

// Base is the identity and contribution surface shared by all entities.
type Base struct {
	scopeID  string
	parentID string
	kind     Kind
	template TemplateID
	scopes   *scope.Map
	state    map[string]any
	inputs   map[string]cty.Value
	attaches map[string][]AttachValue
	props    map[string]cty.Value
	ref      *ChildRef
}

// Core returns the embedded Base.
func (b *Base) Core() *Base { return b }

// Setup binds identity, bindings and the scope map. The scope id is validated.
func (b *Base) Setup(s Setup) error {
	if err := b.SetScopeID(s.ScopeID); err != nil {
		return err
	}
	b.parentID = s.ParentID
	b.kind = s.Kind
	b.template = s.Template
	b.scopes = s.Scopes
	b.inputs = maps.Clone(s.Inputs)
	b.attaches = s.Attaches
	b.props = maps.Clone(s.Props)
	b.ref = s.Ref
	return nil
}

func (b *Base) ScopeID() string       { return b.scopeID }
func (b *Base) ParentID() string      { return b.parentID }
func (b *Base) Kind() Kind            { return b.kind }
func (b *Base) Template() TemplateID  { return b.template }
func (b *Base) Ref() *ChildRef        { return b.ref }
func (b *Base) SetParentID(id string) { b.parentID = id }
func (b *Base) Scopes() *scope.Map    { return b.scopes }

// SetScopeID pins the scope id.
func (b *Base) SetScopeID(id string) error {
	if err := ValidateScopeID(id); err != nil {
		return err
	}
	b.scopeID = id
	return nil
}

// InitScope registers the entity's scope in the map.
func (b *Base) InitScope() error {
	if b.scopes == nil {
		return builderr.InvalidOperation("entity.init", "%s %q has no scope map", b.kind, b.scopeID)
	}
	typ, err := b.kind.ScopeType()
	if err != nil {
		return err
	}
	return b.scopes.CreateScope(b.scopeID, typ, b.parentID)
}

// SetState stores a value in the private state bag.
func (b *Base) SetState(key string, v any) {
	if b.state == nil {
		b.state = make(map[string]any)
	}
	b.state[key] = v
}

// GetState returns a state value or def when unset.
func (b *Base) GetState(key string, def any) any {
	if v, ok := b.state[key]; ok {
		return v
	}
	return def
}

// State is a typed accessor over GetState.
func State[T any](e Entity, key string, def T) T {
	if v, ok := e.Core().GetState(key, def).(T); ok {
		return v
	}
	return def
}

// Input returns the bound value of an input, or a null value.
func (b *Base) Input(name string) cty.Value {
	if v, ok := b.inputs[name]; ok {
		return v
	}
	return cty.NullVal(cty.DynamicPseudoType)
}

// InputString returns a string input, or def when unset or not a known string.
func (b *Base) InputString(name, def string) string {
	v := b.Input(name)
	if v.IsNull() || !v.IsKnown() || v.Type() != cty.String {
		return def
	}
	return v.AsString()
}

// Inputs returns a copy of the bound inputs.
func (b *Base) Inputs() map[string]cty.Value { return maps.Clone(b.inputs) }

// Props returns a copy of the ordinary props.
func (b *Base) Props() map[string]cty.Value { return maps.Clone(b.props) }

// Attaches returns the contributions to an attach slot, in discovery order.
func (b *Base) Attaches(name string) []AttachValue { return slices.Clone(b.attaches[name]) }

// Contribute writes items into a category of the entity's own scope.
func (b *Base) Contribute(cat scope.Category, mode scope.Mode, items ...fragment.Builder) error {
	if b.scopes == nil {
		return builderr.InvalidOperation("entity.contribute", "%s %q has no scope", b.kind, b.scopeID)
	}
	return b.scopes.Contribute(b.scopeID, cat, mode, items...)
}

// Fragments reads a category of the entity's own scope.
func (b *Base) Fragments(cat scope.Category) []fragment.Builder {
	if b.scopes == nil {
		return nil
	}
	return b.scopes.Read(b.scopeID, cat)
}

func (b *Base) AddImports(items ...*fragment.ImportBuilder) error {
	return b.Contribute(scope.Imports, scope.Push, toBuilders(items)...)
}

func (b *Base) AddVariables(items ...*fragment.VariableBuilder) error {
	return b.Contribute(scope.Variables, scope.Push, toBuilders(items)...)
}

func (b *Base) AddFields(items ...*fragment.PropertyBuilder) error {
	return b.Contribute(scope.Fields, scope.Push, toBuilders(items)...)
}

func (b *Base) AddProperties(items ...*fragment.PropertyBuilder) error {
	return b.Contribute(scope.Properties, scope.Push, toBuilders(items)...)
}

func (b *Base) AddMethods(items ...*fragment.MethodBuilder) error {
	return b.Contribute(scope.Methods, scope.Push, toBuilders(items)...)
}

func (b *Base) AddClasses(items ...*fragment.ClassBuilder) error {
	return b.Contribute(scope.Classes, scope.Push, toBuilders(items)...)
}

func (b *Base) AddFunctions(items ...*fragment.FunctionBuilder) error {
	return b.Contribute(scope.Functions, scope.Push, toBuilders(items)...)
}

// SetExtends replaces the heritage clause of the scope.
func (b *Base) SetExtends(h *fragment.HeritageBuilder) error {
	return b.Contribute(scope.Extends, scope.Reset, h)
}

func toBuilders[T fragment.Builder](items []T) []fragment.Builder {
	out := make([]fragment.Builder, 0, len(items))
	for _, it := range items {
		out = append(out, it)
	}
	return out
}
