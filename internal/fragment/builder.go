package fragment

import (
	"fmt"
	"slices"

	"github.com/amoebajs/builder-sub000/internal/builderr"
)

// Transformer rewrites a freshly built node right before Emit returns it.
type Transformer func(Node) (Node, error)

// Builder is the common surface of every fragment builder.
type Builder interface {
	Kind() Kind
	PushTransformerBeforeEmit(fn Transformer)
	Emit() (Node, error)
}

type pipeline struct {
	transformers []Transformer
}

func (p *pipeline) PushTransformerBeforeEmit(fn Transformer) {
	p.transformers = append(p.transformers, fn)
}

func (p *pipeline) run(n Node) (Node, error) {
	for i, fn := range p.transformers {
		out, err := fn(n)
		if err != nil {
			return nil, fmt.Errorf("transformer %d on %s: %w", i, n.Kind(), err)
		}
		if out == nil {
			return nil, builderr.InvalidOperation("fragment.emit", "transformer %d on %s returned no node", i, n.Kind())
		}
		n = out
	}
	return n, nil
}

// New creates an empty builder of the given kind. name is the declared name
// for named kinds (variable, class, function, property, method), the module
// path for imports, and the tag for JSX elements.
func New(kind Kind, name string) (Builder, error) {
	switch kind {
	case KindImport:
		return NewImport(name), nil
	case KindVariable:
		return NewVariable(name), nil
	case KindClass:
		return NewClass(name), nil
	case KindFunction:
		return NewFunction(name), nil
	case KindProperty:
		return NewProperty(name), nil
	case KindMethod:
		return NewMethod(name), nil
	case KindHeritage:
		return NewHeritage(Expr(name)), nil
	case KindJSXElement:
		return NewJSXElement(name), nil
	case KindJSXAttribute:
		return NewJSXAttribute(name, nil), nil
	case KindJSXExpression:
		return NewJSXExpression(Expr(name)), nil
	default:
		return nil, builderr.InvalidOperation("fragment.new", "unsupported builder kind %s", kind)
	}
}

// ImportBuilder builds an import declaration for one module path.
type ImportBuilder struct {
	pipeline
	module    string
	def       string
	named     []Binding
	namespace string
}

func NewImport(module string) *ImportBuilder { return &ImportBuilder{module: module} }

func (*ImportBuilder) Kind() Kind { return KindImport }

// Default sets the default binding.
func (b *ImportBuilder) Default(name string) *ImportBuilder {
	b.def = name
	return b
}

// Named adds a named binding. An empty alias keeps the original name.
func (b *ImportBuilder) Named(name string, alias ...string) *ImportBuilder {
	bd := Binding{Name: name}
	if len(alias) > 0 {
		bd.Alias = alias[0]
	}
	b.named = append(b.named, bd)
	return b
}

// Namespace sets the namespace binding (import * as name).
func (b *ImportBuilder) Namespace(name string) *ImportBuilder {
	b.namespace = name
	return b
}

func (b *ImportBuilder) Module() string           { return b.module }
func (b *ImportBuilder) DefaultBinding() string   { return b.def }
func (b *ImportBuilder) NamespaceBinding() string { return b.namespace }
func (b *ImportBuilder) NamedBindings() []Binding { return slices.Clone(b.named) }

func (b *ImportBuilder) Emit() (Node, error) {
	return b.run(&Import{Module: b.module, Default: b.def, Named: slices.Clone(b.named), Namespace: b.namespace})
}

// VariableBuilder builds a variable statement.
type VariableBuilder struct {
	pipeline
	v Variable
}

func NewVariable(name string) *VariableBuilder {
	return &VariableBuilder{v: Variable{Name: name, Const: true}}
}

func (*VariableBuilder) Kind() Kind { return KindVariable }

func (b *VariableBuilder) Name() string { return b.v.Name }

func (b *VariableBuilder) Type(t string) *VariableBuilder { b.v.Type = t; return b }
func (b *VariableBuilder) Init(n Node) *VariableBuilder   { b.v.Init = n; return b }
func (b *VariableBuilder) Let() *VariableBuilder          { b.v.Const = false; return b }
func (b *VariableBuilder) Export() *VariableBuilder       { b.v.Exported = true; return b }

func (b *VariableBuilder) Emit() (Node, error) {
	v := b.v
	init, err := emitExpr(b.v.Init)
	if err != nil {
		return nil, err
	}
	v.Init = init
	return b.run(&v)
}

// PropertyBuilder builds a class field or accessor.
type PropertyBuilder struct {
	pipeline
	p Property
}

func NewProperty(name string) *PropertyBuilder { return &PropertyBuilder{p: Property{Name: name}} }

func (*PropertyBuilder) Kind() Kind { return KindProperty }

func (b *PropertyBuilder) Name() string { return b.p.Name }

func (b *PropertyBuilder) Type(t string) *PropertyBuilder { b.p.Type = t; return b }
func (b *PropertyBuilder) Init(n Node) *PropertyBuilder   { b.p.Init = n; return b }
func (b *PropertyBuilder) Accessor() *PropertyBuilder     { b.p.Accessor = true; return b }

func (b *PropertyBuilder) Modifiers(m ...string) *PropertyBuilder {
	b.p.Modifiers = append(b.p.Modifiers, m...)
	return b
}

func (b *PropertyBuilder) Emit() (Node, error) {
	p := b.p
	p.Modifiers = slices.Clone(b.p.Modifiers)
	init, err := emitExpr(b.p.Init)
	if err != nil {
		return nil, err
	}
	p.Init = init
	return b.run(&p)
}

// MethodBuilder builds a class method.
type MethodBuilder struct {
	pipeline
	m Method
}

func NewMethod(name string) *MethodBuilder { return &MethodBuilder{m: Method{Name: name}} }

func (*MethodBuilder) Kind() Kind { return KindMethod }

func (b *MethodBuilder) Name() string { return b.m.Name }

func (b *MethodBuilder) Param(name, typ string) *MethodBuilder {
	b.m.Params = append(b.m.Params, Param{Name: name, Type: typ})
	return b
}

func (b *MethodBuilder) Returns(t string) *MethodBuilder { b.m.Returns = t; return b }

// Body appends statements to the method body.
func (b *MethodBuilder) Body(lines ...string) *MethodBuilder {
	b.m.Body = append(b.m.Body, lines...)
	return b
}

// Return sets the returned expression, printed after the body.
func (b *MethodBuilder) Return(n Node) *MethodBuilder { b.m.Return = n; return b }

func (b *MethodBuilder) Modifiers(m ...string) *MethodBuilder {
	b.m.Modifiers = append(b.m.Modifiers, m...)
	return b
}

func (b *MethodBuilder) Emit() (Node, error) {
	m := b.m
	m.Params = slices.Clone(b.m.Params)
	m.Body = slices.Clone(b.m.Body)
	m.Modifiers = slices.Clone(b.m.Modifiers)
	ret, err := emitExpr(b.m.Return)
	if err != nil {
		return nil, err
	}
	m.Return = ret
	return b.run(&m)
}

// FunctionBuilder builds a top-level function.
type FunctionBuilder struct {
	pipeline
	f Function
}

func NewFunction(name string) *FunctionBuilder { return &FunctionBuilder{f: Function{Name: name}} }

func (*FunctionBuilder) Kind() Kind { return KindFunction }

func (b *FunctionBuilder) Name() string { return b.f.Name }

func (b *FunctionBuilder) Param(name, typ string) *FunctionBuilder {
	b.f.Params = append(b.f.Params, Param{Name: name, Type: typ})
	return b
}

func (b *FunctionBuilder) Returns(t string) *FunctionBuilder { b.f.Returns = t; return b }
func (b *FunctionBuilder) Return(n Node) *FunctionBuilder    { b.f.Return = n; return b }
func (b *FunctionBuilder) Export() *FunctionBuilder          { b.f.Exported = true; return b }

func (b *FunctionBuilder) Body(lines ...string) *FunctionBuilder {
	b.f.Body = append(b.f.Body, lines...)
	return b
}

func (b *FunctionBuilder) Emit() (Node, error) {
	f := b.f
	f.Params = slices.Clone(b.f.Params)
	f.Body = slices.Clone(b.f.Body)
	ret, err := emitExpr(b.f.Return)
	if err != nil {
		return nil, err
	}
	f.Return = ret
	return b.run(&f)
}

// HeritageBuilder builds an extends clause.
type HeritageBuilder struct {
	pipeline
	expr Node
}

func NewHeritage(expr Node) *HeritageBuilder { return &HeritageBuilder{expr: expr} }

func (*HeritageBuilder) Kind() Kind { return KindHeritage }

func (b *HeritageBuilder) Emit() (Node, error) {
	return b.run(&Heritage{Expr: b.expr})
}

// ClassBuilder builds a class from member builders. Members are emitted when
// the class itself is emitted.
type ClassBuilder struct {
	pipeline
	name     string
	extends  *HeritageBuilder
	members  []Builder
	exported bool
	def      bool
}

func NewClass(name string) *ClassBuilder { return &ClassBuilder{name: name} }

func (*ClassBuilder) Kind() Kind { return KindClass }

func (b *ClassBuilder) Name() string { return b.name }

func (b *ClassBuilder) Extends(h *HeritageBuilder) *ClassBuilder { b.extends = h; return b }

// Member appends property, method or nested class builders.
func (b *ClassBuilder) Member(m ...Builder) *ClassBuilder {
	b.members = append(b.members, m...)
	return b
}

func (b *ClassBuilder) Export() *ClassBuilder        { b.exported = true; return b }
func (b *ClassBuilder) ExportDefault() *ClassBuilder { b.exported, b.def = true, true; return b }

func (b *ClassBuilder) Emit() (Node, error) {
	c := &Class{Name: b.name, Exported: b.exported, Default: b.def}
	if b.extends != nil {
		h, err := b.extends.Emit()
		if err != nil {
			return nil, err
		}
		hh, ok := h.(*Heritage)
		if !ok {
			return nil, builderr.InvalidOperation("fragment.class", "extends of %s emitted %s", b.name, h.Kind())
		}
		c.Extends = hh
	}
	for _, m := range b.members {
		n, err := m.Emit()
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", b.name, err)
		}
		c.Members = append(c.Members, n)
	}
	return b.run(c)
}

// JSXAttributeBuilder builds a single attribute.
type JSXAttributeBuilder struct {
	pipeline
	a JSXAttribute
}

func NewJSXAttribute(name string, value Node) *JSXAttributeBuilder {
	return &JSXAttributeBuilder{a: JSXAttribute{Name: name, Value: value}}
}

func (*JSXAttributeBuilder) Kind() Kind { return KindJSXAttribute }

func (b *JSXAttributeBuilder) Emit() (Node, error) {
	v, err := emitExpr(b.a.Value)
	if err != nil {
		return nil, err
	}
	return b.run(&JSXAttribute{Name: b.a.Name, Value: v})
}

// JSXExpressionBuilder builds an embedded expression.
type JSXExpressionBuilder struct {
	pipeline
	expr Node
}

func NewJSXExpression(expr Node) *JSXExpressionBuilder { return &JSXExpressionBuilder{expr: expr} }

func (*JSXExpressionBuilder) Kind() Kind { return KindJSXExpression }

func (b *JSXExpressionBuilder) Emit() (Node, error) {
	e, err := emitExpr(b.expr)
	if err != nil {
		return nil, err
	}
	return b.run(&JSXExpression{Expr: e})
}

// JSXElementBuilder builds an element. Children may be builders (emitted with
// the element) or already emitted nodes.
type JSXElementBuilder struct {
	pipeline
	tag      string
	attrs    []JSXAttribute
	style    []StyleEntry
	children []any
}

func NewJSXElement(tag string) *JSXElementBuilder { return &JSXElementBuilder{tag: tag} }

func (*JSXElementBuilder) Kind() Kind { return KindJSXElement }

func (b *JSXElementBuilder) Tag() string { return b.tag }

// Attr sets an attribute, replacing any previous value with the same name.
func (b *JSXElementBuilder) Attr(name string, value Node) *JSXElementBuilder {
	for i := range b.attrs {
		if b.attrs[i].Name == name {
			b.attrs[i].Value = value
			return b
		}
	}
	b.attrs = append(b.attrs, JSXAttribute{Name: name, Value: value})
	return b
}

// Style sets one inline style key, replacing a previous value.
func (b *JSXElementBuilder) Style(key string, value Node) *JSXElementBuilder {
	for i := range b.style {
		if b.style[i].Key == key {
			b.style[i].Value = value
			return b
		}
	}
	b.style = append(b.style, StyleEntry{Key: key, Value: value})
	return b
}

// Child appends a child builder.
func (b *JSXElementBuilder) Child(children ...Builder) *JSXElementBuilder {
	for _, c := range children {
		b.children = append(b.children, c)
	}
	return b
}

// ChildNode appends already emitted children.
func (b *JSXElementBuilder) ChildNode(children ...Node) *JSXElementBuilder {
	for _, c := range children {
		b.children = append(b.children, c)
	}
	return b
}

// Text appends a text child.
func (b *JSXElementBuilder) Text(s string) *JSXElementBuilder {
	b.children = append(b.children, Node(&Raw{Text: s}))
	return b
}

func (b *JSXElementBuilder) Emit() (Node, error) {
	el := &JSXElement{Tag: b.tag}
	for _, st := range b.style {
		v, err := emitExpr(st.Value)
		if err != nil {
			return nil, err
		}
		el.Style = append(el.Style, StyleEntry{Key: st.Key, Value: v})
	}
	for _, a := range b.attrs {
		v, err := emitExpr(a.Value)
		if err != nil {
			return nil, err
		}
		el.Attrs = append(el.Attrs, &JSXAttribute{Name: a.Name, Value: v})
	}
	for _, c := range b.children {
		switch c := c.(type) {
		case Builder:
			n, err := c.Emit()
			if err != nil {
				return nil, fmt.Errorf("<%s>: %w", b.tag, err)
			}
			el.Children = append(el.Children, n)
		case Node:
			el.Children = append(el.Children, c)
		}
	}
	return b.run(el)
}

// Ref is an expression node standing for a builder that is emitted lazily,
// when the node holding it is emitted.
type Ref struct{ Builder Builder }

func (*Ref) Kind() Kind { return KindJSXExpression }

// Lazy wraps b so it can be used as an expression and emitted later.
func Lazy(b Builder) *Ref { return &Ref{Builder: b} }

func emitExpr(n Node) (Node, error) {
	if r, ok := n.(*Ref); ok {
		return r.Builder.Emit()
	}
	return n, nil
}
