package fragment

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Kind identifies a fragment node or builder.
type Kind int

const (
	KindImport Kind = iota + 1
	KindVariable
	KindClass
	KindFunction
	KindProperty
	KindMethod
	KindHeritage
	KindJSXElement
	KindJSXAttribute
	KindJSXExpression
	KindRaw
	KindLiteral
)

var kindNames = map[Kind]string{
	KindImport:        "import",
	KindVariable:      "variable",
	KindClass:         "class",
	KindFunction:      "function",
	KindProperty:      "property",
	KindMethod:        "method",
	KindHeritage:      "heritage",
	KindJSXElement:    "jsx-element",
	KindJSXAttribute:  "jsx-attribute",
	KindJSXExpression: "jsx-expression",
	KindRaw:           "raw",
	KindLiteral:       "literal",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Node is an emitted fragment.
type Node interface {
	Kind() Kind
}

// Raw is a verbatim expression or statement.
type Raw struct{ Text string }

func (*Raw) Kind() Kind { return KindRaw }

// Literal is a constant value printed in the target syntax.
type Literal struct{ Value cty.Value }

func (*Literal) Kind() Kind { return KindLiteral }

// Binding is one named import binding.
type Binding struct {
	Name  string // exported name in the source module
	Alias string // local name, equals Name when not renamed
}

// Local returns the name the binding is visible as.
func (b Binding) Local() string {
	if b.Alias != "" {
		return b.Alias
	}
	return b.Name
}

// Import is an emitted import declaration.
type Import struct {
	Module    string
	Default   string
	Named     []Binding
	Namespace string
}

func (*Import) Kind() Kind { return KindImport }

// Variable is an emitted variable statement.
type Variable struct {
	Name     string
	Type     string
	Init     Node
	Const    bool
	Exported bool
}

func (*Variable) Kind() Kind { return KindVariable }

// Param is a function or method parameter.
type Param struct {
	Name string
	Type string
}

// Property is an emitted class member holding a value. Accessor properties
// are printed as getters returning Init.
type Property struct {
	Name      string
	Type      string
	Init      Node
	Modifiers []string
	Accessor  bool
}

func (*Property) Kind() Kind { return KindProperty }

// Method is an emitted class method.
type Method struct {
	Name      string
	Params    []Param
	Returns   string
	Body      []string
	Return    Node
	Modifiers []string
}

func (*Method) Kind() Kind { return KindMethod }

// Function is an emitted top-level function.
type Function struct {
	Name     string
	Params   []Param
	Returns  string
	Body     []string
	Return   Node
	Exported bool
}

func (*Function) Kind() Kind { return KindFunction }

// Heritage is the "extends" clause of a class.
type Heritage struct{ Expr Node }

func (*Heritage) Kind() Kind { return KindHeritage }

// Class is an emitted class declaration.
type Class struct {
	Name     string
	Extends  *Heritage
	Members  []Node
	Exported bool
	Default  bool
}

func (*Class) Kind() Kind { return KindClass }

// JSXAttribute is a single attribute of a JSX element.
type JSXAttribute struct {
	Name  string
	Value Node // nil prints a bare boolean attribute
}

func (*JSXAttribute) Kind() Kind { return KindJSXAttribute }

// JSXExpression is an embedded {expression}.
type JSXExpression struct{ Expr Node }

func (*JSXExpression) Kind() Kind { return KindJSXExpression }

// StyleEntry is one key of an element's inline style object.
type StyleEntry struct {
	Key   string
	Value Node
}

// JSXElement is an emitted JSX element.
type JSXElement struct {
	Tag      string
	Attrs    []*JSXAttribute
	Style    []StyleEntry
	Children []Node
}

func (*JSXElement) Kind() Kind { return KindJSXElement }

// Attr returns the attribute named name, or nil.
func (e *JSXElement) Attr(name string) *JSXAttribute {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// Str is shorthand for a string literal node.
func Str(s string) *Literal { return &Literal{Value: cty.StringVal(s)} }

// Expr is shorthand for a raw expression node.
func Expr(text string) *Raw { return &Raw{Text: text} }

// Exprf is Expr with fmt.Sprintf formatting.
func Exprf(format string, args ...any) *Raw {
	return &Raw{Text: fmt.Sprintf(format, args...)}
}
