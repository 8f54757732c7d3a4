package emit

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/amoebajs/builder-sub000/internal/fragment"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

const indentUnit = "  "

var identPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Print writes doc as TypeScript/TSX source.
func Print(w io.Writer, doc *Document) error {
	bw := bufio.NewWriter(w)
	p := &printer{w: bw}
	prevImport := false
	for i, n := range doc.Statements {
		_, isImport := n.(*fragment.Import)
		if i > 0 && !(isImport && prevImport) {
			p.line("")
		}
		p.statement(n)
		prevImport = isImport
	}
	if p.err != nil {
		return p.err
	}
	return bw.Flush()
}

// Sprint renders doc to a string.
func Sprint(doc *Document) (string, error) {
	var sb strings.Builder
	if err := Print(&sb, doc); err != nil {
		return "", err
	}
	return sb.String(), nil
}

type printer struct {
	w     *bufio.Writer
	depth int
	err   error
}

func (p *printer) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	text := format
	if len(args) > 0 {
		text = fmt.Sprintf(format, args...)
	}
	if text != "" {
		text = strings.Repeat(indentUnit, p.depth) + text
	}
	_, p.err = p.w.WriteString(text + "\n")
}

func (p *printer) statement(n fragment.Node) {
	switch n := n.(type) {
	case *fragment.Import:
		p.imports(n)
	case *fragment.Variable:
		p.line("%s;", p.variable(n))
	case *fragment.Function:
		p.function(n)
	case *fragment.Class:
		p.class(n)
	default:
		p.line("%s;", p.expr(n))
	}
}

func (p *printer) imports(n *fragment.Import) {
	from := quote(n.Module)
	var named []string
	for _, b := range n.Named {
		if b.Alias != "" && b.Alias != b.Name {
			named = append(named, b.Name+" as "+b.Alias)
		} else {
			named = append(named, b.Name)
		}
	}
	namedClause := ""
	if len(named) > 0 {
		namedClause = "{ " + strings.Join(named, ", ") + " }"
	}

	if n.Namespace != "" {
		if n.Default != "" {
			p.line("import %s, * as %s from %s;", n.Default, n.Namespace, from)
		} else {
			p.line("import * as %s from %s;", n.Namespace, from)
		}
		if namedClause != "" {
			p.line("import %s from %s;", namedClause, from)
		}
		return
	}
	switch {
	case n.Default != "" && namedClause != "":
		p.line("import %s, %s from %s;", n.Default, namedClause, from)
	case n.Default != "":
		p.line("import %s from %s;", n.Default, from)
	case namedClause != "":
		p.line("import %s from %s;", namedClause, from)
	default:
		p.line("import %s;", from)
	}
}

func (p *printer) variable(n *fragment.Variable) string {
	var sb strings.Builder
	if n.Exported {
		sb.WriteString("export ")
	}
	if n.Const {
		sb.WriteString("const ")
	} else {
		sb.WriteString("let ")
	}
	sb.WriteString(n.Name)
	if n.Type != "" {
		sb.WriteString(": " + n.Type)
	}
	if n.Init != nil {
		sb.WriteString(" = " + p.expr(n.Init))
	}
	return sb.String()
}

func params(ps []fragment.Param) string {
	parts := make([]string, 0, len(ps))
	for _, pr := range ps {
		if pr.Type != "" {
			parts = append(parts, pr.Name+": "+pr.Type)
		} else {
			parts = append(parts, pr.Name)
		}
	}
	return strings.Join(parts, ", ")
}

func returns(t string) string {
	if t == "" {
		return ""
	}
	return ": " + t
}

func (p *printer) body(lines []string, ret fragment.Node) {
	p.depth++
	for _, l := range lines {
		p.line("%s", l)
	}
	if ret != nil {
		p.line("return %s;", p.expr(ret))
	}
	p.depth--
}

func (p *printer) function(n *fragment.Function) {
	prefix := ""
	if n.Exported {
		prefix = "export "
	}
	p.line("%sfunction %s(%s)%s {", prefix, n.Name, params(n.Params), returns(n.Returns))
	p.body(n.Body, n.Return)
	p.line("}")
}

func (p *printer) class(n *fragment.Class) {
	prefix := ""
	switch {
	case n.Default:
		prefix = "export default "
	case n.Exported:
		prefix = "export "
	}
	head := prefix + "class " + n.Name
	if n.Extends != nil {
		head += " extends " + p.expr(n.Extends.Expr)
	}
	p.line("%s {", head)
	p.depth++
	for i, m := range n.Members {
		if i > 0 {
			if _, isMethod := m.(*fragment.Method); isMethod {
				p.line("")
			}
		}
		p.member(m)
	}
	p.depth--
	p.line("}")
}

func modifiers(m []string) string {
	if len(m) == 0 {
		return ""
	}
	return strings.Join(m, " ") + " "
}

func (p *printer) member(n fragment.Node) {
	switch n := n.(type) {
	case *fragment.Property:
		if n.Accessor {
			p.line("%sget %s()%s {", modifiers(n.Modifiers), n.Name, returns(n.Type))
			p.body(nil, orUndefined(n.Init))
			p.line("}")
			return
		}
		text := modifiers(n.Modifiers) + n.Name
		if n.Type != "" {
			text += ": " + n.Type
		}
		if n.Init != nil {
			text += " = " + p.expr(n.Init)
		}
		p.line("%s;", text)
	case *fragment.Method:
		p.line("%s%s(%s)%s {", modifiers(n.Modifiers), n.Name, params(n.Params), returns(n.Returns))
		p.body(n.Body, n.Return)
		p.line("}")
	case *fragment.Class:
		p.class(n)
	default:
		p.line("%s;", p.expr(n))
	}
}

func orUndefined(n fragment.Node) fragment.Node {
	if n == nil {
		return fragment.Expr("undefined")
	}
	return n
}

func (p *printer) expr(n fragment.Node) string {
	switch n := n.(type) {
	case nil:
		return "undefined"
	case *fragment.Raw:
		return n.Text
	case *fragment.Literal:
		return literal(n.Value)
	case *fragment.JSXExpression:
		return p.expr(n.Expr)
	case *fragment.JSXElement:
		return p.jsx(n)
	case *fragment.Heritage:
		return p.expr(n.Expr)
	case *fragment.Ref:
		emitted, err := n.Builder.Emit()
		if err != nil {
			if p.err == nil {
				p.err = err
			}
			return ""
		}
		return p.expr(emitted)
	default:
		if p.err == nil {
			p.err = fmt.Errorf("cannot print %s as an expression", n.Kind())
		}
		return ""
	}
}

func (p *printer) jsx(el *fragment.JSXElement) string {
	var sb strings.Builder
	sb.WriteString("<" + el.Tag)
	for _, a := range el.Attrs {
		sb.WriteString(" " + a.Name)
		if a.Value == nil {
			continue
		}
		if lit, ok := a.Value.(*fragment.Literal); ok && isPlainString(lit.Value) {
			sb.WriteString("=" + quote(lit.Value.AsString()))
			continue
		}
		sb.WriteString("={" + p.expr(a.Value) + "}")
	}
	if len(el.Style) > 0 {
		entries := make([]string, 0, len(el.Style))
		for _, st := range el.Style {
			key := st.Key
			if !identPattern.MatchString(key) {
				key = quote(key)
			}
			entries = append(entries, key+": "+p.expr(st.Value))
		}
		sb.WriteString(" style={{ " + strings.Join(entries, ", ") + " }}")
	}
	if len(el.Children) == 0 {
		sb.WriteString(" />")
		return sb.String()
	}
	sb.WriteString(">")
	for _, c := range el.Children {
		switch c := c.(type) {
		case *fragment.Raw:
			sb.WriteString(c.Text)
		case *fragment.JSXElement:
			sb.WriteString(p.jsx(c))
		default:
			sb.WriteString("{" + p.expr(c) + "}")
		}
	}
	sb.WriteString("</" + el.Tag + ">")
	return sb.String()
}

func isPlainString(v cty.Value) bool {
	if !v.IsKnown() || v.IsNull() || v.Type() != cty.String {
		return false
	}
	return !strings.ContainsAny(v.AsString(), "\"{}\\\n")
}

// literal renders a cty value as a TypeScript literal.
func literal(v cty.Value) string {
	switch {
	case !v.IsKnown():
		return "undefined"
	case v.IsNull():
		return "null"
	}
	b, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return "undefined"
	}
	return string(b)
}

func quote(s string) string {
	b, err := ctyjson.Marshal(cty.StringVal(s), cty.String)
	if err != nil {
		return `"` + s + `"`
	}
	return string(b)
}
