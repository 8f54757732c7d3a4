package basic

import (
	"context"
	"slices"

	"github.com/amoebajs/builder-sub000/internal/entity"
	"github.com/amoebajs/builder-sub000/internal/fragment"
	"github.com/amoebajs/builder-sub000/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Page is a page root with an optional heading.
type Page struct{ entity.Component }

func (*Page) Describe() *registry.Contract {
	return registry.Component(Name, "page").
		Describe("Page root with an optional heading").
		Input("title", cty.String, registry.WithDefault(cty.StringVal("")))
}

func (p *Page) OnRender(context.Context) error {
	el := p.Element()
	props := p.Props()
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		el.Attr(k, &fragment.Literal{Value: props[k]})
	}
	if title := p.InputString("title", ""); title != "" {
		el.Child(fragment.NewJSXElement("h1").ChildNode(&fragment.JSXExpression{Expr: fragment.Str(title)}))
	}
	return render(p.ComponentCore())
}

// Button renders a <button> labelled by its label prop.
type Button struct{ entity.Component }

func (*Button) Describe() *registry.Contract {
	return registry.Component(Name, "button").
		Describe("Clickable button").
		Input("label", cty.String, registry.WithDefault(cty.StringVal("Button"))).
		Input("disabled", cty.Bool, registry.WithDefault(cty.False))
}

func (b *Button) OnInit(context.Context) error {
	b.UseElement(fragment.NewJSXElement("button"))
	return nil
}

func (b *Button) OnRender(context.Context) error {
	defaults := b.Describe().Defaults()
	if err := b.AddProperties(fragment.NewProperty("defaultProps").
		Modifiers("static").
		Init(&fragment.Literal{Value: cty.ObjectVal(defaults)})); err != nil {
		return err
	}
	b.Element().
		Attr("disabled", fragment.Expr("this.props.disabled")).
		ChildNode(&fragment.JSXExpression{Expr: fragment.Expr("this.props.label")})
	return render(b.ComponentCore())
}

// Text renders its value inside a <span>.
type Text struct{ entity.Component }

func (*Text) Describe() *registry.Contract {
	return registry.Component(Name, "text").
		Describe("Inline text").
		Input("value", cty.String, registry.WithDefault(cty.StringVal("")))
}

func (t *Text) OnInit(context.Context) error {
	t.UseElement(fragment.NewJSXElement("span"))
	return nil
}

func (t *Text) OnRender(context.Context) error {
	t.Element().ChildNode(&fragment.JSXExpression{Expr: fragment.Expr("this.props.value")})
	return render(t.ComponentCore())
}

// Box is a flex container.
type Box struct{ entity.Component }

func (*Box) Describe() *registry.Contract {
	return registry.Component(Name, "box").
		Describe("Flex container").
		Input("direction", cty.String, registry.WithDefault(cty.StringVal("column"))).
		Input("gap", cty.Number, registry.WithDefault(cty.NumberIntVal(8)), registry.WithGroup("style"))
}

func (b *Box) OnRender(context.Context) error {
	b.Element().
		Style("display", fragment.Str("flex")).
		Style("flexDirection", &fragment.Literal{Value: b.Input("direction")}).
		Style("gap", &fragment.Literal{Value: b.Input("style.gap")})
	return render(b.ComponentCore())
}

// Grid lays out its children on a CSS grid. Children pick their cell with an
// "area" attach marker.
type Grid struct{ entity.Component }

func (*Grid) Describe() *registry.Contract {
	return registry.Component(Name, "grid").
		Describe("CSS grid; children attach to named areas").
		Input("columns", cty.String, registry.WithDefault(cty.StringVal("1fr 1fr"))).
		Attach("area", cty.String, registry.WithDescription("grid-area of the contributing child"))
}

func (g *Grid) OnRender(context.Context) error {
	g.Element().
		Style("display", fragment.Str("grid")).
		Style("gridTemplateColumns", &fragment.Literal{Value: g.Input("columns")})

	refs := g.Components()
	for _, a := range g.Attaches("area") {
		i := slices.IndexFunc(refs, func(r *entity.ChildRef) bool { return r.ScopeID() == a.OriginID })
		if i < 0 {
			continue
		}
		refs[i].Element().Style("gridArea", &fragment.Literal{Value: a.Value})
	}
	return render(g.ComponentCore())
}
