package basic

import (
	"context"
	"fmt"

	"github.com/amoebajs/builder-sub000/internal/entity"
	"github.com/amoebajs/builder-sub000/internal/fragment"
	"github.com/amoebajs/builder-sub000/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

const emotion = "@emotion/css"

// Highlight paints its host's background through an emotion class.
type Highlight struct{ entity.Directive }

func (*Highlight) Describe() *registry.Contract {
	return registry.Directive(Name, "highlight").
		Describe("Background highlight").
		Input("color", cty.String, registry.WithDefault(cty.StringVal("yellow")))
}

func (h *Highlight) OnAttach(context.Context) error {
	color := h.InputString("color", "")
	if color == "" {
		return fmt.Errorf("highlight %s has no color", h.ScopeID())
	}
	host := h.HostComponent()
	if host == nil {
		return fmt.Errorf("highlight %s has no host component", h.ScopeID())
	}

	name := h.ScopeID() + "Class"
	if err := h.AddImports(fragment.NewImport(emotion).Named("css")); err != nil {
		return err
	}
	if err := h.AddVariables(fragment.NewVariable(name).Init(fragment.Exprf("css({ background: %s })", jsString(color)))); err != nil {
		return err
	}
	host.Element().Attr("className", fragment.Expr(name))
	return nil
}

// Animate fades its host in with emotion keyframes.
type Animate struct{ entity.Directive }

func (*Animate) Describe() *registry.Contract {
	return registry.Directive(Name, "animate").
		Describe("Fade-in animation").
		Input("duration", cty.Number, registry.WithDefault(cty.NumberIntVal(1)))
}

func (a *Animate) OnAttach(context.Context) error {
	host := a.HostComponent()
	if host == nil {
		return fmt.Errorf("animate %s has no host component", a.ScopeID())
	}
	duration := a.Input("duration")
	if duration.IsNull() || !duration.IsKnown() || duration.Type() != cty.Number {
		return fmt.Errorf("animate %s has no duration", a.ScopeID())
	}

	name := a.ScopeID() + "Frames"
	if err := a.AddImports(fragment.NewImport(emotion).Named("keyframes")); err != nil {
		return err
	}
	if err := a.AddVariables(fragment.NewVariable(name).Init(fragment.Expr("keyframes`from { opacity: 0; } to { opacity: 1; }`"))); err != nil {
		return err
	}
	host.Element().Style("animation", fragment.Exprf("`${%s} %ss ease-in`", name, duration.AsBigFloat().Text('f', -1)))
	return nil
}

func jsString(s string) string {
	return fmt.Sprintf("%q", s)
}
