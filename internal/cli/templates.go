package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/amoebajs/builder-sub000/internal/entity"
	"github.com/amoebajs/builder-sub000/internal/registry"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// PrintTemplates writes the providers and templates of reg to w, grouped by
// kind in registration order.
func PrintTemplates(w io.Writer, reg *registry.Registry) error {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Providers") + "\n")
	for _, name := range reg.Providers() {
		b.WriteString("  " + NameStyle.Render(name) + "\n")
	}

	for _, kind := range []entity.Kind{entity.KindComponent, entity.KindDirective, entity.KindComposition} {
		var group []*registry.Template
		for _, t := range reg.Templates() {
			if t.Contract.Kind == kind {
				group = append(group, t)
			}
		}
		if len(group) == 0 {
			continue
		}

		b.WriteString("\n" + TitleStyle.Render(kindTitle(kind)) + "\n")
		for _, t := range group {
			c := t.Contract
			line := "  " + NameStyle.Render(c.ID.String())
			if c.Description != "" {
				line += "  " + SubtitleStyle.Render(c.Description)
			}
			b.WriteString(line + "\n")
			for _, p := range c.Inputs {
				b.WriteString(indentStyle.Render(propertyLine("input", p)) + "\n")
			}
			for _, p := range c.Attaches {
				b.WriteString(indentStyle.Render(propertyLine("attach", p)) + "\n")
			}
			for _, req := range c.Requirements {
				b.WriteString(indentStyle.Render("requires "+req.Template.String()) + "\n")
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func kindTitle(k entity.Kind) string {
	switch k {
	case entity.KindComponent:
		return "Components"
	case entity.KindDirective:
		return "Directives"
	default:
		return "Compositions"
	}
}

func propertyLine(role string, p registry.Property) string {
	line := fmt.Sprintf("%s %s: %s", role, p.Name(), p.Type.FriendlyName())
	if p.HasDefault() {
		line += " = " + defaultString(p)
	}
	if p.Description != "" {
		line += " " + SubtitleStyle.Render("("+p.Description+")")
	}
	return line
}

func defaultString(p registry.Property) string {
	if !p.Default.IsWhollyKnown() {
		return "(unknown)"
	}
	out, err := ctyjson.Marshal(p.Default, p.Default.Type())
	if err != nil {
		return p.Default.Type().FriendlyName()
	}
	return string(out)
}
