package registry

import (
	"context"
	"fmt"

	"github.com/amoebajs/builder-sub000/internal/builderr"
	"github.com/amoebajs/builder-sub000/internal/config"
	"github.com/amoebajs/builder-sub000/internal/entity"
	"github.com/amoebajs/builder-sub000/internal/fragment"
	"github.com/amoebajs/builder-sub000/internal/tree"
	"github.com/zclconf/go-cty/cty"
)

// DeclaredComposition is the runtime entity of a composition declared in
// configuration. Its template is expanded from the configured source with
// the composition's bound inputs.
type DeclaredComposition struct {
	entity.Composition
	source config.TemplateSource
}

// Compose expands the configured template.
func (d *DeclaredComposition) Compose(ctx context.Context) (*tree.Node, error) {
	if d.source == nil {
		return nil, builderr.InvalidOperation("registry.compose", "composition %s has no template", d.Template())
	}
	node, err := d.source.Expand(ctx, d.Inputs())
	if err != nil {
		return nil, fmt.Errorf("expanding composition %s: %w", d.Template(), err)
	}
	return node, nil
}

// OnRender renders the expanded tree inside the composition's root element.
func (d *DeclaredComposition) OnRender(context.Context) error {
	el := d.Element()
	el.Child(d.ChildElements()...)
	return d.AddMethods(fragment.NewMethod("render").Return(fragment.Lazy(el)))
}

// PopulateFromModel registers every composition declared in the model.
func (r *Registry) PopulateFromModel(model *config.Model) {
	if model == nil {
		return
	}
	for _, def := range model.Compositions {
		c := Composition(def.Module, def.Name).Describe(def.Description)
		for _, in := range def.Inputs {
			typ := in.Type
			if typ == cty.NilType {
				typ = cty.DynamicPseudoType
			}
			opts := []PropertyOption{WithDescription(in.Description)}
			if in.Default != cty.NilVal && !in.Default.IsNull() {
				opts = append(opts, WithDefault(in.Default))
			}
			c.Input(in.Name, typ, opts...)
		}
		src := def.Template
		r.RegisterTemplate(c, func() entity.Entity {
			return &DeclaredComposition{source: src}
		})
	}
}
