package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/amoebajs/builder-sub000/internal/ctxlog"
	"github.com/amoebajs/builder-sub000/internal/entity"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Validate checks that every contract is internally consistent and that the
// templates it names exist and implement the hooks of their kind.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, t := range r.Templates() {
		c := t.Contract
		id := c.ID.String()

		inst := t.New()
		switch c.Kind {
		case entity.KindComponent:
			if _, ok := inst.(entity.ComponentHooks); !ok {
				errs = append(errs, fmt.Sprintf("template '%s': declared as component but %T does not embed entity.Component", id, inst))
			}
		case entity.KindDirective:
			if _, ok := inst.(entity.DirectiveHooks); !ok {
				errs = append(errs, fmt.Sprintf("template '%s': declared as directive but %T does not embed entity.Directive", id, inst))
			}
		case entity.KindComposition:
			if _, ok := inst.(entity.CompositionHooks); !ok {
				errs = append(errs, fmt.Sprintf("template '%s': declared as composition but %T does not embed entity.Composition and implement Compose", id, inst))
			}
		default:
			errs = append(errs, fmt.Sprintf("template '%s': unsupported kind %s", id, c.Kind))
		}

		seen := make(map[string]bool)
		for _, p := range append(append([]Property{}, c.Inputs...), c.Attaches...) {
			if seen[p.Name()] {
				errs = append(errs, fmt.Sprintf("template '%s': property '%s' declared twice", id, p.Name()))
			}
			seen[p.Name()] = true

			if p.Type == cty.NilType {
				errs = append(errs, fmt.Sprintf("template '%s', property '%s': missing type", id, p.Name()))
				continue
			}
			if p.Type.Equals(cty.DynamicPseudoType) {
				logger.Debug("Template property accepts any type.", "template", id, "property", p.Name())
			}
			if p.HasDefault() {
				if _, err := convert.Convert(p.Default, p.Type); err != nil {
					errs = append(errs, fmt.Sprintf("template '%s', property '%s': default does not match type %s: %v", id, p.Name(), p.Type.FriendlyName(), err))
				}
			}
		}

		for _, req := range c.Requirements {
			target, ok := r.templates[req.Template]
			switch {
			case !ok:
				errs = append(errs, fmt.Sprintf("template '%s': requires unknown template '%s'", id, req.Template))
			case target.Contract.Kind != entity.KindDirective:
				errs = append(errs, fmt.Sprintf("template '%s': requirement '%s' must be a directive, got %s", id, req.Template, target.Contract.Kind))
			case req.Inputs == nil:
				errs = append(errs, fmt.Sprintf("template '%s': requirement '%s' has no inputs function", id, req.Template))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	logger.Debug("Registry validation passed.", "templates", len(r.order))
	return nil
}
