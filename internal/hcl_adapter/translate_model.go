// This file translates decoded HCL blocks into the format-agnostic
// configuration model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/amoebajs/builder-sub000/internal/config"
	"github.com/amoebajs/builder-sub000/internal/ctxlog"
)

// translatePage evaluates a page block into a page with its tree.
func (l *Loader) translatePage(ctx context.Context, p *pageBlock, file string) (*config.Page, error) {
	ctxlog.FromContext(ctx).Debug("Translating page.", "page", p.Name, "file", file)

	root, diags := decodeRoot(p.Body, evalContext(nil), fmt.Sprintf("page %q", p.Name))
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode page %s in %s: %w", p.Name, file, diags)
	}
	return &config.Page{
		Name:       p.Name,
		Provider:   p.Provider,
		Unexported: p.Unexported,
		Root:       root,
		FilePath:   file,
	}, nil
}

// translateComposition converts a composition block. The template itself is
// kept unevaluated until the composition is composed.
func (l *Loader) translateComposition(ctx context.Context, c *compositionBlock, file string) (*config.CompositionDefinition, error) {
	owner := c.Module + "/" + c.Name
	if c.Template == nil {
		return nil, fmt.Errorf("composition %s in %s has no template block", owner, file)
	}

	def := &config.CompositionDefinition{
		Module:      c.Module,
		Name:        c.Name,
		Description: c.Description,
		Template:    &templateSource{owner: owner, body: c.Template.Body},
		FilePath:    file,
	}
	seen := make(map[string]struct{}, len(c.Inputs))
	for _, in := range c.Inputs {
		if _, dup := seen[in.Name]; dup {
			return nil, fmt.Errorf("composition %s declares input %q more than once", owner, in.Name)
		}
		seen[in.Name] = struct{}{}

		translated, err := translateInputDefinition(ctx, in, owner)
		if err != nil {
			return nil, err
		}
		def.Inputs = append(def.Inputs, translated)
	}
	return def, nil
}

// translateInputDefinition parses the type and default of one input block.
// The default is converted to the declared type.
func translateInputDefinition(ctx context.Context, in *inputBlock, owner string) (*config.InputDefinition, error) {
	typ := cty.DynamicPseudoType
	if isExprDefined(ctx, in.Type, "type") {
		parsed, err := typeExprToCtyType(ctx, in.Type)
		if err != nil {
			return nil, fmt.Errorf("in composition '%s', input '%s': %w", owner, in.Name, err)
		}
		typ = parsed
	}

	def := &config.InputDefinition{
		Name:        in.Name,
		Type:        typ,
		Default:     cty.NilVal,
		Description: in.Description,
	}
	if !isExprDefined(ctx, in.Default, "default") {
		return def, nil
	}

	v, diags := in.Default.Value(evalContext(nil))
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid default value for input '%s' in composition '%s': %w", in.Name, owner, diags)
	}
	converted, err := convert.Convert(v, typ)
	if err != nil {
		return nil, fmt.Errorf("default value for input '%s' in composition '%s' is not a %s: %w", in.Name, owner, typ.FriendlyName(), err)
	}
	def.Default = converted
	return def, nil
}
