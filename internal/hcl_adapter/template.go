package hcl_adapter

import (
	"context"
	"fmt"
	"maps"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/amoebajs/builder-sub000/internal/ctxlog"
	"github.com/amoebajs/builder-sub000/internal/tree"
)

// templateSource is the lazily evaluated template of a declared composition.
// Expressions see the composition's resolved inputs as `input.<name>`.
type templateSource struct {
	owner string
	body  hcl.Body
}

func (s *templateSource) Expand(ctx context.Context, inputs map[string]cty.Value) (*tree.Node, error) {
	ctxlog.FromContext(ctx).Debug("Expanding declared composition template.", "composition", s.owner, "inputs", len(inputs))

	input := cty.EmptyObjectVal
	if len(inputs) > 0 {
		input = cty.ObjectVal(maps.Clone(inputs))
	}
	node, diags := decodeRoot(s.body, evalContext(map[string]cty.Value{"input": input}), "template of "+s.owner)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to expand template of %s: %w", s.owner, diags)
	}
	return node, nil
}
