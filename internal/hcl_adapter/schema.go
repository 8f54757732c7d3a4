package hcl_adapter

import (
	"context"

	"github.com/hashicorp/hcl/v2"

	"github.com/amoebajs/builder-sub000/internal/ctxlog"
)

// fileRoot decodes the top-level blocks of any file.
type fileRoot struct {
	Pages        []*pageBlock        `hcl:"page,block"`
	Compositions []*compositionBlock `hcl:"composition,block"`
}

type pageBlock struct {
	Name       string   `hcl:"name,label"`
	Provider   string   `hcl:"provider,optional"`
	Unexported bool     `hcl:"unexported,optional"`
	Body       hcl.Body `hcl:",remain"`
}

type compositionBlock struct {
	Module      string         `hcl:"module,label"`
	Name        string         `hcl:"name,label"`
	Description string         `hcl:"description,optional"`
	Inputs      []*inputBlock  `hcl:"input,block"`
	Template    *templateBlock `hcl:"template,block"`
}

type inputBlock struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type,optional"`
	Default     hcl.Expression `hcl:"default,optional"`
	Description string         `hcl:"description,optional"`
}

type templateBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// Entity blocks may be spelled component, directive or element. The registry
// decides the actual kind.
var entitySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "id"},
		{Name: "key"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "component", LabelNames: []string{"module", "name"}},
		{Type: "directive", LabelNames: []string{"module", "name"}},
		{Type: "element", LabelNames: []string{"module", "name"}},
		{Type: "props"},
		{Type: "input", LabelNames: []string{"name"}},
		{Type: "attach", LabelNames: []string{"name"}},
		{Type: "children"},
	},
}

var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "component", LabelNames: []string{"module", "name"}},
		{Type: "directive", LabelNames: []string{"module", "name"}},
		{Type: "element", LabelNames: []string{"module", "name"}},
	},
}

var markerValueSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{{Name: "value", Required: true}},
}

var childrenSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{{Name: "many"}},
}

// isExprDefined reports whether an optional attribute decoded by gohcl was
// actually written in the source. Omitted attributes decode to a zero-width
// placeholder expression rather than nil.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	rng := expr.Range()
	defined := rng.End.Byte > rng.Start.Byte
	ctxlog.FromContext(ctx).Debug("Checked optional attribute.", "attribute", attrName, "range", rng.String(), "defined", defined)
	return defined
}
