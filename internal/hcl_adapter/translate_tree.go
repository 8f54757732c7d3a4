// This file translates entity blocks into declarative tree nodes.

package hcl_adapter

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/amoebajs/builder-sub000/internal/tree"
)

// decodeRoot decodes the single entity block a page or template body must
// contain.
func decodeRoot(body hcl.Body, ectx *hcl.EvalContext, owner string) (*tree.Node, hcl.Diagnostics) {
	content, diags := body.Content(rootSchema)
	if diags.HasErrors() {
		return nil, diags
	}
	if len(content.Blocks) != 1 {
		return nil, diags.Append(&hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid root entity",
			Detail:   fmt.Sprintf("%s must contain exactly one component, directive or element block, found %d.", owner, len(content.Blocks)),
			Subject:  body.MissingItemRange().Ptr(),
		})
	}
	node, entityDiags := decodeEntity(content.Blocks[0], ectx)
	return node, append(diags, entityDiags...)
}

// decodeEntity translates one entity block and everything nested in it.
// Nested blocks keep their source order.
func decodeEntity(block *hcl.Block, ectx *hcl.EvalContext) (*tree.Node, hcl.Diagnostics) {
	node := tree.Entity(block.Labels[0], block.Labels[1])

	content, diags := block.Body.Content(entitySchema)
	if diags.HasErrors() {
		return nil, diags
	}

	if attr, ok := content.Attributes["id"]; ok {
		id, d := evalString(attr, ectx)
		diags = append(diags, d...)
		node.ID = id
	}
	if attr, ok := content.Attributes["key"]; ok {
		key, d := evalString(attr, ectx)
		diags = append(diags, d...)
		node.Key = key
	}

	for _, child := range content.Blocks {
		switch child.Type {
		case "component", "directive", "element":
			n, d := decodeEntity(child, ectx)
			diags = append(diags, d...)
			if n != nil {
				node.Children = append(node.Children, n)
			}

		case "props":
			attrs, d := child.Body.JustAttributes()
			diags = append(diags, d...)
			for name, attr := range attrs {
				v, d := attr.Expr.Value(ectx)
				diags = append(diags, d...)
				if !d.HasErrors() {
					node.WithProp(name, v)
				}
			}

		case "input", "attach":
			c, d := child.Body.Content(markerValueSchema)
			diags = append(diags, d...)
			if d.HasErrors() {
				continue
			}
			v, d := c.Attributes["value"].Expr.Value(ectx)
			diags = append(diags, d...)
			if d.HasErrors() {
				continue
			}
			if child.Type == "input" {
				node.Children = append(node.Children, tree.Input(child.Labels[0], v))
			} else {
				node.Children = append(node.Children, tree.Attach(child.Labels[0], v))
			}

		case "children":
			c, d := child.Body.Content(childrenSchema)
			diags = append(diags, d...)
			card := tree.One
			if attr, ok := c.Attributes["many"]; ok {
				many, d := evalBool(attr, ectx)
				diags = append(diags, d...)
				if many {
					card = tree.Many
				}
			}
			node.Children = append(node.Children, tree.Slot(card))
		}
	}

	if diags.HasErrors() {
		return nil, diags
	}
	return node, diags
}

func evalString(attr *hcl.Attribute, ectx *hcl.EvalContext) (string, hcl.Diagnostics) {
	v, diags := attr.Expr.Value(ectx)
	if diags.HasErrors() {
		return "", diags
	}
	s, err := convert.Convert(v, cty.String)
	if err != nil || s.IsNull() || !s.IsKnown() {
		return "", diags.Append(typeDiag(attr, "a string"))
	}
	return s.AsString(), diags
}

func evalBool(attr *hcl.Attribute, ectx *hcl.EvalContext) (bool, hcl.Diagnostics) {
	v, diags := attr.Expr.Value(ectx)
	if diags.HasErrors() {
		return false, diags
	}
	b, err := convert.Convert(v, cty.Bool)
	if err != nil || b.IsNull() || !b.IsKnown() {
		return false, diags.Append(typeDiag(attr, "a bool"))
	}
	return b.True(), diags
}

func typeDiag(attr *hcl.Attribute, want string) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "Incorrect attribute value type",
		Detail:   fmt.Sprintf("Attribute %q must be %s.", attr.Name, want),
		Subject:  attr.Expr.Range().Ptr(),
	}
}
