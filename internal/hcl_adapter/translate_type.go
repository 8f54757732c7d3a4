// This file parses HCL type expressions (e.g. `string`, `list(number)`,
// `object({ name = string })`) into cty types for declared inputs.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/amoebajs/builder-sub000/internal/ctxlog"
)

// typeExprToCtyType converts an HCL type expression into its cty.Type
// equivalent. A nil expression means `any`.
func typeExprToCtyType(ctx context.Context, expr hcl.Expression) (cty.Type, error) {
	if expr == nil {
		return cty.DynamicPseudoType, nil
	}
	logger := ctxlog.FromContext(ctx)

	if kw := hcl.ExprAsKeyword(expr); kw != "" {
		logger.Debug("Parsing primitive type keyword.", "keyword", kw)
		switch kw {
		case "string":
			return cty.String, nil
		case "number":
			return cty.Number, nil
		case "bool":
			return cty.Bool, nil
		case "any":
			return cty.DynamicPseudoType, nil
		default:
			return cty.DynamicPseudoType, fmt.Errorf("unknown primitive type %q", kw)
		}
	}

	call, diags := hcl.ExprCall(expr)
	if diags.HasErrors() {
		return cty.DynamicPseudoType, fmt.Errorf("unsupported expression for type definition: %T", expr)
	}
	logger.Debug("Parsing type constructor.", "call", call.Name)
	if len(call.Arguments) != 1 {
		return cty.DynamicPseudoType, fmt.Errorf("the %s() type constructor requires exactly one argument, got %d", call.Name, len(call.Arguments))
	}
	arg := call.Arguments[0]

	if call.Name == "object" {
		return objectType(ctx, arg)
	}

	elem, err := typeExprToCtyType(ctx, arg)
	if err != nil {
		return cty.DynamicPseudoType, err
	}
	if elem == cty.DynamicPseudoType {
		return cty.DynamicPseudoType, fmt.Errorf("collection types cannot contain type 'any'")
	}
	switch call.Name {
	case "list":
		return cty.List(elem), nil
	case "map":
		return cty.Map(elem), nil
	case "set":
		return cty.Set(elem), nil
	default:
		return cty.DynamicPseudoType, fmt.Errorf("unknown type constructor function %q", call.Name)
	}
}

func objectType(ctx context.Context, expr hcl.Expression) (cty.Type, error) {
	obj, ok := expr.(*hclsyntax.ObjectConsExpr)
	if !ok {
		return cty.DynamicPseudoType, fmt.Errorf("the argument to object() must be an object literal like { key = type, ... }, got %T", expr)
	}

	attrs := make(map[string]cty.Type, len(obj.Items))
	for _, item := range obj.Items {
		key := hcl.ExprAsKeyword(item.KeyExpr)
		if key == "" {
			// Quoted keys evaluate to a literal string without any context.
			v, diags := item.KeyExpr.Value(nil)
			if diags.HasErrors() || !v.Type().Equals(cty.String) || v.IsNull() {
				return cty.DynamicPseudoType, fmt.Errorf("invalid key in object type definition: keys must be simple identifiers or quoted strings")
			}
			key = v.AsString()
		}
		typ, err := typeExprToCtyType(ctx, item.ValueExpr)
		if err != nil {
			return cty.DynamicPseudoType, fmt.Errorf("in object attribute '%s': %w", key, err)
		}
		attrs[key] = typ
	}
	return cty.Object(attrs), nil
}
