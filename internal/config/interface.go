package config

import (
	"context"

	"github.com/amoebajs/builder-sub000/internal/tree"
	"github.com/zclconf/go-cty/cty"
)

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads every file under paths and translates it into the
	// format-agnostic model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}

// TemplateSource expands a declared composition's template once its inputs
// are known. Implementations evaluate format-specific expressions lazily.
type TemplateSource interface {
	Expand(ctx context.Context, inputs map[string]cty.Value) (*tree.Node, error)
}
