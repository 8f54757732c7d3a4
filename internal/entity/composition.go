package entity

import (
	"context"

	"github.com/amoebajs/builder-sub000/internal/tree"
)

// Composer is implemented by composition templates. Compose returns the tree
// the composition expands to; children-slot markers in it bind the
// composition's contextual children.
type Composer interface {
	Compose(ctx context.Context) (*tree.Node, error)
}

// Composition groups other entities as a reusable bundle.
type Composition struct {
	Component
	contextual []*ChildRef
}

func (c *Composition) CompositionCore() *Composition { return c }

// Contextual returns the children inherited from the composition's reference.
func (c *Composition) Contextual() []*ChildRef { return c.contextual }

// SetContextual binds the inherited children.
func (c *Composition) SetContextual(refs []*ChildRef) { c.contextual = refs }

// CompositionHooks is implemented by every composition template.
type CompositionHooks interface {
	ComponentHooks
	Composer
	CompositionCore() *Composition
}
