package basic

import (
	"context"

	"github.com/amoebajs/builder-sub000/internal/entity"
	"github.com/amoebajs/builder-sub000/internal/registry"
	"github.com/amoebajs/builder-sub000/internal/tree"
	"github.com/zclconf/go-cty/cty"
)

// Stack stacks every child in a box.
type Stack struct{ entity.Composition }

func (*Stack) Describe() *registry.Contract {
	return registry.Composition(Name, "stack").
		Describe("Box holding all of its children").
		Input("direction", cty.String, registry.WithDefault(cty.StringVal("column")))
}

func (s *Stack) Compose(context.Context) (*tree.Node, error) {
	return tree.Entity(Name, "box",
		tree.Input("direction", s.Input("direction")),
		tree.Slot(tree.Many),
	).WithKey("box"), nil
}

func (s *Stack) OnRender(context.Context) error {
	return render(s.ComponentCore())
}

// Frame shows only its first child.
type Frame struct{ entity.Composition }

func (*Frame) Describe() *registry.Contract {
	return registry.Composition(Name, "frame").
		Describe("Box holding the first child only")
}

func (f *Frame) Compose(context.Context) (*tree.Node, error) {
	return tree.Entity(Name, "box",
		tree.Input("direction", cty.StringVal("row")),
		tree.Slot(tree.One),
	).WithKey("frame"), nil
}

func (f *Frame) OnRender(context.Context) error {
	return render(f.ComponentCore())
}
