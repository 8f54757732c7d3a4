// Package basic is the built-in template library: layout components, a
// form with a required validator, styling directives and two compositions.
package basic

import (
	"github.com/amoebajs/builder-sub000/internal/entity"
	"github.com/amoebajs/builder-sub000/internal/fragment"
	"github.com/amoebajs/builder-sub000/internal/registry"
)

// Name is the module name templates are registered under.
const Name = "basic"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers every template of the library.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&Page{})
	r.Register(&Button{})
	r.Register(&Text{})
	r.Register(&Box{})
	r.Register(&Grid{})
	r.Register(&Form{})
	r.Register(&Highlight{})
	r.Register(&Animate{})
	r.Register(&Validator{})
	r.Register(&Stack{})
	r.Register(&Frame{})
}

// render appends the construction elements of c's nested references to its
// root element and returns that element from render().
func render(c *entity.Component) error {
	el := c.Element()
	el.Child(c.ChildElements()...)
	return c.AddMethods(fragment.NewMethod("render").Return(fragment.Lazy(el)))
}
