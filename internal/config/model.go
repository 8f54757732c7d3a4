package config

import (
	"github.com/amoebajs/builder-sub000/internal/tree"
	"github.com/zclconf/go-cty/cty"
)

// Model is the unified representation of everything loaded for a build.
type Model struct {
	Pages        []*Page
	Compositions []*CompositionDefinition
}

// Merge appends other into m.
func (m *Model) Merge(other *Model) {
	if other == nil {
		return
	}
	m.Pages = append(m.Pages, other.Pages...)
	m.Compositions = append(m.Compositions, other.Compositions...)
}

// Page is one compilation unit: a declarative tree and the name of the
// output declaration it compiles to.
type Page struct {
	Name       string
	Provider   string // empty selects the configured default
	Unexported bool
	Root       *tree.Node
	FilePath   string
}

// CompositionDefinition is a composition declared in configuration rather
// than in Go.
type CompositionDefinition struct {
	Module      string
	Name        string
	Description string
	Inputs      []*InputDefinition
	Template    TemplateSource
	FilePath    string
}

// InputDefinition declares one typed input of a declared composition.
type InputDefinition struct {
	Name        string
	Type        cty.Type
	Default     cty.Value
	Description string
}
