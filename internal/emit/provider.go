// Package emit turns a flattened pass into an output document and prints it.
//
// A Provider decides how declarations map onto the target framework. Two are
// built in: "react" (class components) and "plain" (bare classes).
package emit

import (
	"context"
	"fmt"

	"github.com/amoebajs/builder-sub000/internal/builderr"
	"github.com/amoebajs/builder-sub000/internal/flatten"
	"github.com/amoebajs/builder-sub000/internal/fragment"
)

// Document is the ordered output of a pass: merged imports, nested standalone
// declarations, then the root declaration.
type Document struct {
	Name       string
	Provider   string
	Statements []fragment.Node
}

// Provider builds a document from a flattened pass.
type Provider interface {
	Name() string
	Document(ctx context.Context, res *flatten.Result, outputName string, unexported bool) (*Document, error)
}

// classOptions tune how a declaration turns into a class.
type classOptions struct {
	defaultExtends func() *fragment.HeritageBuilder
	defaultRender  func() *fragment.MethodBuilder
	imports        []*fragment.ImportBuilder
}

// build assembles a document the same way for every provider.
func build(providerName string, res *flatten.Result, outputName string, unexported bool, opts classOptions) (*Document, error) {
	if err := validName(outputName); err != nil {
		return nil, err
	}

	imports := flatten.NewImportSet()
	for _, ib := range opts.imports {
		if err := imports.Merge(ib); err != nil {
			return nil, err
		}
	}
	for _, rec := range res.Imports.Records() {
		if err := imports.MergeRecord(rec); err != nil {
			return nil, err
		}
	}

	doc := &Document{Name: outputName, Provider: providerName}
	for _, rec := range imports.Records() {
		n, err := rec.Builder().Emit()
		if err != nil {
			return nil, err
		}
		doc.Statements = append(doc.Statements, n)
	}

	for _, d := range res.Declarations {
		nodes, err := declaration(d, d.Name, false, opts)
		if err != nil {
			return nil, fmt.Errorf("declaration %s: %w", d.Name, err)
		}
		doc.Statements = append(doc.Statements, nodes...)
	}

	nodes, err := declaration(res.Root, outputName, !unexported, opts)
	if err != nil {
		return nil, fmt.Errorf("root declaration %s: %w", outputName, err)
	}
	doc.Statements = append(doc.Statements, nodes...)
	return doc, nil
}

// declaration emits the module-level statements of d followed by its class.
func declaration(d *flatten.Declaration, name string, exported bool, opts classOptions) ([]fragment.Node, error) {
	var out []fragment.Node
	for _, group := range [][]fragment.Builder{d.Variables, d.Functions, d.Classes} {
		for _, b := range group {
			n, err := b.Emit()
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
	}

	cls := fragment.NewClass(name)
	if exported {
		cls.Export()
	}
	switch {
	case d.Extends != nil:
		h, ok := d.Extends.(*fragment.HeritageBuilder)
		if !ok {
			return nil, builderr.InvalidOperation("emit.extends", "extends of %s is a %s", name, d.Extends.Kind())
		}
		cls.Extends(h)
	case opts.defaultExtends != nil:
		cls.Extends(opts.defaultExtends())
	}

	cls.Member(d.Fields...)
	cls.Member(d.Properties...)
	cls.Member(d.Methods...)
	if opts.defaultRender != nil && !hasMethod(d.Methods, "render") {
		cls.Member(opts.defaultRender())
	}

	n, err := cls.Emit()
	if err != nil {
		return nil, err
	}
	return append(out, n), nil
}

func hasMethod(methods []fragment.Builder, name string) bool {
	for _, m := range methods {
		if mb, ok := m.(*fragment.MethodBuilder); ok && mb.Name() == name {
			return true
		}
	}
	return false
}

func validName(name string) error {
	if name == "" {
		return builderr.InvalidOperation("emit", "output name is required")
	}
	for i, r := range name {
		letter := r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !letter && (i == 0 || r < '0' || r > '9') {
			return builderr.InvalidOperation("emit", "output name %q is not an identifier", name)
		}
	}
	return nil
}
