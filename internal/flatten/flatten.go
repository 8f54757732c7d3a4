// Package flatten merges the scoped context map of a finished pass into the
// shape of the output document.
//
// Component and composition scopes other than the root become standalone
// declarations named by their scope id. The root scope and every directive
// scope are merged into the single root declaration. Imports of all scopes
// are merged into one ImportSet.
package flatten

import (
	"context"
	"fmt"

	"github.com/amoebajs/builder-sub000/internal/builderr"
	"github.com/amoebajs/builder-sub000/internal/ctxlog"
	"github.com/amoebajs/builder-sub000/internal/fragment"
	"github.com/amoebajs/builder-sub000/internal/scope"
)

// Declaration holds the merged fragments of one output declaration.
type Declaration struct {
	Name       string
	Type       scope.Type
	Variables  []fragment.Builder
	Fields     []fragment.Builder
	Properties []fragment.Builder
	Methods    []fragment.Builder
	Classes    []fragment.Builder
	Functions  []fragment.Builder
	Extends    fragment.Builder // nil when no heritage was contributed
	Scopes     []string         // scope ids merged into this declaration
}

// Result is the flattened pass.
type Result struct {
	Imports      *ImportSet
	Declarations []*Declaration // standalone declarations, in scope creation order
	Root         *Declaration
}

// Flatten merges scopes. rootID must name a registered scope.
func Flatten(ctx context.Context, scopes *scope.Map, rootID string) (*Result, error) {
	logger := ctxlog.FromContext(ctx)

	rootRec, ok := scopes.Record(rootID)
	if !ok {
		return nil, builderr.NotFound("flatten", "root scope %q was never initialized", rootID)
	}

	res := &Result{
		Imports: NewImportSet(),
		Root:    &Declaration{Name: rootID, Type: rootRec.Type},
	}

	for _, id := range scopes.IDs() {
		rec, _ := scopes.Record(id)

		for _, b := range scopes.Read(id, scope.Imports) {
			ib, ok := b.(*fragment.ImportBuilder)
			if !ok {
				return nil, builderr.InvalidOperation("flatten.imports", "scope %q contributed a %s as an import", id, b.Kind())
			}
			if err := res.Imports.Merge(ib); err != nil {
				return nil, fmt.Errorf("merging imports of scope %q: %w", id, err)
			}
		}

		var target *Declaration
		switch {
		case id == rootID, rec.Type == scope.TypeDirective:
			target = res.Root
		case rec.Type == scope.TypeComponent, rec.Type == scope.TypeComposition:
			target = &Declaration{Name: id, Type: rec.Type}
			res.Declarations = append(res.Declarations, target)
		default:
			return nil, builderr.InvalidOperation("flatten", "scope %q has unknown type %s", id, rec.Type)
		}

		mergeInto(target, scopes, id)
		logger.Debug("Flattened scope.", "scope", id, "type", rec.Type.String(), "into", target.Name)
	}

	logger.Debug("Flatten finished.", "declarations", len(res.Declarations), "imports", res.Imports.Len())
	return res, nil
}

func mergeInto(d *Declaration, scopes *scope.Map, id string) {
	d.Scopes = append(d.Scopes, id)
	d.Variables = append(d.Variables, scopes.Read(id, scope.Variables)...)
	d.Fields = append(d.Fields, scopes.Read(id, scope.Fields)...)
	d.Properties = append(d.Properties, scopes.Read(id, scope.Properties)...)
	d.Methods = append(d.Methods, scopes.Read(id, scope.Methods)...)
	d.Classes = append(d.Classes, scopes.Read(id, scope.Classes)...)
	d.Functions = append(d.Functions, scopes.Read(id, scope.Functions)...)
	if ext := scopes.Read(id, scope.Extends); len(ext) > 0 {
		d.Extends = ext[len(ext)-1]
	}
}
