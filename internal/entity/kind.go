package entity

import (
	"fmt"
	"regexp"

	"github.com/amoebajs/builder-sub000/internal/builderr"
	"github.com/amoebajs/builder-sub000/internal/scope"
)

// Kind is the closed set of entity kinds.
type Kind int

const (
	KindComponent Kind = iota + 1
	KindDirective
	KindComposition
	KindChildRef
)

func (k Kind) String() string {
	switch k {
	case KindComponent:
		return "component"
	case KindDirective:
		return "directive"
	case KindComposition:
		return "composition"
	case KindChildRef:
		return "child-reference"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ScopeType maps a kind to the type of the scope it owns.
func (k Kind) ScopeType() (scope.Type, error) {
	switch k {
	case KindComponent:
		return scope.TypeComponent, nil
	case KindDirective:
		return scope.TypeDirective, nil
	case KindComposition:
		return scope.TypeComposition, nil
	default:
		return 0, builderr.InvalidOperation("entity.scope_type", "%s does not own a scope", k)
	}
}

// TemplateID identifies a registered template.
type TemplateID struct {
	Module string
	Name   string
}

func (t TemplateID) String() string {
	return t.Module + "/" + t.Name
}

var scopeIDPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{2,255}$`)

// ValidateScopeID checks id against the identifier-safe pattern.
func ValidateScopeID(id string) error {
	if !scopeIDPattern.MatchString(id) {
		return builderr.InvalidOperation("entity.scope_id", "invalid scope id %q: must match %s", id, scopeIDPattern)
	}
	return nil
}
