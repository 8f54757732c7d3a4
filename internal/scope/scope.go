// Package scope implements the scoped context map: every entity owns one
// record, keyed by its scope id, holding the fragments it contributed.
//
// The map is the only state shared between entities during a pass. Each record
// is written by the entity owning it and read by the flattener, so no locking
// is done here; a pass is single-threaded.
package scope

import (
	"fmt"
	"slices"

	"github.com/amoebajs/builder-sub000/internal/builderr"
	"github.com/amoebajs/builder-sub000/internal/fragment"
)

// Type mirrors the kind of the entity owning a scope.
type Type int

const (
	TypeComponent Type = iota + 1
	TypeDirective
	TypeComposition
)

func (t Type) String() string {
	switch t {
	case TypeComponent:
		return "component"
	case TypeDirective:
		return "directive"
	case TypeComposition:
		return "composition"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// Category is one of the closed set of fragment categories.
type Category int

const (
	Imports Category = iota + 1
	Variables
	Fields
	Properties
	Methods
	Extends
	Classes
	Functions
)

// Categories lists every category in flatten order.
var Categories = []Category{Imports, Variables, Fields, Properties, Methods, Extends, Classes, Functions}

var categoryNames = map[Category]string{
	Imports:    "imports",
	Variables:  "variables",
	Fields:     "fields",
	Properties: "properties",
	Methods:    "methods",
	Extends:    "extends",
	Classes:    "classes",
	Functions:  "functions",
}

func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Mode controls how contributed items combine with existing ones.
type Mode int

const (
	Push Mode = iota
	Unshift
	Reset
)

// Record is one scope.
type Record struct {
	ID        string
	Type      Type
	Parent    string
	fragments map[Category][]fragment.Builder
}

// Map is the scoped context map. The zero value is not usable, use New.
type Map struct {
	order   []string
	records map[string]*Record
}

// New returns an empty map.
func New() *Map {
	return &Map{records: make(map[string]*Record)}
}

// CreateScope registers a scope. Registering the same id twice is an
// InvalidOperation, scope ids are unique within a pass.
func (m *Map) CreateScope(id string, typ Type, parent string) error {
	if _, exists := m.records[id]; exists {
		return builderr.InvalidOperation("scope.create", "scope %q already exists", id)
	}
	m.records[id] = &Record{
		ID:        id,
		Type:      typ,
		Parent:    parent,
		fragments: make(map[Category][]fragment.Builder),
	}
	m.order = append(m.order, id)
	return nil
}

// Has reports whether id was registered.
func (m *Map) Has(id string) bool {
	_, ok := m.records[id]
	return ok
}

// Contribute adds items to a category of scope id. The extends category only
// accepts Reset and at most one item.
func (m *Map) Contribute(id string, cat Category, mode Mode, items ...fragment.Builder) error {
	if _, ok := categoryNames[cat]; !ok {
		return builderr.InvalidOperation("scope.contribute", "unknown category %s", cat)
	}
	rec, ok := m.records[id]
	if !ok {
		return builderr.InvalidOperation("scope.contribute", "scope %q was not initialized", id)
	}
	if cat == Extends && (mode != Reset || len(items) > 1) {
		return builderr.InvalidOperation("scope.contribute", "extends of %q is a single slot and only accepts reset", id)
	}
	switch mode {
	case Push:
		rec.fragments[cat] = append(rec.fragments[cat], items...)
	case Unshift:
		rec.fragments[cat] = append(slices.Clone(items), rec.fragments[cat]...)
	case Reset:
		rec.fragments[cat] = slices.Clone(items)
	default:
		return builderr.InvalidOperation("scope.contribute", "unknown mode %d", int(mode))
	}
	return nil
}

// Read returns a copy of the items of a category. Unknown scopes read empty.
func (m *Map) Read(id string, cat Category) []fragment.Builder {
	rec, ok := m.records[id]
	if !ok {
		return nil
	}
	return slices.Clone(rec.fragments[cat])
}

// Record returns the scope record for id.
func (m *Map) Record(id string) (*Record, bool) {
	rec, ok := m.records[id]
	return rec, ok
}

// IDs returns scope ids in creation order.
func (m *Map) IDs() []string {
	return slices.Clone(m.order)
}

// Len returns the number of scopes.
func (m *Map) Len() int {
	return len(m.order)
}
