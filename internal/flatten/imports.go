package flatten

import (
	"slices"

	"github.com/amoebajs/builder-sub000/internal/builderr"
	"github.com/amoebajs/builder-sub000/internal/fragment"
)

// ImportRecord is the merged import of one module path.
type ImportRecord struct {
	Module    string
	Default   string
	Named     []fragment.Binding
	Namespace string
}

// Builder returns an import builder reproducing the record.
func (r *ImportRecord) Builder() *fragment.ImportBuilder {
	b := fragment.NewImport(r.Module).Default(r.Default).Namespace(r.Namespace)
	for _, n := range r.Named {
		if n.Alias != "" && n.Alias != n.Name {
			b.Named(n.Name, n.Alias)
		} else {
			b.Named(n.Name)
		}
	}
	return b
}

// ImportSet merges import requests by module path, in first-seen order.
type ImportSet struct {
	order   []string
	records map[string]*ImportRecord
}

// NewImportSet returns an empty set.
func NewImportSet() *ImportSet {
	return &ImportSet{records: make(map[string]*ImportRecord)}
}

// Merge folds an import builder into the set. Named bindings already present
// are skipped. A second distinct default or namespace binding for a recorded
// module, or one local alias bound to two different names, is an
// InvalidOperation.
func (s *ImportSet) Merge(b *fragment.ImportBuilder) error {
	return s.merge(b.Module(), b.DefaultBinding(), b.NamespaceBinding(), b.NamedBindings())
}

// MergeRecord folds an already merged record into the set.
func (s *ImportSet) MergeRecord(r *ImportRecord) error {
	return s.merge(r.Module, r.Default, r.Namespace, r.Named)
}

func (s *ImportSet) merge(module, def, ns string, named []fragment.Binding) error {
	if module == "" {
		return builderr.InvalidOperation("flatten.imports", "import without module path")
	}
	cur, ok := s.records[module]
	if !ok {
		cur = &ImportRecord{Module: module}
	}
	rec := &ImportRecord{Module: module, Default: cur.Default, Named: slices.Clone(cur.Named), Namespace: cur.Namespace}

	if def != "" {
		if rec.Default != "" && rec.Default != def {
			return builderr.InvalidOperation("flatten.imports", "module %q already has default binding %q, cannot rebind to %q", module, rec.Default, def)
		}
		rec.Default = def
	}
	if ns != "" {
		if rec.Namespace != "" && rec.Namespace != ns {
			return builderr.InvalidOperation("flatten.imports", "module %q already has namespace binding %q, cannot rebind to %q", module, rec.Namespace, ns)
		}
		rec.Namespace = ns
	}
	for _, n := range named {
		local := n.Local()
		idx := slices.IndexFunc(rec.Named, func(e fragment.Binding) bool { return e.Local() == local })
		if idx < 0 {
			rec.Named = append(rec.Named, n)
			continue
		}
		if rec.Named[idx].Name != n.Name {
			return builderr.InvalidOperation("flatten.imports", "module %q binds %q to both %q and %q", module, local, rec.Named[idx].Name, n.Name)
		}
	}

	if !ok {
		s.order = append(s.order, module)
	}
	s.records[module] = rec
	return nil
}

// Records returns the merged records in first-seen order.
func (s *ImportSet) Records() []*ImportRecord {
	out := make([]*ImportRecord, 0, len(s.order))
	for _, m := range s.order {
		out = append(out, s.records[m])
	}
	return out
}

// Get returns the record for a module path.
func (s *ImportSet) Get(module string) (*ImportRecord, bool) {
	r, ok := s.records[module]
	return r, ok
}

// Len returns the number of distinct module paths.
func (s *ImportSet) Len() int {
	return len(s.order)
}
