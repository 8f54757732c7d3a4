// Package reconcile turns a declarative tree into child references.
//
// Entity nodes become references named after the tree that owns them.
// Input and Attach markers bind values into enclosing references instead of
// producing children. Children-slot markers expand to the contextual children
// inherited from an enclosing composition. Templates that declare required
// directives get one deferred factory per requirement, invoked by the
// orchestrator once the host has rendered.
package reconcile

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/amoebajs/builder-sub000/internal/builderr"
	"github.com/amoebajs/builder-sub000/internal/ctxlog"
	"github.com/amoebajs/builder-sub000/internal/entity"
	"github.com/amoebajs/builder-sub000/internal/registry"
	"github.com/amoebajs/builder-sub000/internal/tree"
	"github.com/google/uuid"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

const rootName = "Root"

// Reconciler resolves trees for one compilation pass. Scope ids it hands out
// are unique within the pass.
type Reconciler struct {
	reg     *registry.Registry
	used    map[string]bool
	pinned  map[string]bool
	claimed map[string]bool
	refIDs  map[string]map[entity.TemplateID]string
	seq     int
}

// New returns a reconciler bound to reg.
func New(reg *registry.Registry) *Reconciler {
	return &Reconciler{
		reg:     reg,
		used:    make(map[string]bool),
		pinned:  make(map[string]bool),
		claimed: make(map[string]bool),
		refIDs:  make(map[string]map[entity.TemplateID]string),
	}
}

// ResolveRoot resolves the root of a page tree.
func (r *Reconciler) ResolveRoot(ctx context.Context, node *tree.Node) (*entity.ChildRef, error) {
	if node == nil {
		return nil, builderr.InvalidOperation("reconcile.root", "root node is required")
	}
	if err := node.Validate(); err != nil {
		return nil, builderr.InvalidOperation("reconcile.root", "%v", err)
	}
	if node.IsMarker() {
		return nil, builderr.InvalidOperation("reconcile.root", "root must be an entity node, got %s", node.Type)
	}
	refs, err := r.resolve(ctx, node, nil, "", nil)
	if err != nil {
		return nil, err
	}
	return refs[0], nil
}

// Expand resolves the tree a composition expands to. Nodes are named after
// owner, and children-slot markers bind contextual.
func (r *Reconciler) Expand(ctx context.Context, node *tree.Node, owner *entity.ChildRef, contextual []*entity.ChildRef) ([]*entity.ChildRef, error) {
	if node == nil {
		return nil, nil
	}
	if err := node.Validate(); err != nil {
		return nil, builderr.InvalidOperation("reconcile.expand", "template of %s: %v", owner.ScopeID(), err)
	}
	return r.resolve(ctx, node, owner, owner.ScopeID(), contextual)
}

func (r *Reconciler) resolve(ctx context.Context, node *tree.Node, parent *entity.ChildRef, composite string, contextual []*entity.ChildRef) ([]*entity.ChildRef, error) {
	switch node.Type.Kind {
	case tree.TokenChildrenSlot:
		return r.resolveSlot(ctx, node, parent, composite, contextual)
	case tree.TokenInput:
		return nil, r.captureInput(ctx, node, parent)
	case tree.TokenAttach:
		return nil, r.captureAttach(ctx, node, parent)
	case tree.TokenEntity:
		ref, err := r.resolveEntity(ctx, node, parent, composite, contextual)
		if err != nil {
			return nil, err
		}
		return []*entity.ChildRef{ref}, nil
	default:
		return nil, builderr.InvalidOperation("reconcile.resolve", "unknown node %s", node.Type)
	}
}

func (r *Reconciler) resolveSlot(ctx context.Context, node *tree.Node, parent *entity.ChildRef, composite string, contextual []*entity.ChildRef) ([]*entity.ChildRef, error) {
	logger := ctxlog.FromContext(ctx)
	if len(contextual) == 0 {
		if composite == "" || parent == nil {
			logger.Warn("Children slot outside of a composite context, ignoring.")
		} else {
			logger.Debug("Children slot is empty.", "composite", composite)
		}
		return nil, nil
	}

	picked := contextual
	if node.Slot == tree.One {
		picked = contextual[:1]
	}
	out := make([]*entity.ChildRef, 0, len(picked))
	for _, c := range picked {
		clone, err := c.Clone(parent, r.claim)
		if err != nil {
			return nil, err
		}
		out = append(out, clone)
	}
	logger.Debug("Bound children slot.", "composite", composite, "count", len(out), "available", len(contextual))
	return out, nil
}

func (r *Reconciler) captureInput(ctx context.Context, node *tree.Node, parent *entity.ChildRef) error {
	if parent == nil {
		ctxlog.FromContext(ctx).Warn("Input marker without an enclosing entity, ignoring.", "key", node.Key)
		return nil
	}
	tmpl, err := r.reg.Resolve(parent.Template.Module, parent.Template.Name)
	if err != nil {
		return err
	}
	prop, ok := tmpl.Contract.FindInput(node.Key)
	if !ok {
		return builderr.InvalidOperation("reconcile.input", "%s (%s) declares no input %q", parent.ScopeID(), parent.Template, node.Key)
	}
	v, err := convertValue(node.Value, prop)
	if err != nil {
		return builderr.InvalidOperation("reconcile.input", "input %q of %s: %v", node.Key, parent.ScopeID(), err)
	}
	parent.Options.SetInput(prop.Name(), v)
	return nil
}

// captureAttach records the value into the nearest ancestor of parent that
// declares the attach slot, keyed by parent as origin.
func (r *Reconciler) captureAttach(ctx context.Context, node *tree.Node, parent *entity.ChildRef) error {
	if parent == nil {
		ctxlog.FromContext(ctx).Warn("Attach marker without an enclosing entity, ignoring.", "key", node.Key)
		return nil
	}
	for target := parent.Parent; target != nil; target = target.Parent {
		tmpl, err := r.reg.Resolve(target.Template.Module, target.Template.Name)
		if err != nil {
			return err
		}
		prop, ok := tmpl.Contract.FindAttach(node.Key)
		if !ok {
			continue
		}
		v, err := convertValue(node.Value, prop)
		if err != nil {
			return builderr.InvalidOperation("reconcile.attach", "attach %q from %s: %v", node.Key, parent.ScopeID(), err)
		}
		target.Options.AddAttach(prop.Name(), parent.ScopeID(), v)
		return nil
	}
	return builderr.InvalidOperation("reconcile.attach", "no ancestor of %s declares attach %q", parent.ScopeID(), node.Key)
}

func (r *Reconciler) resolveEntity(ctx context.Context, node *tree.Node, parent *entity.ChildRef, composite string, contextual []*entity.ChildRef) (*entity.ChildRef, error) {
	logger := ctxlog.FromContext(ctx)

	tmpl, err := r.reg.Resolve(node.Type.Module, node.Type.Name)
	if err != nil {
		return nil, err
	}
	contract := tmpl.Contract

	name, err := r.name(node, composite, contract.ID)
	if err != nil {
		return nil, err
	}
	ref, err := entity.NewChildRef(name, contract.ID, contract.Kind, parent)
	if err != nil {
		return nil, err
	}
	ref.RefEntityID = r.refEntityID(composite, contract.ID)
	for _, k := range sortedKeys(node.Props) {
		ref.Options.SetProp(k, node.Props[k])
	}

	childComposite := composite
	if childComposite == "" {
		childComposite = ref.ScopeID()
	}

	for _, child := range node.Children {
		if contract.Kind == entity.KindDirective && !child.IsMarker() {
			logger.Warn("Directives cannot have nested entities, ignoring child.", "directive", ref.ScopeID(), "child", child.Type.String())
			continue
		}
		resolved, err := r.resolve(ctx, child, ref, childComposite, contextual)
		if err != nil {
			return nil, err
		}
		for _, c := range resolved {
			switch c.TemplateKind {
			case entity.KindDirective:
				ref.Directives = append(ref.Directives, c)
			case entity.KindComponent, entity.KindComposition:
				ref.Components = append(ref.Components, c)
			default:
				return nil, builderr.InvalidOperation("reconcile.classify", "child %s has kind %s", c.ScopeID(), c.TemplateKind)
			}
		}
	}

	for _, req := range contract.Requirements {
		ref.Deferred = append(ref.Deferred, r.deferred(req))
	}

	logger.Debug("Resolved entity.",
		"scope", ref.ScopeID(),
		"template", contract.ID.String(),
		"kind", contract.Kind.String(),
		"components", len(ref.Components),
		"directives", len(ref.Directives),
		"deferred", len(ref.Deferred),
	)
	return ref, nil
}

// deferred returns a factory creating the directive reference of req for a
// host, with inputs computed when it is invoked.
func (r *Reconciler) deferred(req registry.Requirement) entity.DeferredFactory {
	return func(ctx context.Context, host entity.Entity) (*entity.ChildRef, error) {
		tmpl, err := r.reg.ResolveKind(req.Template.Module, req.Template.Name, entity.KindDirective)
		if err != nil {
			return nil, err
		}
		inputs, err := req.Inputs(host)
		if err != nil {
			return nil, fmt.Errorf("computing inputs of required %s: %w", req.Template, err)
		}

		core := host.Core()
		name := r.unique(core.ScopeID() + "_" + sanitize(req.Template.Name))
		ref, err := entity.NewChildRef(name, tmpl.Contract.ID, entity.KindDirective, core.Ref())
		if err != nil {
			return nil, err
		}
		ref.RefEntityID = r.refEntityID(core.ScopeID(), tmpl.Contract.ID)
		for _, k := range sortedKeys(inputs) {
			prop, ok := tmpl.Contract.FindInput(k)
			if !ok {
				return nil, builderr.InvalidOperation("reconcile.require", "%s declares no input %q", req.Template, k)
			}
			v, err := convertValue(inputs[k], prop)
			if err != nil {
				return nil, builderr.InvalidOperation("reconcile.require", "input %q of required %s: %v", k, req.Template, err)
			}
			ref.Options.SetInput(prop.Name(), v)
		}
		ctxlog.FromContext(ctx).Debug("Created required directive.", "host", core.ScopeID(), "scope", name, "template", req.Template.String())
		return ref, nil
	}
}

// name picks the scope id of a new reference: the explicit id, else
// <composite>_<key>, else <composite>_<generated>.
func (r *Reconciler) name(node *tree.Node, composite string, id entity.TemplateID) (string, error) {
	if node.ID != "" {
		if err := entity.ValidateScopeID(node.ID); err != nil {
			return "", err
		}
		switch {
		case r.pinned[node.ID]:
			return "", builderr.InvalidOperation("reconcile.name", "scope id %q is used twice", node.ID)
		case r.used[node.ID]:
			return "", builderr.InvalidOperation("reconcile.name", "id %q collides with a name generated earlier in the tree; pick another id", node.ID)
		}
		r.used[node.ID] = true
		r.pinned[node.ID] = true
		return node.ID, nil
	}

	prefix := composite
	if prefix == "" {
		prefix = rootName
		if node.Key == "" {
			return r.unique(prefix), nil
		}
	}
	if node.Key != "" {
		return r.unique(prefix + "_" + sanitize(node.Key)), nil
	}
	return r.unique(prefix + "_" + r.generate(composite, id)), nil
}

// generate returns a short id derived deterministically from the pass
// sequence, so repeated passes over the same tree name entities identically.
func (r *Reconciler) generate(composite string, id entity.TemplateID) string {
	r.seq++
	u := uuid.NewSHA1(uuid.NameSpaceOID, fmt.Appendf(nil, "%s/%s/%d", composite, id, r.seq))
	return strings.ReplaceAll(u.String(), "-", "")[:8]
}

func (r *Reconciler) unique(base string) string {
	if !r.used[base] {
		r.used[base] = true
		return base
	}
	for i := 2; ; i++ {
		c := fmt.Sprintf("%s_%d", base, i)
		if !r.used[c] {
			r.used[c] = true
			return c
		}
	}
}

// claim names a slot clone. The first clone of a contextual reference keeps
// its name, since the original is never emitted itself.
func (r *Reconciler) claim(old string) string {
	if !r.claimed[old] {
		r.claimed[old] = true
		return old
	}
	return r.unique(old)
}

func (r *Reconciler) refEntityID(owner string, id entity.TemplateID) string {
	memo, ok := r.refIDs[owner]
	if !ok {
		memo = make(map[entity.TemplateID]string)
		r.refIDs[owner] = memo
	}
	if ref, ok := memo[id]; ok {
		return ref
	}
	ref := sanitize(id.Module) + "_" + sanitize(id.Name)
	for i := 2; slices.Contains(values(memo), ref); i++ {
		ref = fmt.Sprintf("%s_%s_%d", sanitize(id.Module), sanitize(id.Name), i)
	}
	memo[id] = ref
	return ref
}

func values(m map[entity.TemplateID]string) []string {
	out := make([]string, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

func convertValue(v cty.Value, prop registry.Property) (cty.Value, error) {
	if v == cty.NilVal {
		v = cty.NullVal(cty.DynamicPseudoType)
	}
	if prop.Type == cty.NilType || prop.Type.Equals(cty.DynamicPseudoType) {
		return v, nil
	}
	return convert.Convert(v, prop.Type)
}

func sanitize(s string) string {
	var sb strings.Builder
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
			sb.WriteRune(c)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}

func sortedKeys(m map[string]cty.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
