package entity

import (
	"maps"
	"slices"

	"github.com/zclconf/go-cty/cty"
)

// AttachValue is one contribution to an attach slot.
type AttachValue struct {
	OriginID string
	Value    cty.Value
}

// Options are the property bindings captured for a child reference.
type Options struct {
	Inputs   map[string]cty.Value
	Attaches map[string][]AttachValue
	Props    map[string]cty.Value
}

// SetInput records an input value. The last binding for a name wins.
func (o *Options) SetInput(name string, v cty.Value) {
	if o.Inputs == nil {
		o.Inputs = make(map[string]cty.Value)
	}
	o.Inputs[name] = v
}

// SetProp records an ordinary prop.
func (o *Options) SetProp(name string, v cty.Value) {
	if o.Props == nil {
		o.Props = make(map[string]cty.Value)
	}
	o.Props[name] = v
}

// AddAttach records a contribution from origin to the attach slot name.
// Contributions keep discovery order; an origin contributing again replaces
// its earlier value in place.
func (o *Options) AddAttach(name, origin string, v cty.Value) {
	if o.Attaches == nil {
		o.Attaches = make(map[string][]AttachValue)
	}
	list := o.Attaches[name]
	for i := range list {
		if list[i].OriginID == origin {
			list[i].Value = v
			return
		}
	}
	o.Attaches[name] = append(list, AttachValue{OriginID: origin, Value: v})
}

// Clone returns a deep copy of the option maps.
func (o Options) Clone() Options {
	out := Options{
		Inputs: maps.Clone(o.Inputs),
		Props:  maps.Clone(o.Props),
	}
	if o.Attaches != nil {
		out.Attaches = make(map[string][]AttachValue, len(o.Attaches))
		for k, v := range o.Attaches {
			out.Attaches[k] = slices.Clone(v)
		}
	}
	return out
}
