package basic

import (
	"context"
	"fmt"

	"github.com/amoebajs/builder-sub000/internal/entity"
	"github.com/amoebajs/builder-sub000/internal/fragment"
	"github.com/amoebajs/builder-sub000/internal/registry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

const fieldsState = "fields"

// Form wraps its children in a <form>. The field list is only known once the
// form rendered, so the validator it requires receives it then.
type Form struct{ entity.Component }

func (*Form) Describe() *registry.Contract {
	return registry.Component(Name, "form").
		Describe("Form whose fields are validated by a generated function").
		Input("name", cty.String, registry.WithDefault(cty.StringVal("form"))).
		Requires(Name, "validator", formFields)
}

func (f *Form) OnInit(context.Context) error {
	f.UseElement(fragment.NewJSXElement("form"))
	return nil
}

func (f *Form) OnRender(context.Context) error {
	var fields []string
	for _, r := range f.Components() {
		fields = append(fields, r.ScopeID())
	}
	f.SetState(fieldsState, fields)
	f.Element().Attr("name", &fragment.Literal{Value: f.Input("name")})
	return render(f.ComponentCore())
}

// formFields computes the validator inputs from a rendered form.
func formFields(host entity.Entity) (map[string]cty.Value, error) {
	fields := entity.State(host, fieldsState, []string(nil))
	list := cty.ListValEmpty(cty.String)
	if len(fields) > 0 {
		v, err := gocty.ToCtyValue(fields, cty.List(cty.String))
		if err != nil {
			return nil, err
		}
		list = v
	}
	return map[string]cty.Value{
		"fields": list,
		"form":   cty.StringVal(host.Core().ScopeID()),
	}, nil
}

// Validator emits a validate<Form> function checking that every field of the
// form is filled in.
type Validator struct{ entity.Directive }

func (*Validator) Describe() *registry.Contract {
	return registry.Directive(Name, "validator").
		Describe("Generated required-fields validator").
		Input("fields", cty.List(cty.String), registry.WithDefault(cty.ListValEmpty(cty.String))).
		Input("form", cty.String)
}

func (v *Validator) OnAttach(context.Context) error {
	form := v.InputString("form", "")
	if form == "" {
		return fmt.Errorf("validator %s is not bound to a form", v.ScopeID())
	}
	fields := v.Input("fields")
	if fields.IsNull() {
		fields = cty.ListValEmpty(cty.String)
	}
	list, err := ctyjson.Marshal(fields, fields.Type())
	if err != nil {
		return err
	}
	return v.AddFunctions(fragment.NewFunction("validate"+form).
		Param("values", "Record<string, unknown>").
		Returns("boolean").
		Return(fragment.Exprf(`%s.every((k) => values[k] !== undefined && values[k] !== "")`, list)))
}

// Fields returns the bound field list.
func (v *Validator) Fields() ([]string, error) {
	var out []string
	fields := v.Input("fields")
	if fields.IsNull() || fields.LengthInt() == 0 {
		return out, nil
	}
	err := gocty.FromCtyValue(fields, &out)
	return out, err
}
