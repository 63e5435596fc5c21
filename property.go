// Copyright 2026 The Docglue Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package docglue

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"docglue.dev/internal/gluerr"
)

// A Kind identifies the value type of a property.
type Kind int

// Values for Kind.
const (
	StringKind Kind = iota
	IntegerKind
	FloatKind
	BooleanKind
	TimestampKind
	JsonKind
	ComputedKind
	ConstantKind
)

func (k Kind) String() string {
	switch k {
	case StringKind:
		return "String"
	case IntegerKind:
		return "Integer"
	case FloatKind:
		return "Float"
	case BooleanKind:
		return "Boolean"
	case TimestampKind:
		return "Timestamp"
	case JsonKind:
		return "Json"
	case ComputedKind:
		return "Computed"
	case ConstantKind:
		return "Constant"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// A ComputeFunc derives the value of a computed property from the owning
// instance. It must not mutate the instance.
type ComputeFunc func(*Instance) (interface{}, error)

// A Property describes one named field of a model: its kind, how raw values
// are coerced and validated on assignment, and how values are converted to and
// from the store's representation.
//
// Properties are built with the *Property constructor functions and are
// immutable once the owning model has been built with NewModel.
type Property struct {
	name       string
	kind       Kind
	required   bool
	hasDefault bool
	defValue   interface{}
	defFunc    func() interface{}
	transient  bool
	choices    []interface{}
	validator  func(interface{}) error
	schema     map[string]interface{}
	compiled   *jsonschema.Schema
	autoNow    bool
	autoNowAdd bool
	compute    ComputeFunc
	constant   interface{}
	readOnly   bool
}

// Name returns the property's field name.
func (p *Property) Name() string { return p.name }

// Kind returns the property's value kind.
func (p *Property) Kind() Kind { return p.kind }

// Required reports whether the property must be set at write time.
func (p *Property) Required() bool { return p.required }

// A PropertyOption configures a Property at declaration time.
// Options that do not apply to the property's kind cause NewModel to fail.
type PropertyOption func(*Property)

// Required marks the property as mandatory at write time: a Put with the
// property unset fails with a RequiredField error.
func Required() PropertyOption {
	return func(p *Property) { p.required = true }
}

// Default declares the value an instance starts with. v must be immutable;
// use DefaultFunc for slices, maps and other mutable values.
func Default(v interface{}) PropertyOption {
	return func(p *Property) {
		p.hasDefault = true
		p.defValue = v
	}
}

// DefaultFunc declares a producer for the value an instance starts with.
// The producer is invoked freshly for every instance, so mutable defaults are
// never shared.
func DefaultFunc(f func() interface{}) PropertyOption {
	return func(p *Property) {
		p.hasDefault = true
		p.defFunc = f
	}
}

// Choices restricts assignable values to the given set.
func Choices(vs ...interface{}) PropertyOption {
	return func(p *Property) { p.choices = vs }
}

// Validator installs a custom check run on every assignment, after coercion.
func Validator(f func(interface{}) error) PropertyOption {
	return func(p *Property) { p.validator = f }
}

// Transient marks the property as in-memory only: it participates in
// assignment, defaults and ToMap, but is never written to or read from the
// store.
func Transient() PropertyOption {
	return func(p *Property) { p.transient = true }
}

// AutoNow stamps a Timestamp property with the current time on every write.
// The property cannot be assigned directly.
func AutoNow() PropertyOption {
	return func(p *Property) { p.autoNow = true }
}

// AutoNowAdd stamps a Timestamp property with the current time on the first
// write only. The property cannot be assigned directly.
func AutoNowAdd() PropertyOption {
	return func(p *Property) { p.autoNowAdd = true }
}

// ReadOnly marks a Computed property as "readOnly" in the model's JSON Schema
// output.
func ReadOnly() PropertyOption {
	return func(p *Property) { p.readOnly = true }
}

// Schema attaches a JSON Schema fragment to the property. For Json properties
// the fragment validates assigned values; for every kind it overrides the
// fragment emitted in the model's JSON Schema output.
func Schema(fragment map[string]interface{}) PropertyOption {
	return func(p *Property) { p.schema = fragment }
}

func newProperty(name string, kind Kind, opts []PropertyOption) *Property {
	p := &Property{name: name, kind: kind}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// StringProperty declares a string-valued property.
func StringProperty(name string, opts ...PropertyOption) *Property {
	return newProperty(name, StringKind, opts)
}

// IntegerProperty declares an integer-valued property. Values are coerced to
// int64; floats with a fractional part are rejected.
func IntegerProperty(name string, opts ...PropertyOption) *Property {
	return newProperty(name, IntegerKind, opts)
}

// FloatProperty declares a float-valued property. Values are coerced to
// float64.
func FloatProperty(name string, opts ...PropertyOption) *Property {
	return newProperty(name, FloatKind, opts)
}

// BooleanProperty declares a bool-valued property.
func BooleanProperty(name string, opts ...PropertyOption) *Property {
	return newProperty(name, BooleanKind, opts)
}

// TimestampProperty declares a time.Time-valued property. Values are
// normalized to UTC on assignment.
func TimestampProperty(name string, opts ...PropertyOption) *Property {
	return newProperty(name, TimestampKind, opts)
}

// JsonProperty declares a property holding an arbitrary JSON value validated
// against schema, a JSON Schema fragment. Assigned values are normalized
// through a JSON round trip, so instances never alias caller-owned data.
func JsonProperty(name string, schema map[string]interface{}, opts ...PropertyOption) *Property {
	p := newProperty(name, JsonKind, opts)
	p.schema = schema
	return p
}

// ComputedProperty declares a property whose value is derived from the owning
// instance at read time. It is never stored and never assignable. The schema
// fragment describes the derived value in the model's JSON Schema output.
func ComputedProperty(name string, compute ComputeFunc, schema map[string]interface{}, opts ...PropertyOption) *Property {
	p := newProperty(name, ComputedKind, opts)
	p.compute = compute
	p.schema = schema
	return p
}

// ConstantProperty declares a property whose value is fixed at declaration
// time. It is included in stored documents but can never be assigned.
func ConstantProperty(name string, value interface{}, opts ...PropertyOption) *Property {
	p := newProperty(name, ConstantKind, opts)
	p.constant = value
	return p
}

// check validates the declaration. Called once by NewModel.
func (p *Property) check() error {
	if p.name == "" {
		return gluerr.Newf(gluerr.InvalidArgument, nil, "docglue: property with empty name")
	}
	if strings.Contains(p.name, ".") || strings.Contains(p.name, "/") {
		return gluerr.Newf(gluerr.InvalidArgument, nil, "docglue: property %q: name must not contain '.' or '/'", p.name)
	}
	if (p.autoNow || p.autoNowAdd) && p.kind != TimestampKind {
		return gluerr.Newf(gluerr.InvalidArgument, nil, "docglue: property %q: AutoNow/AutoNowAdd apply to Timestamp properties only", p.name)
	}
	if p.autoNow && p.autoNowAdd {
		return gluerr.Newf(gluerr.InvalidArgument, nil, "docglue: property %q: at most one of AutoNow and AutoNowAdd", p.name)
	}
	if p.readOnly && p.kind != ComputedKind {
		return gluerr.Newf(gluerr.InvalidArgument, nil, "docglue: property %q: ReadOnly applies to Computed properties only", p.name)
	}
	switch p.kind {
	case ComputedKind:
		if p.compute == nil {
			return gluerr.Newf(gluerr.InvalidArgument, nil, "docglue: property %q: Computed requires a compute function", p.name)
		}
		if p.schema == nil {
			return gluerr.Newf(gluerr.InvalidArgument, nil, "docglue: property %q: Computed requires a schema fragment", p.name)
		}
		if p.required || p.hasDefault || p.transient {
			return gluerr.Newf(gluerr.InvalidArgument, nil, "docglue: property %q: Computed cannot be Required, Transient or have a default", p.name)
		}
	case ConstantKind:
		if p.required || p.hasDefault || p.transient {
			return gluerr.Newf(gluerr.InvalidArgument, nil, "docglue: property %q: Constant cannot be Required, Transient or have a default", p.name)
		}
	}
	if p.defValue != nil && p.defFunc != nil {
		return gluerr.Newf(gluerr.InvalidArgument, nil, "docglue: property %q: at most one of Default and DefaultFunc", p.name)
	}
	return nil
}

// compile resolves the property's JSON Schema fragment and normalizes its
// declared choices and default. Called once by NewModel.
func (p *Property) compile() error {
	if p.schema != nil && p.kind != ComputedKind && p.kind != ConstantKind {
		b, err := json.Marshal(p.schema)
		if err != nil {
			return gluerr.Newf(gluerr.InvalidArgument, err, "docglue: property %q: invalid schema fragment", p.name)
		}
		sch, err := jsonschema.CompileString(p.name+".schema.json", string(b))
		if err != nil {
			return gluerr.Newf(gluerr.InvalidArgument, err, "docglue: property %q: schema fragment does not compile", p.name)
		}
		p.compiled = sch
	}
	for i, c := range p.choices {
		cc, err := p.coerce(c)
		if err != nil {
			return gluerr.Newf(gluerr.InvalidArgument, err, "docglue: property %q: choice %v", p.name, c)
		}
		p.choices[i] = cc
	}
	if p.hasDefault && p.defValue != nil {
		dv, err := p.coerce(p.defValue)
		if err != nil {
			return gluerr.Newf(gluerr.InvalidArgument, err, "docglue: property %q: default %v", p.name, p.defValue)
		}
		p.defValue = dv
	}
	return nil
}

// settable reports whether the property accepts direct assignment.
func (p *Property) settable() bool {
	return p.kind != ComputedKind && p.kind != ConstantKind && !p.autoNow && !p.autoNowAdd
}

// defaultValue produces a fresh default for a new instance, or nil.
func (p *Property) defaultValue() interface{} {
	if !p.hasDefault {
		return nil
	}
	if p.defFunc != nil {
		v, err := p.coerce(p.defFunc())
		if err != nil {
			return nil
		}
		return v
	}
	return p.defValue
}

// coerce converts a raw value to the property's canonical in-memory form.
// A nil value stays nil: it means "unset".
func (p *Property) coerce(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	switch p.kind {
	case StringKind:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return nil, p.mismatch(v, "string")

	case IntegerKind:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return rv.Int(), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			u := rv.Uint()
			if u > math.MaxInt64 {
				return nil, gluerr.Newf(gluerr.TypeMismatch, nil, "docglue: field %q: %v overflows int64", p.name, u)
			}
			return int64(u), nil
		case reflect.Float32, reflect.Float64:
			f := rv.Float()
			if f != math.Trunc(f) {
				return nil, gluerr.Newf(gluerr.TypeMismatch, nil, "docglue: field %q: %v is not integral", p.name, f)
			}
			return int64(f), nil
		}
		return nil, p.mismatch(v, "integer")

	case FloatKind:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return float64(rv.Int()), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return float64(rv.Uint()), nil
		case reflect.Float32, reflect.Float64:
			return rv.Float(), nil
		}
		return nil, p.mismatch(v, "float")

	case BooleanKind:
		if b, ok := v.(bool); ok {
			return b, nil
		}
		return nil, p.mismatch(v, "bool")

	case TimestampKind:
		if t, ok := v.(time.Time); ok {
			return t.UTC(), nil
		}
		return nil, p.mismatch(v, "time.Time")

	case JsonKind:
		nv, err := normalizeJSON(v)
		if err != nil {
			return nil, gluerr.Newf(gluerr.TypeMismatch, err, "docglue: field %q: value is not representable as JSON", p.name)
		}
		return nv, nil

	case ConstantKind:
		return p.constant, nil
	}
	return nil, gluerr.Newf(gluerr.Internal, nil, "docglue: field %q: coerce on kind %v", p.name, p.kind)
}

func (p *Property) mismatch(v interface{}, want string) error {
	return gluerr.Newf(gluerr.TypeMismatch, nil, "docglue: field %q: cannot use %v (%T) as %s", p.name, v, v, want)
}

// validate checks a coerced value against the property's constraints:
// choices, the attached JSON Schema fragment, and any custom validator.
func (p *Property) validate(v interface{}) error {
	if len(p.choices) > 0 {
		found := false
		for _, c := range p.choices {
			if reflect.DeepEqual(v, c) {
				found = true
				break
			}
		}
		if !found {
			return gluerr.Newf(gluerr.InvalidArgument, nil, "docglue: field %q: %v not found in choices", p.name, v)
		}
	}
	if p.compiled != nil {
		jv, err := normalizeJSON(v)
		if err != nil {
			return gluerr.Newf(gluerr.TypeMismatch, err, "docglue: field %q: value is not representable as JSON", p.name)
		}
		if err := p.compiled.Validate(jv); err != nil {
			return schemaViolation(p.name, err)
		}
	}
	if p.validator != nil {
		if err := p.validator(v); err != nil {
			if gluerr.DoNotWrap(err) {
				return err
			}
			return gluerr.Newf(gluerr.InvalidArgument, err, "docglue: field %q: invalid value", p.name)
		}
	}
	return nil
}

// schemaViolation converts a jsonschema validation error into a coded error
// naming the violating instance path.
func schemaViolation(field string, err error) error {
	loc := "/"
	if ve, ok := err.(*jsonschema.ValidationError); ok {
		leaf := ve
		for len(leaf.Causes) > 0 {
			leaf = leaf.Causes[0]
		}
		if leaf.InstanceLocation != "" {
			loc = leaf.InstanceLocation
		}
		return gluerr.Newf(gluerr.SchemaViolation, err, "docglue: field %q: schema violation at %q: %s", field, loc, leaf.Message)
	}
	return gluerr.Newf(gluerr.SchemaViolation, err, "docglue: field %q: schema violation", field)
}

// serialize converts a coerced value to its store representation.
func (p *Property) serialize(v interface{}) (interface{}, error) {
	switch p.kind {
	case ComputedKind:
		return nil, gluerr.Newf(gluerr.Internal, nil, "docglue: field %q: computed properties are not stored", p.name)
	case ConstantKind:
		return p.constant, nil
	default:
		// Coerced values are already store-shaped.
		return v, nil
	}
}

// deserialize converts a store representation back to the canonical in-memory
// form. It is coercion without constraint checks: stored data is trusted but
// its types are still normalized.
func (p *Property) deserialize(raw interface{}) (interface{}, error) {
	return p.coerce(raw)
}

// normalizeJSON round-trips v through encoding/json, producing a deep copy
// built only of JSON types (nil, bool, float64, string, []interface{},
// map[string]interface{}).
func normalizeJSON(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
