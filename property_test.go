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
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"docglue.dev/gluerrors"
)

func TestCoerce(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	for _, test := range []struct {
		prop *Property
		in   interface{}
		want interface{}
	}{
		{StringProperty("s"), "hello", "hello"},
		{IntegerProperty("n"), 3, int64(3)},
		{IntegerProperty("n"), int32(-7), int64(-7)},
		{IntegerProperty("n"), uint8(255), int64(255)},
		{IntegerProperty("n"), 4.0, int64(4)},
		{FloatProperty("f"), 2, float64(2)},
		{FloatProperty("f"), float32(0.5), float64(0.5)},
		{BooleanProperty("b"), true, true},
		{TimestampProperty("t"), time.Date(2026, 8, 29, 9, 0, 0, 0, loc),
			time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)},
		{JsonProperty("j", nil), map[string]interface{}{"a": 1},
			map[string]interface{}{"a": float64(1)}},
		{JsonProperty("j", nil), []string{"x", "y"},
			[]interface{}{"x", "y"}},
		{ConstantProperty("k", "v1"), "anything", "v1"},
		{StringProperty("s"), nil, nil},
	} {
		got, err := test.prop.coerce(test.in)
		if err != nil {
			t.Errorf("%v.coerce(%v): %v", test.prop.name, test.in, err)
			continue
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("%v.coerce(%v): diff (-want +got):\n%s", test.prop.name, test.in, diff)
		}
	}
}

func TestCoerceErrors(t *testing.T) {
	for _, test := range []struct {
		prop *Property
		in   interface{}
	}{
		{StringProperty("s"), 3},
		{IntegerProperty("n"), "3"},
		{IntegerProperty("n"), 1.5},
		{IntegerProperty("n"), uint64(math.MaxUint64)},
		{FloatProperty("f"), "0.5"},
		{BooleanProperty("b"), 1},
		{TimestampProperty("t"), "2026-08-29"},
		{JsonProperty("j", nil), make(chan int)},
	} {
		_, err := test.prop.coerce(test.in)
		if got := gluerrors.Code(err); got != gluerrors.TypeMismatch {
			t.Errorf("%v.coerce(%v): got code %v, want TypeMismatch", test.prop.name, test.in, got)
		}
	}
}

func TestValidateChoices(t *testing.T) {
	p := StringProperty("color", Choices("red", "green"))
	if err := p.validate("red"); err != nil {
		t.Errorf("in choices: %v", err)
	}
	err := p.validate("blue")
	if got := gluerrors.Code(err); got != gluerrors.InvalidArgument {
		t.Errorf("outside choices: got code %v, want InvalidArgument", got)
	}
	// Coerced numeric choices compare as int64.
	n := IntegerProperty("size", Choices(1, 2, 3))
	if err := n.compile(); err != nil {
		t.Fatal(err)
	}
	if err := n.validate(int64(2)); err != nil {
		t.Errorf("coerced choice: %v", err)
	}
}

func TestValidateSchema(t *testing.T) {
	p := JsonProperty("tags", map[string]interface{}{
		"type":  "array",
		"items": map[string]interface{}{"type": "string"},
	})
	if err := p.compile(); err != nil {
		t.Fatal(err)
	}
	v, err := p.coerce([]interface{}{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.validate(v); err != nil {
		t.Errorf("valid array: %v", err)
	}
	v, err = p.coerce([]interface{}{"a", 3})
	if err != nil {
		t.Fatal(err)
	}
	err = p.validate(v)
	if got := gluerrors.Code(err); got != gluerrors.SchemaViolation {
		t.Errorf("invalid array: got code %v, want SchemaViolation", got)
	}
}

func TestValidateCustom(t *testing.T) {
	sentinel := errors.New("too short")
	p := StringProperty("name", Validator(func(v interface{}) error {
		if len(v.(string)) < 3 {
			return sentinel
		}
		return nil
	}))
	if err := p.validate("abcd"); err != nil {
		t.Errorf("valid: %v", err)
	}
	err := p.validate("ab")
	if !errors.Is(err, sentinel) {
		t.Errorf("got %v, want wrapped sentinel", err)
	}
	if got := gluerrors.Code(err); got != gluerrors.InvalidArgument {
		t.Errorf("got code %v, want InvalidArgument", got)
	}
}

func TestDefaultValue(t *testing.T) {
	p := IntegerProperty("n", Default(3))
	if err := p.compile(); err != nil {
		t.Fatal(err)
	}
	if got := p.defaultValue(); got != int64(3) {
		t.Errorf("got %v (%[1]T), want int64(3)", got)
	}
	i := 0
	q := IntegerProperty("seq", DefaultFunc(func() interface{} { i++; return i }))
	if got := q.defaultValue(); got != int64(1) {
		t.Errorf("got %v, want 1", got)
	}
	if got := q.defaultValue(); got != int64(2) {
		t.Errorf("got %v, want 2", got)
	}
	if got := StringProperty("s").defaultValue(); got != nil {
		t.Errorf("no default: got %v, want nil", got)
	}
}

func TestPropertyCheck(t *testing.T) {
	compute := func(*Instance) (interface{}, error) { return "x", nil }
	strSchema := map[string]interface{}{"type": "string"}
	for _, test := range []struct {
		desc string
		prop *Property
	}{
		{"empty name", StringProperty("")},
		{"slash in name", StringProperty("a/b")},
		{"dot in name", StringProperty("a.b")},
		{"auto_now on string", StringProperty("t", AutoNow())},
		{"auto_now and auto_now_add", TimestampProperty("t", AutoNow(), AutoNowAdd())},
		{"read_only on string", StringProperty("s", ReadOnly())},
		{"computed without schema", ComputedProperty("c", compute, nil)},
		{"computed without compute", ComputedProperty("c", nil, strSchema)},
		{"required computed", ComputedProperty("c", compute, strSchema, Required())},
		{"default on computed", ComputedProperty("c", compute, strSchema, Default("x"))},
		{"default on constant", ConstantProperty("k", "v", Default("x"))},
		{"default and default_func", StringProperty("s", Default("a"), DefaultFunc(func() interface{} { return "b" }))},
	} {
		if err := test.prop.check(); err == nil {
			t.Errorf("%s: check succeeded, want error", test.desc)
		}
	}
	if err := TimestampProperty("updated_at", AutoNow()).check(); err != nil {
		t.Errorf("auto_now on timestamp: %v", err)
	}
}

func TestCompileBadSchema(t *testing.T) {
	p := JsonProperty("j", map[string]interface{}{"type": 42})
	if err := p.compile(); err == nil {
		t.Error("compile succeeded, want error")
	}
}
