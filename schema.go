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
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"docglue.dev/internal/gluerr"
)

// DefaultIDPattern is the pattern caller-supplied document IDs must match
// unless the model overrides it with ModelOptions.IDPattern.
const DefaultIDPattern = `^[a-zA-Z0-9_-]+$`

// A Model is the immutable, ordered schema of one document collection: the
// collection path template and the properties of its documents. Build models
// once at startup with NewModel or MustNewModel and share them freely; a Model
// carries no per-document state.
type Model struct {
	name       string
	template   string
	pathParams []string
	props      []*Property
	byName     map[string]*Property
	idPattern  *regexp.Regexp
	check      func(*Instance) error
}

// ModelOptions are optional arguments to NewModel.
type ModelOptions struct {
	// IDPattern overrides DefaultIDPattern for caller-supplied document IDs.
	IDPattern string

	// Check is a model-level validation hook run before every Put, after
	// the per-property checks.
	Check func(*Instance) error
}

// NewModel builds the schema for a collection of documents.
//
// collectionPath is a slash-separated template whose placeholder segments,
// written "{param}", name the IDs of parent documents: "rooms/{room_id}/messages"
// is the messages collection under one room. pathParams must list the
// placeholder names in order; a count or name mismatch is an error.
//
// The declaration order of props is preserved: it determines the property
// order of Schema output and map conversions.
func NewModel(name, collectionPath string, pathParams []string, props []*Property, opts *ModelOptions) (*Model, error) {
	if name == "" {
		return nil, gluerr.Newf(gluerr.InvalidArgument, nil, "docglue: model with empty name")
	}
	if err := checkTemplate(name, collectionPath, pathParams); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &ModelOptions{}
	}
	pat := opts.IDPattern
	if pat == "" {
		pat = DefaultIDPattern
	}
	re, err := regexp.Compile(pat)
	if err != nil {
		return nil, gluerr.Newf(gluerr.InvalidArgument, err, "docglue: model %q: invalid IDPattern", name)
	}
	m := &Model{
		name:       name,
		template:   collectionPath,
		pathParams: append([]string(nil), pathParams...),
		byName:     make(map[string]*Property, len(props)),
		idPattern:  re,
		check:      opts.Check,
	}
	for _, p := range props {
		if err := p.check(); err != nil {
			return nil, err
		}
		if _, dup := m.byName[p.name]; dup {
			return nil, gluerr.Newf(gluerr.InvalidArgument, nil, "docglue: model %q: duplicate property %q", name, p.name)
		}
		if err := p.compile(); err != nil {
			return nil, err
		}
		m.props = append(m.props, p)
		m.byName[p.name] = p
	}
	return m, nil
}

// MustNewModel is like NewModel but panics on error. It is intended for
// package-level model variables.
func MustNewModel(name, collectionPath string, pathParams []string, props []*Property, opts *ModelOptions) *Model {
	m, err := NewModel(name, collectionPath, pathParams, props, opts)
	if err != nil {
		panic(err)
	}
	return m
}

func checkTemplate(model, template string, pathParams []string) error {
	if template == "" {
		return gluerr.Newf(gluerr.InvalidArgument, nil, "docglue: model %q: empty collection path", model)
	}
	segs := strings.Split(template, "/")
	if len(segs)%2 == 0 {
		return gluerr.Newf(gluerr.InvalidArgument, nil, "docglue: model %q: collection path %q must have an odd number of segments", model, template)
	}
	var placeholders []string
	for i, s := range segs {
		isPlaceholder := strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") && len(s) > 2
		switch {
		case s == "":
			return gluerr.Newf(gluerr.InvalidArgument, nil, "docglue: model %q: empty segment in collection path %q", model, template)
		case i%2 == 0 && isPlaceholder:
			return gluerr.Newf(gluerr.InvalidArgument, nil, "docglue: model %q: collection segment %q cannot be a placeholder", model, s)
		case i%2 == 1 && !isPlaceholder:
			return gluerr.Newf(gluerr.InvalidArgument, nil, "docglue: model %q: document segment %q must be a placeholder", model, s)
		case isPlaceholder:
			placeholders = append(placeholders, s[1:len(s)-1])
		}
	}
	if len(placeholders) != len(pathParams) {
		return gluerr.Newf(gluerr.InvalidArgument, nil, "docglue: model %q: %d placeholders in %q but %d path params",
			model, len(placeholders), template, len(pathParams))
	}
	for i, ph := range placeholders {
		if ph != pathParams[i] {
			return gluerr.Newf(gluerr.InvalidArgument, nil, "docglue: model %q: placeholder %q does not match path param %q", model, ph, pathParams[i])
		}
	}
	return nil
}

// Name returns the model's name.
func (m *Model) Name() string { return m.name }

// CollectionPath returns the model's collection path template.
func (m *Model) CollectionPath() string { return m.template }

// PathParams returns the names of the template's placeholders, in order.
func (m *Model) PathParams() []string { return append([]string(nil), m.pathParams...) }

// Properties returns the model's properties in declaration order.
func (m *Model) Properties() []*Property { return append([]*Property(nil), m.props...) }

// Property returns the named property, or nil.
func (m *Model) Property(name string) *Property { return m.byName[name] }

// collectionName returns the last segment of the template: the name this
// collection has under its parent document.
func (m *Model) collectionName() string {
	segs := strings.Split(m.template, "/")
	return segs[len(segs)-1]
}

// resolvePath substitutes parentIDs into the template's placeholders.
func (m *Model) resolvePath(parentIDs []string) (string, error) {
	if len(parentIDs) != len(m.pathParams) {
		return "", gluerr.Newf(gluerr.InvalidArgument, nil, "docglue: model %q: got %d parent IDs, want %d (%s)",
			m.name, len(parentIDs), len(m.pathParams), strings.Join(m.pathParams, ", "))
	}
	segs := strings.Split(m.template, "/")
	next := 0
	for i, s := range segs {
		if i%2 == 1 {
			id := parentIDs[next]
			if id == "" || strings.Contains(id, "/") {
				return "", gluerr.Newf(gluerr.InvalidArgument, nil, "docglue: model %q: invalid parent ID %q for %q", m.name, id, s)
			}
			segs[i] = id
			next++
		}
	}
	return strings.Join(segs, "/"), nil
}

// validateID checks a caller-supplied document ID against the model's pattern.
func (m *Model) validateID(id string) error {
	if !m.idPattern.MatchString(id) {
		return gluerr.Newf(gluerr.InvalidArgument, nil, "docglue: model %q: invalid document ID %q", m.name, id)
	}
	return nil
}

// A JSONSchema is the JSON Schema description of a model. Its JSON encoding is
// deterministic: properties appear in declaration order (after a synthetic
// "id"), the required list in declaration order, and fragment keys sorted.
type JSONSchema struct {
	required []string
	names    []string
	props    map[string]map[string]interface{}
}

// Schema derives the model's JSON Schema description. The result is
// independent of any instance and safe to mutate.
func (m *Model) Schema() *JSONSchema {
	s := &JSONSchema{props: map[string]map[string]interface{}{}}
	s.names = append(s.names, "id")
	s.props["id"] = map[string]interface{}{"type": "string"}
	for _, p := range m.props {
		if p.required && p.kind != ComputedKind && p.kind != ConstantKind {
			s.required = append(s.required, p.name)
		}
		s.names = append(s.names, p.name)
		s.props[p.name] = p.fragment()
	}
	return s
}

// Required returns the names of the schema's required properties, in
// declaration order.
func (s *JSONSchema) Required() []string { return append([]string(nil), s.required...) }

// Property returns the fragment for the named property, or nil.
func (s *JSONSchema) Property(name string) map[string]interface{} { return s.props[name] }

// MarshalJSON implements json.Marshaler with deterministic output.
func (s *JSONSchema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"type":"object","required":`)
	req := s.required
	if req == nil {
		req = []string{}
	}
	b, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	buf.Write(b)
	buf.WriteString(`,"properties":{`)
	for i, name := range s.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		nb, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(nb)
		buf.WriteByte(':')
		fb, err := json.Marshal(s.props[name])
		if err != nil {
			return nil, err
		}
		buf.Write(fb)
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

// fragment builds the JSON Schema fragment for one property.
func (p *Property) fragment() map[string]interface{} {
	frag := map[string]interface{}{}
	if p.schema != nil {
		if cp, err := normalizeJSON(p.schema); err == nil {
			frag = cp.(map[string]interface{})
		}
	}
	switch p.kind {
	case StringKind:
		frag["type"] = "string"
	case IntegerKind, FloatKind:
		frag["type"] = "number"
	case BooleanKind:
		frag["type"] = "boolean"
	case TimestampKind:
		frag["type"] = "string"
		frag["format"] = "date-time"
	case JsonKind:
		if _, ok := frag["type"]; !ok {
			frag["type"] = "object"
		}
	case ComputedKind:
		if p.readOnly {
			frag["readOnly"] = true
		}
	case ConstantKind:
		if cv, err := normalizeJSON(p.constant); err == nil {
			frag["const"] = cv
		}
	}
	if p.hasDefault {
		if dv, err := normalizeJSON(p.defaultValue()); err == nil && dv != nil {
			frag["default"] = dv
		}
	}
	return frag
}
