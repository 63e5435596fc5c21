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
	"context"
	"io"
	"reflect"
	"time"

	"docglue.dev/driver"
	"docglue.dev/internal/gluerr"
)

// idKey is the key under which the document ID appears in map conversions.
const idKey = "id"

// An Instance is one logical document: its field values, identity and dirty
// state. Instances are produced by Collection.Create, Collection.GetByID and
// query results. An Instance is not safe for concurrent use.
//
// Lifecycle: a created instance has Exists() == false and no ID. The first
// successful Put assigns an ID (caller-supplied or store-generated), writes
// the whole document and sets Exists. Later assignments mark fields dirty and
// later Puts write only the dirty fields. Delete clears Exists but keeps the
// ID; a further Put re-creates the document under the same ID.
type Instance struct {
	coll      *Collection
	id        string
	exists    bool
	persisted bool // the ID has been used in a write; it can no longer change
	values    map[string]interface{}
	intact    map[string]interface{} // values as last loaded or written
	dirty     map[string]bool
}

// Collection returns the collection the instance belongs to.
func (x *Instance) Collection() *Collection { return x.coll }

// ID returns the document ID, or "" if none has been assigned yet.
func (x *Instance) ID() string { return x.id }

// Exists reports whether the instance corresponds to a persisted document.
func (x *Instance) Exists() bool { return x.exists }

// ParentIDs returns the parent path parameters the instance was opened with.
func (x *Instance) ParentIDs() []string { return append([]string(nil), x.coll.parentIDs...) }

// Dirty returns the names of fields changed since the instance was last
// loaded or written, in declaration order.
func (x *Instance) Dirty() []string {
	var names []string
	for _, p := range x.coll.model.props {
		if x.dirty[p.name] {
			names = append(names, p.name)
		}
	}
	return names
}

// SetID assigns the document ID before first persistence. The ID must match
// the model's ID pattern. Once the instance has been written, the ID is
// immutable and SetID fails with an ImmutableField error.
func (x *Instance) SetID(id string) error {
	if x.persisted {
		return gluerr.Newf(gluerr.ImmutableField, nil, "docglue: model %q: document ID is immutable once persisted", x.coll.model.name)
	}
	if err := x.coll.model.validateID(id); err != nil {
		return err
	}
	x.id = id
	return nil
}

// Set assigns a field value. The value is coerced and validated by the
// field's descriptor; on failure the instance is unchanged. A nil value
// clears the field. On success the field is marked dirty.
func (x *Instance) Set(field string, v interface{}) error {
	p := x.coll.model.byName[field]
	if p == nil {
		return gluerr.Newf(gluerr.InvalidArgument, nil, "docglue: model %q: no field %q", x.coll.model.name, field)
	}
	if !p.settable() {
		return gluerr.Newf(gluerr.ImmutableField, nil, "docglue: model %q: field %q cannot be assigned", x.coll.model.name, field)
	}
	if v == nil {
		delete(x.values, field)
		x.dirty[field] = true
		return nil
	}
	cv, err := p.coerce(v)
	if err != nil {
		return err
	}
	if err := p.validate(cv); err != nil {
		return err
	}
	x.values[field] = cv
	x.dirty[field] = true
	return nil
}

// Get returns a field's current value. Computed fields invoke their compute
// function; unset fields yield the declared default, or nil.
func (x *Instance) Get(field string) (interface{}, error) {
	p := x.coll.model.byName[field]
	if p == nil {
		return nil, gluerr.Newf(gluerr.InvalidArgument, nil, "docglue: model %q: no field %q", x.coll.model.name, field)
	}
	return x.get(p)
}

func (x *Instance) get(p *Property) (interface{}, error) {
	switch p.kind {
	case ComputedKind:
		return p.compute(x)
	case ConstantKind:
		return p.constant, nil
	}
	if v, ok := x.values[p.name]; ok {
		return v, nil
	}
	return p.defaultValue(), nil
}

// GetString returns a string field's value; "" if unset.
func (x *Instance) GetString(field string) (string, error) {
	v, err := x.Get(field)
	if err != nil || v == nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", gluerr.Newf(gluerr.TypeMismatch, nil, "docglue: field %q holds %T, not string", field, v)
	}
	return s, nil
}

// GetInt returns an integer field's value; 0 if unset.
func (x *Instance) GetInt(field string) (int64, error) {
	v, err := x.Get(field)
	if err != nil || v == nil {
		return 0, err
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case float64:
		return int64(n), nil
	}
	return 0, gluerr.Newf(gluerr.TypeMismatch, nil, "docglue: field %q holds %T, not int64", field, v)
}

// GetFloat returns a float field's value; 0 if unset.
func (x *Instance) GetFloat(field string) (float64, error) {
	v, err := x.Get(field)
	if err != nil || v == nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	}
	return 0, gluerr.Newf(gluerr.TypeMismatch, nil, "docglue: field %q holds %T, not float64", field, v)
}

// GetBool returns a boolean field's value; false if unset.
func (x *Instance) GetBool(field string) (bool, error) {
	v, err := x.Get(field)
	if err != nil || v == nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, gluerr.Newf(gluerr.TypeMismatch, nil, "docglue: field %q holds %T, not bool", field, v)
	}
	return b, nil
}

// GetTime returns a timestamp field's value; the zero time if unset.
func (x *Instance) GetTime(field string) (time.Time, error) {
	v, err := x.Get(field)
	if err != nil || v == nil {
		return time.Time{}, err
	}
	t, ok := v.(time.Time)
	if !ok {
		return time.Time{}, gluerr.Newf(gluerr.TypeMismatch, nil, "docglue: field %q holds %T, not time.Time", field, v)
	}
	return t, nil
}

// ToMap returns the instance as a plain map: every field in declaration order
// semantics (computed fields evaluated, constants included) plus "id".
func (x *Instance) ToMap() (map[string]interface{}, error) {
	out := map[string]interface{}{idKey: x.id}
	for _, p := range x.coll.model.props {
		v, err := x.get(p)
		if err != nil {
			return nil, err
		}
		out[p.name] = v
	}
	return out, nil
}

// ToMapIntact is like ToMap but reports the values as last loaded or written,
// ignoring unsaved local changes. Computed fields are still evaluated live.
func (x *Instance) ToMapIntact() (map[string]interface{}, error) {
	out := map[string]interface{}{idKey: x.id}
	for _, p := range x.coll.model.props {
		switch p.kind {
		case ComputedKind:
			v, err := p.compute(x)
			if err != nil {
				return nil, err
			}
			out[p.name] = v
		case ConstantKind:
			out[p.name] = p.constant
		default:
			out[p.name] = x.intact[p.name]
		}
	}
	return out, nil
}

// FromMap assigns the given values via Set, in the model's declaration order.
// Keys that name computed or constant fields, auto timestamps, or "id" are
// ignored; unknown keys are an error.
func (x *Instance) FromMap(values map[string]interface{}) error {
	for k := range values {
		if k != idKey && x.coll.model.byName[k] == nil {
			return gluerr.Newf(gluerr.InvalidArgument, nil, "docglue: model %q: no field %q", x.coll.model.name, k)
		}
	}
	for _, p := range x.coll.model.props {
		v, ok := values[p.name]
		if !ok {
			continue
		}
		if !p.settable() {
			continue
		}
		if err := x.Set(p.name, v); err != nil {
			return err
		}
	}
	return nil
}

// A Change is one field's before/after pair.
type Change struct {
	Before, After interface{}
}

// Changes reports the fields whose current value differs from the value as
// last loaded or written.
func (x *Instance) Changes() map[string]Change {
	out := map[string]Change{}
	for _, p := range x.coll.model.props {
		if p.kind == ComputedKind || p.kind == ConstantKind {
			continue
		}
		before := x.intact[p.name]
		after := x.values[p.name]
		if !reflect.DeepEqual(before, after) {
			out[p.name] = Change{Before: before, After: after}
		}
	}
	return out
}

// Put validates the instance and writes it to the store. The first write is a
// full write under a caller-supplied or store-generated ID; later writes send
// only the dirty fields. On success the dirty set is empty and Exists is
// true. On failure the instance's in-memory state is unchanged.
func (x *Instance) Put(ctx context.Context) (err error) {
	c := x.coll
	if err := c.client.checkClosed(); err != nil {
		return err
	}
	ctx, end := c.client.instrument(ctx, "Instance.Put")
	defer func() { end(err) }()

	if err = x.validateAll(); err != nil {
		return err
	}
	if c.model.check != nil {
		if err = c.model.check(x); err != nil {
			if !gluerr.DoNotWrap(err) {
				err = gluerr.Newf(gluerr.InvalidArgument, err, "docglue: model %q: check failed", c.model.name)
			}
			return err
		}
	}

	now := time.Now().UTC()
	stamps := map[string]interface{}{}
	for _, p := range c.model.props {
		if p.transient {
			continue
		}
		if p.autoNow {
			stamps[p.name] = now
		} else if p.autoNowAdd && !x.exists && x.values[p.name] == nil {
			stamps[p.name] = now
		}
	}

	firstWrite := !x.exists
	fields := map[string]interface{}{}
	if firstWrite {
		for _, p := range c.model.props {
			if p.kind == ComputedKind || p.transient {
				continue
			}
			v := x.values[p.name]
			if s, ok := stamps[p.name]; ok {
				v = s
			}
			if p.kind != ConstantKind && v == nil {
				continue
			}
			sv, serr := p.serialize(v)
			if serr != nil {
				return serr
			}
			fields[p.name] = sv
		}
	} else {
		for name := range x.dirty {
			p := c.model.byName[name]
			if p.transient {
				continue
			}
			sv, serr := p.serialize(x.values[name])
			if serr != nil {
				return serr
			}
			fields[name] = sv
		}
		// A clean instance is a no-op; don't bump auto timestamps either.
		if len(fields) == 0 {
			return nil
		}
		for name, s := range stamps {
			fields[name] = s
		}
	}

	id := x.id
	if id == "" {
		id, err = c.client.store.NewDocumentID(ctx, c.path)
		if err != nil {
			err = c.client.wrapError(err)
			return err
		}
	}
	if err = c.client.store.SetDocument(ctx, c.docPath(id), fields, !firstWrite); err != nil {
		err = c.client.wrapError(err)
		return err
	}

	x.id = id
	x.exists = true
	x.persisted = true
	for name, s := range stamps {
		x.values[name] = s
	}
	for name := range fields {
		p := c.model.byName[name]
		if p.kind == ConstantKind {
			continue
		}
		x.intact[name] = x.values[name]
	}
	x.dirty = map[string]bool{}
	return nil
}

// validateAll re-checks every field before a write: required fields have a
// value (pending auto timestamps count as present), and present values still
// satisfy their constraints. Values that came in through Set were checked
// there; this also covers declared defaults.
func (x *Instance) validateAll() error {
	for _, p := range x.coll.model.props {
		if p.kind == ComputedKind || p.kind == ConstantKind {
			continue
		}
		if p.autoNow || (p.autoNowAdd && !x.exists) {
			continue
		}
		v, err := x.get(p)
		if err != nil {
			return err
		}
		if v == nil {
			if p.required {
				return gluerr.Newf(gluerr.RequiredField, nil, "docglue: model %q: field %q is required", x.coll.model.name, p.name)
			}
			continue
		}
		if err := p.validate(v); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the backing document. It is idempotent: deleting a
// never-persisted instance or an already-deleted document is not an error.
// The ID is retained; a further Put re-creates the document.
func (x *Instance) Delete(ctx context.Context) (err error) {
	if x.id == "" {
		x.exists = false
		return nil
	}
	c := x.coll
	if err := c.client.checkClosed(); err != nil {
		return err
	}
	ctx, end := c.client.instrument(ctx, "Instance.Delete")
	defer func() { end(err) }()

	if err = c.client.store.DeleteDocument(ctx, c.docPath(x.id)); err != nil {
		if c.client.store.ErrorCode(err) != gluerr.NotFound {
			err = c.client.wrapError(err)
			return err
		}
		err = nil
	}
	x.exists = false
	return nil
}

// DeleteAll removes the backing document and, recursively, every document in
// every sub-collection rooted at it. The cascade is best effort: a failure
// partway leaves earlier deletes in place and reports where it stopped.
func (x *Instance) DeleteAll(ctx context.Context) (err error) {
	if x.id == "" {
		x.exists = false
		return nil
	}
	c := x.coll
	if err := c.client.checkClosed(); err != nil {
		return err
	}
	ctx, end := c.client.instrument(ctx, "Instance.DeleteAll")
	defer func() { end(err) }()

	if err = c.client.deleteTree(ctx, c.docPath(x.id)); err != nil {
		return err
	}
	x.exists = false
	return nil
}

// deleteTree removes the document at docPath after removing every document in
// each of its sub-collections, depth first.
func (c *Client) deleteTree(ctx context.Context, docPath string) error {
	colls, err := c.store.ListCollections(ctx, docPath)
	if err != nil {
		return gluerr.Newf(gluerr.Persistence, err, "docglue: cascade stopped listing collections of %q", docPath)
	}
	for _, name := range colls {
		collPath := docPath + "/" + name
		it, err := c.store.RunQuery(ctx, collPath, &driver.Query{})
		if err != nil {
			return gluerr.Newf(gluerr.Persistence, err, "docglue: cascade stopped at %q", collPath)
		}
		for {
			id, _, err := it.Next(ctx)
			if err == io.EOF {
				break
			}
			if err != nil {
				it.Stop()
				return gluerr.Newf(gluerr.Persistence, err, "docglue: cascade stopped at %q", collPath)
			}
			if err := c.deleteTree(ctx, collPath+"/"+id); err != nil {
				it.Stop()
				return err
			}
		}
	}
	if err := c.store.DeleteDocument(ctx, docPath); err != nil && c.store.ErrorCode(err) != gluerr.NotFound {
		return gluerr.Newf(gluerr.Persistence, err, "docglue: cascade stopped deleting %q", docPath)
	}
	return nil
}
