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

	"docglue.dev/driver"
	"docglue.dev/internal/gluerr"
)

// Sort directions for Query.OrderBy.
const (
	Ascending  = "asc"
	Descending = "desc"
)

// A Query filters, orders and slices the documents of a collection. Build it
// with chained calls, then run it with Get or All. Build errors are deferred
// until the query runs.
type Query struct {
	coll *Collection
	dq   driver.Query
	err  error
}

// Query returns a new query over the collection's documents.
func (c *Collection) Query() *Query {
	return &Query{coll: c}
}

// Where adds a filter. Valid ops are "=", ">", "<", ">=", "<=", "in" and
// "not-in". The value is coerced by the named field's descriptor; for "in"
// and "not-in" the value must be a slice and each element is coerced.
func (q *Query) Where(field, op string, value interface{}) *Query {
	if q.err != nil {
		return q
	}
	p := q.coll.model.byName[field]
	if p == nil {
		return q.invalidf("no field %q", field)
	}
	if p.kind == ComputedKind || p.transient {
		return q.invalidf("field %q cannot be filtered on", field)
	}
	switch op {
	case "=", ">", "<", ">=", "<=":
		cv, err := p.coerce(value)
		if err != nil {
			q.err = err
			return q
		}
		value = cv
	case "in", "not-in":
		vs, ok := value.([]interface{})
		if !ok {
			return q.invalidf("%q filter on %q needs a []interface{} value, got %T", op, field, value)
		}
		cvs := make([]interface{}, len(vs))
		for i, v := range vs {
			cv, err := p.coerce(v)
			if err != nil {
				q.err = err
				return q
			}
			cvs[i] = cv
		}
		value = cvs
	default:
		return q.invalidf("invalid filter operator %q", op)
	}
	q.dq.Filters = append(q.dq.Filters, driver.Filter{Field: field, Op: op, Value: value})
	return q
}

// OrderBy sorts the results by a field. direction is Ascending or Descending.
// At most one OrderBy is supported.
func (q *Query) OrderBy(field, direction string) *Query {
	if q.err != nil {
		return q
	}
	if q.dq.OrderByField != "" {
		return q.invalidf("query can have at most one OrderBy")
	}
	p := q.coll.model.byName[field]
	if p == nil {
		return q.invalidf("no field %q", field)
	}
	if p.kind == ComputedKind || p.transient {
		return q.invalidf("field %q cannot be ordered on", field)
	}
	switch direction {
	case Ascending, Descending:
	default:
		return q.invalidf("invalid sort direction %q", direction)
	}
	q.dq.OrderByField = field
	q.dq.OrderAscending = direction == Ascending
	return q
}

// Limit caps the number of results. n must be positive.
func (q *Query) Limit(n int) *Query {
	if q.err != nil {
		return q
	}
	if n <= 0 {
		return q.invalidf("limit must be positive, got %d", n)
	}
	if q.dq.Limit > 0 {
		return q.invalidf("query can have at most one Limit")
	}
	q.dq.Limit = n
	return q
}

// Offset skips the first n results. n must not be negative.
func (q *Query) Offset(n int) *Query {
	if q.err != nil {
		return q
	}
	if n < 0 {
		return q.invalidf("offset must not be negative, got %d", n)
	}
	q.dq.Offset = n
	return q
}

func (q *Query) invalidf(format string, args ...interface{}) *Query {
	q.err = gluerr.Newf(gluerr.InvalidArgument, nil, "docglue: model %q: "+format,
		append([]interface{}{q.coll.model.name}, args...)...)
	return q
}

// Get runs the query and returns an iterator over the matching documents.
func (q *Query) Get(ctx context.Context) (it *Iterator, err error) {
	c := q.coll
	if err := c.client.checkClosed(); err != nil {
		return nil, err
	}
	if q.err != nil {
		return nil, q.err
	}
	ctx, end := c.client.instrument(ctx, "Query.Get")
	defer func() { end(err) }()

	dq := q.dq
	dit, err := c.client.store.RunQuery(ctx, c.path, &dq)
	if err != nil {
		return nil, c.client.wrapError(err)
	}
	return &Iterator{coll: c, dit: dit}, nil
}

// All runs the query and collects every result.
func (q *Query) All(ctx context.Context) ([]*Instance, error) {
	it, err := q.Get(ctx)
	if err != nil {
		return nil, err
	}
	defer it.Stop()
	var xs []*Instance
	for {
		x, err := it.Next(ctx)
		if err == io.EOF {
			return xs, nil
		}
		if err != nil {
			return nil, err
		}
		xs = append(xs, x)
	}
}

// An Iterator walks query results. Always call Stop when done.
type Iterator struct {
	coll *Collection
	dit  driver.DocumentIterator
}

// Next returns the next result, or io.EOF when there are no more.
func (it *Iterator) Next(ctx context.Context) (*Instance, error) {
	id, raw, err := it.dit.Next(ctx)
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, it.coll.client.wrapError(err)
	}
	return it.coll.hydrate(id, raw)
}

// Stop releases the iterator's resources. It may be called multiple times.
func (it *Iterator) Stop() { it.dit.Stop() }
