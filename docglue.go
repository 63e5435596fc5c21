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
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"docglue.dev/driver"
	"docglue.dev/internal/gluerr"
	"docglue.dev/internal/otel"
)

const pkgName = "docglue.dev"

// A Client binds models to a storage driver. It is safe for concurrent use;
// the instances it produces are not.
type Client struct {
	store    driver.Store
	provider string
	tracer   *otel.Tracer
	metrics  *otel.MetricSet
	mu       sync.Mutex
	closed   bool
}

// NewClient makes a Client backed by the given store.
func NewClient(s driver.Store) *Client {
	provider := otel.ProviderName(s)
	c := &Client{
		store:    s,
		provider: provider,
		tracer:   otel.NewTracer(pkgName, provider),
		metrics:  otel.NewMetricSet(pkgName),
	}
	_, file, lineno, ok := runtime.Caller(1)
	runtime.SetFinalizer(c, func(c *Client) {
		c.mu.Lock()
		closed := c.closed
		c.mu.Unlock()
		if !closed {
			var caller string
			if ok {
				caller = fmt.Sprintf(" (%s:%d)", file, lineno)
			}
			log.Printf("A docglue.Client was never closed%s", caller)
		}
	})
	return c
}

var errClosed = gluerr.Newf(gluerr.FailedPrecondition, nil, "docglue: Client has been closed")

// Close releases any resources used by the underlying store.
func (c *Client) Close() error {
	c.mu.Lock()
	prev := c.closed
	c.closed = true
	c.mu.Unlock()
	if prev {
		return errClosed
	}
	return c.wrapError(c.store.Close())
}

func (c *Client) checkClosed() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errClosed
	}
	return nil
}

// instrument starts a span for a public operation. The returned function ends
// the span and records latency and call-count metrics; call it with the
// operation's error.
func (c *Client) instrument(ctx context.Context, method string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, method)
	return ctx, func(err error) {
		c.tracer.End(span, err)
		c.metrics.Record(ctx, method, c.provider, err, time.Since(start))
	}
}

// wrapError attributes an error from the store to a code. Errors the store
// cannot categorize become Persistence errors; docglue errors pass unchanged.
func (c *Client) wrapError(err error) error {
	if err == nil {
		return nil
	}
	if gluerr.DoNotWrap(err) {
		return err
	}
	code := c.store.ErrorCode(err)
	if code == gluerr.Unknown {
		code = gluerr.Persistence
	}
	return gluerr.New(code, err, 2, "docglue")
}

// Collection binds a model to the client's store. parentIDs fill the model's
// collection path placeholders positionally; the count must match.
func (c *Client) Collection(m *Model, parentIDs ...string) (*Collection, error) {
	path, err := m.resolvePath(parentIDs)
	if err != nil {
		return nil, err
	}
	return &Collection{
		client:    c,
		model:     m,
		parentIDs: append([]string(nil), parentIDs...),
		path:      path,
	}, nil
}

// A Collection is one model's documents under one resolved collection path.
type Collection struct {
	client    *Client
	model     *Model
	parentIDs []string
	path      string
}

// Model returns the collection's model.
func (c *Collection) Model() *Model { return c.model }

// Path returns the resolved collection path.
func (c *Collection) Path() string { return c.path }

func (c *Collection) docPath(id string) string {
	return c.path + "/" + id
}

// Create returns a new, unpersisted instance with the model's defaults
// applied. Fields with a declared default start dirty so the first Put writes
// them.
func (c *Collection) Create() *Instance {
	x := &Instance{
		coll:   c,
		values: map[string]interface{}{},
		intact: map[string]interface{}{},
		dirty:  map[string]bool{},
	}
	for _, p := range c.model.props {
		if v := p.defaultValue(); v != nil {
			x.values[p.name] = v
			x.dirty[p.name] = true
		}
	}
	return x
}

// GetByID fetches the document with the given ID. An absent document is not
// an error: GetByID returns (nil, nil).
func (c *Collection) GetByID(ctx context.Context, id string) (x *Instance, err error) {
	if err := c.client.checkClosed(); err != nil {
		return nil, err
	}
	ctx, end := c.client.instrument(ctx, "Collection.GetByID")
	defer func() { end(err) }()

	raw, err := c.client.store.GetDocument(ctx, c.docPath(id))
	if err != nil {
		if c.client.store.ErrorCode(err) == gluerr.NotFound {
			return nil, nil
		}
		return nil, c.client.wrapError(err)
	}
	return c.hydrate(id, raw)
}

// GetByIDs fetches several documents at once. Absent documents are skipped;
// the result preserves the order of ids.
func (c *Collection) GetByIDs(ctx context.Context, ids []string) ([]*Instance, error) {
	var xs []*Instance
	for _, id := range ids {
		x, err := c.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if x != nil {
			xs = append(xs, x)
		}
	}
	return xs, nil
}

// Exists reports whether a document with the given ID is persisted.
func (c *Collection) Exists(ctx context.Context, id string) (bool, error) {
	x, err := c.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return x != nil, nil
}

// All fetches every document in the collection. It is shorthand for an
// unfiltered query.
func (c *Collection) All(ctx context.Context) ([]*Instance, error) {
	return c.Query().All(ctx)
}

// hydrate builds an instance from a stored document: exists=true, no dirty
// fields, every stored field deserialized through its descriptor.
func (c *Collection) hydrate(id string, raw map[string]interface{}) (*Instance, error) {
	x := &Instance{
		coll:      c,
		id:        id,
		exists:    true,
		persisted: true,
		values:    map[string]interface{}{},
		intact:    map[string]interface{}{},
		dirty:     map[string]bool{},
	}
	for _, p := range c.model.props {
		if p.kind == ComputedKind || p.transient {
			continue
		}
		rv, ok := raw[p.name]
		if !ok {
			continue
		}
		v, err := p.deserialize(rv)
		if err != nil {
			return nil, gluerr.Newf(gluerr.Internal, err, "docglue: model %q: stored field %q cannot be decoded", c.model.name, p.name)
		}
		x.values[p.name] = v
		x.intact[p.name] = v
	}
	return x, nil
}

// CreateFromMap builds an instance from values, validates it and writes it.
// A non-empty values["id"] names the document; it must match the model's ID
// pattern.
func (c *Collection) CreateFromMap(ctx context.Context, values map[string]interface{}) (*Instance, error) {
	x := c.Create()
	if id, ok := values[idKey].(string); ok && id != "" {
		if err := x.SetID(id); err != nil {
			return nil, err
		}
	}
	if err := x.FromMap(values); err != nil {
		return nil, err
	}
	if err := x.Put(ctx); err != nil {
		return nil, err
	}
	return x, nil
}

// UpdateFromMap applies values to the existing document named by values["id"]
// and writes the changes. A missing document is a NotFound error.
func (c *Collection) UpdateFromMap(ctx context.Context, values map[string]interface{}) (*Instance, error) {
	id, _ := values[idKey].(string)
	if id == "" {
		return nil, gluerr.Newf(gluerr.InvalidArgument, nil, "docglue: model %q: %q not found in values", c.model.name, idKey)
	}
	x, err := c.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if x == nil {
		return nil, gluerr.Newf(gluerr.NotFound, nil, "docglue: model %q: no document with ID %q", c.model.name, id)
	}
	if err := x.FromMap(values); err != nil {
		return nil, err
	}
	if err := x.Put(ctx); err != nil {
		return nil, err
	}
	return x, nil
}

// UpsertFromMap updates the document named by values["id"] if it exists and
// creates it otherwise.
func (c *Collection) UpsertFromMap(ctx context.Context, values map[string]interface{}) (*Instance, error) {
	id, _ := values[idKey].(string)
	if id == "" {
		return nil, gluerr.Newf(gluerr.InvalidArgument, nil, "docglue: model %q: %q not found in values", c.model.name, idKey)
	}
	ok, err := c.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if ok {
		return c.UpdateFromMap(ctx, values)
	}
	return c.CreateFromMap(ctx, values)
}
