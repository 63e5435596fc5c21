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

// Package memstore provides an in-process in-memory implementation of the
// docglue driver API. It is suitable for local development and testing.
//
// Documents live in a single flat map keyed by document path, so nested
// sub-collections come for free. With a non-empty Options.Filename the
// store's contents survive across processes: the file is loaded on open and
// written on Close.
package memstore // import "docglue.dev/memstore"

import (
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"docglue.dev/driver"
	"docglue.dev/gluerrors"
	"docglue.dev/internal/gluerr"
)

func init() {
	// Stored field values are interface-typed; gob needs the concrete types
	// up front.
	gob.Register(map[string]interface{}{})
	gob.Register([]interface{}{})
	gob.Register(time.Time{})
}

// Options are optional arguments to New.
type Options struct {
	// The filename associated with this store.
	// When a store is opened with a non-empty filename, its contents are
	// loaded from the file if it exists. Otherwise, an empty store is
	// created. When the store is closed, its contents are saved to the file.
	Filename string
}

// storedFields is one document's worth of stored state. Even though callers
// hand us map[string]interface{}, we keep our own deep copy.
type storedFields map[string]interface{}

type mapOfDocs = map[string]storedFields

// A Store is an in-memory implementation of driver.Store.
type Store struct {
	opts *Options
	mu   sync.Mutex
	docs mapOfDocs
}

// New creates an in-memory Store.
func New(opts *Options) (*Store, error) {
	if opts == nil {
		opts = &Options{}
	}
	docs, err := loadDocs(opts.Filename)
	if err != nil {
		return nil, err
	}
	return &Store{opts: opts, docs: docs}, nil
}

// GetDocument implements driver.Store.GetDocument.
func (s *Store) GetDocument(ctx context.Context, docPath string) (map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !driver.IsDocumentPath(docPath) {
		return nil, gluerr.Newf(gluerr.InvalidArgument, nil, "memstore: %q is not a document path", docPath)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[docPath]
	if !ok {
		return nil, gluerr.Newf(gluerr.NotFound, nil, "memstore: document %q does not exist", docPath)
	}
	return deepCopyMap(doc), nil
}

// SetDocument implements driver.Store.SetDocument. When merging, a nil value
// deletes the stored field.
func (s *Store) SetDocument(ctx context.Context, docPath string, fields map[string]interface{}, merge bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !driver.IsDocumentPath(docPath) {
		return gluerr.Newf(gluerr.InvalidArgument, nil, "memstore: %q is not a document path", docPath)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var doc storedFields
	if merge {
		doc = deepCopyMap(s.docs[docPath]) // copies nil to empty
		for k, v := range fields {
			if v == nil {
				delete(doc, k)
			} else {
				doc[k] = deepCopyValue(v)
			}
		}
	} else {
		doc = storedFields{}
		for k, v := range fields {
			if v != nil {
				doc[k] = deepCopyValue(v)
			}
		}
	}
	s.docs[docPath] = doc
	return nil
}

// DeleteDocument implements driver.Store.DeleteDocument.
func (s *Store) DeleteDocument(ctx context.Context, docPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !driver.IsDocumentPath(docPath) {
		return gluerr.Newf(gluerr.InvalidArgument, nil, "memstore: %q is not a document path", docPath)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, docPath)
	return nil
}

// NewDocumentID implements driver.Store.NewDocumentID.
func (s *Store) NewDocumentID(ctx context.Context, collPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !driver.IsCollectionPath(collPath) {
		return "", gluerr.Newf(gluerr.InvalidArgument, nil, "memstore: %q is not a collection path", collPath)
	}
	return driver.UniqueString(), nil
}

// ListCollections implements driver.Store.ListCollections.
func (s *Store) ListCollections(ctx context.Context, docPath string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !driver.IsDocumentPath(docPath) {
		return nil, gluerr.Newf(gluerr.InvalidArgument, nil, "memstore: %q is not a document path", docPath)
	}
	prefix := docPath + "/"
	seen := map[string]bool{}
	s.mu.Lock()
	for path := range s.docs {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		rest := path[len(prefix):]
		if i := strings.IndexByte(rest, '/'); i > 0 {
			seen[rest[:i]] = true
		}
	}
	s.mu.Unlock()
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ErrorCode implements driver.Store.ErrorCode.
func (s *Store) ErrorCode(err error) gluerrors.ErrorCode {
	return gluerrors.Code(err)
}

// Close implements driver.Store.Close. If the store was created with a
// Filename option, Close writes the store's documents to the file.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveDocs(s.opts.Filename, s.docs)
}

func deepCopyMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v interface{}) interface{} {
	switch v := v.(type) {
	case map[string]interface{}:
		return deepCopyMap(v)
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, e := range v {
			out[i] = deepCopyValue(e)
		}
		return out
	default:
		return v
	}
}

// loadDocs reads a map from the filename if it is not empty and the file
// exists. Otherwise it returns an empty (not nil) map.
func loadDocs(filename string) (mapOfDocs, error) {
	if filename == "" {
		return mapOfDocs{}, nil
	}
	f, err := os.Open(filename)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		// If the file doesn't exist, return an empty map without error.
		return mapOfDocs{}, nil
	}
	defer f.Close()
	var m mapOfDocs
	if err := gob.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode from %q: %v", filename, err)
	}
	return m, nil
}

// saveDocs saves m to filename if filename is not empty.
func saveDocs(filename string, m mapOfDocs) error {
	if filename == "" {
		return nil
	}
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(m); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode to %q: %v", filename, err)
	}
	return f.Close()
}
