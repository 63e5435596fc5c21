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

// Package driver defines the interface to be implemented by docglue storage
// drivers, which the docglue package uses to interact with the underlying
// document store. Application code should use package docglue.
package driver // import "docglue.dev/driver"

import (
	"context"

	"docglue.dev/gluerrors"
)

// A Store is a document database, or one database's worth of it: an addressable
// tree of collections and documents.
//
// Document paths are slash-separated and alternate collection names with
// document IDs: "rooms/r1/messages/m1" is document "m1" in the "messages"
// collection under document "rooms/r1". Collection paths have an odd number of
// segments, document paths an even number.
type Store interface {
	// GetDocument returns the fields of the document at docPath.
	// A missing document is a NotFound coded error.
	// The returned map must not alias the store's internal state.
	GetDocument(ctx context.Context, docPath string) (map[string]interface{}, error)

	// SetDocument writes fields to the document at docPath, creating it if
	// necessary. If merge is true only the given fields are written and any
	// others already stored are kept; if merge is false the document is
	// replaced whole.
	SetDocument(ctx context.Context, docPath string, fields map[string]interface{}, merge bool) error

	// DeleteDocument removes the document at docPath. Deleting a missing
	// document is not an error.
	DeleteDocument(ctx context.Context, docPath string) error

	// RunQuery executes q against the immediate documents of collPath and
	// returns an iterator over the matches. The iterator is finite and not
	// restartable.
	RunQuery(ctx context.Context, collPath string, q *Query) (DocumentIterator, error)

	// NewDocumentID returns a fresh document ID for collPath, unique with
	// high probability.
	NewDocumentID(ctx context.Context, collPath string) (string, error)

	// ListCollections returns the names of the non-empty collections nested
	// directly under the document at docPath.
	ListCollections(ctx context.Context, docPath string) ([]string, error)

	// ErrorCode returns a code that describes the error, which was returned by
	// one of the other methods in this interface.
	ErrorCode(error) gluerrors.ErrorCode

	// Close cleans up any resources used by the Store.
	Close() error
}

// A Query restricts, orders and bounds the documents returned by
// Store.RunQuery. The zero value matches every document in the collection.
type Query struct {
	// Filters are conditions a document must satisfy; multiple filters
	// combine with AND, in order.
	Filters []Filter

	// OrderByField is the field to use for sorting the results. Empty means
	// the order is unspecified.
	OrderByField string

	// OrderAscending specifies the sort direction.
	OrderAscending bool

	// Limit sets the maximum number of results. Zero or negative means no
	// limit.
	Limit int

	// Offset is the number of matching documents to skip before the first
	// result.
	Offset int
}

// A Filter is a single condition on a document field.
// If the value is a number, the filter uses numeric comparison.
// If the value is a string, the filter uses UTF-8 string comparison.
type Filter struct {
	Field string      // the field to filter
	Op    string      // one of =, >, >=, <, <=, in, not-in
	Value interface{} // the value to compare using the operation
}

// A DocumentIterator iterates through the results of a query.
type DocumentIterator interface {
	// Next returns the ID and fields of the next matching document.
	// When there are no more results, it returns io.EOF.
	// Once Next returns a non-nil error, it will never be called again.
	Next(ctx context.Context) (id string, fields map[string]interface{}, err error)

	// Stop terminates the iterator before Next returns io.EOF, allowing any
	// cleanup needed.
	Stop()
}

// EqualOp is the name of the equality operator.
// It is defined here to avoid confusion between "=" and "==".
const EqualOp = "="
