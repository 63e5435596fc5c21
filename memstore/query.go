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

package memstore

import (
	"context"
	"io"
	"reflect"
	"sort"
	"strings"
	"time"

	"docglue.dev/driver"
	"docglue.dev/internal/gluerr"
)

// RunQuery implements driver.Store.RunQuery. It scans the immediate
// documents of collPath; documents in nested sub-collections are not
// considered.
func (s *Store) RunQuery(ctx context.Context, collPath string, q *driver.Query) (driver.DocumentIterator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !driver.IsCollectionPath(collPath) {
		return nil, gluerr.Newf(gluerr.InvalidArgument, nil, "memstore: %q is not a collection path", collPath)
	}

	s.mu.Lock()
	prefix := collPath + "/"
	var results []resultDoc
	for path, doc := range s.docs {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		id := path[len(prefix):]
		if strings.ContainsRune(id, '/') {
			continue
		}
		if filtersMatch(q.Filters, doc) {
			results = append(results, resultDoc{id: id, fields: deepCopyMap(doc)})
		}
	}
	s.mu.Unlock()

	if q.OrderByField != "" {
		sortDocs(results, q.OrderByField, q.OrderAscending)
	} else {
		// No declared order: fall back to ID order so results are stable.
		sort.Slice(results, func(i, j int) bool { return results[i].id < results[j].id })
	}

	if q.Offset > 0 {
		if q.Offset >= len(results) {
			results = nil
		} else {
			results = results[q.Offset:]
		}
	}
	if q.Limit > 0 && len(results) > q.Limit {
		results = results[:q.Limit]
	}

	return &docIterator{docs: results}, nil
}

type resultDoc struct {
	id     string
	fields storedFields
}

func filtersMatch(fs []driver.Filter, doc storedFields) bool {
	for _, f := range fs {
		if !filterMatches(f, doc) {
			return false
		}
	}
	return true
}

func filterMatches(f driver.Filter, doc storedFields) bool {
	docval, ok := doc[f.Field]
	// missing field => no match
	if !ok {
		return false
	}
	c, ok := compare(docval, f.Value)
	if !ok {
		return false
	}
	return applyComparison(f.Op, c)
}

// op is one of the permitted filter operators ("=", "<", etc.)
// c is the result of strings.Compare or the like.
func applyComparison(op string, c int) bool {
	switch op {
	case driver.EqualOp:
		return c == 0
	case ">":
		return c > 0
	case "<":
		return c < 0
	case ">=":
		return c >= 0
	case "<=":
		return c <= 0
	case "in":
		return c == 0
	case "not-in":
		return c != 0
	default:
		return false
	}
}

func compare(x1, x2 interface{}) (int, bool) {
	v1 := reflect.ValueOf(x1)
	v2 := reflect.ValueOf(x2)
	// For in/not-in filters: 0 if x1 is an element of slice x2, -1 if not.
	if v2.Kind() == reflect.Slice {
		for i := 0; i < v2.Len(); i++ {
			if c, ok := compare(x1, v2.Index(i).Interface()); ok && c == 0 {
				return 0, true
			}
		}
		return -1, true
	}
	if v1.Kind() == reflect.String && v2.Kind() == reflect.String {
		return strings.Compare(v1.String(), v2.String()), true
	}
	if cmp, err := driver.CompareNumbers(x1, x2); err == nil {
		return cmp, true
	}
	if t1, ok := x1.(time.Time); ok {
		if t2, ok := x2.(time.Time); ok {
			return driver.CompareTimes(t1, t2), true
		}
	}
	if v1.Kind() == reflect.Bool && v2.Kind() == reflect.Bool {
		if v1.Bool() == v2.Bool() {
			return 0, true
		}
		return -1, true
	}
	return 0, false
}

func sortDocs(docs []resultDoc, field string, asc bool) {
	sort.Slice(docs, func(i, j int) bool {
		c, ok := compare(docs[i].fields[field], docs[j].fields[field])
		if !ok {
			return false
		}
		if asc {
			return c < 0
		}
		return c > 0
	})
}

type docIterator struct {
	docs []resultDoc
	err  error
}

func (it *docIterator) Next(ctx context.Context) (string, map[string]interface{}, error) {
	if it.err != nil {
		return "", nil, it.err
	}
	if err := ctx.Err(); err != nil {
		it.err = err
		return "", nil, err
	}
	if len(it.docs) == 0 {
		it.err = io.EOF
		return "", nil, io.EOF
	}
	doc := it.docs[0]
	it.docs = it.docs[1:]
	return doc.id, doc.fields, nil
}

func (it *docIterator) Stop() { it.err = io.EOF }
