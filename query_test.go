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

package docglue_test

import (
	"context"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"

	"docglue.dev"
	"docglue.dev/gluerrors"
)

func seedFruit(t *testing.T, coll *docglue.Collection) {
	t.Helper()
	ctx := context.Background()
	for _, f := range []struct {
		id    string
		name  string
		price int
		stock bool
	}{
		{"apple", "apple", 120, true},
		{"banana", "banana", 80, true},
		{"cherry", "cherry", 300, false},
		{"durian", "durian", 1500, true},
	} {
		x := coll.Create()
		if err := x.SetID(f.id); err != nil {
			t.Fatal(err)
		}
		x.Set("name", f.name)
		x.Set("price", f.price)
		x.Set("in_stock", f.stock)
		if err := x.Put(ctx); err != nil {
			t.Fatal(err)
		}
	}
}

func queryIDs(t *testing.T, q *docglue.Query) []string {
	t.Helper()
	xs, err := q.All(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, x := range xs {
		ids = append(ids, x.ID())
	}
	return ids
}

func TestQuery(t *testing.T) {
	_, coll := newFruitCollection(t)
	seedFruit(t, coll)

	for _, test := range []struct {
		desc string
		q    *docglue.Query
		want []string
	}{
		{
			"equality",
			coll.Query().Where("name", "=", "banana"),
			[]string{"banana"},
		},
		{
			"range",
			coll.Query().Where("price", ">=", 120).OrderBy("price", docglue.Ascending),
			[]string{"apple", "cherry", "durian"},
		},
		{
			"two filters",
			coll.Query().Where("price", "<", 500).Where("in_stock", "=", true),
			[]string{"apple", "banana"},
		},
		{
			"in",
			coll.Query().Where("name", "in", []interface{}{"apple", "cherry"}),
			[]string{"apple", "cherry"},
		},
		{
			"not-in",
			coll.Query().Where("name", "not-in", []interface{}{"apple", "cherry"}),
			[]string{"banana", "durian"},
		},
		{
			"order descending",
			coll.Query().OrderBy("price", docglue.Descending),
			[]string{"durian", "cherry", "apple", "banana"},
		},
		{
			"limit",
			coll.Query().OrderBy("price", docglue.Ascending).Limit(2),
			[]string{"banana", "apple"},
		},
		{
			"offset",
			coll.Query().OrderBy("price", docglue.Ascending).Offset(1).Limit(2),
			[]string{"apple", "cherry"},
		},
		{
			"offset past end",
			coll.Query().Offset(10),
			nil,
		},
		{
			"no match",
			coll.Query().Where("price", ">", 10000),
			nil,
		},
	} {
		got := queryIDs(t, test.q)
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("%s: diff (-want +got):\n%s", test.desc, diff)
		}
	}
}

func TestQueryErrors(t *testing.T) {
	ctx := context.Background()
	_, coll := newFruitCollection(t)

	for _, test := range []struct {
		desc string
		q    *docglue.Query
	}{
		{"unknown field", coll.Query().Where("nope", "=", 1)},
		{"bad operator", coll.Query().Where("price", "!=", 1)},
		{"bad value type", coll.Query().Where("price", "=", "cheap")},
		{"in without slice", coll.Query().Where("name", "in", "apple")},
		{"in with bad element", coll.Query().Where("price", "in", []interface{}{1, "x"})},
		{"filter on computed", coll.Query().Where("label", "=", "x")},
		{"order on computed", coll.Query().OrderBy("label", docglue.Ascending)},
		{"bad direction", coll.Query().OrderBy("price", "sideways")},
		{"two order bys", coll.Query().OrderBy("price", docglue.Ascending).OrderBy("name", docglue.Ascending)},
		{"zero limit", coll.Query().Limit(0)},
		{"negative offset", coll.Query().Offset(-1)},
	} {
		_, err := test.q.Get(ctx)
		if code := gluerrors.Code(err); code != gluerrors.InvalidArgument && code != gluerrors.TypeMismatch {
			t.Errorf("%s: got %v, want InvalidArgument or TypeMismatch", test.desc, err)
		}
	}
}

func TestIterator(t *testing.T) {
	ctx := context.Background()
	_, coll := newFruitCollection(t)
	seedFruit(t, coll)

	it, err := coll.Query().OrderBy("name", docglue.Ascending).Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer it.Stop()
	var n int
	for {
		x, err := it.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		if x.ID() == "" || !x.Exists() {
			t.Errorf("bad instance from iterator: %v", x.ID())
		}
		n++
	}
	if n != 4 {
		t.Errorf("got %d results, want 4", n)
	}
	// Next after EOF keeps returning EOF.
	if _, err := it.Next(ctx); err != io.EOF {
		t.Errorf("got %v, want io.EOF", err)
	}
}
