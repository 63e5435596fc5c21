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
	"encoding/json"
	"fmt"
	"log"

	"docglue.dev"
	"docglue.dev/memstore"
)

func Example() {
	ctx := context.Background()
	store, err := memstore.New(nil)
	if err != nil {
		log.Fatal(err)
	}
	client := docglue.NewClient(store)
	defer client.Close()

	fruit := docglue.MustNewModel("Fruit", "fruit", nil, []*docglue.Property{
		docglue.StringProperty("name", docglue.Required()),
		docglue.IntegerProperty("price", docglue.Default(0)),
	}, nil)

	coll, err := client.Collection(fruit)
	if err != nil {
		log.Fatal(err)
	}
	x := coll.Create()
	x.SetID("apple")
	x.Set("name", "apple")
	x.Set("price", 120)
	if err := x.Put(ctx); err != nil {
		log.Fatal(err)
	}

	got, err := coll.GetByID(ctx, "apple")
	if err != nil {
		log.Fatal(err)
	}
	name, _ := got.GetString("name")
	price, _ := got.GetInt("price")
	fmt.Printf("%s costs %d\n", name, price)

	// Output:
	// apple costs 120
}

func ExampleModel_Schema() {
	fruit := docglue.MustNewModel("Fruit", "fruit", nil, []*docglue.Property{
		docglue.StringProperty("name", docglue.Required()),
		docglue.IntegerProperty("price"),
	}, nil)
	b, err := json.Marshal(fruit.Schema())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(b))

	// Output:
	// {"type":"object","required":["name"],"properties":{"id":{"type":"string"},"name":{"type":"string"},"price":{"type":"number"}}}
}

func ExampleQuery() {
	ctx := context.Background()
	store, err := memstore.New(nil)
	if err != nil {
		log.Fatal(err)
	}
	client := docglue.NewClient(store)
	defer client.Close()

	fruit := docglue.MustNewModel("Fruit", "fruit", nil, []*docglue.Property{
		docglue.StringProperty("name", docglue.Required()),
		docglue.IntegerProperty("price"),
	}, nil)
	coll, err := client.Collection(fruit)
	if err != nil {
		log.Fatal(err)
	}
	for name, price := range map[string]int{"apple": 120, "banana": 80, "cherry": 300} {
		x := coll.Create()
		x.SetID(name)
		x.Set("name", name)
		x.Set("price", price)
		if err := x.Put(ctx); err != nil {
			log.Fatal(err)
		}
	}

	cheap, err := coll.Query().
		Where("price", "<", 200).
		OrderBy("price", docglue.Ascending).
		All(ctx)
	if err != nil {
		log.Fatal(err)
	}
	for _, x := range cheap {
		name, _ := x.GetString("name")
		fmt.Println(name)
	}

	// Output:
	// banana
	// apple
}
