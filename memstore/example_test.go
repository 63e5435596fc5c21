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

package memstore_test

import (
	"log"

	"docglue.dev"
	"docglue.dev/memstore"
)

func ExampleNew() {
	store, err := memstore.New(nil)
	if err != nil {
		log.Fatal(err)
	}
	client := docglue.NewClient(store)
	defer client.Close()
	// Output:
}

func ExampleNew_withFile() {
	// With a filename, the store's contents are loaded on open and written
	// back on Close.
	store, err := memstore.New(&memstore.Options{Filename: "/tmp/fruit.gob"})
	if err != nil {
		log.Fatal(err)
	}
	client := docglue.NewClient(store)
	defer client.Close()
	// Output:
}
