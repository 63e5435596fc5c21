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

/*
Package docglue is a lightweight object-document mapper for hierarchical
document databases.

A Model describes one collection of documents: a slash-separated collection
path template whose placeholders name parent documents, and an ordered list of
typed properties. Properties coerce and validate the values assigned to them;
they can be required, carry defaults and choice lists, attach JSON Schema
fragments, stamp themselves with the write time, compute their value from the
rest of the document, or hold a constant.

	var Fruit = docglue.MustNewModel("Fruit", "fruit", nil, []*docglue.Property{
		docglue.StringProperty("name", docglue.Required()),
		docglue.IntegerProperty("price", docglue.Default(0)),
	}, nil)

A Client binds models to a storage driver. Collection hands out Instances, the
unit of reading and writing: an Instance tracks which fields changed since it
was loaded, so the first Put writes the whole document and later Puts write
only the dirty fields. Queries filter, order and slice a collection's
documents without loading them all.

Models also derive a JSON Schema description of their documents with
Model.Schema, useful for validating API payloads against the same rules the
mapper enforces.

# Drivers

The docglue.dev/driver package defines the contract a storage backend
implements; package docglue works the same on any of them. The
docglue.dev/memstore package is an in-process, in-memory driver for local
development and testing, with optional persistence to a file.

# Errors

Errors returned by this module can be inspected with docglue.dev/gluerrors:
gluerrors.Code extracts the error code (NotFound, TypeMismatch,
SchemaViolation, ...) from any error in the chain. A missing document is not
an error: Collection.GetByID returns (nil, nil).
*/
package docglue // import "docglue.dev"
