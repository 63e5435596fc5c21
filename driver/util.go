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

package driver

import (
	"strings"

	"github.com/google/uuid"
)

// UniqueString generates a string that is unique with high probability.
// Driver implementations can use it to generate document IDs.
func UniqueString() string { return uuid.New().String() }

// IsDocumentPath reports whether path addresses a document: a non-empty
// slash-separated path with an even number of non-empty segments.
func IsDocumentPath(path string) bool {
	n, ok := countSegments(path)
	return ok && n%2 == 0
}

// IsCollectionPath reports whether path addresses a collection: a non-empty
// slash-separated path with an odd number of non-empty segments.
func IsCollectionPath(path string) bool {
	n, ok := countSegments(path)
	return ok && n%2 == 1
}

func countSegments(path string) (int, bool) {
	if path == "" {
		return 0, false
	}
	segs := strings.Split(path, "/")
	for _, s := range segs {
		if s == "" {
			return 0, false
		}
	}
	return len(segs), true
}
