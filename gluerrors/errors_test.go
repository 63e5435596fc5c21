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

package gluerrors

import (
	"errors"
	"fmt"
	"testing"

	"docglue.dev/internal/gluerr"
)

func TestCode(t *testing.T) {
	for _, test := range []struct {
		err  error
		want ErrorCode
	}{
		{nil, OK},
		{errors.New("not a docglue error"), Unknown},
		{gluerr.Newf(NotFound, nil, "absent"), NotFound},
		{fmt.Errorf("wrapping: %w", gluerr.Newf(TypeMismatch, nil, "bad type")), TypeMismatch},
	} {
		if got := Code(test.err); got != test.want {
			t.Errorf("Code(%v) = %v, want %v", test.err, got, test.want)
		}
	}
}
