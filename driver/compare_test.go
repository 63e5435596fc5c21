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
	"math"
	"testing"
	"time"
)

func TestCompareNumbers(t *testing.T) {
	check := func(n1, n2 interface{}, want int) {
		t.Helper()
		got, err := CompareNumbers(n1, n2)
		if err != nil {
			t.Fatalf("CompareNumbers(%v, %v): %v", n1, n2, err)
		}
		if got != want {
			t.Errorf("CompareNumbers(%v, %v) = %d, want %d", n1, n2, got, want)
		}
	}

	check(1, 1, 0)
	check(1, 2, -1)
	check(2, 1, 1)
	check(1.5, 1, 1)
	check(int64(3), 3.0, 0)
	check(uint(4), int8(5), -1)
	// A large int64 survives comparison with a float64 that would collide
	// after conversion.
	check(int64(math.MaxInt64), float64(math.MaxInt64), -1)
}

func TestCompareNumbersError(t *testing.T) {
	if _, err := CompareNumbers("1", 1); err == nil {
		t.Error("got nil, want error")
	}
}

func TestCompareTimes(t *testing.T) {
	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Second)
	if got := CompareTimes(t1, t2); got != -1 {
		t.Errorf("got %d, want -1", got)
	}
	if got := CompareTimes(t2, t1); got != 1 {
		t.Errorf("got %d, want 1", got)
	}
	if got := CompareTimes(t1, t1); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
}
