// Copyright 2026 The xdeps Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package toposort_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/opennumeric/xdeps/errors"
	"github.com/opennumeric/xdeps/internal/core/toposort"
)

func indexOf(order []string, n string) int {
	for i, x := range order {
		if x == n {
			return i
		}
	}
	return -1
}

func TestSortLinearChain(t *testing.T) {
	succ := map[string][]string{
		"a": {"b"},
		"b": {"c"},
	}
	order, err := toposort.Sort([]string{"a"}, func(n string) []string { return succ[n] })
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.DeepEquals(order, []string{"a", "b", "c"}))
}

func TestSortDiamond(t *testing.T) {
	// a -> x, a -> y, x -> z, y -> z
	succ := map[string][]string{
		"a": {"x", "y"},
		"x": {"z"},
		"y": {"z"},
	}
	order, err := toposort.Sort([]string{"a"}, func(n string) []string { return succ[n] })
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.HasLen(order, 4))
	if indexOf(order, "a") > indexOf(order, "x") || indexOf(order, "a") > indexOf(order, "y") {
		t.Fatalf("a must precede x and y: %v", order)
	}
	if indexOf(order, "x") > indexOf(order, "z") || indexOf(order, "y") > indexOf(order, "z") {
		t.Fatalf("z must come after both x and y: %v", order)
	}
}

func TestSortUnreachableNodesExcluded(t *testing.T) {
	succ := map[string][]string{
		"a": {"b"},
		"c": {"d"},
	}
	order, err := toposort.Sort([]string{"a"}, func(n string) []string { return succ[n] })
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.DeepEquals(order, []string{"a", "b"}))
}

func TestSortNodeWithNoSuccessors(t *testing.T) {
	order, err := toposort.Sort([]string{"lonely"}, func(n string) []string { return nil })
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.DeepEquals(order, []string{"lonely"}))
}

func TestSortCycleDetected(t *testing.T) {
	succ := map[string][]string{
		"a": {"b"},
		"b": {"a"},
	}
	_, err := toposort.Sort([]string{"a"}, func(n string) []string { return succ[n] })
	qt.Assert(t, qt.Not(qt.IsNil(err)))

	var cycleErr *errors.CycleError
	qt.Assert(t, qt.IsTrue(errors.As(err, &cycleErr)))
	qt.Assert(t, qt.HasLen(cycleErr.Path, 3))
}

func TestSortSelfCycle(t *testing.T) {
	succ := map[string][]string{"a": {"a"}}
	_, err := toposort.Sort([]string{"a"}, func(n string) []string { return succ[n] })
	var cycleErr *errors.CycleError
	qt.Assert(t, qt.IsTrue(errors.As(err, &cycleErr)))
}
