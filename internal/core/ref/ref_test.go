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

package ref_test

import (
	"math"
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/opennumeric/xdeps/errors"
	"github.com/opennumeric/xdeps/internal/container"
	"github.com/opennumeric/xdeps/internal/core/ref"
)

func newRootMap(t *testing.T) (*ref.Root, *container.Map) {
	t.Helper()
	m := container.NewMap()
	return ref.NewRoot("x", m), m
}

func TestAttrIsMemoizedPerOwner(t *testing.T) {
	root, _ := newRootMap(t)
	a1 := root.Attr("name")
	a2 := root.Attr("name")
	qt.Assert(t, qt.Equals(a1, a2))
}

func TestItemIsMemoizedPerOwner(t *testing.T) {
	root, _ := newRootMap(t)
	i1 := root.Item("k")
	i2 := root.Item("k")
	qt.Assert(t, qt.Equals(i1, i2))
}

func TestItemDistinctKeysAreDistinctRefs(t *testing.T) {
	root, _ := newRootMap(t)
	i1 := root.Item("k1")
	i2 := root.Item("k2")
	qt.Assert(t, qt.Not(qt.Equals(i1, i2)))
}

func TestGetSetValue(t *testing.T) {
	root, _ := newRootMap(t)
	a := root.Attr("name")
	qt.Assert(t, qt.IsNil(a.SetValue("hi")))
	v, err := a.GetValue()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v, "hi"))
}

func TestBinOpString(t *testing.T) {
	root, _ := newRootMap(t)
	expr := root.Item("a").Add(root.Item("b"))
	qt.Assert(t, qt.Equals(expr.String(), "(x[\"a\"] + x[\"b\"])"))
}

func TestUnOpString(t *testing.T) {
	root, _ := newRootMap(t)
	expr := root.Item("a").Neg()
	qt.Assert(t, qt.Equals(expr.String(), "(-x[\"a\"])"))
}

func TestEqBuildsExpressionNotBool(t *testing.T) {
	root, _ := newRootMap(t)
	a := root.Item("a")
	qt.Assert(t, qt.IsNil(a.SetValue(5)))
	eq := a.Eq(a)
	// r == r builds a value-true expression, while the two ref instances
	// remain identity-equal and share a hash.
	qt.Assert(t, qt.Equals(eq.Kind(), ref.BinOpKind))
	v, err := eq.GetValue()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v, true))
	qt.Assert(t, qt.Equals(a, a))
	qt.Assert(t, qt.Equals(a.Hash(), a.Hash()))
}

func TestDivisionByZeroYieldsNaN(t *testing.T) {
	root, _ := newRootMap(t)
	qt.Assert(t, qt.IsNil(root.Item("a").SetValue(1)))
	qt.Assert(t, qt.IsNil(root.Item("b").SetValue(0)))
	expr := root.Item("a").TrueDiv(root.Item("b"))
	v, err := expr.GetValue()
	qt.Assert(t, qt.IsNil(err))
	f, ok := v.(float64)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.IsTrue(math.IsNaN(f)))
}

func TestIntPlusIntStaysInt(t *testing.T) {
	root, _ := newRootMap(t)
	qt.Assert(t, qt.IsNil(root.Item("a").SetValue(3)))
	qt.Assert(t, qt.IsNil(root.Item("b").SetValue(4)))
	expr := root.Item("a").Add(root.Item("b"))
	v, err := expr.GetValue()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v, any(int64(7))))
}

func TestGetDependenciesCollectsWholeChain(t *testing.T) {
	root, _ := newRootMap(t)
	c := root.Item("a").Add(root.Item("b"))
	deps := ref.NewSet()
	c.GetDependencies(deps)
	qt.Assert(t, qt.Equals(deps.Len(), 3)) // root, a, b
}

func TestItemDefaultInsertsOnMissingKey(t *testing.T) {
	root, _ := newRootMap(t)
	called := 0
	it := root.ItemDefault("missing", func() any {
		called++
		return []int{}
	})
	v1, err := it.GetValue()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.DeepEquals(v1, any([]int{})))
	qt.Assert(t, qt.Equals(called, 1))

	v2, err := it.GetValue()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.DeepEquals(v2, any([]int{})))
	qt.Assert(t, qt.Equals(called, 1)) // second read must not re-default
}

func TestMissingKeyOnPlainItemErrors(t *testing.T) {
	root, _ := newRootMap(t)
	_, err := root.Item("nope").GetValue()
	qt.Assert(t, qt.Not(qt.IsNil(err)))

	var missing *errors.MissingKeyError
	qt.Assert(t, qt.IsTrue(errors.As(err, &missing)))
}

func TestBitwiseRequiresIntegers(t *testing.T) {
	root, _ := newRootMap(t)
	qt.Assert(t, qt.IsNil(root.Item("a").SetValue(1.5)))
	qt.Assert(t, qt.IsNil(root.Item("b").SetValue(2)))
	_, err := root.Item("a").And(root.Item("b")).GetValue()
	qt.Assert(t, qt.Not(qt.IsNil(err)))
}

func TestCompoundAssignmentWithoutBoundExprUsesCurrentValue(t *testing.T) {
	root, _ := newRootMap(t)
	qt.Assert(t, qt.IsNil(root.Item("a").SetValue(5)))
	incremented := root.Item("a").IAdd(1)
	v, err := incremented.GetValue()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v, any(int64(6))))
}
