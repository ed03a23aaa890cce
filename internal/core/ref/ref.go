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

// Package ref implements the reference algebra: a symbolic expression tree
// mirroring operations on live container values, which can be evaluated or
// introspected for dependencies without performing the operation eagerly.
//
// Grounded throughout on xdeps' refs.py: every operator
// xdeps' ARef overloads (arithmetic, comparison, attribute/item access,
// call) has a corresponding constructor here that builds a new pure-value
// Ref rather than computing the operation, exactly as xdeps' __add__ etc.
// return an AddRef instead of a number.
package ref

import "github.com/opennumeric/xdeps/internal/container"

// Kind identifies a Ref's concrete variant, used by the dump/debug text
// renderer and by tests; it plays no role in evaluation.
type Kind int

const (
	RootKind Kind = iota
	AttrKind
	ItemKind
	ItemDefaultKind
	UnOpKind
	BinOpKind
	BuiltinKind
	CallKind
	LiteralKind
)

// Ref is a symbolic handle to a location or derived value. Equality of
// Refs is identity (Hash), never value equality — a.Eq(b) below builds an
// expression, it does not compare a and b.
type Ref interface {
	Kind() Kind
	// String renders the canonical, round-trippable expression text used
	// for dump/load.
	String() string
	// GetValue materializes the current value, recursively evaluating
	// children. Arithmetic domain errors (e.g. division by zero) return a
	// NaN sentinel rather than an error; other evaluation failures are
	// returned as *errors.EvaluationError-wrapped errors by callers.
	GetValue() (any, error)
	// GetDependencies appends every mutable Ref reachable from this node
	// into out, deduplicated by identity.
	GetDependencies(out *Set)
	// Hash returns this Ref's identity: a stable per-construction handle
	// for mutable variants, a structural (operator + children) hash for
	// pure-value variants. The manager never uses Hash to test equality
	// between two independently-constructed mutable refs; it is only a
	// map key.
	Hash() uint64
}

// Mutable is implemented by every Ref variant that designates a writable
// location: Root, Attr, Item, ItemDefault.
type Mutable interface {
	Ref
	// SetValue writes value into the underlying container directly. It
	// performs no task (re)registration and no propagation — that is
	// Manager.SetValue's job. This mirrors xdeps' MutableRef._set_value,
	// the low-level write the higher-level Manager.set_value calls.
	SetValue(value any) error
}

// Combinable is satisfied by every concrete Ref type in this package (they
// all embed combinators); it lets callers outside the package build child
// Attr/Item refs off of an arbitrary Ref value, e.g. to replay an
// inheritance write event onto a child ref.
type Combinable interface {
	Ref
	Attr(name string) *Attr
	Item(key any) *Item
}

// Set is an insertion-ordered, identity-deduplicated collection of mutable
// Refs, used by GetDependencies. Iteration order is the order in which refs
// were first added.
type Set struct {
	order []Ref
	seen  map[uint64]int // hash -> index into order, for collision-safe dedup
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{seen: make(map[uint64]int)}
}

// Add appends r if no ref with the same identity (Hash, and same concrete
// value to guard against hash collisions) has been added yet.
func (s *Set) Add(r Ref) {
	if r == nil {
		return
	}
	h := r.Hash()
	if idx, ok := s.seen[h]; ok && sameRef(s.order[idx], r) {
		return
	}
	s.seen[h] = len(s.order)
	s.order = append(s.order, r)
}

// Slice returns the refs in insertion order. The caller must not modify it.
func (s *Set) Slice() []Ref {
	return s.order
}

// Len reports the number of distinct refs collected.
func (s *Set) Len() int {
	return len(s.order)
}

func sameRef(a, b Ref) bool {
	// Mutable refs are pointer-identified; pure refs are compared
	// structurally via their rendered text, which is cheap and exact for
	// the small trees this engine builds.
	if ma, ok := a.(interface{ identity() any }); ok {
		if mb, ok := b.(interface{ identity() any }); ok {
			return ma.identity() == mb.identity()
		}
	}
	return a.String() == b.String()
}

// asContainer resolves a Ref's current value to a container.Container,
// which is what AttrRef/ItemRef need from their owner to read or write a
// field.
func asContainer(owner Ref) (container.Container, error) {
	v, err := owner.GetValue()
	if err != nil {
		return nil, err
	}
	c, ok := v.(container.Container)
	if !ok {
		return nil, notAContainerError(owner)
	}
	return c, nil
}
