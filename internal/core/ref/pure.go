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

package ref

import (
	"fmt"
	"sort"
)

// UnaryOp enumerates the unary operator table: - + ~. The numeric builtins
// are modeled as Builtin, not UnOp, since xdeps implements them as distinct
// dunder methods (__abs__, __round__, ...) with their own arity.
type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpPos
	OpInvert
)

func (op UnaryOp) symbol() string {
	switch op {
	case OpNeg:
		return "-"
	case OpPos:
		return "+"
	case OpInvert:
		return "~"
	}
	return "?"
}

// UnOp is a pure, non-mutable reference representing a unary operator
// applied to x. Any operator applied to a Ref yields a new UnOp rather than
// performing the operation.
type UnOp struct {
	combinators
	Op UnaryOp
	X  Ref
}

func newUnOp(op UnaryOp, x any) *UnOp {
	u := &UnOp{Op: op, X: Lift(x)}
	u.combinators = newCombinators(u)
	return u
}

// NewUnOp is the exported constructor, for callers outside this package
// rebuilding a UnOp from its operator and operand directly (e.g. Manager
// Clone rebinding an expression tree onto a fresh container).
func NewUnOp(op UnaryOp, x any) *UnOp { return newUnOp(op, x) }

func (u *UnOp) Kind() Kind     { return UnOpKind }
func (u *UnOp) String() string { return fmt.Sprintf("(%s%s)", u.Op.symbol(), u.X.String()) }
func (u *UnOp) Hash() uint64   { return structuralHash("unop", uint64(u.Op), u.X.Hash()) }

func (u *UnOp) GetValue() (any, error) {
	v, err := u.X.GetValue()
	if err != nil {
		return nil, err
	}
	return applyUnary(u.Op, v)
}

func (u *UnOp) GetDependencies(out *Set) {
	u.X.GetDependencies(out)
}

// BinaryOp enumerates the binary operator table.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpMatMul
	OpTrueDiv
	OpFloorDiv
	OpMod
	OpPow
	OpAnd
	OpOr
	OpXor
	OpLshift
	OpRshift
	OpLt
	OpLe
	OpEq
	OpNe
	OpGe
	OpGt
)

func (op BinaryOp) symbol() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpMatMul:
		return "@"
	case OpTrueDiv:
		return "/"
	case OpFloorDiv:
		return "//"
	case OpMod:
		return "%"
	case OpPow:
		return "**"
	case OpAnd:
		return "&"
	case OpOr:
		return "|"
	case OpXor:
		return "^"
	case OpLshift:
		return "<<"
	case OpRshift:
		return ">>"
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpGe:
		return ">="
	case OpGt:
		return ">"
	}
	return "?"
}

// BinOp is a pure, non-mutable reference representing a binary operator
// applied to two operands. Building a.Eq(b) constructs a BinOp{OpEq,...}
// rather than comparing a and b; the manager must never use it as an
// equality test over refs.
type BinOp struct {
	combinators
	Op          BinaryOp
	Left, Right Ref
}

func newBinOp(op BinaryOp, left, right any) *BinOp {
	b := &BinOp{Op: op, Left: Lift(left), Right: Lift(right)}
	b.combinators = newCombinators(b)
	return b
}

// NewBinOp is the exported constructor, for callers outside this package
// rebuilding a BinOp from its operator and operands directly (e.g. Manager
// Clone rebinding an expression tree onto a fresh container).
func NewBinOp(op BinaryOp, left, right any) *BinOp { return newBinOp(op, left, right) }

func (b *BinOp) Kind() Kind { return BinOpKind }
func (b *BinOp) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left.String(), b.Op.symbol(), b.Right.String())
}
func (b *BinOp) Hash() uint64 {
	return structuralHash("binop", uint64(b.Op), b.Left.Hash(), b.Right.Hash())
}

func (b *BinOp) GetValue() (any, error) {
	lv, err := b.Left.GetValue()
	if err != nil {
		return nil, err
	}
	rv, err := b.Right.GetValue()
	if err != nil {
		return nil, err
	}
	return applyBinary(b.Op, lv, rv)
}

func (b *BinOp) GetDependencies(out *Set) {
	b.Left.GetDependencies(out)
	b.Right.GetDependencies(out)
}

// Builtin is a pure reference for the built-in numeric functions (round,
// trunc, floor, ceil, abs, complex, int, float, divmod), each taking one or
// more Refs/literals as Args.
type Builtin struct {
	combinators
	Name string
	Args []Ref
}

func newBuiltin(name string, args []any) *Builtin {
	lifted := make([]Ref, len(args))
	for i, a := range args {
		lifted[i] = Lift(a)
	}
	b := &Builtin{Name: name, Args: lifted}
	b.combinators = newCombinators(b)
	return b
}

// NewBuiltin is the exported constructor, for callers outside this package
// building a Builtin directly (e.g. a future parser front-end).
func NewBuiltin(name string, args ...any) *Builtin {
	return newBuiltin(name, args)
}

func (b *Builtin) Kind() Kind { return BuiltinKind }
func (b *Builtin) String() string {
	parts := make([]string, len(b.Args))
	for i, a := range b.Args {
		parts[i] = a.String()
	}
	return b.Name + "(" + joinComma(parts) + ")"
}
func (b *Builtin) Hash() uint64 {
	hs := make([]uint64, 0, len(b.Args)+1)
	for _, a := range b.Args {
		hs = append(hs, a.Hash())
	}
	return structuralHash("builtin:"+b.Name, hs...)
}

func (b *Builtin) GetValue() (any, error) {
	vals := make([]any, len(b.Args))
	for i, a := range b.Args {
		v, err := a.GetValue()
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return applyBuiltin(b.Name, vals)
}

func (b *Builtin) GetDependencies(out *Set) {
	for _, a := range b.Args {
		a.GetDependencies(out)
	}
}

// CallableFunc is the shape a Call's callee must evaluate to. Go has no
// native keyword-argument calling convention, so, unlike xdeps' **kwargs,
// named arguments are passed through explicitly as a map.
type CallableFunc func(args []any, kwargs map[string]any) (any, error)

// Call is a pure reference representing invocation of callee with
// positional args and named kwargs.
type Call struct {
	combinators
	Callee Ref
	Args   []Ref
	Kwargs map[string]Ref
}

func newCall(callee any, args []any, kwargs map[string]any) *Call {
	lifted := make([]Ref, len(args))
	for i, a := range args {
		lifted[i] = Lift(a)
	}
	liftedKw := make(map[string]Ref, len(kwargs))
	for k, v := range kwargs {
		liftedKw[k] = Lift(v)
	}
	c := &Call{Callee: Lift(callee), Args: lifted, Kwargs: liftedKw}
	c.combinators = newCombinators(c)
	return c
}

func (c *Call) Kind() Kind { return CallKind }
func (c *Call) String() string {
	parts := make([]string, 0, len(c.Args)+len(c.Kwargs))
	for _, a := range c.Args {
		parts = append(parts, a.String())
	}
	for _, k := range c.sortedKwargNames() {
		parts = append(parts, k+"="+c.Kwargs[k].String())
	}
	return c.Callee.String() + "(" + joinComma(parts) + ")"
}
func (c *Call) Hash() uint64 {
	hs := []uint64{c.Callee.Hash()}
	for _, a := range c.Args {
		hs = append(hs, a.Hash())
	}
	for _, k := range c.sortedKwargNames() {
		hs = append(hs, structuralHash(k, c.Kwargs[k].Hash()))
	}
	return structuralHash("call", hs...)
}

func (c *Call) sortedKwargNames() []string {
	names := make([]string, 0, len(c.Kwargs))
	for k := range c.Kwargs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (c *Call) GetValue() (any, error) {
	calleeVal, err := c.Callee.GetValue()
	if err != nil {
		return nil, err
	}
	fn, ok := calleeVal.(CallableFunc)
	if !ok {
		return nil, fmt.Errorf("xdeps: %s does not evaluate to a callable", c.Callee.String())
	}
	args := make([]any, len(c.Args))
	for i, a := range c.Args {
		v, err := a.GetValue()
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	kwargs := make(map[string]any, len(c.Kwargs))
	for k, v := range c.Kwargs {
		val, err := v.GetValue()
		if err != nil {
			return nil, err
		}
		kwargs[k] = val
	}
	return fn(args, kwargs)
}

func (c *Call) GetDependencies(out *Set) {
	c.Callee.GetDependencies(out)
	for _, a := range c.Args {
		a.GetDependencies(out)
	}
	for _, v := range c.Kwargs {
		v.GetDependencies(out)
	}
}

// Literal lifts a plain value into the Ref algebra so operators can accept
// Ref | Value uniformly. It has no dependencies and is not itself
// hash-consed against other literals; it only exists as operand plumbing.
type Literal struct {
	combinators
	Value any
}

// Lift wraps v as a Ref: if it is already one, it is returned unchanged;
// otherwise it is boxed in a Literal.
func Lift(v any) Ref {
	if r, ok := v.(Ref); ok {
		return r
	}
	l := &Literal{Value: v}
	l.combinators = newCombinators(l)
	return l
}

func (l *Literal) Kind() Kind               { return LiteralKind }
func (l *Literal) String() string           { return fmt.Sprintf("%#v", l.Value) }
func (l *Literal) Hash() uint64             { return structuralHash("lit", hashAny(l.Value)) }
func (l *Literal) GetValue() (any, error)   { return l.Value, nil }
func (l *Literal) GetDependencies(*Set)     {}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}
