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

// combinators is embedded into every concrete Ref type to provide a small
// operator-construction DSL in place of operator overloading (Go has
// none): r.Add(x), r.Attr("k"), r.Item(k), and so on. self is set by each
// constructor to the outer, concrete ref so that e.g. root.Attr("k").Add(1)
// chains correctly.
//
// Attr/Item/ItemDefault are memoized per owner instance, keyed by name or
// key: repeated calls to the same owner.Attr("k") must return the SAME Ref
// value, since the manager's indices key mutable refs by pointer identity.
// xdeps' refs.py achieves the same effect (a fresh owner.k
// access must be found as "the same task's target" as an earlier one) via
// a structural __hash__ plus a dict-membership check that happens to treat
// equal-hash refs as equal; memoizing the construction is the direct, typed
// equivalent.
type combinators struct {
	self     Ref
	attrs    map[string]*Attr
	items    map[any]*Item
	itemDefs map[any]*ItemDefault
}

func newCombinators(self Ref) combinators {
	return combinators{
		self:     self,
		attrs:    make(map[string]*Attr),
		items:    make(map[any]*Item),
		itemDefs: make(map[any]*ItemDefault),
	}
}

func (c combinators) Attr(name string) *Attr {
	if a, ok := c.attrs[name]; ok {
		return a
	}
	a := newAttr(c.self, name)
	c.attrs[name] = a
	return a
}

func (c combinators) Item(key any) *Item {
	if it, ok := c.items[key]; ok {
		return it
	}
	it := newItem(c.self, key)
	c.items[key] = it
	return it
}

func (c combinators) ItemDefault(key any, makeDefault func() any) *ItemDefault {
	if it, ok := c.itemDefs[key]; ok {
		return it
	}
	it := newItemDefault(c.self, key, makeDefault)
	c.itemDefs[key] = it
	return it
}

func (c combinators) Call(args []any, kwargs map[string]any) *Call {
	return newCall(c.self, args, kwargs)
}

// unary
func (c combinators) Neg() *UnOp     { return newUnOp(OpNeg, c.self) }
func (c combinators) Pos() *UnOp     { return newUnOp(OpPos, c.self) }
func (c combinators) Invert() *UnOp  { return newUnOp(OpInvert, c.self) }
func (c combinators) Abs() *Builtin  { return newBuiltin("abs", []any{c.self}) }
func (c combinators) Int() *Builtin  { return newBuiltin("int", []any{c.self}) }
func (c combinators) Float() *Builtin {
	return newBuiltin("float", []any{c.self})
}
func (c combinators) Complex() *Builtin { return newBuiltin("complex", []any{c.self}) }
func (c combinators) Round(ndigits int) *Builtin {
	return newBuiltin("round", []any{c.self, ndigits})
}
func (c combinators) Trunc() *Builtin { return newBuiltin("trunc", []any{c.self}) }
func (c combinators) Floor() *Builtin { return newBuiltin("floor", []any{c.self}) }
func (c combinators) Ceil() *Builtin  { return newBuiltin("ceil", []any{c.self}) }

// binary
func (c combinators) Add(other any) *BinOp      { return newBinOp(OpAdd, c.self, other) }
func (c combinators) Sub(other any) *BinOp      { return newBinOp(OpSub, c.self, other) }
func (c combinators) Mul(other any) *BinOp      { return newBinOp(OpMul, c.self, other) }
func (c combinators) MatMul(other any) *BinOp   { return newBinOp(OpMatMul, c.self, other) }
func (c combinators) TrueDiv(other any) *BinOp  { return newBinOp(OpTrueDiv, c.self, other) }
func (c combinators) FloorDiv(other any) *BinOp { return newBinOp(OpFloorDiv, c.self, other) }
func (c combinators) Mod(other any) *BinOp      { return newBinOp(OpMod, c.self, other) }
func (c combinators) Pow(other any) *BinOp      { return newBinOp(OpPow, c.self, other) }
func (c combinators) And(other any) *BinOp      { return newBinOp(OpAnd, c.self, other) }
func (c combinators) Or(other any) *BinOp       { return newBinOp(OpOr, c.self, other) }
func (c combinators) Xor(other any) *BinOp      { return newBinOp(OpXor, c.self, other) }
func (c combinators) Lshift(other any) *BinOp   { return newBinOp(OpLshift, c.self, other) }
func (c combinators) Rshift(other any) *BinOp   { return newBinOp(OpRshift, c.self, other) }
func (c combinators) Lt(other any) *BinOp       { return newBinOp(OpLt, c.self, other) }
func (c combinators) Le(other any) *BinOp       { return newBinOp(OpLe, c.self, other) }

// Eq builds an EqOp BinOp rather than comparing identity: equality between
// two refs is itself an expression, not a bool. Go's == on two Ref
// interface values would compare the interface's dynamic value, which is
// exactly the identity comparison this method deliberately avoids exposing.
func (c combinators) Eq(other any) *BinOp { return newBinOp(OpEq, c.self, other) }
func (c combinators) Ne(other any) *BinOp { return newBinOp(OpNe, c.self, other) }
func (c combinators) Ge(other any) *BinOp { return newBinOp(OpGe, c.self, other) }
func (c combinators) Gt(other any) *BinOp { return newBinOp(OpGt, c.self, other) }

// Compound-assignment combinators: "x (op)= y" returns expr (op) y if x
// currently has a bound expression, else current_value(x) (op) y. They
// never mutate x in place; the caller assigns the result back via
// Manager.SetValue, exactly as xdeps' __iadd__ family does.
//
// exprOf returns the ref's currently bound expression (nil if none, or if
// the ref does not participate in a manager at all); it is supplied by the
// manager package via SetExprLookup to avoid an import cycle between ref
// and manager.
var exprOf func(Mutable) Ref

// SetExprLookup installs the function compound-assignment combinators use
// to find a mutable ref's currently bound expression. Called once by
// manager.init.
func SetExprLookup(f func(Mutable) Ref) {
	exprOf = f
}

func currentOrExpr(self Ref) Ref {
	if m, ok := self.(Mutable); ok && exprOf != nil {
		if e := exprOf(m); e != nil {
			return e
		}
	}
	return Lift(valueOrNil(self))
}

func valueOrNil(self Ref) any {
	v, err := self.GetValue()
	if err != nil {
		return nil
	}
	return v
}

func (c combinators) IAdd(other any) Ref      { return newBinOp(OpAdd, currentOrExpr(c.self), other) }
func (c combinators) ISub(other any) Ref      { return newBinOp(OpSub, currentOrExpr(c.self), other) }
func (c combinators) IMul(other any) Ref      { return newBinOp(OpMul, currentOrExpr(c.self), other) }
func (c combinators) ITrueDiv(other any) Ref  { return newBinOp(OpTrueDiv, currentOrExpr(c.self), other) }
func (c combinators) IFloorDiv(other any) Ref { return newBinOp(OpFloorDiv, currentOrExpr(c.self), other) }
func (c combinators) IMod(other any) Ref      { return newBinOp(OpMod, currentOrExpr(c.self), other) }
func (c combinators) IPow(other any) Ref      { return newBinOp(OpPow, currentOrExpr(c.self), other) }
