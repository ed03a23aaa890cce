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

	"github.com/opennumeric/xdeps/errors"
	"github.com/opennumeric/xdeps/internal/container"
)

// Root names a registered container: label -> container.
type Root struct {
	combinators
	id        uint64
	label     string
	container container.Container
}

// NewRoot constructs a Root reference for container under label. Manager.Ref
// is the only intended caller; it enforces label uniqueness.
func NewRoot(label string, c container.Container) *Root {
	r := &Root{id: nextHandle(), label: label, container: c}
	r.combinators = newCombinators(r)
	return r
}

func (r *Root) identity() any       { return r.id }
func (r *Root) Kind() Kind          { return RootKind }
func (r *Root) String() string      { return r.label }
func (r *Root) Label() string       { return r.label }
func (r *Root) Hash() uint64        { return r.id }
func (r *Root) Container() container.Container { return r.container }

func (r *Root) GetValue() (any, error) {
	return r.container, nil
}

func (r *Root) GetDependencies(out *Set) {
	out.Add(r)
}

func (r *Root) SetValue(value any) error {
	c, ok := value.(container.Container)
	if !ok {
		return fmt.Errorf("xdeps: cannot rebind root %q to a non-container value", r.label)
	}
	r.container = c
	return nil
}

// Attr designates owner.name.
type Attr struct {
	combinators
	id    uint64
	owner Ref
	name  string
}

func newAttr(owner Ref, name string) *Attr {
	a := &Attr{id: nextHandle(), owner: owner, name: name}
	a.combinators = newCombinators(a)
	return a
}

func (a *Attr) identity() any  { return a.id }
func (a *Attr) Kind() Kind     { return AttrKind }
func (a *Attr) Hash() uint64   { return a.id }
func (a *Attr) Owner() Ref     { return a.owner }
func (a *Attr) Name() string   { return a.name }
func (a *Attr) String() string { return a.owner.String() + "." + a.name }

func (a *Attr) GetValue() (any, error) {
	c, err := asContainer(a.owner)
	if err != nil {
		return nil, err
	}
	return c.GetAttr(a.name)
}

func (a *Attr) SetValue(value any) error {
	c, err := asContainer(a.owner)
	if err != nil {
		return err
	}
	return c.SetAttr(a.name, value)
}

func (a *Attr) GetDependencies(out *Set) {
	a.owner.GetDependencies(out)
	out.Add(a)
}

// Item designates owner[key]; key may itself be a Ref.
type Item struct {
	combinators
	id    uint64
	owner Ref
	key   any
}

func newItem(owner Ref, key any) *Item {
	it := &Item{id: nextHandle(), owner: owner, key: key}
	it.combinators = newCombinators(it)
	return it
}

func (it *Item) identity() any { return it.id }
func (it *Item) Kind() Kind    { return ItemKind }
func (it *Item) Hash() uint64  { return it.id }
func (it *Item) Owner() Ref    { return it.owner }
func (it *Item) Key() any      { return it.key }

func (it *Item) String() string {
	return fmt.Sprintf("%s[%s]", it.owner.String(), keyText(it.key))
}

func (it *Item) resolveKey() (any, error) {
	return resolveKey(it.key)
}

func (it *Item) GetValue() (any, error) {
	c, err := asContainer(it.owner)
	if err != nil {
		return nil, err
	}
	key, err := it.resolveKey()
	if err != nil {
		return nil, err
	}
	v, ok, err := c.GetItem(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, missingKeyError(key)
	}
	return v, nil
}

func (it *Item) SetValue(value any) error {
	c, err := asContainer(it.owner)
	if err != nil {
		return err
	}
	key, err := it.resolveKey()
	if err != nil {
		return err
	}
	return c.SetItem(key, value)
}

func (it *Item) GetDependencies(out *Set) {
	it.owner.GetDependencies(out)
	if kr, ok := it.key.(Ref); ok {
		kr.GetDependencies(out)
	}
	out.Add(it)
}

// ItemDefault is an Item whose GetValue silently inserts a default entry
// on first read of an absent key. All other behavior matches Item; it is
// not implemented by embedding Item, so that a
// dependency collected into a Set always resolves back to the concrete
// ItemDefault instance (and so its default-insert override applies) rather
// than to an inner, non-defaulting Item value.
type ItemDefault struct {
	combinators
	id             uint64
	owner          Ref
	key            any
	makeDefault    func() any
}

func newItemDefault(owner Ref, key any, makeDefault func() any) *ItemDefault {
	it := &ItemDefault{id: nextHandle(), owner: owner, key: key, makeDefault: makeDefault}
	it.combinators = newCombinators(it)
	return it
}

func (it *ItemDefault) identity() any { return it.id }
func (it *ItemDefault) Kind() Kind    { return ItemDefaultKind }
func (it *ItemDefault) Hash() uint64  { return it.id }
func (it *ItemDefault) Owner() Ref    { return it.owner }
func (it *ItemDefault) Key() any      { return it.key }

func (it *ItemDefault) String() string {
	return fmt.Sprintf("%s[%s]", it.owner.String(), keyText(it.key))
}

func (it *ItemDefault) resolveKey() (any, error) {
	return resolveKey(it.key)
}

func (it *ItemDefault) GetValue() (any, error) {
	c, err := asContainer(it.owner)
	if err != nil {
		return nil, err
	}
	key, err := it.resolveKey()
	if err != nil {
		return nil, err
	}
	v, ok, err := c.GetItem(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		v = it.makeDefault()
		if err := c.SetItem(key, v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (it *ItemDefault) SetValue(value any) error {
	c, err := asContainer(it.owner)
	if err != nil {
		return err
	}
	key, err := it.resolveKey()
	if err != nil {
		return err
	}
	return c.SetItem(key, value)
}

func (it *ItemDefault) GetDependencies(out *Set) {
	it.owner.GetDependencies(out)
	if kr, ok := it.key.(Ref); ok {
		kr.GetDependencies(out)
	}
	out.Add(it)
}

func resolveKey(key any) (any, error) {
	if kr, ok := key.(Ref); ok {
		return kr.GetValue()
	}
	return key, nil
}

func keyText(key any) string {
	if kr, ok := key.(Ref); ok {
		return kr.String()
	}
	return fmt.Sprintf("%#v", key)
}

func missingKeyError(key any) error {
	return &errors.MissingKeyError{Key: key}
}
