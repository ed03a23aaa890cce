// Package env implements an environment facade: a thin wrapper pairing a
// raw container with its root reference, so user code can write through
// attribute/index syntax that the manager tracks, while reads bypass the
// manager for speed. Grounded on xdeps' tasks.py's DepEnv.
package env

import (
	"github.com/opennumeric/xdeps/internal/container"
	"github.com/opennumeric/xdeps/internal/core/manager"
	"github.com/opennumeric/xdeps/internal/core/ref"
)

// Env pairs a container with its root ref and the manager that owns it.
// Attribute and item writes route through Manager.SetValue (tracked);
// reads go straight to the container.
type Env struct {
	data container.Container
	root *ref.Root
	mgr  *manager.Manager
}

// New registers data under label with mgr and returns the facade around it.
// If data is nil, an empty container.Map is used, matching xdeps'
// Manager.newenv default.
func New(mgr *manager.Manager, label string, data container.Container) (*Env, error) {
	if data == nil {
		data = container.NewMap()
	}
	root, err := mgr.Ref(data, label)
	if err != nil {
		return nil, err
	}
	return &Env{data: data, root: root, mgr: mgr}, nil
}

// Root returns the facade's underlying root reference, for building
// expressions (e.g. env.Root().Item("a")).
func (e *Env) Root() *ref.Root { return e.root }

// Manager returns the manager this facade's writes are tracked by.
func (e *Env) Manager() *manager.Manager { return e.mgr }

// GetAttr reads owner.name directly from the container, bypassing the
// manager.
func (e *Env) GetAttr(name string) (any, error) {
	return e.data.GetAttr(name)
}

// GetItem reads owner[key] directly from the container, bypassing the
// manager.
func (e *Env) GetItem(key any) (any, bool, error) {
	return e.data.GetItem(key)
}

// SetAttr writes owner.name = value through the manager, so dependent tasks
// are found and run.
func (e *Env) SetAttr(name string, value any) error {
	return e.mgr.SetValue(e.root.Attr(name), value)
}

// SetItem writes owner[key] = value through the manager, so dependent
// tasks are found and run.
func (e *Env) SetItem(key any, value any) error {
	return e.mgr.SetValue(e.root.Item(key), value)
}

// Eval evaluates an arbitrary reference expression against this facade's
// data, matching xdeps' DepEnv._eval.
func (e *Env) Eval(expr ref.Ref) (any, error) {
	return expr.GetValue()
}
