// Package container defines the accessor trait a root must satisfy when a
// typed target cannot rely on reflection: anything that can answer
// attribute and item reads/writes can be registered as a root container,
// grounded on xdeps' utils.py's AttrDict (attribute and item
// access over the same backing dict).
package container

import "github.com/opennumeric/xdeps/errors"

// Container is implemented by any value a user registers with the manager
// as a root. Attribute access (owner.name) and item access (owner[key])
// are kept distinct because the reference algebra distinguishes them
// (AttrRef vs ItemRef), even though Map below backs both with the same map.
type Container interface {
	// GetAttr reads owner.name.
	GetAttr(name string) (any, error)
	// SetAttr writes owner.name = value.
	SetAttr(name string, value any) error
	// GetItem reads owner[key]. ok is false if key is absent and the
	// container does not default-insert it.
	GetItem(key any) (value any, ok bool, err error)
	// SetItem writes owner[key] = value.
	SetItem(key any, value any) error
}

// Map is the default Container: a heterogeneous, ordered map where
// attribute and item access hit the same backing storage, mirroring
// xdeps' AttrDict.
type Map struct {
	order  []string
	values map[string]any
}

// NewMap returns an empty Map container.
func NewMap() *Map {
	return &Map{values: make(map[string]any)}
}

func keyString(key any) (string, bool) {
	s, ok := key.(string)
	return s, ok
}

func (m *Map) GetAttr(name string) (any, error) {
	v, ok, err := m.GetItem(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &errors.MissingKeyError{Key: name}
	}
	return v, nil
}

func (m *Map) SetAttr(name string, value any) error {
	return m.SetItem(name, value)
}

func (m *Map) GetItem(key any) (any, bool, error) {
	name, ok := keyString(key)
	if !ok {
		return nil, false, errors.New("xdeps: Map keys must be strings")
	}
	v, ok := m.values[name]
	return v, ok, nil
}

func (m *Map) SetItem(key any, value any) error {
	name, ok := keyString(key)
	if !ok {
		return errors.New("xdeps: Map keys must be strings")
	}
	if _, exists := m.values[name]; !exists {
		m.order = append(m.order, name)
	}
	m.values[name] = value
	return nil
}

// Keys returns the field names in insertion order.
func (m *Map) Keys() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Len reports the number of fields currently set.
func (m *Map) Len() int {
	return len(m.values)
}
