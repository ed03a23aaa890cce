package manager

import (
	"fmt"

	"github.com/opennumeric/xdeps/internal/core/ref"
)

// Compile supplements xdeps' mk_fun/gen_fun (tasks.py):
// rather than generating and exec'ing Python source, it returns a closure
// that, given a value for each named input, writes it through SetValue
// (triggering the same propagation the generated function's inline sets
// would) and then reads back each named output.
//
// inputs and outputs may overlap in name-space only by coincidence; they
// are independent maps so a compiled function can both drive and observe
// parts of the same graph.
func (m *Manager) Compile(inputs map[string]ref.Mutable, outputs map[string]ref.Ref) (func(values map[string]any) (map[string]any, error), error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("xdeps: Compile requires at least one named input")
	}
	names := make([]string, 0, len(inputs))
	for name := range inputs {
		names = append(names, name)
	}
	return func(values map[string]any) (map[string]any, error) {
		for _, name := range names {
			v, ok := values[name]
			if !ok {
				return nil, fmt.Errorf("xdeps: compiled function missing value for input %q", name)
			}
			if err := m.SetValue(inputs[name], v); err != nil {
				return nil, err
			}
		}
		result := make(map[string]any, len(outputs))
		for name, r := range outputs {
			v, err := r.GetValue()
			if err != nil {
				return nil, err
			}
			result[name] = v
		}
		return result, nil
	}, nil
}
