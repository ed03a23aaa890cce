package manager

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/opennumeric/xdeps/internal/core/ref"
	"github.com/opennumeric/xdeps/internal/core/task"
)

// DumpEntry is one (target, expression) pair in the canonical dump format:
// two printable strings, each the canonical expression text of a reference
// tree (root label for Root, owner.name for Attr, owner[key] for Item,
// "(a OP b)" for BinOp, and so on).
type DumpEntry struct {
	Target string `yaml:"target"`
	Expr   string `yaml:"expr"`
}

// Dump produces the list of (target, expr) pairs for every ExprTask
// currently registered, in registration order, matching xdeps'
// Manager.dump (which only emits ExprTask entries — Generic and
// Inheritance tasks have no textual expression to round-trip).
func (m *Manager) Dump() []DumpEntry {
	out := make([]DumpEntry, 0, len(m.taskOrder))
	for _, id := range m.taskOrder {
		if et, ok := m.tasks[id].(*task.Expr); ok {
			out = append(out, DumpEntry{Target: et.Target.String(), Expr: et.Expr.String()})
		}
	}
	return out
}

// DumpYAML renders Dump's entries as YAML, a more substantial second home
// for gopkg.in/yaml.v3 beyond config — useful for checking a set of wired
// expressions into version control.
func (m *Manager) DumpYAML() ([]byte, error) {
	return yaml.Marshal(m.Dump())
}

// ParseYAML decodes a byte stream produced by DumpYAML back into entries
// suitable for Load. It does not itself build a Ref tree from the
// expression text — that requires an ExprParser, supplied by the caller.
func ParseYAML(data []byte) ([]DumpEntry, error) {
	var entries []DumpEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("xdeps: decoding dump YAML: %w", err)
	}
	return entries, nil
}

// ExprParser evaluates a canonical expression string (as produced by
// Ref.String()) against a label -> root-ref binding, returning the
// reference tree it denotes. Supplied externally by the caller — this
// engine has no textual formula parser of its own; Load only orchestrates
// calling one and registering the resulting tasks.
type ExprParser func(text string, bindings map[string]*ref.Root) (ref.Ref, error)

// Load binds every entry in dump through SetValue, after evaluating both
// the target and expression text against bindings via parse: each target
// gets an ExprTask and its value is materialized and propagated. It does
// not clear any existing tasks first.
func (m *Manager) Load(dump []DumpEntry, bindings map[string]*ref.Root, parse ExprParser) error {
	for _, entry := range dump {
		lhs, err := parse(entry.Target, bindings)
		if err != nil {
			return fmt.Errorf("xdeps: parsing load target %q: %w", entry.Target, err)
		}
		target, ok := lhs.(ref.Mutable)
		if !ok {
			return fmt.Errorf("xdeps: load target %q does not denote a mutable reference", entry.Target)
		}
		rhs, err := parse(entry.Expr, bindings)
		if err != nil {
			return fmt.Errorf("xdeps: parsing load expression %q: %w", entry.Expr, err)
		}
		if err := m.SetValue(target, rhs); err != nil {
			return err
		}
	}
	return nil
}
