package manager

import (
	"fmt"
	"strings"

	"github.com/opennumeric/xdeps/internal/core/ref"
	"github.com/opennumeric/xdeps/internal/core/task"
)

// DescribeReport is the structured form of xdeps' MutableRef._info(): a
// ref's current value, the expression it is bound to (if any), and the
// refs it transitively influences.
type DescribeReport struct {
	Ref        string
	Value      any
	Expr       string
	Influences []string
}

// String renders the report the way _info prints it to the console.
func (d DescribeReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s = %v\n", d.Ref, d.Value)
	if d.Expr != "" {
		fmt.Fprintf(&b, "  expr: %s\n", d.Expr)
	}
	for _, inf := range d.Influences {
		fmt.Fprintf(&b, "  -> %s\n", inf)
	}
	return b.String()
}

// Describe reports r's current value, its bound expression text (empty if
// r is not the target of an ExprTask), and every ref downstream of r —
// supplementing xdeps' MutableRef._info() (refs.py), which prints the
// same three things interactively.
func (m *Manager) Describe(r ref.Ref) (DescribeReport, error) {
	value, err := r.GetValue()
	if err != nil {
		return DescribeReport{}, err
	}
	rep := DescribeReport{Ref: r.String(), Value: value}
	if mut, ok := r.(ref.Mutable); ok {
		if t, ok := m.tasks[any(mut)]; ok {
			if et, ok := t.(*task.Expr); ok {
				rep.Expr = et.Expr.String()
			}
		}
	}
	seeds := ref.NewSet()
	seeds.Add(r)
	downstream, err := m.FindDeps(seeds.Slice())
	if err != nil {
		return DescribeReport{}, err
	}
	for _, d := range downstream {
		if d == r {
			continue
		}
		rep.Influences = append(rep.Influences, d.String())
	}
	return rep, nil
}
