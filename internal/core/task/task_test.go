package task_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/opennumeric/xdeps/internal/container"
	"github.com/opennumeric/xdeps/internal/core/ref"
	"github.com/opennumeric/xdeps/internal/core/task"
)

func newRoot(t *testing.T, label string) *ref.Root {
	t.Helper()
	return ref.NewRoot(label, container.NewMap())
}

func TestExprTaskIDIsTarget(t *testing.T) {
	v := newRoot(t, "v")
	target := v.Item("c")
	tk := task.NewExpr(target, v.Item("a").Add(v.Item("b")))
	qt.Assert(t, qt.Equals(tk.TaskID(), any(target)))
}

func TestExprTargetsIsOnlyTarget(t *testing.T) {
	v := newRoot(t, "v")
	target := v.Item("c")
	tk := task.NewExpr(target, v.Item("a"))
	qt.Assert(t, qt.Equals(len(tk.Targets()), 1))
	qt.Assert(t, qt.Equals(tk.Targets()[0], ref.Ref(target)))
}

func TestExprDependenciesComeFromExpr(t *testing.T) {
	v := newRoot(t, "v")
	qt.Assert(t, qt.IsNil(v.Item("a").SetValue(1)))
	qt.Assert(t, qt.IsNil(v.Item("b").SetValue(2)))
	target := v.Item("c")
	expr := v.Item("a").Add(v.Item("b"))
	tk := task.NewExpr(target, expr)

	want := ref.NewSet()
	expr.GetDependencies(want)
	qt.Assert(t, qt.Equals(len(tk.Dependencies()), want.Len()))
}

func TestExprRunWritesTarget(t *testing.T) {
	v := newRoot(t, "v")
	qt.Assert(t, qt.IsNil(v.Item("a").SetValue(3)))
	qt.Assert(t, qt.IsNil(v.Item("b").SetValue(4)))
	target := v.Item("c")
	tk := task.NewExpr(target, v.Item("a").Add(v.Item("b")))

	qt.Assert(t, qt.IsNil(tk.Run(nil)))
	got, err := target.GetValue()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got, any(int64(7))))
}

func TestExprString(t *testing.T) {
	v := newRoot(t, "v")
	tk := task.NewExpr(v.Item("c"), v.Item("a"))
	qt.Assert(t, qt.Equals(tk.String(), `v["c"] = v["a"]`))
}

func TestGenericRunsSuppliedAction(t *testing.T) {
	v := newRoot(t, "v")
	var seen *task.WriteEvent
	action := func(event *task.WriteEvent) error {
		seen = event
		return nil
	}
	g := task.NewGeneric("my-task", action, []ref.Ref{v.Item("c")}, []ref.Ref{v.Item("a")})

	qt.Assert(t, qt.Equals(g.TaskID(), any("my-task")))
	qt.Assert(t, qt.Equals(len(g.Targets()), 1))
	qt.Assert(t, qt.Equals(len(g.Dependencies()), 1))

	event := &task.WriteEvent{Key: "a", Value: 5, IsAttr: true}
	qt.Assert(t, qt.IsNil(g.Run(event)))
	qt.Assert(t, qt.Equals(seen, event))
}

// Children must themselves be Combinable owners (e.g. root refs), since Run
// re-indexes each child by the replayed event's key rather than writing the
// child directly.

func TestInheritanceTaskIDIsFirstChild(t *testing.T) {
	child1 := newRoot(t, "child1")
	child2 := newRoot(t, "child2")
	parent := newRoot(t, "parent")
	inh := task.NewInheritance([]ref.Mutable{child1, child2}, []ref.Ref{parent})
	qt.Assert(t, qt.Equals(inh.TaskID(), any(child1)))
}

func TestInheritanceReplaysRecordedEventOnEveryChild(t *testing.T) {
	child1 := newRoot(t, "child1")
	child2 := newRoot(t, "child2")
	parent := newRoot(t, "parent")
	inh := task.NewInheritance([]ref.Mutable{child1, child2}, []ref.Ref{parent})

	inh.RecordEvent(task.WriteEvent{Key: "x", Value: 42, IsAttr: false})
	qt.Assert(t, qt.IsNil(inh.Run(nil)))

	for _, child := range []ref.Ref{child1, child2} {
		combinable := child.(ref.Combinable)
		v, err := combinable.Item("x").GetValue()
		qt.Assert(t, qt.IsNil(err))
		qt.Assert(t, qt.Equals(v, 42))
	}
}

func TestInheritanceRunWithExplicitEventOverridesLastRecorded(t *testing.T) {
	child := newRoot(t, "child")
	parent := newRoot(t, "parent")
	inh := task.NewInheritance([]ref.Mutable{child}, []ref.Ref{parent})

	inh.RecordEvent(task.WriteEvent{Key: "x", Value: "stale", IsAttr: false})
	fresh := &task.WriteEvent{Key: "x", Value: "fresh", IsAttr: false}
	qt.Assert(t, qt.IsNil(inh.Run(fresh)))

	combinable := ref.Combinable(child)
	got, err := combinable.Item("x").GetValue()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got, "fresh"))
}

func TestInheritanceRunWithNoEventIsNoop(t *testing.T) {
	child := newRoot(t, "child")
	parent := newRoot(t, "parent")
	inh := task.NewInheritance([]ref.Mutable{child}, []ref.Ref{parent})
	qt.Assert(t, qt.IsNil(inh.Run(nil)))
}
