// Package task implements the Task model: ExprTask, GenericTask, and
// InheritanceTask, grounded on xdeps' tasks.py's Task
// hierarchy. Go has no class inheritance, so the shared taskid/targets/
// dependencies/run contract is expressed as the Task interface rather than
// a base class.
package task

import (
	"fmt"

	"github.com/opennumeric/xdeps/internal/core/ref"
)

// Task is a node in the dependency graph: something that writes Targets
// whenever any of its Dependencies changes.
type Task interface {
	// TaskID is this task's unique key. For Expr it is the target ref
	// itself, matching xdeps' ExprTask.taskid = target.
	TaskID() any
	Targets() []ref.Ref
	Dependencies() []ref.Ref
	// Run executes the task's action. Expr ignores event and Generic passes
	// it to its action; the manager always calls Run with a nil event.
	// Inheritance replays event if non-nil, else its last recorded event.
	Run(event *WriteEvent) error
}

// WriteEvent records a single attribute/item write observed on a parent
// ref bound in an Inheritance task, for replay onto its children.
type WriteEvent struct {
	Key    any
	Value  any
	IsAttr bool
}

// Expr declares target <- expr.GetValue() and makes target depend on every
// mutable ref reachable from expr, matching xdeps' ExprTask.
type Expr struct {
	Target  ref.Mutable
	Expr    ref.Ref
	targets []ref.Ref
	deps    []ref.Ref
}

// NewExpr builds an Expr task. Manager.SetValue is the intended caller.
//
// Targets is exactly {target}: the owner refs target is built from (e.g.
// e for e["c"]) are not targets, so two expressions written into the same
// container are not linked to each other through their shared owner.
func NewExpr(target ref.Mutable, expr ref.Ref) *Expr {
	depSet := ref.NewSet()
	expr.GetDependencies(depSet)
	return &Expr{Target: target, Expr: expr, targets: []ref.Ref{target}, deps: depSet.Slice()}
}

func (t *Expr) TaskID() any { return t.Target }

func (t *Expr) Targets() []ref.Ref { return t.targets }

func (t *Expr) Dependencies() []ref.Ref { return t.deps }

func (t *Expr) Run(_ *WriteEvent) error {
	value, err := t.Expr.GetValue()
	if err != nil {
		return err
	}
	return t.Target.SetValue(value)
}

func (t *Expr) String() string {
	return t.Target.String() + " = " + t.Expr.String()
}

// Generic is a user-supplied callable firing on any upstream change,
// matching xdeps' GenericTask.
type Generic struct {
	ID      any
	Action  func(event *WriteEvent) error
	targets []ref.Ref
	deps    []ref.Ref
}

// NewGeneric builds a Generic task with an explicit id, target set, and
// dependency set.
func NewGeneric(id any, action func(event *WriteEvent) error, targets, deps []ref.Ref) *Generic {
	return &Generic{ID: id, Action: action, targets: targets, deps: deps}
}

func (t *Generic) TaskID() any              { return t.ID }
func (t *Generic) Targets() []ref.Ref       { return t.targets }
func (t *Generic) Dependencies() []ref.Ref  { return t.deps }
func (t *Generic) Run(event *WriteEvent) error {
	return t.Action(event)
}

func (t *Generic) String() string {
	return "<task " + anyString(t.ID) + ">"
}

// Inheritance makes child refs mirror the write-events of parent refs:
// prototype-style inheritance, matching xdeps' InheritanceTask. It stores
// the last observed write event and reapplies it to every child on Run —
// the last-writer-wins replay policy is recorded in DESIGN.md.
type Inheritance struct {
	Children []ref.Mutable
	Parents  []ref.Ref
	lastEvent *WriteEvent
}

// NewInheritance builds an Inheritance task relaying writes observed on any
// of parents onto every child in children.
func NewInheritance(children []ref.Mutable, parents []ref.Ref) *Inheritance {
	return &Inheritance{Children: children, Parents: parents}
}

// TaskID uses the first child as the task identity, matching xdeps'
// InheritanceTask.taskid = children (there, a single ref; here, the slice
// of children stands in for "this relay", keyed by its first element since
// manager taskids must be hashable single values).
func (t *Inheritance) TaskID() any {
	if len(t.Children) == 0 {
		return t
	}
	return t.Children[0]
}

func (t *Inheritance) Targets() []ref.Ref {
	out := make([]ref.Ref, len(t.Children))
	for i, c := range t.Children {
		out[i] = c
	}
	return out
}

func (t *Inheritance) Dependencies() []ref.Ref { return t.Parents }

// RecordEvent stores the write event observed on a parent, to be replayed
// the next time Run is called without an explicit event.
func (t *Inheritance) RecordEvent(event WriteEvent) {
	t.lastEvent = &event
}

func (t *Inheritance) Run(event *WriteEvent) error {
	if event == nil {
		event = t.lastEvent
	}
	if event == nil {
		return nil
	}
	for _, child := range t.Children {
		target, err := childField(child, event)
		if err != nil {
			return err
		}
		if err := target.SetValue(event.Value); err != nil {
			return err
		}
	}
	return nil
}

func childField(child ref.Mutable, event *WriteEvent) (ref.Mutable, error) {
	combinable, ok := child.(ref.Combinable)
	if !ok {
		return nil, fmt.Errorf("xdeps: child ref %v does not support attribute/item access", child)
	}
	if event.IsAttr {
		name, _ := event.Key.(string)
		return combinable.Attr(name), nil
	}
	return combinable.Item(event.Key), nil
}

func anyString(v any) string {
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	return "?"
}
