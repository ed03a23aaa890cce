// Package manager implements the dependency manager: the bipartite graph
// of tasks and references, its four index multisets, and propagation.
// Grounded throughout on xdeps' tasks.py's Manager class;
// see DESIGN.md for the per-operation mapping.
package manager

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/opennumeric/xdeps/errors"
	"github.com/opennumeric/xdeps/internal/container"
	"github.com/opennumeric/xdeps/internal/core/ref"
	"github.com/opennumeric/xdeps/internal/core/task"
	"github.com/opennumeric/xdeps/internal/core/toposort"
)

func init() {
	// Wires the ref package's compound-assignment combinators (IAdd etc.)
	// to look up a mutable ref's currently bound expression, without an
	// import cycle between ref and manager.
	ref.SetExprLookup(func(m ref.Mutable) ref.Ref {
		return defaultRegistry.exprFor(m)
	})
}

// defaultRegistry tracks every live Manager so ref.SetExprLookup's callback
// can find whichever manager (if any) a mutable ref is registered with,
// without the ref package needing to reference a specific *Manager.
var defaultRegistry = &managerRegistry{}

type managerRegistry struct {
	managers []*Manager
}

func (r *managerRegistry) add(m *Manager)    { r.managers = append(r.managers, m) }
func (r *managerRegistry) exprFor(mut ref.Mutable) ref.Ref {
	for _, m := range r.managers {
		if t, ok := m.tasks[any(mut)]; ok {
			if e, ok := t.(*task.Expr); ok {
				return e.Expr
			}
		}
	}
	return nil
}

// Manager owns the registered containers and tasks, and maintains the four
// index multisets: rdeps, rtasks, deptasks, tartasks, keyed by ref/task
// identity exactly as xdeps' tasks.py's Manager does.
type Manager struct {
	id     uuid.UUID
	logger *slog.Logger

	containers map[string]*ref.Root
	labelOrder []string

	tasks     map[any]task.Task
	taskOrder []any

	rdeps    *multiset[ref.Ref, ref.Ref]
	deptasks *multiset[ref.Ref, any]
	tartasks *multiset[ref.Ref, any]
	rtasks   *multiset[any, any]
}

// Option configures a Manager at construction time.
type Option func(*Manager)

// WithLogger overrides the default slog.Default() logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// New returns an empty Manager.
func New(opts ...Option) *Manager {
	m := &Manager{
		id:         uuid.New(),
		logger:     slog.Default(),
		containers: make(map[string]*ref.Root),
		tasks:      make(map[any]task.Task),
		rdeps:      newMultiset[ref.Ref, ref.Ref](),
		deptasks:   newMultiset[ref.Ref, any](),
		tartasks:   newMultiset[ref.Ref, any](),
		rtasks:     newMultiset[any, any](),
	}
	for _, opt := range opts {
		opt(m)
	}
	defaultRegistry.add(m)
	return m
}

// ID returns the manager's stable instance identifier, used only in log
// lines to make propagation traceable across multiple managers in one
// process.
func (m *Manager) ID() uuid.UUID { return m.id }

// Ref registers container under label and returns its root reference.
// Fails with *errors.DuplicateLabelError if label is already bound.
func (m *Manager) Ref(c container.Container, label string) (*ref.Root, error) {
	if _, exists := m.containers[label]; exists {
		return nil, &errors.DuplicateLabelError{Label: label}
	}
	r := ref.NewRoot(label, c)
	m.containers[label] = r
	m.labelOrder = append(m.labelOrder, label)
	m.logger.Debug("ref", "manager", m.id, "label", label)
	return r, nil
}

// Containers returns the registered root labels in registration order.
func (m *Manager) Containers() []string {
	out := make([]string, len(m.labelOrder))
	copy(out, m.labelOrder)
	return out
}

// Root looks up a previously registered root by label.
func (m *Manager) Root(label string) (*ref.Root, bool) {
	r, ok := m.containers[label]
	return r, ok
}

// SetValue writes value through target, in three steps:
//  1. If target already has a bound task, unregister it.
//  2. If value is itself a Ref (an expression), register a new ExprTask and
//     materialize its current value; otherwise write value directly.
//  3. Collect target's transitive dependency closure, find the tasks
//     affected, and run each exactly once in topological order.
//
// A task whose Run fails aborts propagation for this call; the indices are
// left exactly as they were at the point of failure (no partial rollback),
// and the error is returned as an *errors.EvaluationError.
func (m *Manager) SetValue(target ref.Mutable, value any) error {
	m.logger.Debug("set_value", "manager", m.id, "target", target.String())
	taskID := any(target)
	if _, exists := m.tasks[taskID]; exists {
		if err := m.Unregister(taskID); err != nil {
			return err
		}
	}
	if expr, ok := value.(ref.Ref); ok {
		t := task.NewExpr(target, expr)
		if err := m.Register(t); err != nil {
			return err
		}
		v, err := expr.GetValue()
		if err != nil {
			return &errors.EvaluationError{TaskID: taskID, Err: err}
		}
		value = v
	}
	m.recordInheritanceEvent(target, value)
	if err := target.SetValue(value); err != nil {
		return &errors.EvaluationError{TaskID: taskID, Err: err}
	}
	deps := ref.NewSet()
	target.GetDependencies(deps)
	affected, err := m.FindTasks(deps.Slice())
	if err != nil {
		return err
	}
	for _, t := range affected {
		m.logger.Debug("run", "manager", m.id, "task", t.TaskID())
		if err := t.Run(nil); err != nil {
			return &errors.EvaluationError{TaskID: t.TaskID(), Err: err}
		}
	}
	return nil
}

// recordInheritanceEvent notifies every Inheritance task whose parents
// include target's owner of the write about to happen, so that task can
// replay it onto its children when it runs. Non-Attr/Item/ItemDefault
// targets (e.g. a Root) have no owner and never match.
func (m *Manager) recordInheritanceEvent(target ref.Mutable, value any) {
	var owner ref.Ref
	var key any
	var isAttr bool
	switch x := target.(type) {
	case *ref.Attr:
		owner, key, isAttr = x.Owner(), x.Name(), true
	case *ref.Item:
		owner, key, isAttr = x.Owner(), x.Key(), false
	case *ref.ItemDefault:
		owner, key, isAttr = x.Owner(), x.Key(), false
	default:
		return
	}
	for _, t := range m.tasks {
		inh, ok := t.(*task.Inheritance)
		if !ok {
			continue
		}
		for _, p := range inh.Parents {
			if p == owner {
				inh.RecordEvent(task.WriteEvent{Key: key, Value: value, IsAttr: isAttr})
				break
			}
		}
	}
}

// Register adds task to the graph and updates the four index multisets.
func (m *Manager) Register(t task.Task) error {
	taskID := t.TaskID()
	if _, exists := m.tasks[taskID]; !exists {
		m.taskOrder = append(m.taskOrder, taskID)
	}
	m.tasks[taskID] = t
	for _, dep := range t.Dependencies() {
		for _, tar := range t.Targets() {
			m.rdeps.Append(dep, tar)
		}
		m.deptasks.Append(dep, taskID)
		for _, existing := range m.tartasks.Get(dep) {
			m.rtasks.Append(existing, taskID)
		}
	}
	for _, tar := range t.Targets() {
		m.tartasks.Append(tar, taskID)
		for _, existing := range m.deptasks.Get(tar) {
			m.rtasks.Append(taskID, existing)
		}
	}
	m.logger.Debug("register", "manager", m.id, "task", taskID)
	return nil
}

// Unregister removes the task identified by taskID and inverts every index
// update Register performed for it, one occurrence per append. This is the
// exact symmetric inverse of Register, not a literal translation of
// xdeps' unregister body, which mixes up rtasks keys in a way inconsistent
// with its own register.
func (m *Manager) Unregister(taskID any) error {
	t, ok := m.tasks[taskID]
	if !ok {
		return &errors.UnknownTaskError{TaskID: taskID}
	}
	for _, dep := range t.Dependencies() {
		for _, tar := range t.Targets() {
			m.rdeps.RemoveOne(dep, tar)
		}
		m.deptasks.RemoveOne(dep, taskID)
		for _, existing := range m.tartasks.Get(dep) {
			m.rtasks.RemoveOne(existing, taskID)
		}
	}
	for _, tar := range t.Targets() {
		m.tartasks.RemoveOne(tar, taskID)
		for _, existing := range m.deptasks.Get(tar) {
			m.rtasks.RemoveOne(taskID, existing)
		}
	}
	delete(m.tasks, taskID)
	m.removeTaskOrder(taskID)
	m.cleanup()
	m.logger.Debug("unregister", "manager", m.id, "task", taskID)
	return nil
}

func (m *Manager) removeTaskOrder(taskID any) {
	for i, id := range m.taskOrder {
		if id == taskID {
			m.taskOrder = append(m.taskOrder[:i:i], m.taskOrder[i+1:]...)
			return
		}
	}
}

// cleanup drops zero-length multiset buckets, matching xdeps'
// Manager.cleanup; called internally so the index maps don't grow
// unboundedly with ref/task churn.
func (m *Manager) cleanup() {
	m.rdeps.Cleanup()
	m.rtasks.Cleanup()
	m.deptasks.Cleanup()
	m.tartasks.Cleanup()
}

// FindDeps returns every ref reachable from seeds by following rdeps,
// topologically ordered so that every ref precedes all of its successors.
func (m *Manager) FindDeps(seeds []ref.Ref) ([]ref.Ref, error) {
	return toposort.Sort(seeds, func(r ref.Ref) []ref.Ref {
		return m.rdeps.Get(r)
	})
}

// FindTaskIDs resolves seeds to the taskids that depend on them via
// deptasks, then topologically sorts over rtasks so that a task writing a
// ref another task depends on precedes it.
func (m *Manager) FindTaskIDs(seeds []ref.Ref) ([]any, error) {
	start := make([]any, 0)
	seen := make(map[any]bool)
	for _, s := range seeds {
		for _, taskID := range m.deptasks.Get(s) {
			if !seen[taskID] {
				seen[taskID] = true
				start = append(start, taskID)
			}
		}
	}
	return toposort.Sort(start, func(id any) []any {
		return m.rtasks.Get(id)
	})
}

// FindTasks is FindTaskIDs followed by resolving each id to its task.Task.
func (m *Manager) FindTasks(seeds []ref.Ref) ([]task.Task, error) {
	ids, err := m.FindTaskIDs(seeds)
	if err != nil {
		return nil, err
	}
	out := make([]task.Task, 0, len(ids))
	for _, id := range ids {
		if t, ok := m.tasks[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// AllDeps returns every ref seen as a dependency key, in insertion order; a
// nil-seed default for FindDeps/FindTasks mirroring xdeps' `start_deps=None`
// fallback to "all of rdeps"/"all of deptasks".
func (m *Manager) AllDeps() []ref.Ref {
	return m.rdeps.Keys()
}

// Tasks returns every registered task in registration order.
func (m *Manager) Tasks() []task.Task {
	out := make([]task.Task, 0, len(m.taskOrder))
	for _, id := range m.taskOrder {
		out = append(out, m.tasks[id])
	}
	return out
}
