package manager

import (
	"fmt"

	"github.com/kr/pretty"

	"github.com/opennumeric/xdeps/internal/container"
	"github.com/opennumeric/xdeps/internal/core/ref"
	"github.com/opennumeric/xdeps/internal/core/task"
)

// Copy returns a structural duplicate of m: same containers (by reference —
// the underlying data is not deep-copied, since containers are plain Go
// values shared with user code by convention), same tasks and indices.
// Equivalent to xdeps' Manager.copy.
func (m *Manager) Copy() *Manager {
	out := New(WithLogger(m.logger))
	out.containers = make(map[string]*ref.Root, len(m.containers))
	for k, v := range m.containers {
		out.containers[k] = v
	}
	out.labelOrder = append([]string(nil), m.labelOrder...)
	out.tasks = make(map[any]task.Task, len(m.tasks))
	for k, v := range m.tasks {
		out.tasks[k] = v
	}
	out.taskOrder = append([]any(nil), m.taskOrder...)
	out.rdeps = m.rdeps.clone()
	out.rtasks = m.rtasks.clone()
	out.deptasks = m.deptasks.clone()
	out.tartasks = m.tartasks.clone()
	return out
}

// Clone structurally duplicates m the way Copy does, but rebinds every root
// reference onto a fresh container supplied by the caller (keyed by label),
// for cheap scenario forks. Unlike xdeps' own clone, which builds the new
// manager but never returns it (a bug fixed here — see DESIGN.md), Clone
// returns the new manager with its root refs already rebound.
func (m *Manager) Clone(containers map[string]container.Container) (*Manager, error) {
	out := New(WithLogger(m.logger))
	rebind := make(map[*ref.Root]*ref.Root, len(m.containers))
	for _, label := range m.labelOrder {
		c, ok := containers[label]
		if !ok {
			return nil, fmt.Errorf("xdeps: Clone missing a replacement container for label %q", label)
		}
		newRoot, err := out.Ref(c, label)
		if err != nil {
			return nil, err
		}
		rebind[m.containers[label]] = newRoot
	}
	for _, id := range m.taskOrder {
		t := m.tasks[id]
		rt, err := rebindTask(t, rebind)
		if err != nil {
			return nil, err
		}
		if err := out.Register(rt); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// rebindTask builds a copy of t with every reference reachable from it
// rewritten to point at the corresponding root in rebind instead of the
// original manager's roots. Only Expr tasks carry a symbolic expression
// that needs rewriting; Generic tasks are opaque closures and are not
// clonable across containers, matching xdeps' clone (which only replays
// registered ExprTasks onto the new containers).
func rebindTask(t task.Task, rebind map[*ref.Root]*ref.Root) (task.Task, error) {
	et, ok := t.(*task.Expr)
	if !ok {
		return nil, fmt.Errorf("xdeps: Clone cannot rebind non-expression task %v", t.TaskID())
	}
	newTarget, err := rebindRef(et.Target, rebind)
	if err != nil {
		return nil, err
	}
	mutTarget, ok := newTarget.(ref.Mutable)
	if !ok {
		return nil, fmt.Errorf("xdeps: Clone target %v did not rebind to a mutable reference", et.Target)
	}
	newExpr, err := rebindRef(et.Expr, rebind)
	if err != nil {
		return nil, err
	}
	return task.NewExpr(mutTarget, newExpr), nil
}

func rebindRef(r ref.Ref, rebind map[*ref.Root]*ref.Root) (ref.Ref, error) {
	switch x := r.(type) {
	case *ref.Root:
		nr, ok := rebind[x]
		if !ok {
			return nil, fmt.Errorf("xdeps: Clone has no replacement for root %q", x.Label())
		}
		return nr, nil
	case *ref.Attr:
		owner, err := rebindRef(x.Owner(), rebind)
		if err != nil {
			return nil, err
		}
		combinable, ok := owner.(ref.Combinable)
		if !ok {
			return nil, fmt.Errorf("xdeps: Clone owner %v cannot build attribute refs", owner)
		}
		return combinable.Attr(x.Name()), nil
	case *ref.Item:
		owner, err := rebindRef(x.Owner(), rebind)
		if err != nil {
			return nil, err
		}
		combinable, ok := owner.(ref.Combinable)
		if !ok {
			return nil, fmt.Errorf("xdeps: Clone owner %v cannot build item refs", owner)
		}
		key, err := rebindKey(x.Key(), rebind)
		if err != nil {
			return nil, err
		}
		return combinable.Item(key), nil
	case *ref.ItemDefault:
		// Rebinding a fresh ItemDefault loses its default factory; cloned
		// scenarios that rely on default-insertion on the forked container
		// should re-register their own ItemDefault refs after Clone.
		return nil, fmt.Errorf("xdeps: Clone does not rebind ItemDefault references (%v); re-create them against the new containers", x)
	default:
		// UnOp/BinOp/Builtin/Call/Literal: pure nodes, rebuild with rebound
		// children.
		return rebindPure(r, rebind)
	}
}

func rebindKey(key any, rebind map[*ref.Root]*ref.Root) (any, error) {
	if kr, ok := key.(ref.Ref); ok {
		return rebindRef(kr, rebind)
	}
	return key, nil
}

func rebindPure(r ref.Ref, rebind map[*ref.Root]*ref.Root) (ref.Ref, error) {
	switch x := r.(type) {
	case *ref.UnOp:
		xr, err := rebindRef(x.X, rebind)
		if err != nil {
			return nil, err
		}
		return ref.NewUnOp(x.Op, xr), nil
	case *ref.BinOp:
		l, err := rebindRef(x.Left, rebind)
		if err != nil {
			return nil, err
		}
		rr, err := rebindRef(x.Right, rebind)
		if err != nil {
			return nil, err
		}
		return ref.NewBinOp(x.Op, l, rr), nil
	case *ref.Builtin:
		args := make([]any, len(x.Args))
		for i, a := range x.Args {
			v, err := rebindRef(a, rebind)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return ref.NewBuiltin(x.Name, args...), nil
	case *ref.Literal:
		return x, nil
	default:
		return r, nil
	}
}

// Rebuild returns a fresh manager with the same containers and tasks,
// re-registered one by one — this rebuilds every index from scratch and is
// used by Verify to detect index drift, matching xdeps' Manager.rebuild.
func (m *Manager) Rebuild() *Manager {
	out := New(WithLogger(m.logger))
	out.containers = make(map[string]*ref.Root, len(m.containers))
	for k, v := range m.containers {
		out.containers[k] = v
	}
	out.labelOrder = append([]string(nil), m.labelOrder...)
	for _, id := range m.taskOrder {
		_ = out.Register(m.tasks[id])
	}
	out.cleanup()
	return out
}

// VerifyReport is the consistency report Verify returns: one entry per
// index whose live contents disagree with a freshly rebuilt manager's.
type VerifyReport struct {
	Consistent  bool
	Discrepancy []string
}

// String renders the report with github.com/kr/pretty, for debug output.
func (v VerifyReport) String() string {
	if v.Consistent {
		return "consistent"
	}
	return fmt.Sprintf("%# v", pretty.Formatter(v.Discrepancy))
}

// Verify rebuilds m and compares every index, reporting by name each index
// whose contents differ — an index-consistency self-check.
func (m *Manager) Verify() VerifyReport {
	m.cleanup()
	other := m.Rebuild()
	report := VerifyReport{Consistent: true}
	if !equalRefRefSet(m.rdeps, other.rdeps) {
		report.Consistent = false
		report.Discrepancy = append(report.Discrepancy, "rdeps not consistent")
	}
	if !equalAnyAnySet(m.rtasks, other.rtasks) {
		report.Consistent = false
		report.Discrepancy = append(report.Discrepancy, "rtasks not consistent")
	}
	if !equalRefAnySet(m.deptasks, other.deptasks) {
		report.Consistent = false
		report.Discrepancy = append(report.Discrepancy, "deptasks not consistent")
	}
	if !equalRefAnySet(m.tartasks, other.tartasks) {
		report.Consistent = false
		report.Discrepancy = append(report.Discrepancy, "tartasks not consistent")
	}
	return report
}

func equalRefRefSet(a, b *multiset[ref.Ref, ref.Ref]) bool { return a.Equal(b) }
func equalRefAnySet(a, b *multiset[ref.Ref, any]) bool     { return a.Equal(b) }
func equalAnyAnySet(a, b *multiset[any, any]) bool         { return a.Equal(b) }

// CopyExprFrom supplements xdeps' Manager.copy_expr_from: it copies every
// ExprTask owned (transitively) by src's root labeled rootLabel into m,
// rebinding container references through bindings (old label -> this
// manager's root), defaulting to m's own same-named containers when
// bindings omits a label. Each copied expression is bound through SetValue,
// so its target's value is materialized and propagated in m.
func (m *Manager) CopyExprFrom(src *Manager, rootLabel string, bindings map[string]*ref.Root) error {
	root, ok := src.containers[rootLabel]
	if !ok {
		return fmt.Errorf("xdeps: CopyExprFrom: source manager has no root labeled %q", rootLabel)
	}
	merged := make(map[*ref.Root]*ref.Root, len(src.containers))
	for label, r := range src.containers {
		if nr, ok := bindings[label]; ok {
			merged[r] = nr
			continue
		}
		if nr, ok := m.containers[label]; ok {
			merged[r] = nr
		}
	}
	for _, id := range src.taskOrder {
		et, ok := src.tasks[id].(*task.Expr)
		if !ok {
			continue
		}
		if !ownedBy(et.Target, root) {
			continue
		}
		rt, err := rebindTask(et, merged)
		if err != nil {
			return err
		}
		copied := rt.(*task.Expr)
		if err := m.SetValue(copied.Target, copied.Expr); err != nil {
			return err
		}
	}
	return nil
}

// ownedBy reports whether r is, or is built on top of, root — matching
// xdeps' _check_root_owner.
func ownedBy(r ref.Ref, root *ref.Root) bool {
	switch x := r.(type) {
	case *ref.Root:
		return x == root
	case *ref.Attr:
		return ownedBy(x.Owner(), root)
	case *ref.Item:
		return ownedBy(x.Owner(), root)
	case *ref.ItemDefault:
		return ownedBy(x.Owner(), root)
	default:
		return false
	}
}
