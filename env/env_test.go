package env_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/opennumeric/xdeps/env"
	"github.com/opennumeric/xdeps/internal/core/manager"
)

func TestNewDefaultsToEmptyMapContainer(t *testing.T) {
	mgr := manager.New()
	e, err := env.New(mgr, "v", nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(e.Root().Label(), "v"))
}

func TestSetAttrRoutesThroughManager(t *testing.T) {
	mgr := manager.New()
	e, err := env.New(mgr, "v", nil)
	qt.Assert(t, qt.IsNil(err))

	qt.Assert(t, qt.IsNil(e.SetAttr("name", "alice")))
	got, err := e.GetAttr("name")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got, "alice"))
}

func TestSetItemPropagatesToDependentExpr(t *testing.T) {
	mgr := manager.New()
	v, err := env.New(mgr, "v", nil)
	qt.Assert(t, qt.IsNil(err))
	e, err := env.New(mgr, "e", nil)
	qt.Assert(t, qt.IsNil(err))

	qt.Assert(t, qt.IsNil(v.SetItem("a", 2)))
	qt.Assert(t, qt.IsNil(mgr.SetValue(e.Root().Item("c"), v.Root().Item("a").Mul(10))))

	cv, ok, err := e.GetItem("c")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(cv, any(int64(20))))

	qt.Assert(t, qt.IsNil(v.SetItem("a", 5)))
	cv, ok, err = e.GetItem("c")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(cv, any(int64(50))))
}

func TestEvalEvaluatesArbitraryExpression(t *testing.T) {
	mgr := manager.New()
	v, err := env.New(mgr, "v", nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsNil(v.SetItem("a", 3)))
	qt.Assert(t, qt.IsNil(v.SetItem("b", 4)))

	result, err := v.Eval(v.Root().Item("a").Add(v.Root().Item("b")))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(result, any(int64(7))))
}

func TestManagerReturnsOwningManager(t *testing.T) {
	mgr := manager.New()
	e, err := env.New(mgr, "v", nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(e.Manager(), mgr))
}
