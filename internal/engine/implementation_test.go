package engine

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/dbc/pkg/types"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newImpl(name string, opts ...Option) *Implementation {
	return NewImplementation(name, append([]Option{WithLogger(quietLogger())}, opts...)...)
}

// returning builds a body that counts its calls and returns v.
func returning(v any, calls *int) Body {
	return func(self *Instance, args []any, cb types.Callback) (any, error) {
		if calls != nil {
			*calls++
		}
		return v, nil
	}
}

func fooInterface() *Interface {
	iface := NewInterface("IFoo").WithLogger(quietLogger())
	iface.Define(nil).MustOp("foo", types.Integer, types.String, types.Rest, types.Block)
	return iface
}

func barInterface() *Interface {
	iface := NewInterface("IBar").WithLogger(quietLogger())
	iface.Define(types.Any).MustOp("bar", types.Integer)
	return iface
}

func TestInstallRejectsMismatchedSignatures(t *testing.T) {
	tests := []struct {
		name  string
		iface *Interface
		op    string
		sig   types.Signature
	}{
		{name: "foo extra required", iface: fooInterface(), op: "foo", sig: types.Signature{req, req, req, vrd, cbk}},
		{name: "foo too few", iface: fooInterface(), op: "foo", sig: types.Signature{req, vrd, cbk}},
		{name: "foo no rest", iface: fooInterface(), op: "foo", sig: types.Signature{req, req, req, cbk}},
		{name: "foo no rest short", iface: fooInterface(), op: "foo", sig: types.Signature{req, req, cbk}},
		{name: "bar with rest", iface: barInterface(), op: "bar", sig: types.Signature{req, vrd}},
		{name: "bar only rest", iface: barInterface(), op: "bar", sig: types.Signature{vrd}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			impl := newImpl("Mismatch").Implement(tt.iface)
			err := impl.Install(tt.op, NewMethod(tt.sig, returning(nil, nil)))
			assert.ErrorIs(t, err, types.ErrContractDefinition)
			assert.False(t, impl.Defined(tt.op), "rejected candidate must not be registered")
			assert.Equal(t, StateContracted, impl.State())
		})
	}
}

func TestInstallRejectsAgainstEveryDefinition(t *testing.T) {
	impl := newImpl("Twice").Implement(fooInterface(), fooInterface())
	assert.Len(t, impl.Definitions("foo"), 2)

	err := impl.Install("foo", NewMethod(types.Signature{req, req, req, vrd, cbk}, returning(nil, nil)))
	assert.ErrorIs(t, err, types.ErrContractDefinition)
	assert.NoError(t, impl.Install("foo", NewMethod(types.Signature{req, req, vrd, cbk}, returning(nil, nil))))
}

func TestFailedInstallKeepsPreviousBody(t *testing.T) {
	impl := newImpl("Keep").Implement(barInterface())
	require.NoError(t, impl.Install("bar", NewMethod(types.Signature{req}, returning("first", nil))))

	err := impl.Install("bar", NewMethod(types.Signature{vrd}, returning("second", nil)))
	require.ErrorIs(t, err, types.ErrContractDefinition)

	o, err := impl.New()
	require.NoError(t, err)
	got, err := o.Call("bar", 1)
	require.NoError(t, err)
	assert.Equal(t, "first", got)
}

func TestCorrectImplementation(t *testing.T) {
	impl := newImpl("Correct").Implement(fooInterface())

	var gotArgs []any
	var gotCb types.Callback
	body := func(self *Instance, args []any, cb types.Callback) (any, error) {
		gotArgs, gotCb = args, cb
		return nil, nil
	}
	require.NoError(t, impl.Install("foo", NewMethod(types.Signature{req, req, vrd, cbk}, body)))

	o, err := impl.New()
	require.NoError(t, err)

	_, err = o.Call("foo", 1, "a")
	require.NoError(t, err)
	assert.Equal(t, []any{1, "a"}, gotArgs)
	assert.Nil(t, gotCb)

	cb := func(args ...any) (any, error) { return len(args), nil }
	_, err = o.CallWithBlock("foo", cb, 1, "a", "rest", 3)
	require.NoError(t, err)
	assert.Len(t, gotArgs, 4)
	require.NotNil(t, gotCb)
	n, _ := gotCb(1, 2)
	assert.Equal(t, 2, n)
}

func TestArgumentChecksAcrossMergedInterfaces(t *testing.T) {
	ifoo := fooInterface()
	ibar := barInterface()
	ifoobar := NewInterface("IFooBar", ifoo, ibar).WithLogger(quietLogger())
	ifoobar.Define(nil).MustOp("foo", types.Between(10, 20), types.Any, types.Rest, types.Block)
	ibar2 := NewInterface("IBar2", ibar).WithLogger(quietLogger())
	ibar2.Define(types.Any).MustOp("bar", types.Between(0, 10))

	impl := newImpl("FooBar").Implement(ifoobar, ibar2)
	assert.Len(t, impl.Definitions("foo"), 2)
	assert.Len(t, impl.Definitions("bar"), 3)

	var calls int
	require.NoError(t, impl.Install("foo", NewMethod(types.Signature{req, req, vrd, cbk}, returning(nil, &calls))))
	require.NoError(t, impl.Install("bar", NewMethod(types.Signature{req}, returning(nil, &calls))))

	o, err := impl.New()
	require.NoError(t, err)

	failures := []struct {
		op      string
		args    []any
		wantPos int
		owner   string
	}{
		{op: "foo", args: []any{1, "a"}, wantPos: 0, owner: "IFooBar"},
		{op: "foo", args: []any{10, 2}, wantPos: 1, owner: "IFoo"},
		{op: "bar", args: []any{"ng"}, wantPos: 0, owner: "IBar"},
		{op: "bar", args: []any{-1}, wantPos: 0, owner: "IBar2"},
	}
	for _, f := range failures {
		_, err := o.Call(f.op, f.args...)
		require.ErrorIs(t, err, types.ErrArgumentContract, "%s%v", f.op, f.args)
		var ce *types.ContractError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, f.wantPos, ce.Position)
		assert.Equal(t, f.owner, ce.Owner.Name)
	}
	assert.Equal(t, 0, calls, "bodies must not run when arguments are rejected")

	_, err = o.Call("foo", 10, "a")
	assert.NoError(t, err)
	_, err = o.Call("bar", 1)
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestReturnValueChecked(t *testing.T) {
	impl := newImpl("Baz")
	impl.Define(types.String).MustOp("baz")

	var calls int
	require.NoError(t, impl.Install("baz", NewMethod(nil, returning(42, &calls))))
	o, err := impl.New()
	require.NoError(t, err)

	got, err := o.Call("baz")
	assert.Nil(t, got)
	require.ErrorIs(t, err, types.ErrReturnContract)
	assert.Contains(t, err.Error(), "(implementation Baz)")
	assert.Equal(t, 1, calls, "body runs before the return check")

	require.NoError(t, impl.Install("baz", NewMethod(nil, returning("ok", nil))))
	got, err = o.Call("baz")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestBodyErrorSkipsReturnCheck(t *testing.T) {
	impl := newImpl("Failing")
	impl.Define(types.String).MustOp("baz")
	boom := errors.New("boom")
	require.NoError(t, impl.Install("baz", NewMethod(nil, func(*Instance, []any, types.Callback) (any, error) {
		return 7, boom
	})))
	o, err := impl.New()
	require.NoError(t, err)

	_, err = o.Call("baz")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, types.ErrReturnContract)
}

func TestMissingImplementation(t *testing.T) {
	impl := newImpl("Defective")
	impl.Define(types.String).MustOp("baz")
	impl.Define(nil).MustOp("qux", types.Any)

	_, err := impl.New()
	require.ErrorIs(t, err, types.ErrMissingImplementation)
	var ce *types.ContractError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, []string{"baz", "qux"}, ce.Missing)

	_, err = impl.Subtype("Child")
	assert.ErrorIs(t, err, types.ErrMissingImplementation)

	require.NoError(t, impl.Install("qux", NewMethod(types.Signature{req}, returning(nil, nil))))
	_, err = impl.New()
	require.ErrorIs(t, err, types.ErrMissingImplementation)
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, []string{"baz"}, ce.Missing)

	require.NoError(t, impl.Install("baz", NewMethod(nil, returning("ok", nil))))
	_, err = impl.New()
	assert.NoError(t, err)
}

func TestSubtypeOfUnimplementedFails(t *testing.T) {
	module := newImpl("DefectiveModule").Implement(fooInterface())
	sub, err := module.Subtype("DefectiveClass")
	assert.Nil(t, sub)
	assert.ErrorIs(t, err, types.ErrMissingImplementation)
}

func TestStateTransitions(t *testing.T) {
	impl := newImpl("States")
	assert.Equal(t, StateEmpty, impl.State())

	impl.Implement(barInterface())
	assert.Equal(t, StateContracted, impl.State())

	require.NoError(t, impl.Install("bar", NewMethod(types.Signature{req}, returning(nil, nil))))
	assert.Equal(t, StateImplemented, impl.State())

	require.NoError(t, impl.AssertImplemented(true))
	assert.Equal(t, StateLocked, impl.State())
	assert.Equal(t, "locked", impl.State().String())
}

func TestAssertImplementedOnceLocks(t *testing.T) {
	impl := newImpl("Lockable").Implement(barInterface())
	assert.ErrorIs(t, impl.AssertImplemented(true), types.ErrMissingImplementation)
	assert.Equal(t, StateContracted, impl.State(), "failed confirmation must not lock")

	require.NoError(t, impl.Install("bar", NewMethod(types.Signature{req}, returning(nil, nil))))
	require.NoError(t, impl.AssertImplemented(true))

	// Once locked, operations contracted afterwards are installed without
	// structural checks or wrapping.
	impl.Define(types.String).MustOp("baz", types.Integer)
	require.NoError(t, impl.Install("baz", NewMethod(types.Signature{vrd}, returning(7, nil))))
	o, err := impl.New()
	require.NoError(t, err)
	got, err := o.Call("baz", "not an integer", 2)
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestLockedTypeKeepsCheckingWrappedOperations(t *testing.T) {
	impl := newImpl("Lockable").Implement(barInterface())
	require.NoError(t, impl.Install("bar", NewMethod(types.Signature{req}, returning("v1", nil))))
	require.NoError(t, impl.AssertImplemented(true))

	err := impl.Install("bar", NewMethod(types.Signature{vrd}, returning("raw", nil)))
	require.ErrorIs(t, err, types.ErrContractDefinition)

	require.NoError(t, impl.Install("bar", NewMethod(types.Signature{req}, returning("v2", nil))))
	o, err := impl.New()
	require.NoError(t, err)
	got, err := o.Call("bar", 1)
	require.NoError(t, err)
	assert.Equal(t, "v2", got)

	_, err = o.Call("bar", "not an integer")
	assert.ErrorIs(t, err, types.ErrArgumentContract)
}

func TestLockedSubtypeKeepsCheckingInheritedWrappers(t *testing.T) {
	parent := newImpl("Parent").Implement(barInterface())
	require.NoError(t, parent.Install("bar", NewMethod(types.Signature{req}, returning(nil, nil))))
	child, err := parent.Subtype("Child")
	require.NoError(t, err)
	require.NoError(t, child.AssertImplemented(true))

	err = child.Install("bar", NewMethod(types.Signature{req, req}, returning(nil, nil)))
	assert.ErrorIs(t, err, types.ErrContractDefinition)
}

func TestReinstallUsesFreshAliases(t *testing.T) {
	impl := newImpl("Aliases").Implement(barInterface())
	require.NoError(t, impl.Install("bar", NewMethod(types.Signature{req}, returning("v1", nil))))
	require.NoError(t, impl.Install("bar", NewMethod(types.Signature{req}, returning("v2", nil))))

	assert.True(t, impl.Defined("bar_1"))
	assert.True(t, impl.Defined("bar_2"))
	assert.False(t, impl.Defined("bar_3"))

	o, err := impl.New()
	require.NoError(t, err)
	got, err := o.Call("bar", 1)
	require.NoError(t, err)
	assert.Equal(t, "v2", got)

	// Aliases hold the raw bodies and are not checked.
	got, err = o.Call("bar_1", "unchecked")
	require.NoError(t, err)
	assert.Equal(t, "v1", got)
}

func TestSubtypeInheritsAndStaysIndependent(t *testing.T) {
	parent := newImpl("Parent").Implement(barInterface())
	require.NoError(t, parent.Install("bar", NewMethod(types.Signature{req}, returning("parent", nil))))

	child, err := parent.Subtype("Child")
	require.NoError(t, err)
	assert.Same(t, parent, child.Parent())
	assert.Equal(t, StateImplemented, child.State())

	o, err := child.New()
	require.NoError(t, err)
	got, err := o.Call("bar", 3)
	require.NoError(t, err)
	assert.Equal(t, "parent", got)
	_, err = o.Call("bar", "x")
	assert.ErrorIs(t, err, types.ErrArgumentContract)

	child.Implement(fooInterface())
	assert.Equal(t, StateContracted, child.State())
	assert.False(t, parent.Table().Has("foo"), "subtype contracts must not leak to the parent")
	assert.Equal(t, StateImplemented, parent.State())

	require.NoError(t, child.Install("bar", NewMethod(types.Signature{req}, returning("child", nil))))
	assert.True(t, child.Defined("bar_2"), "alias must skip names defined on the parent")
	o, err = child.New()
	assert.ErrorIs(t, err, types.ErrMissingImplementation)
	assert.Nil(t, o)
}

func TestWrapperSeesLaterContracts(t *testing.T) {
	impl := newImpl("Late").Implement(barInterface())
	require.NoError(t, impl.Install("bar", NewMethod(types.Signature{req}, returning(nil, nil))))
	o, err := impl.New()
	require.NoError(t, err)

	_, err = o.Call("bar", 11)
	require.NoError(t, err)

	impl.Define(nil).MustOp("bar", types.Between(0, 10))
	_, err = o.Call("bar", 11)
	assert.ErrorIs(t, err, types.ErrArgumentContract)
}

func TestCheckingModes(t *testing.T) {
	t.Run("structural checks install but not calls", func(t *testing.T) {
		impl := newImpl("Structural", WithConfig(types.Config{Mode: types.ModeStructural})).Implement(barInterface())
		assert.ErrorIs(t, impl.Install("bar", NewMethod(types.Signature{vrd}, returning(nil, nil))), types.ErrContractDefinition)
		require.NoError(t, impl.Install("bar", NewMethod(types.Signature{req}, returning(nil, nil))))
		assert.False(t, impl.Defined("bar_1"))

		o, err := impl.New()
		require.NoError(t, err)
		_, err = o.Call("bar", "not checked")
		assert.NoError(t, err)
	})

	t.Run("off checks nothing", func(t *testing.T) {
		impl := newImpl("Off", WithConfig(types.Config{Mode: types.ModeOff})).Implement(barInterface(), fooInterface())
		require.NoError(t, impl.Install("bar", NewMethod(types.Signature{vrd}, returning(nil, nil))))

		o, err := impl.New()
		require.NoError(t, err, "foo is missing but checking is off")
		_, err = o.Call("bar", "x", "y")
		assert.NoError(t, err)
		assert.Equal(t, types.ModeOff, impl.Config().Mode)
	})
}

func TestCallErrors(t *testing.T) {
	impl := newImpl("Calls").Implement(barInterface())
	require.NoError(t, impl.Install("bar", NewMethod(types.Signature{req}, returning(nil, nil))))
	o, err := impl.New()
	require.NoError(t, err)

	_, err = o.Call("missing")
	assert.ErrorIs(t, err, types.ErrNoMethod)
	assert.False(t, o.Responds("missing"))
	assert.True(t, o.Responds("bar"))

	_, err = o.Call("bar")
	assert.ErrorIs(t, err, types.ErrArgumentCount)
	_, err = o.Call("bar", 1, 2)
	assert.ErrorIs(t, err, types.ErrArgumentCount)
	assert.NotEmpty(t, o.ID())
	assert.Same(t, impl, o.Class())
}

func TestInstallValidation(t *testing.T) {
	impl := newImpl("Nil")
	assert.ErrorIs(t, impl.Install("x", Method{}), types.ErrInvalidMethod)

	// Operations without contracts are stored as is.
	require.NoError(t, impl.Install("helper", NewMethod(types.Signature{vrd}, returning("h", nil))))
	assert.False(t, impl.Defined("helper_1"))
	assert.Equal(t, StateEmpty, impl.State())
}

func TestImplementationEach(t *testing.T) {
	impl := newImpl("Each").Implement(fooInterface(), barInterface())
	var names []string
	impl.Each(func(name string, defs []*Definition) {
		names = append(names, name)
	})
	assert.Equal(t, []string{"foo", "bar"}, names)
	assert.Equal(t, []string{"foo", "bar"}, impl.Missing())
}

func TestConcurrentCalls(t *testing.T) {
	impl := newImpl("Concurrent").Implement(barInterface())
	require.NoError(t, impl.Install("bar", NewMethod(types.Signature{req}, func(_ *Instance, args []any, _ types.Callback) (any, error) {
		return args[0], nil
	})))
	o, err := impl.New()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			got, err := o.Call("bar", n)
			assert.NoError(t, err)
			assert.Equal(t, n, got)
		}(i)
	}
	wg.Wait()
}
