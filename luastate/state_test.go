package luastate

import (
	"testing"

	"github.com/deepnoodle-ai/hostbridge"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
)

func newTestState(t *testing.T) *State {
	t.Helper()
	L := lua.NewState()
	t.Cleanup(L.Close)
	return New(L)
}

func TestStackOperations(t *testing.T) {
	s := newTestState(t)

	s.PushString("a")
	s.PushInteger(2)
	s.PushString("c")
	require.Equal(t, 3, s.GetTop())

	s.Pop(1)
	require.Equal(t, 2, s.GetTop())
	require.Equal(t, lua.LNumber(2), s.L.Get(-1))

	s.SetTop(0)
	require.Equal(t, 0, s.GetTop())
}

func TestGetFieldOnNonTable(t *testing.T) {
	s := newTestState(t)

	s.PushInteger(5)
	s.GetField(-1, "schedule")
	require.Equal(t, 2, s.GetTop())
	require.Equal(t, lua.LNil, s.L.Get(-1))

	s.GetGlobal("missing")
	s.GetField(-1, "schedule")
	require.Equal(t, lua.LNil, s.L.Get(-1))
}

func TestGetFieldOnTable(t *testing.T) {
	s := newTestState(t)
	require.NoError(t, s.L.DoString(`vim = { answer = 42 }`))

	s.GetGlobal("vim")
	s.GetField(-1, "answer")
	require.Equal(t, lua.LNumber(42), s.L.Get(-1))
	s.Pop(2)
	require.Equal(t, 0, s.GetTop())
}

func TestCallFailureRemovesFunctionAndArgs(t *testing.T) {
	s := newTestState(t)
	require.NoError(t, s.L.DoString(`function fail(msg) error(msg) end`))

	s.PushString("below")
	s.GetGlobal("fail")
	s.PushString("kaput")
	err := s.Call(1, 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "kaput")
	require.Equal(t, 1, s.GetTop())
}

func TestRefs(t *testing.T) {
	s := newTestState(t)
	calls := 0

	ref := s.RefTask(func() error {
		calls++
		return nil
	})
	require.True(t, s.Registered(ref))
	require.Equal(t, 1, s.LiveRefs())
	require.Equal(t, 0, calls, "registering must not invoke")

	s.RawGetRef(ref)
	require.Equal(t, lua.LTFunction, s.L.Get(-1).Type())
	require.NoError(t, s.Call(0, 0))
	require.Equal(t, 1, calls)

	s.RawGetRef(ref)
	err := s.Call(0, 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), string(hostbridge.ErrorKindClosureConsumed))
	require.Equal(t, 1, calls)

	s.Unref(ref)
	require.False(t, s.Registered(ref))
	require.Equal(t, 0, s.LiveRefs())
	s.Unref(ref) // second release is a no-op
	require.Equal(t, 0, s.LiveRefs())

	s.RawGetRef(ref)
	require.Equal(t, lua.LNil, s.L.Get(-1))
	s.RawGetRef(hostbridge.NilRef)
	require.Equal(t, lua.LNil, s.L.Get(-1))
}

func TestRefsAreUniqueAcrossWrappers(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	a := New(L)
	b := New(L)

	r1 := a.RefTask(func() error { return nil })
	a.Unref(r1)
	r2 := b.RefTask(func() error { return nil })
	r3 := a.RefTask(func() error { return nil })

	require.NotEqual(t, r1, r2)
	require.NotEqual(t, r2, r3)
	require.NotEqual(t, r1, r3)
}

func TestLiveRefsAreSharedAcrossWrappers(t *testing.T) {
	L := lua.NewState()
	defer L.Close()
	a := New(L)
	b := New(L)

	r1 := a.RefTask(func() error { return nil })
	r2 := a.RefTask(func() error { return nil })
	require.Equal(t, 2, b.LiveRefs())

	b.Unref(r1)
	require.Equal(t, 1, a.LiveRefs())
	require.Equal(t, 1, b.LiveRefs())

	b.Unref(r2)
	b.Unref(r2)
	require.Equal(t, 0, a.LiveRefs())
	require.Equal(t, 0, b.LiveRefs())
}

func TestRaisingIndexMetamethods(t *testing.T) {
	t.Run("defer table", func(t *testing.T) {
		s := newTestState(t)
		require.NoError(t, s.L.DoString(
			`vim = setmetatable({}, {__index = function() error("locked") end})`))

		ran := false
		var ref hostbridge.Ref
		var err error
		require.NotPanics(t, func() {
			ref, err = hostbridge.ScheduleOn(s, "vim", "schedule", func() error {
				ran = true
				return nil
			})
		})
		require.ErrorIs(t, err, hostbridge.ErrInterpreterCallFailed)
		require.False(t, ran)
		require.False(t, s.Registered(ref))
		require.Equal(t, 0, s.LiveRefs())
		require.Equal(t, 0, s.GetTop())
	})

	t.Run("strict globals", func(t *testing.T) {
		s := newTestState(t)
		require.NoError(t, s.L.DoString(
			`setmetatable(_G, {__index = function(_, k) error("undefined global " .. k) end})`))

		s.PushString("below")
		require.NotPanics(t, func() {
			err := hostbridge.CallGlobal(s, "missing", hostbridge.String("x"))
			require.ErrorIs(t, err, hostbridge.ErrInterpreterCallFailed)
		})
		require.Equal(t, 1, s.GetTop())

		require.NotPanics(t, func() {
			hostbridge.Schedule(s, func() error { return nil })
		})
		require.Equal(t, 1, s.GetTop())
		require.Equal(t, 0, s.LiveRefs())
	})

	t.Run("non-raising metamethod is honored", func(t *testing.T) {
		s := newTestState(t)
		require.NoError(t, s.L.DoString(
			`vim = setmetatable({}, {__index = function(_, k) return k .. "!" end})`))

		s.GetGlobal("vim")
		s.GetField(-1, "schedule")
		require.Equal(t, lua.LString("schedule!"), s.L.Get(-1))
		require.Equal(t, 2, s.GetTop())
	})
}
