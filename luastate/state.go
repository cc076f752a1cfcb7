// Package luastate drives a gopher-lua interpreter through hostbridge.State.
package luastate

import (
	"github.com/deepnoodle-ai/hostbridge"
	lua "github.com/yuin/gopher-lua"
)

const (
	// refsKey is where the reference table lives in the Lua registry.
	refsKey = "hostbridge.refs"

	// nextKey holds the last key handed out, so keys stay unique across
	// every State wrapping the same interpreter.
	nextKey = "next"
)

// State implements hostbridge.State on a *lua.LState.
type State struct {
	L    *lua.LState
	refs *lua.LTable
}

var _ hostbridge.State = (*State)(nil)

// New wraps L. The reference table is created in L's registry on first use
// and shared by every State wrapping the same interpreter.
func New(L *lua.LState) *State {
	refs, ok := L.G.Registry.RawGetString(refsKey).(*lua.LTable)
	if !ok {
		refs = L.NewTable()
		L.G.Registry.RawSetString(refsKey, refs)
	}
	return &State{L: L, refs: refs}
}

func (s *State) GetTop() int {
	return s.L.GetTop()
}

func (s *State) SetTop(idx int) {
	s.L.SetTop(idx)
}

func (s *State) GetGlobal(name string) {
	s.L.Push(s.index(s.L.G.Global, name))
}

func (s *State) GetField(idx int, name string) {
	s.L.Push(s.index(s.L.Get(idx), name))
}

// index looks up tbl[name]. An __index metamethod runs in a protected call;
// if it raises, the result is nil.
func (s *State) index(obj lua.LValue, name string) lua.LValue {
	tbl, ok := obj.(*lua.LTable)
	if !ok {
		return lua.LNil
	}
	if tbl.Metatable == lua.LNil {
		return tbl.RawGetString(name)
	}
	var v lua.LValue = lua.LNil
	s.L.Push(s.L.NewFunction(func(L *lua.LState) int {
		v = L.GetField(tbl, name)
		return 0
	}))
	if err := s.L.PCall(0, 0, nil); err != nil {
		return lua.LNil
	}
	return v
}

func (s *State) PushString(str string) {
	s.L.Push(lua.LString(str))
}

func (s *State) PushInteger(n int64) {
	s.L.Push(lua.LNumber(n))
}

func (s *State) RawGetRef(ref hostbridge.Ref) {
	if ref <= 0 {
		s.L.Push(lua.LNil)
		return
	}
	s.L.Push(s.refs.RawGetInt(int(ref)))
}

func (s *State) Pop(n int) {
	s.L.Pop(n)
}

func (s *State) Call(nargs, nresults int) error {
	return s.L.PCall(nargs, nresults, nil)
}

func (s *State) RefTask(task hostbridge.Task) hostbridge.Ref {
	once := hostbridge.NewOnce(task)
	fn := s.L.NewFunction(func(L *lua.LState) int {
		if err := once.Invoke(); err != nil {
			L.RaiseError("%s", err.Error())
		}
		return 0
	})
	return s.ref(fn)
}

func (s *State) ref(v lua.LValue) hostbridge.Ref {
	next := 1
	if n, ok := s.refs.RawGetString(nextKey).(lua.LNumber); ok {
		next = int(n) + 1
	}
	s.refs.RawSetString(nextKey, lua.LNumber(next))
	s.refs.RawSetInt(next, v)
	return hostbridge.Ref(next)
}

func (s *State) Unref(ref hostbridge.Ref) {
	if !s.Registered(ref) {
		return
	}
	s.refs.RawSetInt(int(ref), lua.LNil)
}

// Registered reports whether ref still has a registry slot.
func (s *State) Registered(ref hostbridge.Ref) bool {
	if ref <= 0 {
		return false
	}
	return s.refs.RawGetInt(int(ref)) != lua.LNil
}

// LiveRefs returns the number of occupied slots in the reference table,
// which is shared by every State wrapping the same interpreter.
func (s *State) LiveRefs() int {
	n := 0
	s.refs.ForEach(func(k, _ lua.LValue) {
		if _, ok := k.(lua.LNumber); ok {
			n++
		}
	})
	return n
}
