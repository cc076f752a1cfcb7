// Package emustack gives engines without a stack API the value stack and
// reference registry hostbridge.State expects.
package emustack

import (
	"fmt"

	"github.com/deepnoodle-ai/hostbridge"
)

// Engine adapts one scripting engine's values.
type Engine[V any] interface {
	// Nil returns the engine's nil value.
	Nil() V

	// IsNil reports whether v is nil or otherwise absent.
	IsNil(v V) bool

	// Global looks up a global. Missing globals are Nil.
	Global(name string) V

	// Field indexes obj. Values that cannot be indexed yield Nil.
	Field(obj V, name string) V

	String(s string) V
	Integer(n int64) V

	// Func wraps a native function as an engine callable.
	Func(fn func() error) V

	// Call invokes fn with args and returns its results.
	Call(fn V, args []V) ([]V, error)
}

// Machine implements hostbridge.State over an Engine.
type Machine[V any] struct {
	engine  Engine[V]
	stack   []V
	refs    map[hostbridge.Ref]V
	nextRef hostbridge.Ref
}

// New creates an empty machine.
func New[V any](engine Engine[V]) *Machine[V] {
	return &Machine[V]{
		engine: engine,
		refs:   make(map[hostbridge.Ref]V),
	}
}

var _ hostbridge.State = (*Machine[int])(nil)

func (m *Machine[V]) GetTop() int {
	return len(m.stack)
}

func (m *Machine[V]) SetTop(idx int) {
	if idx < 0 {
		idx = len(m.stack) + idx + 1
	}
	if idx < 0 {
		panic(fmt.Sprintf("emustack: invalid top %d", idx))
	}
	for len(m.stack) < idx {
		m.stack = append(m.stack, m.engine.Nil())
	}
	clear(m.stack[idx:])
	m.stack = m.stack[:idx]
}

func (m *Machine[V]) GetGlobal(name string) {
	m.push(m.engine.Global(name))
}

func (m *Machine[V]) GetField(idx int, name string) {
	obj, ok := m.at(idx)
	if !ok || m.engine.IsNil(obj) {
		m.push(m.engine.Nil())
		return
	}
	m.push(m.engine.Field(obj, name))
}

func (m *Machine[V]) PushString(s string) {
	m.push(m.engine.String(s))
}

func (m *Machine[V]) PushInteger(n int64) {
	m.push(m.engine.Integer(n))
}

func (m *Machine[V]) RawGetRef(ref hostbridge.Ref) {
	v, ok := m.refs[ref]
	if !ok {
		v = m.engine.Nil()
	}
	m.push(v)
}

func (m *Machine[V]) Pop(n int) {
	m.SetTop(-n - 1)
}

func (m *Machine[V]) Call(nargs, nresults int) error {
	base := len(m.stack) - nargs - 1
	if nargs < 0 || base < 0 {
		return hostbridge.NewError(hostbridge.ErrorKindStackUnderflow,
			fmt.Sprintf("call with %d arguments on a stack of %d", nargs, len(m.stack)))
	}
	fn := m.stack[base]
	args := append([]V(nil), m.stack[base+1:]...)
	m.SetTop(base)

	if m.engine.IsNil(fn) {
		return fmt.Errorf("attempt to call a nil value")
	}
	results, err := m.engine.Call(fn, args)
	if err != nil {
		return err
	}
	if nresults == hostbridge.MultRet {
		m.stack = append(m.stack, results...)
		return nil
	}
	for i := 0; i < nresults; i++ {
		if i < len(results) {
			m.push(results[i])
		} else {
			m.push(m.engine.Nil())
		}
	}
	return nil
}

func (m *Machine[V]) RefTask(task hostbridge.Task) hostbridge.Ref {
	once := hostbridge.NewOnce(task)
	m.nextRef++
	m.refs[m.nextRef] = m.engine.Func(once.Invoke)
	return m.nextRef
}

func (m *Machine[V]) Unref(ref hostbridge.Ref) {
	delete(m.refs, ref)
}

// Registered reports whether ref still has a registry slot.
func (m *Machine[V]) Registered(ref hostbridge.Ref) bool {
	_, ok := m.refs[ref]
	return ok
}

// LiveRefs returns the number of occupied registry slots.
func (m *Machine[V]) LiveRefs() int {
	return len(m.refs)
}

// Value returns the value at idx.
func (m *Machine[V]) Value(idx int) (V, bool) {
	return m.at(idx)
}

func (m *Machine[V]) push(v V) {
	m.stack = append(m.stack, v)
}

func (m *Machine[V]) at(idx int) (V, bool) {
	var zero V
	if idx < 0 {
		idx = len(m.stack) + idx + 1
	}
	if idx < 1 || idx > len(m.stack) {
		return zero, false
	}
	return m.stack[idx-1], true
}
