package gojastate

import (
	"github.com/deepnoodle-ai/hostbridge"
	"github.com/deepnoodle-ai/hostbridge/internal/emustack"
	"github.com/dop251/goja"
)

// State implements hostbridge.State over a goja runtime's global object.
type State struct {
	*emustack.Machine[goja.Value]
	vm *goja.Runtime
}

var _ hostbridge.State = (*State)(nil)

// New wraps vm.
func New(vm *goja.Runtime) *State {
	return &State{
		Machine: emustack.New[goja.Value](&engine{vm: vm}),
		vm:      vm,
	}
}

// VM returns the wrapped runtime.
func (s *State) VM() *goja.Runtime {
	return s.vm
}
