// Package gojastate drives the goja JavaScript engine through
// hostbridge.State, with the stack and registry emulated on the Go side.
package gojastate

import (
	"fmt"

	"github.com/deepnoodle-ai/hostbridge/internal/emustack"
	"github.com/dop251/goja"
)

type engine struct {
	vm *goja.Runtime
}

var _ emustack.Engine[goja.Value] = (*engine)(nil)

func (e *engine) Nil() goja.Value { return goja.Undefined() }

func (e *engine) IsNil(v goja.Value) bool {
	return v == nil || goja.IsUndefined(v) || goja.IsNull(v)
}

func (e *engine) Global(name string) goja.Value {
	v := e.vm.Get(name)
	if v == nil {
		return goja.Undefined()
	}
	return v
}

func (e *engine) Field(obj goja.Value, name string) goja.Value {
	o, ok := obj.(*goja.Object)
	if !ok {
		return goja.Undefined()
	}
	v := o.Get(name)
	if v == nil {
		return goja.Undefined()
	}
	return v
}

func (e *engine) String(s string) goja.Value { return e.vm.ToValue(s) }

func (e *engine) Integer(n int64) goja.Value { return e.vm.ToValue(n) }

func (e *engine) Func(fn func() error) goja.Value {
	return e.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		if err := fn(); err != nil {
			panic(e.vm.NewGoError(err))
		}
		return goja.Undefined()
	})
}

func (e *engine) Call(fn goja.Value, args []goja.Value) ([]goja.Value, error) {
	callable, ok := goja.AssertFunction(fn)
	if !ok {
		return nil, fmt.Errorf("attempt to call a non-function value (%s)", fn.String())
	}
	result, err := callable(goja.Undefined(), args...)
	if err != nil {
		return nil, err
	}
	return []goja.Value{result}, nil
}
